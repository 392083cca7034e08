package platform

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	TITLE_DIR     = "usr/title"
	META_DIR      = "meta"
	META_FILENAME = "meta.xml"
	ICON_FILENAME = "iconTex.tga"
)

var ErrNoMetadata = errors.New("no metadata")

// The subset of meta/meta.xml the menu reads
type metaXML struct {
	XMLName     xml.Name `xml:"menu"`
	TitleId     string   `xml:"title_id"`
	AppType     string   `xml:"app_type"`
	ShortnameEn string   `xml:"shortname_en"`
}

func (m *metaXML) titleId() (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(m.TitleId), 16, 64)
}

func (m *metaXML) appType() (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(m.AppType), 16, 32)
	return uint32(v), err
}

type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

func readMeta(files fileReader, path string) (*metaXML, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta := &metaXML{}
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(meta); err != nil {
		return nil, fmt.Errorf("decode %v: %w", path, err)
	}
	return meta, nil
}

// Install folder of a title: <root>/usr/title/<high 8 hex>/<low 8 hex>
func TitlePath(root string, titleId uint64) string {
	return filepath.Join(root, TITLE_DIR, fmt.Sprintf("%08x", titleId>>32), fmt.Sprintf("%08x", titleId&0xffffffff))
}

func metaPath(installPath string) string {
	return filepath.Join(installPath, META_DIR, META_FILENAME)
}
