package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/giwty/title-menu/fileio"
	"github.com/giwty/title-menu/gamelist"
	"github.com/giwty/title-menu/settings"
)

// Display names from the english short name of each title's meta.xml
type MetaXMLSource struct {
	root  string
	files fileReader
}

func NewMetaXMLSource(root string) *MetaXMLSource {
	return &MetaXMLSource{root: root, files: fileio.NewOSStorage()}
}

func (s *MetaXMLSource) DisplayName(ctx context.Context, titleId uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	meta, err := readMeta(s.files, metaPath(TitlePath(s.root, titleId)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%016x: %w", titleId, ErrNoMetadata)
	}
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(meta.ShortnameEn)
	if name == "" {
		return "", fmt.Errorf("%016x has no english name: %w", titleId, ErrNoMetadata)
	}
	return name, nil
}

// User provided names win over whatever the wrapped source reports
type OverrideSource struct {
	overrides *settings.NameOverrides
	next      gamelist.MetadataSource
}

func NewOverrideSource(overrides *settings.NameOverrides, next gamelist.MetadataSource) *OverrideSource {
	return &OverrideSource{overrides: overrides, next: next}
}

func (s *OverrideSource) DisplayName(ctx context.Context, titleId uint64) (string, error) {
	if name, ok := s.overrides.Get(titleId); ok {
		return name, nil
	}
	if s.next == nil {
		return "", ErrNoMetadata
	}
	return s.next.DisplayName(ctx, titleId)
}

// Icon assets shipped inside each title's meta folder
type NativeIcons struct {
	files fileReader
}

func NewNativeIcons() *NativeIcons {
	return &NativeIcons{files: fileio.NewOSStorage()}
}

func (n *NativeIcons) NativeIconPath(installPath string) string {
	return filepath.Join(installPath, META_DIR, ICON_FILENAME)
}

func (n *NativeIcons) NativeIcon(ctx context.Context, installPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.files.ReadFile(n.NativeIconPath(installPath))
}
