package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"go.uber.org/zap"
)

// Display name overrides keyed by title id, loaded from a properties file:
//
//	0005000010101c00 = Mario Kart 8
type NameOverrides struct {
	names map[uint64]string
}

func (n *NameOverrides) Get(titleId uint64) (string, bool) {
	if n == nil {
		return "", false
	}
	name, ok := n.names[titleId]
	return name, ok
}

func (n *NameOverrides) Len() int {
	if n == nil {
		return 0
	}
	return len(n.names)
}

// Load the overrides file, a missing file yields an empty set
func LoadNameOverrides(path string) (*NameOverrides, error) {
	overrides := &NameOverrides{names: map[uint64]string{}}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return overrides, nil
	}

	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("read name overrides %v: %w", path, err)
	}

	for _, key := range p.Keys() {
		titleId, err := strconv.ParseUint(strings.TrimSpace(key), 16, 64)
		if err != nil {
			zap.S().Warnf("ignoring name override with invalid title id [%v]", key)
			continue
		}
		value, _ := p.Get(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		overrides.names[titleId] = value
	}

	return overrides, nil
}
