package gamelist

import (
	"context"

	"github.com/giwty/title-menu/imaging"
)

// Raw title record returned by the platform title service
type TitleInfo struct {
	TitleId uint64
	AppType AppType
	Path    string
}

type TitleSource interface {
	// Installed titles of one category
	Titles(ctx context.Context, appType AppType) ([]TitleInfo, error)
}

// Title sources enumerating everything in one pass. Load refreshes them once
// before querying the categories.
type TitleRefresher interface {
	Refresh(ctx context.Context) error
}

type MetadataSource interface {
	DisplayName(ctx context.Context, titleId uint64) (string, error)
}

type IconSource interface {
	NativeIcon(ctx context.Context, installPath string) ([]byte, error)
	NativeIconPath(installPath string) string
}

type ImagePipeline interface {
	Decode(data []byte) (*imaging.Texture, error)
	Reencode(src, dst string) error
}

// Whole file access. ReadFile reports a missing file with fs.ErrNotExist.
type Storage interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	EnsureDir(path string) error
}

type ProgressUpdater interface {
	UpdateProgress(curr int, total int, message string)
}
