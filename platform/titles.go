package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/giwty/title-menu/fileio"
	"github.com/giwty/title-menu/gamelist"
	"go.uber.org/zap"
)

// Enumerates installed titles from a folder laid out like the console's
// title storage, classifying each by the app_type of its meta.xml. The tree
// is scanned once per Refresh, categories are served from that scan.
type DirTitleSource struct {
	root   string
	files  fileReader
	logger *zap.SugaredLogger

	mu      sync.Mutex
	scanned bool
	byType  map[gamelist.AppType][]gamelist.TitleInfo
	scanErr error
}

func NewDirTitleSource(root string, l *zap.SugaredLogger) *DirTitleSource {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &DirTitleSource{root: root, files: fileio.NewOSStorage(), logger: l}
}

// Rescan the title tree
func (s *DirTitleSource) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scan(ctx)
	return s.scanErr
}

func (s *DirTitleSource) Titles(ctx context.Context, appType gamelist.AppType) ([]gamelist.TitleInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanned {
		s.scan(ctx)
	}
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return append([]gamelist.TitleInfo(nil), s.byType[appType]...), nil
}

// callers hold s.mu
func (s *DirTitleSource) scan(ctx context.Context) {
	s.byType, s.scanErr = s.readTree(ctx)
	// a cancelled scan is retried by the next call
	s.scanned = ctx.Err() == nil
}

func (s *DirTitleSource) readTree(ctx context.Context) (map[gamelist.AppType][]gamelist.TitleInfo, error) {
	titleDir := filepath.Join(s.root, TITLE_DIR)
	highs, err := os.ReadDir(titleDir)
	if err != nil {
		return nil, fmt.Errorf("list %v: %w", titleDir, err)
	}

	byType := map[gamelist.AppType][]gamelist.TitleInfo{}
	cnt := 0
	for _, high := range highs {
		if !high.IsDir() {
			continue
		}
		lows, err := os.ReadDir(filepath.Join(titleDir, high.Name()))
		if err != nil {
			s.logger.Warnf("failed to list %v - %v", high.Name(), err)
			continue
		}
		for _, low := range lows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !low.IsDir() {
				continue
			}
			installPath := filepath.Join(titleDir, high.Name(), low.Name())
			if info, ok := s.readTitle(installPath, high.Name()+low.Name()); ok {
				byType[info.AppType] = append(byType[info.AppType], info)
				cnt++
			}
		}
	}
	s.logger.Debugf("found %v titles under %v", cnt, titleDir)
	return byType, nil
}

func (s *DirTitleSource) readTitle(installPath string, dirId string) (gamelist.TitleInfo, bool) {
	meta, err := readMeta(s.files, metaPath(installPath))
	if err != nil {
		s.logger.Debugf("skipping %v - %v", installPath, err)
		return gamelist.TitleInfo{}, false
	}
	appType, err := meta.appType()
	if err != nil {
		s.logger.Debugf("skipping %v, bad app_type %q", installPath, meta.AppType)
		return gamelist.TitleInfo{}, false
	}

	titleId, err := meta.titleId()
	if err != nil {
		// older titles leave title_id empty, the folder names carry it
		titleId, err = strconv.ParseUint(dirId, 16, 64)
		if err != nil {
			s.logger.Debugf("skipping %v, no title id", installPath)
			return gamelist.TitleInfo{}, false
		}
	}

	return gamelist.TitleInfo{
		TitleId: titleId,
		AppType: gamelist.AppType(appType),
		Path:    installPath,
	}, true
}
