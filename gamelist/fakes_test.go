package gamelist

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"sync"

	"github.com/giwty/title-menu/imaging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStorage struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	writes   int
	writeErr error
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (s *memStorage) ReadFile(path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("open %v: %w", path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (s *memStorage) WriteFile(path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.files[path] = append([]byte(nil), data...)
	return nil
}

func (s *memStorage) EnsureDir(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[path] = true
	return nil
}

func (s *memStorage) put(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = []byte(content)
}

func (s *memStorage) get(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	return string(data), ok
}

func (s *memStorage) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeTitles struct {
	byType     map[AppType][]TitleInfo
	failed     map[AppType]bool
	calls      []AppType
	refreshes  int
	refreshErr error
}

func (f *fakeTitles) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeTitles) Titles(ctx context.Context, appType AppType) ([]TitleInfo, error) {
	f.calls = append(f.calls, appType)
	if f.failed[appType] {
		return nil, errors.New("title list failed")
	}
	return f.byType[appType], nil
}

type fakeMetadata struct {
	mu      sync.Mutex
	names   map[uint64]string
	calls   []uint64
	entered chan uint64
	release chan struct{}
}

func newFakeMetadata(names map[uint64]string) *fakeMetadata {
	return &fakeMetadata{names: names}
}

func (f *fakeMetadata) DisplayName(ctx context.Context, titleId uint64) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, titleId)
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- titleId
	}
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.names[titleId]
	if !ok {
		return "", errors.New("no meta.xml")
	}
	return name, nil
}

func (f *fakeMetadata) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeIcons struct {
	mu    sync.Mutex
	icons map[string][]byte
	calls []string
}

func (f *fakeIcons) NativeIcon(ctx context.Context, installPath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, installPath)
	data, ok := f.icons[installPath]
	if !ok {
		return nil, fmt.Errorf("icon of %v: %w", installPath, fs.ErrNotExist)
	}
	return data, nil
}

func (f *fakeIcons) NativeIconPath(installPath string) string {
	return installPath + "/meta/iconTex.tga"
}

type reencode struct {
	src, dst string
}

type fakeImages struct {
	mu          sync.Mutex
	decoded     int
	reencodes   []reencode
	reencodeErr error
}

// "bad" fails to decode, anything else becomes a 1x1 texture
func (f *fakeImages) Decode(data []byte) (*imaging.Texture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if string(data) == "bad" {
		return nil, imaging.ErrUnsupportedFormat
	}
	f.decoded++
	return imaging.NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1))), nil
}

func (f *fakeImages) Reencode(src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reencodes = append(f.reencodes, reencode{src: src, dst: dst})
	return f.reencodeErr
}

type recordedEvents struct {
	mu      sync.Mutex
	added   []Title
	updated []Title
}

func (r *recordedEvents) TitleAdded(t Title) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, t)
}

func (r *recordedEvents) TitleUpdated(t Title) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, t)
}

func (r *recordedEvents) updatedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updated)
}

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func testTexture() *imaging.Texture {
	return imaging.NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
}
