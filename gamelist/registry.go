package gamelist

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/giwty/title-menu/imaging"
	"golang.org/x/text/cases"
)

type AddResult int

const (
	Inserted AddResult = iota
	AlreadyPresent
)

func (r AddResult) String() string {
	if r == AlreadyPresent {
		return "already present"
	}
	return "inserted"
}

// Copy of a title record as seen by readers
type Title struct {
	TitleId  uint64
	AppType  AppType
	Name     string
	GamePath string
	Image    *imaging.Texture
}

func (t Title) IdString() string {
	return TitleIdString(t.TitleId)
}

// 16 digit lowercase hex, the form used for names, cache lines and icon files
func TitleIdString(titleId uint64) string {
	return fmt.Sprintf("%016x", titleId)
}

var nameReplacer = strings.NewReplacer("\r", "_", "\n", "_")

func sanitizeName(name string) string {
	return nameReplacer.Replace(name)
}

func displayName(titleId uint64, name string) string {
	name = sanitizeName(name)
	if name == "" {
		return TitleIdString(titleId)
	}
	return name
}

type titleRecord struct {
	title   Title
	sortKey string
	seq     uint64
}

func (r *titleRecord) setName(name string) {
	r.title.Name = name
	r.sortKey = cases.Fold().String(name)
}

// Thread-safe list of installed titles, in display order. One mutex guards
// the slice and every record field; it is never held while calling out.
type Registry struct {
	mu       sync.Mutex
	records  []*titleRecord
	seq      uint64
	dirty    bool
	released *ReleaseQueue
}

func NewRegistry(released *ReleaseQueue) *Registry {
	if released == nil {
		released = NewReleaseQueue()
	}
	return &Registry{released: released}
}

func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Registry) Get(index int) (Title, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.records) {
		return Title{}, false
	}
	return r.records[index].title, true
}

func (r *Registry) Lookup(titleId uint64) (Title, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.find(titleId); rec != nil {
		return rec.title, true
	}
	return Title{}, false
}

// Linear scan, callers hold r.mu
func (r *Registry) find(titleId uint64) *titleRecord {
	for _, rec := range r.records {
		if rec.title.TitleId == titleId {
			return rec
		}
	}
	return nil
}

// Insert a title. An empty name becomes the hex title id. When the id is
// already present nothing changes and image stays with the caller.
func (r *Registry) Add(titleId uint64, appType AppType, name string, gamePath string, image *imaging.Texture) AddResult {
	name = displayName(titleId, name)
	rec := &titleRecord{
		title: Title{
			TitleId:  titleId,
			AppType:  appType,
			GamePath: gamePath,
			Image:    image,
		},
	}
	rec.setName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(titleId) != nil {
		return AlreadyPresent
	}
	r.seq++
	rec.seq = r.seq
	r.records = append(r.records, rec)
	return Inserted
}

// Rename a title, an empty name becomes the hex title id as in Add. found is
// false for unknown ids, changed is false when the sanitized name equals the
// current one.
func (r *Registry) SetName(titleId uint64, name string) (changed bool, found bool) {
	name = displayName(titleId, name)

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.find(titleId)
	if rec == nil {
		return false, false
	}
	if rec.title.Name == name {
		return false, true
	}
	rec.setName(name)
	return true, true
}

// Attach image to a title. A replaced image goes to the release queue.
// Returns false, keeping image with the caller, when the id is unknown.
func (r *Registry) SetImage(titleId uint64, image *imaging.Texture) bool {
	r.mu.Lock()
	rec := r.find(titleId)
	if rec == nil {
		r.mu.Unlock()
		return false
	}
	previous := rec.title.Image
	rec.title.Image = image
	r.mu.Unlock()

	if previous != nil && previous != image {
		r.released.Push(previous)
	}
	return true
}

// Drop every record. Images are handed to the release queue, never freed
// here, the renderer may still have them bound.
func (r *Registry) Clear() {
	r.mu.Lock()
	records := r.records
	r.records = nil
	r.mu.Unlock()

	for _, rec := range records {
		if rec.title.Image != nil {
			r.released.Push(rec.title.Image)
			rec.title.Image = nil
		}
	}
}

// Case-insensitive name order, equal names keep insertion order
func (r *Registry) SortByName() {
	r.mu.Lock()
	defer r.mu.Unlock()

	sort.SliceStable(r.records, func(i, j int) bool {
		a, b := r.records[i], r.records[j]
		if a.sortKey != b.sortKey {
			return a.sortKey < b.sortKey
		}
		return a.seq < b.seq
	})
}

func (r *Registry) Snapshot() []Title {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Registry) snapshot() []Title {
	titles := make([]Title, len(r.records))
	for i, rec := range r.records {
		titles[i] = rec.title
	}
	return titles
}

func (r *Registry) MarkDirty() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

func (r *Registry) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty
}

// Snapshot for persisting; clears the dirty flag in the same critical
// section. Returns false when nothing changed since the last save.
func (r *Registry) takeDirtySnapshot() ([]Title, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return nil, false
	}
	r.dirty = false
	return r.snapshot(), true
}
