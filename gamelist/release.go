package gamelist

import (
	"sync"

	"github.com/giwty/title-menu/imaging"
)

// Textures dropped by the registry. The renderer drains the queue once it
// knows none of them is bound to a frame in flight.
type ReleaseQueue struct {
	mu       sync.Mutex
	textures []*imaging.Texture
}

func NewReleaseQueue() *ReleaseQueue {
	return &ReleaseQueue{}
}

func (q *ReleaseQueue) Push(tex *imaging.Texture) {
	if tex == nil {
		return
	}
	q.mu.Lock()
	q.textures = append(q.textures, tex)
	q.mu.Unlock()
}

func (q *ReleaseQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.textures)
}

// Hand every queued texture to release and empty the queue
func (q *ReleaseQueue) Drain(release func(*imaging.Texture)) int {
	q.mu.Lock()
	pending := q.textures
	q.textures = nil
	q.mu.Unlock()

	for _, tex := range pending {
		if release != nil {
			release(tex)
		}
	}
	return len(pending)
}
