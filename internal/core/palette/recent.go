// Package palette keeps the colors most recently picked for habits and
// notifies subscribers when the list changes.
package palette

import (
	"strings"
	"sync"
)

const DefaultLimit = 8

// Listener receives its own copy of the list and may modify it.
type Listener func(colors []string)

// RecentColors is a bounded, most-recent-first list of colors.
// It is safe for concurrent use.
type RecentColors struct {
	mu        sync.Mutex
	limit     int
	colors    []string
	listeners map[int]Listener
	nextID    int
}

func NewRecentColors(limit int) *RecentColors {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &RecentColors{
		limit:     limit,
		listeners: make(map[int]Listener),
	}
}

// Push moves color to the front, dropping case-insensitive duplicates and
// anything beyond the limit. Empty colors are ignored.
func (r *RecentColors) Push(color string) {
	color = strings.TrimSpace(color)
	if color == "" {
		return
	}

	r.mu.Lock()
	if len(r.colors) > 0 && strings.EqualFold(r.colors[0], color) {
		r.mu.Unlock()
		return
	}

	next := make([]string, 0, r.limit)
	next = append(next, color)
	for _, c := range r.colors {
		if len(next) == r.limit {
			break
		}
		if !strings.EqualFold(c, color) {
			next = append(next, c)
		}
	}
	r.colors = next

	snapshot := r.snapshotLocked()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		own := make([]string, len(snapshot))
		copy(own, snapshot)
		l(own)
	}
}

func (r *RecentColors) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (r *RecentColors) Subscribe(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

func (r *RecentColors) snapshotLocked() []string {
	out := make([]string, len(r.colors))
	copy(out, r.colors)
	return out
}
