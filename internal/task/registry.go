package task

import (
	"sort"
	"sync"
	"time"
)

const minSweepInterval = time.Second

// Registry is the in-memory task table. Completed tasks age out after
// the TTL; when the table exceeds its capacity the oldest tasks are
// evicted regardless of age.
type Registry struct {
	mu         sync.RWMutex
	tasks      map[string]*Task
	ttl        time.Duration
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRegistry creates a registry and starts its eviction janitor.
func NewRegistry(ttl time.Duration, maxEntries int) *Registry {
	r := &Registry{
		tasks:      make(map[string]*Task),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Close stops the eviction janitor.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) janitor() {
	interval := r.ttl / 4
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

// Add inserts a task, evicting over capacity.
func (r *Registry) Add(t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.id] = t
	r.evictOverCapacityLocked()
}

// Get returns the task for an id.
func (r *Registry) Get(id string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Len returns the current number of tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// sweep drops terminal tasks whose last update is older than the TTL.
// Running tasks are never aged out.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		snap := t.Snapshot()
		if snap.Status.Terminal() && now.Sub(snap.UpdatedAt) > r.ttl {
			delete(r.tasks, id)
		}
	}
}

// evictOverCapacityLocked removes the oldest tasks by creation time
// until the table fits, preferring terminal tasks of the same age class.
func (r *Registry) evictOverCapacityLocked() {
	if len(r.tasks) <= r.maxEntries {
		return
	}

	type entry struct {
		id        string
		terminal  bool
		createdAt time.Time
	}
	entries := make([]entry, 0, len(r.tasks))
	for id, t := range r.tasks {
		snap := t.Snapshot()
		entries = append(entries, entry{id: id, terminal: snap.Status.Terminal(), createdAt: snap.CreatedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].terminal != entries[j].terminal {
			return entries[i].terminal
		}
		return entries[i].createdAt.Before(entries[j].createdAt)
	})

	for _, e := range entries {
		if len(r.tasks) <= r.maxEntries {
			return
		}
		delete(r.tasks, e.id)
	}
}
