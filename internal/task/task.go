// Package task runs the documentation pipeline as asynchronous tasks
// with a bounded generation stage and an evicting in-memory registry.
package task

import (
	"sync"
	"time"

	"github.com/repodocai/repodoc/internal/assemble"
	"github.com/repodocai/repodoc/internal/ingest"
)

// Status is the lifecycle stage of a task. Transitions only move
// forward; progress never decreases.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCloning    Status = "cloning"
	StatusAnalyzing  Status = "analyzing"
	StatusGenerating Status = "generating"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// stageProgress maps each stage to its entry milestone.
var stageProgress = map[Status]int{
	StatusPending:    0,
	StatusCloning:    10,
	StatusAnalyzing:  30,
	StatusGenerating: 50,
	StatusComplete:   100,
}

// Task is one pipeline run. All mutation goes through the owning
// goroutine; readers take snapshots.
type Task struct {
	mu sync.RWMutex

	id        string
	ref       *ingest.Ref
	cancel    func()
	status    Status
	progress  int
	message   string
	errMsg    string
	createdAt time.Time
	updatedAt time.Time
	bundle    *assemble.Bundle
}

// Snapshot is a point-in-time copy of task state.
type Snapshot struct {
	ID        string    `json:"taskId"`
	Repo      string    `json:"repo"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTask(id string, ref *ingest.Ref) *Task {
	now := time.Now()
	return &Task{
		id:        id,
		ref:       ref,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

// Snapshot returns a copy of the task's current state.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		ID:        t.id,
		Repo:      t.ref.String(),
		Status:    t.status,
		Progress:  t.progress,
		Message:   t.message,
		Error:     t.errMsg,
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}
}

// transition advances the task to a non-terminal stage. Terminal tasks
// and backward moves are ignored; progress is monotonic.
func (t *Task) transition(status Status, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = status
	t.message = message
	if p := stageProgress[status]; p > t.progress {
		t.progress = p
	}
	t.updatedAt = time.Now()
}

// setProgress raises progress within the current stage.
func (t *Task) setProgress(p int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	if p > t.progress {
		t.progress = p
	}
	t.updatedAt = time.Now()
}

// complete marks the task done with its bundle and final progress.
func (t *Task) complete(b *assemble.Bundle, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = StatusComplete
	t.progress = stageProgress[StatusComplete]
	t.message = message
	t.bundle = b
	t.updatedAt = time.Now()
}

// fail marks the task errored. Progress freezes at its current value.
func (t *Task) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = StatusError
	t.errMsg = err.Error()
	t.updatedAt = time.Now()
}

// result returns the bundle when the task is complete.
func (t *Task) result() (*assemble.Bundle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.status != StatusComplete {
		return nil, false
	}
	return t.bundle, true
}
