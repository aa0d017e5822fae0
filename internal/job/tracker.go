// Package job tracks the lifecycle of analysis runs for callers that poll
// for status, mirroring the contract a job-queueing frontend expects:
// status, progress percentage, and artifact paths per submitted file.
// Records live in memory only; persistence belongs to the caller.
package job

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of one analysis run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Record is the status snapshot of one run.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
	Artifacts []string  `json:"artifacts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker owns run records. Safe for concurrent use.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Record
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]*Record)}
}

// Create registers a new pending run and returns its snapshot. The ID also
// namespaces the run's artifact paths.
func (t *Tracker) Create(name string) Record {
	now := time.Now().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.mu.Lock()
	t.jobs[rec.ID] = rec
	t.mu.Unlock()

	return *rec
}

// Start moves a run to processing.
func (t *Tracker) Start(id string) error {
	return t.update(id, func(rec *Record) {
		rec.Status = StatusProcessing
		rec.Progress = 0
	})
}

// SetProgress records stage and percent for a processing run.
func (t *Tracker) SetProgress(id, stage string, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return t.update(id, func(rec *Record) {
		rec.Stage = stage
		rec.Progress = percent
	})
}

// Complete marks a run finished and records its artifact paths.
func (t *Tracker) Complete(id string, artifacts []string) error {
	return t.update(id, func(rec *Record) {
		rec.Status = StatusCompleted
		rec.Progress = 100
		rec.Stage = ""
		rec.Artifacts = append([]string(nil), artifacts...)
	})
}

// Fail marks a run failed with a human-readable message.
func (t *Tracker) Fail(id string, err error) error {
	return t.update(id, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Stage = ""
		if err != nil {
			rec.Error = err.Error()
		}
	})
}

// Get returns a snapshot of one run.
func (t *Tracker) Get(id string) (Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.jobs[id]
	if !ok {
		return Record{}, fmt.Errorf("unknown job %s", id)
	}
	return *rec, nil
}

// List returns snapshots of all runs, newest first.
func (t *Tracker) List() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := make([]Record, 0, len(t.jobs))
	for _, rec := range t.jobs {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

func (t *Tracker) update(id string, apply func(*Record)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.jobs[id]
	if !ok {
		return fmt.Errorf("unknown job %s", id)
	}
	apply(rec)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}
