// Package pipeline runs TOC recognition asynchronously: extract the printed
// TOC pages' text, ask the model to structure it, and hold the resulting
// outline for a session to adopt.
package pipeline

import (
	"sync"
	"time"

	"github.com/pagemark/pagemark/internal/outline"
)

// JobStatus represents the state of a recognition job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusBuilding   JobStatus = "building"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one document's TOC recognition.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	DocPath string `json:"-"`

	// Inclusive 1-based page range holding the printed TOC.
	TOCStart int `json:"toc_start"`
	TOCEnd   int `json:"toc_end"`

	Status     JobStatus `json:"status"`
	EntryCount int       `json:"entry_count"`
	Errors     []string  `json:"errors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: the recognized outline, set on completion.
	result []outline.External
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, err)
	j.UpdatedAt = time.Now()
}

// SetResult stores the recognized outline and entry count.
func (j *Job) SetResult(ext []outline.External, entries int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = ext
	j.EntryCount = entries
	j.UpdatedAt = time.Now()
}

// Result returns the recognized outline, or nil while incomplete.
func (j *Job) Result() []outline.External {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	TOCStart   int       `json:"toc_start"`
	TOCEnd     int       `json:"toc_end"`
	EntryCount int       `json:"entry_count"`
	Errors     []string  `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:         j.ID,
		Status:     j.Status,
		TOCStart:   j.TOCStart,
		TOCEnd:     j.TOCEnd,
		EntryCount: j.EntryCount,
		Errors:     errs,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
