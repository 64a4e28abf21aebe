package registry

import (
	"errors"
	"sync"

	"github.com/burstline/core/pkg/models"
)

var (
	ErrDuplicateJob = errors.New("job already registered")
	ErrJobNotFound  = errors.New("job not found")
)

// JobRegistry tracks live job progress. Iteration order is insertion order,
// which keeps the positional session rank stable between a listing and a
// stop that follows it.
type JobRegistry struct {
	mu    sync.Mutex
	jobs  map[models.JobKey]*models.Job
	order []models.JobKey
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs: make(map[models.JobKey]*models.Job),
	}
}

// Create registers a new job. The caller owns key uniqueness; a duplicate
// key is an error, never an overwrite.
func (r *JobRegistry) Create(key models.JobKey, url string, target int) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[key]; exists {
		return nil, ErrDuplicateJob
	}

	job := &models.Job{
		Key:      key,
		TargetID: key.TargetID,
		URL:      url,
		Target:   target,
	}
	r.jobs[key] = job
	r.order = append(r.order, key)
	return job, nil
}

// Get returns a copy of the job, so callers never observe a half-updated row.
func (r *JobRegistry) Get(key models.JobKey) (models.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[key]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

// Increment atomically adds one to the job's count and returns the new value.
func (r *JobRegistry) Increment(key models.JobKey) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[key]
	if !ok {
		return 0, false
	}
	job.Count++
	return job.Count, true
}

func (r *JobRegistry) Remove(key models.JobKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[key]; !ok {
		return
	}
	delete(r.jobs, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Snapshot returns the active jobs in insertion order. The session field is
// the 1-based position in this snapshot, recomputed on every call.
func (r *JobRegistry) Snapshot() []models.Process {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Process, 0, len(r.order))
	for i, key := range r.order {
		job := r.jobs[key]
		out = append(out, models.Process{
			Session: i + 1,
			URL:     job.URL,
			Count:   job.Count,
			ID:      job.TargetID,
			Target:  job.Target,
		})
	}
	return out
}

// KeyAt resolves a 1-based positional rank to a job key.
func (r *JobRegistry) KeyAt(position int) (models.JobKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if position < 1 || position > len(r.order) {
		return models.JobKey{}, false
	}
	return r.order[position-1], true
}

func (r *JobRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
