// Package jobtest provides an in-memory job advert repository with the same
// observable semantics as job.Repository, for use in tests.
package jobtest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jobadverts/board/internal/job"
)

type Repository struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]job.JobPost

	// Now stamps CreatedAt on insert. Each call to the default clock is one
	// second after the previous one so creation order is unambiguous.
	Now func() time.Time

	// Err, when set, is returned by every method.
	Err error
}

func NewRepository() *Repository {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Repository{
		nextID: 1,
		jobs:   map[int]job.JobPost{},
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
}

func (r *Repository) Insert(j *job.JobPost) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if j.LogoURL == "" {
		j.LogoURL = job.DefaultLogoURL
	}
	j.ID = r.nextID
	j.CreatedAt = r.Now()
	r.nextID++
	r.jobs[j.ID] = *j
	return j.ID, nil
}

func (r *Repository) Update(jobID int, j *job.JobPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	existing, ok := r.jobs[jobID]
	if !ok {
		return job.ErrNotFound
	}
	updated := *j
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	r.jobs[jobID] = updated
	return nil
}

func (r *Repository) Delete(jobID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.jobs[jobID]; !ok {
		return job.ErrNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

func (r *Repository) GetByID(jobID int) (job.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return job.JobPost{}, r.Err
	}
	j, ok := r.jobs[jobID]
	if !ok {
		return job.JobPost{}, job.ErrNotFound
	}
	return j, nil
}

func (r *Repository) ListAll(order job.Order) ([]job.JobPost, error) {
	return r.filter(order, func(job.JobPost) bool { return true })
}

func (r *Repository) Search(query string) ([]job.JobPost, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	return r.filter(job.OrderByDeadlineAsc, func(j job.JobPost) bool {
		return strings.Contains(strings.ToLower(j.Position), query)
	})
}

func (r *Repository) filter(order job.Order, keep func(job.JobPost) bool) ([]job.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	jobs := []job.JobPost{}
	for _, j := range r.jobs {
		if keep(j) {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(a, b int) bool {
		x, y := jobs[a], jobs[b]
		if order == job.OrderByCreatedAtDesc {
			if !x.CreatedAt.Equal(y.CreatedAt) {
				return x.CreatedAt.After(y.CreatedAt)
			}
			return x.ID > y.ID
		}
		if !x.Deadline.Equal(y.Deadline) {
			return x.Deadline.Before(y.Deadline)
		}
		return x.ID < y.ID
	})
	return jobs, nil
}
