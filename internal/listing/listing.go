package listing

import (
	"strings"

	"github.com/jobadverts/board/internal/job"
)

type jobLister interface {
	ListAll(order job.Order) ([]job.JobPost, error)
	Search(query string) ([]job.JobPost, error)
	GetByID(jobID int) (job.JobPost, error)
}

// Service builds the job advert lists shown on the public index and on the
// admin dashboard.
type Service struct {
	jobs jobLister
}

func NewService(jobs jobLister) *Service {
	return &Service{jobs: jobs}
}

// PublicListing returns adverts ordered by deadline, filtered by position
// when query is not blank.
func (s *Service) PublicListing(query string) ([]job.JobPost, error) {
	if strings.TrimSpace(query) == "" {
		return s.jobs.ListAll(job.OrderByDeadlineAsc)
	}
	return s.jobs.Search(query)
}

// AdminListing returns every advert, newest first.
func (s *Service) AdminListing() ([]job.JobPost, error) {
	return s.jobs.ListAll(job.OrderByCreatedAtDesc)
}

// JobByID returns a single advert for the public detail page.
func (s *Service) JobByID(jobID int) (job.JobPost, error) {
	return s.jobs.GetByID(jobID)
}
