package job

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const jobColumns = `id, title, company_name, position, location, job_type, deadline, intro, responsibilities, candidate_profile, qualifications, whats_on_offer, application_email, apply_link, logo_url, created_at`

var orderClauses = map[Order]string{
	OrderByDeadlineAsc:   `ORDER BY deadline ASC, id ASC`,
	OrderByCreatedAtDesc: `ORDER BY created_at DESC, id DESC`,
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// Insert saves a new job advert and returns its id. CreatedAt is set here
// and never changes afterwards.
func (r *Repository) Insert(job *JobPost) (int, error) {
	if job.LogoURL == "" {
		job.LogoURL = DefaultLogoURL
	}
	createdAt := time.Now().UTC()
	var lastInsertID int
	res := r.db.QueryRow(
		`INSERT INTO job_advert (title, company_name, position, location, job_type, deadline, intro, responsibilities, candidate_profile, qualifications, whats_on_offer, application_email, apply_link, logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`,
		job.Title,
		job.CompanyName,
		job.Position,
		job.Location,
		job.JobType,
		job.Deadline,
		job.Intro,
		job.Responsibilities,
		job.CandidateProfile,
		job.Qualifications,
		job.WhatsOnOffer,
		job.ApplicationEmail,
		job.ApplyLink,
		job.LogoURL,
		createdAt,
	)
	if err := res.Scan(&lastInsertID); err != nil {
		return 0, errors.Wrap(err, "unable to insert job advert")
	}
	job.ID = lastInsertID
	job.CreatedAt = createdAt
	return lastInsertID, nil
}

// Update overwrites every mutable field of the job advert with the given id.
func (r *Repository) Update(jobID int, job *JobPost) error {
	res, err := r.db.Exec(
		`UPDATE job_advert SET title = $1, company_name = $2, position = $3, location = $4, job_type = $5, deadline = $6, intro = $7, responsibilities = $8, candidate_profile = $9, qualifications = $10, whats_on_offer = $11, application_email = $12, apply_link = $13, logo_url = $14 WHERE id = $15`,
		job.Title,
		job.CompanyName,
		job.Position,
		job.Location,
		job.JobType,
		job.Deadline,
		job.Intro,
		job.Responsibilities,
		job.CandidateProfile,
		job.Qualifications,
		job.WhatsOnOffer,
		job.ApplicationEmail,
		job.ApplyLink,
		job.LogoURL,
		jobID,
	)
	if err != nil {
		return errors.Wrapf(err, "unable to update job advert %d", jobID)
	}
	return expectOneRow(res, jobID)
}

func (r *Repository) Delete(jobID int) error {
	res, err := r.db.Exec(`DELETE FROM job_advert WHERE id = $1`, jobID)
	if err != nil {
		return errors.Wrapf(err, "unable to delete job advert %d", jobID)
	}
	return expectOneRow(res, jobID)
}

func (r *Repository) GetByID(jobID int) (JobPost, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM job_advert WHERE id = $1`, jobID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return JobPost{}, ErrNotFound
	}
	if err != nil {
		return JobPost{}, errors.Wrapf(err, "unable to get job advert %d", jobID)
	}
	return job, nil
}

func (r *Repository) ListAll(order Order) ([]JobPost, error) {
	orderBy, ok := orderClauses[order]
	if !ok {
		return nil, fmt.Errorf("unknown job advert order %d", order)
	}
	rows, err := r.db.Query(`SELECT ` + jobColumns + ` FROM job_advert ` + orderBy)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list job adverts")
	}
	return scanJobs(rows)
}

// Search returns job adverts whose position contains query, ignoring case,
// ordered by deadline. An empty query lists everything.
func (r *Repository) Search(query string) ([]JobPost, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.ListAll(OrderByDeadlineAsc)
	}
	rows, err := r.db.Query(
		`SELECT `+jobColumns+` FROM job_advert WHERE position ILIKE '%' || $1 || '%' `+orderClauses[OrderByDeadlineAsc],
		escapeLike(query),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to search job adverts for %q", query)
	}
	return scanJobs(rows)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (JobPost, error) {
	var job JobPost
	var logoURL sql.NullString
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.CompanyName,
		&job.Position,
		&job.Location,
		&job.JobType,
		&job.Deadline,
		&job.Intro,
		&job.Responsibilities,
		&job.CandidateProfile,
		&job.Qualifications,
		&job.WhatsOnOffer,
		&job.ApplicationEmail,
		&job.ApplyLink,
		&logoURL,
		&job.CreatedAt,
	)
	if err != nil {
		return JobPost{}, err
	}
	job.LogoURL = DefaultLogoURL
	if logoURL.Valid && logoURL.String != "" {
		job.LogoURL = logoURL.String
	}
	return job, nil
}

func scanJobs(rows *sql.Rows) ([]JobPost, error) {
	defer rows.Close()
	jobs := []JobPost{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return jobs, errors.Wrap(err, "unable to scan job advert")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, errors.Wrap(err, "unable to iterate job adverts")
	}
	return jobs, nil
}

func expectOneRow(res sql.Result, jobID int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "unable to count rows affected for job advert %d", jobID)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
