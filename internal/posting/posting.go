package posting

import (
	"fmt"
	"mime/multipart"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jobadverts/board/internal/job"
	"github.com/jobadverts/board/internal/logo"
	"github.com/jobadverts/board/internal/session"
	"github.com/pkg/errors"
)

var (
	ErrAuthDenied = session.ErrAuthDenied
	ErrNotFound   = job.ErrNotFound
)

// ValidationError lists every rejected form field, keyed by form field
// name. Nothing was written when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid job advert: " + strings.Join(names, ", ")
}

// Messages returns the field messages in a stable order for display.
func (e *ValidationError) Messages() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return msgs
}

// StorageError wraps a database or file system failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("unable to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Cause() error  { return e.Err }
func (e *StorageError) Unwrap() error { return e.Err }

type jobStore interface {
	Insert(j *job.JobPost) (int, error)
	Update(jobID int, j *job.JobPost) error
	Delete(jobID int) error
	GetByID(jobID int) (job.JobPost, error)
}

type logoStore interface {
	Store(fh *multipart.FileHeader) (string, error)
}

// Workflow is the only writer of job adverts. Every error it returns is
// ErrAuthDenied, ErrNotFound, a *ValidationError or a *StorageError.
type Workflow struct {
	jobs     jobStore
	logos    logoStore
	validate *validator.Validate
}

func NewWorkflow(jobs jobStore, logos logoStore) *Workflow {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return &Workflow{jobs: jobs, logos: logos, validate: v}
}

// Create validates rq, stores the optional logo and inserts a new advert.
func (w *Workflow) Create(sess session.AdminSession, rq job.JobRq, logoFile *multipart.FileHeader) (int, error) {
	if err := session.RequireAdmin(sess); err != nil {
		return 0, err
	}
	post := job.JobPost{}
	if err := w.validateInto(&rq, &post); err != nil {
		return 0, err
	}
	logoURL, err := w.storeLogo(logoFile)
	if err != nil {
		return 0, err
	}
	post.LogoURL = logoURL
	id, err := w.jobs.Insert(&post)
	if err != nil {
		return 0, &StorageError{Op: "save job advert", Err: err}
	}
	return id, nil
}

// Edit validates rq and overwrites the advert's fields. The logo is only
// replaced when a new file was uploaded.
func (w *Workflow) Edit(sess session.AdminSession, jobID int, rq job.JobRq, logoFile *multipart.FileHeader) error {
	if err := session.RequireAdmin(sess); err != nil {
		return err
	}
	post, err := w.jobs.GetByID(jobID)
	if err != nil {
		return storageOrNotFound("load job advert", err)
	}
	if err := w.validateInto(&rq, &post); err != nil {
		return err
	}
	if logoFile != nil && logoFile.Filename != "" {
		logoURL, err := w.storeLogo(logoFile)
		if err != nil {
			return err
		}
		post.LogoURL = logoURL
	}
	if err := w.jobs.Update(jobID, &post); err != nil {
		return storageOrNotFound("update job advert", err)
	}
	return nil
}

// Delete permanently removes the advert. Its logo file is kept since other
// adverts may reference the same name.
func (w *Workflow) Delete(sess session.AdminSession, jobID int) error {
	if err := session.RequireAdmin(sess); err != nil {
		return err
	}
	if err := w.jobs.Delete(jobID); err != nil {
		return storageOrNotFound("delete job advert", err)
	}
	return nil
}

// Get returns the advert for the edit form.
func (w *Workflow) Get(sess session.AdminSession, jobID int) (job.JobPost, error) {
	if err := session.RequireAdmin(sess); err != nil {
		return job.JobPost{}, err
	}
	post, err := w.jobs.GetByID(jobID)
	if err != nil {
		return job.JobPost{}, storageOrNotFound("load job advert", err)
	}
	return post, nil
}

func (w *Workflow) validateInto(rq *job.JobRq, post *job.JobPost) error {
	rq.Trim()
	if err := w.validate.Struct(rq); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &ValidationError{Fields: map[string]string{"form": err.Error()}}
		}
		verr := &ValidationError{Fields: map[string]string{}}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = fieldMessage(fe)
		}
		return verr
	}
	if err := rq.Apply(post); err != nil {
		return &ValidationError{Fields: map[string]string{"deadline": "deadline must be a valid date (YYYY-MM-DD)"}}
	}
	return nil
}

func (w *Workflow) storeLogo(fh *multipart.FileHeader) (string, error) {
	ref, err := w.logos.Store(fh)
	if err != nil {
		var invalid *logo.InvalidError
		if errors.As(err, &invalid) {
			return "", &ValidationError{Fields: map[string]string{"logo": invalid.Reason}}
		}
		return "", &StorageError{Op: "store logo", Err: err}
	}
	return ref, nil
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "datetime":
		return label + " must be a valid date (YYYY-MM-DD)"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	}
	return label + " is invalid"
}

func storageOrNotFound(op string, err error) error {
	if errors.Cause(err) == job.ErrNotFound {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
