package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/jobadverts/board/internal/job"
	"github.com/jobadverts/board/internal/listing"
	"github.com/jobadverts/board/internal/middleware"
	"github.com/jobadverts/board/internal/posting"
	"github.com/jobadverts/board/internal/server"
	"github.com/jobadverts/board/internal/session"
	"github.com/pkg/errors"
)

const (
	// form fields other than the logo are small, anything above is kept on disk
	multipartMemory = 1 << 20
	formOverhead    = 1 << 20

	storageFailureMessage = "Something went wrong while saving the job advert, please try again."
	formUnreadableMessage = "The form could not be read, please try again."
)

func AdminDashboardPageHandler(svr server.Server, listings *listing.Service) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.Sessions,
		func(w http.ResponseWriter, r *http.Request) {
			jobs, err := listings.AdminListing()
			if err != nil {
				svr.Log(err, "unable to retrieve admin job listing")
				svr.TEXT(w, http.StatusInternalServerError, "unable to retrieve jobs")
				return
			}
			svr.Render(w, r, http.StatusOK, "admin_dashboard.html", map[string]interface{}{
				"Jobs": jobs,
			})
		},
	)
}

func AddJobPageHandler(svr server.Server) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.Sessions,
		func(w http.ResponseWriter, r *http.Request) {
			renderJobForm(svr, w, r, http.StatusOK, jobForm{})
		},
	)
}

func SubmitJobPageHandler(svr server.Server, workflow *posting.Workflow) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.Sessions,
		func(w http.ResponseWriter, r *http.Request) {
			rq, logoFile, problem := parseJobForm(svr, w, r)
			if problem != "" {
				renderJobForm(svr, w, r, http.StatusBadRequest, jobForm{Rq: rq, Errors: []string{problem}})
				return
			}
			jobID, err := workflow.Create(svr.Sessions.Get(r), rq, logoFile)
			if err != nil {
				handleWorkflowError(svr, w, r, err, jobForm{Rq: rq})
				return
			}
			svr.Logger().Info().Int("job_id", jobID).Msg("job advert created")
			svr.Flash(w, r, session.FlashSuccess, "Job advert added successfully!")
			svr.Redirect(w, r, http.StatusSeeOther, "/admin/dashboard")
		},
	)
}

func EditJobPageHandler(svr server.Server, workflow *posting.Workflow) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.Sessions,
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				NotFoundHandler(svr)(w, r)
				return
			}
			jobPost, err := workflow.Get(svr.Sessions.Get(r), jobID)
			if err != nil {
				handleWorkflowError(svr, w, r, err, jobForm{})
				return
			}
			renderJobForm(svr, w, r, http.StatusOK, jobForm{
				Edit:    true,
				ID:      jobPost.ID,
				LogoURL: jobPost.LogoURL,
				Rq:      job.JobRqFromPost(jobPost),
			})
		},
	)
}

func UpdateJobPageHandler(svr server.Server, workflow *posting.Workflow) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.Sessions,
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				NotFoundHandler(svr)(w, r)
				return
			}
			form := jobForm{Edit: true, ID: jobID}
			rq, logoFile, problem := parseJobForm(svr, w, r)
			form.Rq = rq
			if problem != "" {
				form.Errors = []string{problem}
				form.LogoURL = storedLogoURL(svr, workflow, r, jobID)
				renderJobForm(svr, w, r, http.StatusBadRequest, form)
				return
			}
			if err := workflow.Edit(svr.Sessions.Get(r), jobID, rq, logoFile); err != nil {
				form.LogoURL = storedLogoURL(svr, workflow, r, jobID)
				handleWorkflowError(svr, w, r, err, form)
				return
			}
			svr.Logger().Info().Int("job_id", jobID).Msg("job advert updated")
			svr.Flash(w, r, session.FlashSuccess, "Job updated successfully!")
			svr.Redirect(w, r, http.StatusSeeOther, "/admin/dashboard")
		},
	)
}

func DeleteJobPageHandler(svr server.Server, workflow *posting.Workflow) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.Sessions,
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				NotFoundHandler(svr)(w, r)
				return
			}
			if err := workflow.Delete(svr.Sessions.Get(r), jobID); err != nil {
				handleWorkflowError(svr, w, r, err, jobForm{})
				return
			}
			svr.Logger().Info().Int("job_id", jobID).Msg("job advert deleted")
			svr.Flash(w, r, session.FlashSuccess, "Job deleted.")
			svr.Redirect(w, r, http.StatusFound, "/admin/dashboard")
		},
	)
}

// storedLogoURL returns the logo currently saved for the advert so a
// re-rendered edit form keeps its preview. Empty when it cannot be loaded.
func storedLogoURL(svr server.Server, workflow *posting.Workflow, r *http.Request, jobID int) string {
	jobPost, err := workflow.Get(svr.Sessions.Get(r), jobID)
	if err != nil {
		return ""
	}
	return jobPost.LogoURL
}

type jobForm struct {
	Edit    bool
	ID      int
	LogoURL string
	Rq      job.JobRq
	Errors  []string
}

func renderJobForm(svr server.Server, w http.ResponseWriter, r *http.Request, status int, form jobForm) {
	svr.Render(w, r, status, "add_job.html", map[string]interface{}{
		"Form": form,
	})
}

// handleWorkflowError turns a posting error into the matching response.
// Validation and storage failures re-render the form with what was typed.
func handleWorkflowError(svr server.Server, w http.ResponseWriter, r *http.Request, err error, form jobForm) {
	var verr *posting.ValidationError
	var serr *posting.StorageError
	switch {
	case errors.Is(err, posting.ErrAuthDenied):
		svr.Redirect(w, r, http.StatusFound, middleware.LoginPath)
	case errors.Is(err, posting.ErrNotFound):
		NotFoundHandler(svr)(w, r)
	case errors.As(err, &verr):
		form.Errors = verr.Messages()
		renderJobForm(svr, w, r, http.StatusUnprocessableEntity, form)
	case errors.As(err, &serr):
		svr.Log(err, fmt.Sprintf("job advert %s failed", serr.Op))
		form.Errors = []string{storageFailureMessage}
		renderJobForm(svr, w, r, http.StatusInternalServerError, form)
	default:
		svr.Log(err, "unexpected job advert error")
		svr.TEXT(w, http.StatusInternalServerError, "unexpected error")
	}
}

// parseJobForm reads the add/edit form and returns a message for the admin
// when the body itself is unusable. Plain urlencoded bodies are accepted
// too, they simply carry no logo.
func parseJobForm(svr server.Server, w http.ResponseWriter, r *http.Request) (job.JobRq, *multipart.FileHeader, string) {
	rq := job.JobRq{}
	r.Body = http.MaxBytesReader(w, r.Body, svr.GetConfig().MaxLogoSize+formOverhead)
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return rq, nil, "The uploaded logo is too large."
		}
		return rq, nil, formUnreadableMessage
	}
	if err := formDecoder.Decode(&rq, r.PostForm); err != nil {
		return rq, nil, formUnreadableMessage
	}
	var logoFile *multipart.FileHeader
	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["logo"]; len(fhs) > 0 {
			logoFile = fhs[0]
		}
	}
	return rq, logoFile, ""
}
