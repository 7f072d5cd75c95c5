package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/jobadverts/board/internal/authoriser"
	"github.com/jobadverts/board/internal/job"
	"github.com/jobadverts/board/internal/listing"
	"github.com/jobadverts/board/internal/server"
	"github.com/jobadverts/board/internal/session"
	"github.com/pkg/errors"
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("form")
	d.IgnoreUnknownKeys(true)
	return d
}

func IndexPageHandler(svr server.Server, listings *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		jobs, err := listings.PublicListing(query)
		if err != nil {
			svr.Log(err, "unable to retrieve public job listing")
			svr.TEXT(w, http.StatusInternalServerError, "unable to retrieve jobs")
			return
		}
		svr.Render(w, r, http.StatusOK, "index.html", map[string]interface{}{
			"Jobs":        jobs,
			"SearchQuery": query,
		})
	}
}

func JobDetailPageHandler(svr server.Server, listings *listing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDFromRequest(r)
		if !ok {
			NotFoundHandler(svr)(w, r)
			return
		}
		jobPost, err := listings.JobByID(jobID)
		if errors.Cause(err) == job.ErrNotFound {
			NotFoundHandler(svr)(w, r)
			return
		}
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to retrieve job %d", jobID))
			svr.TEXT(w, http.StatusInternalServerError, "unable to retrieve job")
			return
		}
		source := r.URL.Query().Get("source")
		if source == "" {
			source = "public"
		}
		svr.Render(w, r, http.StatusOK, "job_detail.html", map[string]interface{}{
			"Job":    jobPost,
			"Source": source,
		})
	}
}

func NotFoundHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.Render(w, r, http.StatusNotFound, "404.html", nil)
	}
}

func GetLoginPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.Render(w, r, http.StatusOK, "admin_login.html", nil)
	}
}

func PostLoginPageHandler(svr server.Server, auth authoriser.Authoriser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			svr.TEXT(w, http.StatusBadRequest, "invalid form")
			return
		}
		authRq := authoriser.AuthRq{}
		if err := formDecoder.Decode(&authRq, r.PostForm); err != nil {
			svr.TEXT(w, http.StatusBadRequest, "invalid form")
			return
		}
		if !auth.ValidAuthRequest(authRq) {
			svr.Logger().Warn().Str("x-forwarded-for", r.Header.Get("x-forwarded-for")).Msg("failed admin login")
			svr.Flash(w, r, session.FlashDanger, "Invalid credentials")
			svr.Render(w, r, http.StatusOK, "admin_login.html", map[string]interface{}{
				"Username": authRq.Username,
			})
			return
		}
		if err := svr.Sessions.Login(w, r); err != nil {
			svr.Log(err, "unable to save admin session")
			svr.TEXT(w, http.StatusInternalServerError, "unable to log in")
			return
		}
		svr.Redirect(w, r, http.StatusSeeOther, "/admin/dashboard")
	}
}

func LogoutPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svr.Sessions.Logout(w, r); err != nil {
			svr.Log(err, "unable to clear admin session")
		}
		svr.Redirect(w, r, http.StatusFound, "/")
	}
}

func DisableDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jobIDFromRequest(r *http.Request) (int, bool) {
	jobID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || jobID < 1 {
		return 0, false
	}
	return jobID, true
}
