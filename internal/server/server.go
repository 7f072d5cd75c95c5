package server

import (
	"fmt"
	"net/http"
	"time"

	stdtemplate "html/template"

	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/jobadverts/board/internal/config"
	"github.com/jobadverts/board/internal/middleware"
	"github.com/jobadverts/board/internal/session"
	"github.com/jobadverts/board/internal/template"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg      config.Config
	router   *mux.Router
	tmpl     *template.Template
	Sessions session.Manager
	logger   zerolog.Logger
}

func NewServer(
	cfg config.Config,
	r *mux.Router,
	t *template.Template,
	sessions session.Manager,
	logger zerolog.Logger,
) Server {
	if cfg.SentryDSN != "" {
		raven.SetDSN(cfg.SentryDSN)
	}
	return Server{
		cfg:      cfg,
		router:   r,
		tmpl:     t,
		Sessions: sessions,
		logger:   logger,
	}
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) RegisterPathPrefix(path string, handler http.Handler, methods []string) {
	s.router.PathPrefix(path).Handler(handler).Methods(methods...)
}

func (s Server) SetNotFoundHandler(handler http.HandlerFunc) {
	s.router.NotFoundHandler = handler
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) MarkdownToHTML(str string) stdtemplate.HTML {
	return s.tmpl.MarkdownToHTML(str)
}

func (s Server) Logger() zerolog.Logger {
	return s.logger
}

// Render executes htmlView with data plus the site wide values every view
// expects. Pending flash messages are consumed here, so Render must run
// before anything else is written to w.
func (s Server) Render(w http.ResponseWriter, r *http.Request, status int, htmlView string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["SiteName"] = s.cfg.SiteName
	data["SiteHost"] = s.cfg.SiteHost
	data["IsAdmin"] = s.Sessions.Get(r).Authenticated
	data["Flashes"] = s.Sessions.Flashes(w, r)
	if err := s.tmpl.Render(w, status, htmlView, data); err != nil {
		s.Log(err, fmt.Sprintf("unable to render %s", htmlView))
	}
}

// Flash queues a one shot message for the next rendered page.
func (s Server) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if err := s.Sessions.AddFlash(w, r, kind, message); err != nil {
		s.Log(err, "unable to save flash message")
	}
}

func (s Server) XML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	w.Write(data)
}

func (s Server) TEXT(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func (s Server) Log(err error, msg string) {
	if s.cfg.SentryDSN != "" {
		raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	}
	s.logger.Error().Err(err).Msg(msg)
}

func (s Server) Redirect(w http.ResponseWriter, r *http.Request, status int, dst string) {
	http.Redirect(w, r, dst, status)
}

// Handler returns the router wrapped in the middleware chain.
func (s Server) Handler() http.Handler {
	return middleware.HTTPSMiddleware(
		middleware.GzipMiddleware(
			middleware.LoggingMiddleware(s.logger, middleware.HeadersMiddleware(s.router, s.cfg.Env)),
		),
		s.cfg.Env,
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.logger.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}
	return srv.ListenAndServe()
}
