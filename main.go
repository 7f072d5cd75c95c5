package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/jobadverts/board/internal/authoriser"
	"github.com/jobadverts/board/internal/config"
	"github.com/jobadverts/board/internal/database"
	"github.com/jobadverts/board/internal/handler"
	"github.com/jobadverts/board/internal/job"
	"github.com/jobadverts/board/internal/listing"
	"github.com/jobadverts/board/internal/logo"
	"github.com/jobadverts/board/internal/posting"
	"github.com/jobadverts/board/internal/server"
	"github.com/jobadverts/board/internal/session"
	"github.com/jobadverts/board/internal/template"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load config")
	}
	if cfg.Env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	conn, err := database.GetDbConn(
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer database.CloseDbConn(conn)
	if err := database.Migrate(conn); err != nil {
		logger.Fatal().Err(err).Msg("unable to migrate database")
	}

	logos := logo.NewStore(cfg.UploadDir, cfg.MaxLogoSize)
	if err := logos.Init(); err != nil {
		logger.Fatal().Err(err).Msg("unable to prepare upload dir")
	}
	tmpl, err := template.NewTemplate(os.DirFS(cfg.TemplatesDir))
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to parse templates")
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.Env != "dev"
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	jobRepo := job.NewRepository(conn)
	svr := server.NewServer(
		cfg,
		mux.NewRouter(),
		tmpl,
		session.NewManager(sessionStore, cfg.JwtSigningKey, cfg.SiteURL()),
		logger,
	)
	handler.RegisterRoutes(
		svr,
		authoriser.NewAuthoriser(cfg),
		listing.NewService(jobRepo),
		posting.NewWorkflow(jobRepo, logos),
		cfg.UploadDir,
	)

	if err := svr.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
