package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clubweb/internal/api"
	"clubweb/internal/boards"
	"clubweb/internal/config"
	"clubweb/internal/db"
	"clubweb/internal/server"
	"clubweb/internal/session"
)

func newServeCmd(logger *log.Logger, envFile *string) *cobra.Command {
	var (
		port       string
		backendURL string
		dbPath     string
		boardsPath string
		templates  string
		secure     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the website",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			override(cmd, "port", &cfg.Port, port)
			override(cmd, "backend", &cfg.BackendURL, backendURL)
			override(cmd, "db", &cfg.DBPath, dbPath)
			override(cmd, "boards", &cfg.BoardsPath, boardsPath)
			override(cmd, "templates", &cfg.TemplateDir, templates)
			if cmd.Flags().Changed("cookie-secure") {
				cfg.CookieSecure = secure
			}
			return serve(cmd.Context(), logger, cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (PORT)")
	cmd.Flags().StringVar(&backendURL, "backend", "", "backend base URL (BACKEND_URL)")
	cmd.Flags().StringVar(&dbPath, "db", "", "session database path (DB_PATH)")
	cmd.Flags().StringVar(&boardsPath, "boards", "", "board catalog YAML (BOARDS_PATH)")
	cmd.Flags().StringVar(&templates, "templates", "", "template directory overriding the embedded one (TEMPLATE_DIR)")
	cmd.Flags().BoolVar(&secure, "cookie-secure", false, "mark the session cookie Secure (COOKIE_SECURE)")
	return cmd
}

// override replaces *dst with v when the named flag was given.
func override(cmd *cobra.Command, name string, dst *string, v string) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

func serve(ctx context.Context, logger *log.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GeneratedSecret {
		logger.Printf("SESSION_SECRET not set; sessions will not survive a restart")
	}
	catalog, err := boards.Load(cfg.BoardsPath)
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	sessions := session.NewStore(database, cfg.SessionSecret, cfg.SessionTTL)
	opts := server.Options{
		API:          api.New(cfg.BackendURL, cfg.BackendTimeout),
		Sessions:     sessions,
		Boards:       catalog,
		Logger:       logger,
		PageLimit:    cfg.PageLimit,
		CookieSecure: cfg.CookieSecure,
	}
	if cfg.TemplateDir != "" {
		opts.Templates = os.DirFS(cfg.TemplateDir)
	}
	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	go purgeSessions(ctx, logger, sessions)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (backend %s, %d boards)", cfg.Addr(), cfg.BackendURL, len(catalog.Boards))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func purgeSessions(ctx context.Context, logger *log.Logger, sessions *session.Store) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Printf("purge sessions: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("purged %d expired sessions", n)
			}
		}
	}
}
