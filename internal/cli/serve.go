package cli

import (
	"context"
	"fmt"
	"time"

	"applytrack/internal/drafts"
	"applytrack/internal/observability"
	"applytrack/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local session server",
	Long: `Start a local HTTP server that keeps one session (current job description,
resume, cover letter, ATS score and applications) in memory and exposes the
session flows as a JSON API.

Available endpoints:
- GET  /health, /stats: server and backend health
- GET  /state, /dashboard: session state and application statistics
- POST /jobs/analyze: analyze a posting given as text or URL
- POST /resumes, /cover-letters: upload a document (multipart field "file")
- POST /analysis: score, optimize and create the application
- GET/POST /applications, GET /applications/{id}
- PUT /applications/{id}/status, POST /applications/{id}/notes
- GET/PUT /drafts/cover-letter: the saved cover letter draft`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort string
	serveHost string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	// Flags override the loaded configuration
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	metrics := om.GetMetrics()
	api := newAPIClient(cfg, logger, metrics)
	sess := newSession(ctx, api, metrics)

	var watcher *drafts.Watcher
	if cfg.Drafts.Watch {
		watcher = drafts.NewWatcher(sess.Drafts(), cfg.Drafts.DebounceDelay, func() {
			logger.Info("Cover letter draft changed on disk, session updated", "path", sess.Drafts().Path())
		}, logger)
	}

	srv := server.NewServer(cfg, server.ServerConfig{
		Version:       Version,
		Session:       sess,
		Backend:       api,
		DraftWatcher:  watcher,
		Observability: om,
		Out:           cmd.OutOrStdout(),
	}, logger)
	return srv.Start(ctx)
}
