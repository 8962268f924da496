package server

import (
	"io"
	"os"
	"time"

	"applytrack/internal/config"
	"applytrack/internal/drafts"
	"applytrack/internal/errors"
	"applytrack/internal/observability"
	"applytrack/internal/session"
)

// AnalyzeJobRequest is the body of POST /jobs/analyze. Exactly one of Text and URL is set.
type AnalyzeJobRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// AnalysisRequest is the optional body of POST /analysis. Ids that are set
// are fetched and made current before the analysis runs.
type AnalysisRequest struct {
	JobDescriptionID string `json:"jobDescriptionId,omitempty"`
	ResumeID         string `json:"resumeId,omitempty"`
}

// CreateApplicationRequest is the body of POST /applications
type CreateApplicationRequest struct {
	JobDescriptionID string `json:"jobDescriptionId"`
	ResumeID         string `json:"resumeId"`
}

// StatusRequest is the body of PUT /applications/{id}/status
type StatusRequest struct {
	Status string `json:"status"`
}

// NoteRequest is the body of POST /applications/{id}/notes
type NoteRequest struct {
	Note string `json:"note"`
}

// DraftRequest is the body of PUT /drafts/cover-letter
type DraftRequest struct {
	Content string `json:"content"`
}

// DraftResponse is returned by the cover letter draft endpoints
type DraftResponse struct {
	Content string `json:"content"`
	Saved   bool   `json:"saved"`
}

// CoverLetterResponse reports an uploaded cover letter and whether it only exists locally
type CoverLetterResponse struct {
	CoverLetter any  `json:"coverLetter"`
	Local       bool `json:"local"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Backend exposes the transport's health to the server
type Backend interface {
	BaseURL() string
	IsHealthy() bool
	BreakerStats() map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	Session      *session.Session
	Backend      Backend
	DraftWatcher *drafts.Watcher

	Observability *observability.ObservabilityManager

	// Timeout configurations
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Startup information is printed here
	Out io.Writer

	// Logger
	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Version       string
	Session       *session.Session
	Backend       Backend
	DraftWatcher  *drafts.Watcher
	Observability *observability.ObservabilityManager
	Out           io.Writer
}

// NewServer creates a new Server from the application configuration
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	rateLimit := appCfg.Server.RateLimit
	var rateLimiter *RateLimiter
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:            appCfg.Server.Host,
		Port:            appCfg.Server.Port,
		Version:         cfg.Version,
		AppConfig:       appCfg,
		Session:         cfg.Session,
		Backend:         cfg.Backend,
		DraftWatcher:    cfg.DraftWatcher,
		Observability:   cfg.Observability,
		ReadTimeout:     appCfg.Server.ReadTimeout,
		WriteTimeout:    appCfg.Server.WriteTimeout,
		IdleTimeout:     appCfg.Server.IdleTimeout,
		ShutdownTimeout: appCfg.Server.ShutdownTimeout,
		MaxRequestSize:  appCfg.Server.MaxRequestSize,
		RateLimit:       &rateLimit,
		RateLimiter:     rateLimiter,
		Out:             out,
		Logger:          logger,
	}
}
