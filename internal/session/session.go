// Package session holds the user facing flows: analyzing a job posting,
// managing documents, running the score/optimize/create analysis and
// tracking applications. Every flow calls the backend first and only then
// mutates the store; a cancelled context never reaches the store.
package session

import (
	"applytrack/internal/drafts"
	"applytrack/internal/errors"
	"applytrack/internal/normalize"
	"applytrack/internal/observability"
	"applytrack/internal/services"
	"applytrack/internal/store"
)

// Services bundles the domain services a session talks to
type Services struct {
	Jobs         *services.JobService
	Resumes      *services.ResumeService
	CoverLetters *services.CoverLetterService
	ATS          *services.ATSService
	Applications *services.ApplicationService
}

// NewServices wires every domain service to the same requester and normalizer
func NewServices(api services.Requester, norm *normalize.Normalizer, logger *errors.Logger) Services {
	return Services{
		Jobs:         services.NewJobService(api, norm),
		Resumes:      services.NewResumeService(api, norm),
		CoverLetters: services.NewCoverLetterService(api, norm, logger),
		ATS:          services.NewATSService(api, norm),
		Applications: services.NewApplicationService(api, norm),
	}
}

// Session runs flows against one store
type Session struct {
	store   *store.Store
	svc     Services
	drafts  *drafts.Store
	norm    *normalize.Normalizer
	metrics *observability.Metrics
	logger  *errors.Logger
}

// Option customizes a Session
type Option func(*Session)

// WithMetrics records business metrics on m
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogger sets the session logger
func WithLogger(l *errors.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNormalizer sets the clock and id source used for locally created
// notes and timeline events.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Session) {
		if n != nil {
			s.norm = n
		}
	}
}

// New creates a session. draftStore may be nil when drafts are not used.
func New(st *store.Store, svc Services, draftStore *drafts.Store, opts ...Option) *Session {
	s := &Session{
		store:  st,
		svc:    svc,
		drafts: draftStore,
		norm:   normalize.New(),
		logger: errors.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the store the session mutates
func (s *Session) Store() *store.Store {
	return s.store
}

// Services returns the domain services
func (s *Session) Services() Services {
	return s.svc
}

// Drafts returns the draft store, or nil
func (s *Session) Drafts() *drafts.Store {
	return s.drafts
}
