package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimit := s.rateLimitMiddleware()
	requestLimit := s.requestSizeLimitMiddleware()
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimit(requestLimit(h))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("GET /state", limited(s.stateHandler))
	mux.HandleFunc("GET /dashboard", limited(s.dashboardHandler))

	mux.HandleFunc("POST /jobs/analyze", limited(s.analyzeJobHandler))
	mux.HandleFunc("POST /resumes", limited(s.uploadResumeHandler))
	mux.HandleFunc("POST /cover-letters", limited(s.uploadCoverLetterHandler))
	mux.HandleFunc("POST /analysis", limited(s.analysisHandler))

	mux.HandleFunc("GET /applications", limited(s.listApplicationsHandler))
	mux.HandleFunc("POST /applications", limited(s.createApplicationHandler))
	mux.HandleFunc("GET /applications/{id}", limited(s.getApplicationHandler))
	mux.HandleFunc("PUT /applications/{id}/status", limited(s.updateStatusHandler))
	mux.HandleFunc("POST /applications/{id}/notes", limited(s.addNoteHandler))

	mux.HandleFunc("GET /drafts/cover-letter", limited(s.getDraftHandler))
	mux.HandleFunc("PUT /drafts/cover-letter", limited(s.putDraftHandler))

	return mux
}

// Handler returns the routed handler with HTTP instrumentation
func (s *Server) Handler() http.Handler {
	return s.Observability.HTTPMiddleware()(s.setupRoutes())
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}
