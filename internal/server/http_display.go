package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string) {
	fmt.Fprintf(s.Out, "applytrack session server listening on %s\n", addr)
	if s.Backend != nil {
		fmt.Fprintf(s.Out, "Tracking API: %s\n", s.Backend.BaseURL())
	}
	s.displayEndpoints()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayDraftInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.Out, "Available endpoints:")
	fmt.Fprintln(s.Out, "  GET  /health                     - Health check")
	fmt.Fprintln(s.Out, "  GET  /stats                      - Server statistics")
	fmt.Fprintln(s.Out, "  GET  /state                      - Session state")
	fmt.Fprintln(s.Out, "  GET  /dashboard                  - Application statistics")
	fmt.Fprintln(s.Out, "  POST /jobs/analyze               - Analyze a job posting")
	fmt.Fprintln(s.Out, "  POST /resumes                    - Upload a resume")
	fmt.Fprintln(s.Out, "  POST /cover-letters              - Upload a cover letter")
	fmt.Fprintln(s.Out, "  POST /analysis                   - Score, optimize and create an application")
	fmt.Fprintln(s.Out, "  GET  /applications               - List applications")
	fmt.Fprintln(s.Out, "  POST /applications               - Create an application")
	fmt.Fprintln(s.Out, "  GET  /applications/{id}          - Select an application")
	fmt.Fprintln(s.Out, "  PUT  /applications/{id}/status   - Change status")
	fmt.Fprintln(s.Out, "  POST /applications/{id}/notes    - Add a note")
	fmt.Fprintln(s.Out, "  GET  /drafts/cover-letter        - Load the cover letter draft")
	fmt.Fprintln(s.Out, "  PUT  /drafts/cover-letter        - Save the cover letter draft")
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.Out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(s.Out, "Request size limit: DISABLED")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter != nil {
		fmt.Fprintf(s.Out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByIP {
			fmt.Fprintln(s.Out, "  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Fprintln(s.Out, "Rate limiting: DISABLED")
	}
}

// displayDraftInfo shows where drafts are kept
func (s *Server) displayDraftInfo() {
	if s.Session == nil {
		return
	}
	if d := s.Session.Drafts(); d != nil {
		fmt.Fprintf(s.Out, "Drafts file: %s (live reload: %t)\n", d.Path(), s.DraftWatcher != nil)
	}
}
