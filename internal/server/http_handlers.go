package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"applytrack/internal/client"
	applytrackErrors "applytrack/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// healthHandler reports the server and the state of the backend circuit breaker
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "applytrack",
		"version": s.Version,
	}

	status := http.StatusOK
	if s.Backend != nil {
		response["backend"] = map[string]any{
			"baseURL":         s.Backend.BaseURL(),
			"healthy":         s.Backend.IsHealthy(),
			"circuit_breaker": s.Backend.BreakerStats(),
		}
		if !s.Backend.IsHealthy() {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSONResponse(w, status, response)
}

// statsHandler reports request limits and rate limiting state
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "applytrack",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
		}
	}

	if s.Backend != nil {
		response["circuit_breaker"] = s.Backend.BreakerStats()
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// stateHandler returns the whole session state
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, s.Session.Store().Snapshot())
}

// dashboardHandler returns application statistics
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, s.Session.Dashboard())
}

// startSpan starts a server span for a session operation
func (s *Server) startSpan(r *http.Request, name string) (context.Context, oteltrace.Span) {
	return s.Observability.Tracer("applytrack.server").Start(r.Context(), name,
		oteltrace.WithAttributes(attribute.String("http.route", r.Pattern)))
}

// fail records err on the span, logs it and writes the matching error response.
func (s *Server) fail(w http.ResponseWriter, span oteltrace.Span, err error, title string) {
	status := statusForError(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, title)
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, title)
	} else {
		s.Logger.Debug(title, "error", err.Error(), "status", status)
	}

	code := ""
	var appErr *applytrackErrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	writeErrorResponseWithCode(w, title, err.Error(), code, status)
}

// statusForError maps an error to the HTTP status returned to the caller.
// Backend failures keep the backend's status code.
func statusForError(err error) int {
	if code, ok := client.StatusCode(err); ok {
		return code
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	var appErr *applytrackErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case applytrackErrors.ErrorTypeValidation:
			return http.StatusBadRequest
		case applytrackErrors.ErrorTypeState:
			return http.StatusConflict
		case applytrackErrors.ErrorTypeNetwork:
			if appErr.Code == applytrackErrors.ErrCodeAPIUnavailable {
				return http.StatusServiceUnavailable
			}
			return http.StatusBadGateway
		}
	}

	return http.StatusInternalServerError
}

// parseJSONRequest decodes a JSON body into v. An empty body leaves v unchanged
// when allowEmpty is set.
func parseJSONRequest(r *http.Request, v any, allowEmpty bool) error {
	if r.Header.Get("Content-Type") != "" && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes): %w", maxBytesErr.Limit, err)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"request body is required", nil)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"failed to parse JSON", err)
	}

	return nil
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeErrorResponseWithCode(w, error, message, "", statusCode)
}

func writeErrorResponseWithCode(w http.ResponseWriter, error, message, code string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	})
}
