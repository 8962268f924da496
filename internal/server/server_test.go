package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"applytrack/internal/client"
	"applytrack/internal/config"
	"applytrack/internal/drafts"
	"applytrack/internal/errors"
	"applytrack/internal/normalize"
	"applytrack/internal/session"
	"applytrack/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend is a canned tracking API keyed by "METHOD /path?query".
type backend struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter)
	calls  []string
}

func (b *backend) on(key string, status int, body string) {
	b.routes[key] = func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	b.mu.Lock()
	b.calls = append(b.calls, key)
	b.mu.Unlock()

	if h, ok := b.routes[key]; ok {
		h(w)
		return
	}
	http.NotFound(w, r)
}

type fixture struct {
	backend *backend
	server  *Server
	handler http.Handler
}

func newFixture(t *testing.T, adjust func(cfg *config.Config)) *fixture {
	t.Helper()
	b := &backend{routes: map[string]func(http.ResponseWriter){}}
	upstream := httptest.NewServer(b)
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.API.BaseURL = upstream.URL + "/api"
	cfg.Drafts.Path = filepath.Join(t.TempDir(), "drafts.yaml")
	if adjust != nil {
		adjust(cfg)
	}

	logger := errors.NewNopLogger()
	api := client.New(cfg.API, logger)
	norm := normalize.New()
	sess := session.New(store.New(), session.NewServices(api, norm, logger), drafts.NewStore(cfg.Drafts.Path),
		session.WithNormalizer(norm), session.WithLogger(logger))

	srv := NewServer(cfg, ServerConfig{Version: "test", Session: sess, Backend: api, Out: io.Discard}, logger)
	t.Cleanup(func() {
		if srv.RateLimiter != nil {
			srv.RateLimiter.Close()
		}
	})
	return &fixture{backend: b, server: srv, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndStats(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["version"])

	rec = f.do(t, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"enabled": false}, stats["rate_limiting"])

	rec = f.do(t, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyzeJobUpdatesState(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.on("POST /job-descriptions/analyze", 200, `{"id": 7, "title": "Backend Engineer", "company": "Acme"}`)

	rec := f.do(t, http.MethodPost, "/jobs/analyze", `{"text": "We need a Go developer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "7", decodeBody[map[string]any](t, rec)["id"])

	rec = f.do(t, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[store.State](t, rec)
	require.NotNil(t, st.CurrentJobDescription)
	assert.Equal(t, "Backend Engineer", st.CurrentJobDescription.Title)
	assert.Len(t, st.JobDescriptions, 1)
}

func TestAnalyzeJobValidation(t *testing.T) {
	f := newFixture(t, nil)

	for _, body := range []string{`{}`, `{"text": "a", "url": "https://x"}`, `not json`} {
		rec := f.do(t, http.MethodPost, "/jobs/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, f.backend.calls)
}

func TestBackendStatusIsPropagated(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.on("POST /job-descriptions/analyze", http.StatusUnprocessableEntity, `{"error": "bad posting"}`)

	rec := f.do(t, http.MethodPost, "/jobs/analyze", `{"url": "https://acme.example/jobs/7"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "Job analysis failed", resp.Error)
	assert.Equal(t, "API Error: Unprocessable Entity", resp.Message)
}

func TestAnalysisWithoutCurrentJobIsConflict(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/analysis", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errors.ErrCodeNoCurrentJob, decodeBody[ErrorResponse](t, rec).Code)
}

func TestAnalysisSelectsAndRuns(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.on("GET /job-descriptions/7", 200, `{"id": 7, "title": "SRE"}`)
	f.backend.on("GET /resumes/5", 200, `{"id": 5, "originalContent": {"summary": "old"}}`)
	f.backend.on("GET /ats/score?jobDescriptionId=7&resumeId=5", 200, `{"score": 81}`)
	f.backend.on("POST /resumes/5/optimize/7", 200, `{"id": 6, "originalContent": {"summary": "old"}, "optimizedContent": {"summary": "new"}}`)
	f.backend.on("POST /applications", 200, `{"id": 11, "company": "Acme", "role": "SRE", "status": "NOT_APPLIED"}`)

	rec := f.do(t, http.MethodPost, "/analysis", `{"jobDescriptionId": "7", "resumeId": "5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decodeBody[session.AnalysisResult](t, rec)
	assert.Equal(t, 81.0, result.Score.Score)
	assert.Equal(t, "6", result.Resume.ID)
	assert.Equal(t, "11", result.Application.ID)
	assert.Empty(t, result.Changes)

	rec = f.do(t, http.MethodGet, "/dashboard", "")
	dash := decodeBody[session.Dashboard](t, rec)
	assert.Equal(t, 1, dash.Total)
	assert.Equal(t, 1, dash.NotApplied)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(client.UploadField, filename)
	require.NoError(t, err)
	_, _ = io.WriteString(part, content)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadResumeAndCoverLetter(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.on("POST /resumes/upload", 200, `{"id": 5, "name": "cv.pdf", "originalContent": {"summary": "Go dev"}}`)
	f.backend.on("POST /cover-letters/upload", 500, ``)

	body, contentType := multipartBody(t, "cv.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/resumes", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "5", decodeBody[map[string]any](t, rec)["id"])

	body, contentType = multipartBody(t, "letter.txt", "Dear team")
	req = httptest.NewRequest(http.MethodPost, "/cover-letters", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, resp["local"])

	rec = f.do(t, http.MethodPost, "/resumes", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationDetailFlows(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.on("GET /applications?search=acme", 200, `[{"id": 11, "company": "Acme", "role": "SRE", "status": "NOT_APPLIED"}]`)
	f.backend.on("PUT /applications/11/status", 200, `{}`)
	f.backend.on("POST /applications/11/notes", 200, `{}`)

	rec := f.do(t, http.MethodGet, "/applications", "")
	assert.Empty(t, decodeBody[[]map[string]any](t, rec), "nothing synced yet")

	rec = f.do(t, http.MethodGet, "/applications?sync=true&search=acme", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = f.do(t, http.MethodPut, "/applications/11/status", `{"status": "applied"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "applied", app["status"])
	assert.NotNil(t, app["applicationDate"])

	rec = f.do(t, http.MethodPut, "/applications/11/status", `{"status": "ghosted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/applications/11/notes", `{"note": "Phone screen booked"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app = decodeBody[map[string]any](t, rec)
	assert.Len(t, app["notes"], 1)
	assert.Len(t, app["timeline"], 2)

	rec = f.do(t, http.MethodGet, "/applications?status=applied", "")
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/applications/11", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[store.State](t, f.do(t, http.MethodGet, "/state", ""))
	require.NotNil(t, st.SelectedApplication)
	assert.Equal(t, "11", st.SelectedApplication.ID)
}

func TestDrafts(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/drafts/cover-letter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DraftResponse{}, decodeBody[DraftResponse](t, rec))

	rec = f.do(t, http.MethodPut, "/drafts/cover-letter", `{"content": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/drafts/cover-letter", `{"content": "Dear hiring manager"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/drafts/cover-letter", "")
	assert.Equal(t, DraftResponse{Content: "Dear hiring manager", Saved: true}, decodeBody[DraftResponse](t, rec))
}

func TestRequestSizeLimit(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.Server.MaxRequestSize = 16 })

	rec := f.do(t, http.MethodPut, "/drafts/cover-letter", `{"content": "this body is far too large"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.Enabled = true
		cfg.Server.RateLimit.RequestsPerMin = 1
		cfg.Server.RateLimit.BurstCapacity = 2
	})

	codes := []int{}
	for range 3 {
		codes = append(codes, f.do(t, http.MethodGet, "/dashboard", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health checks are not rate limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusForError(&client.HTTPError{StatusCode: 404}))
	assert.Equal(t, http.StatusBadRequest, statusForError(errors.NewValidationError("X", "bad", nil)))
	assert.Equal(t, http.StatusConflict, statusForError(errors.NewStateError("X", "state", nil)))
	assert.Equal(t, http.StatusBadGateway, statusForError(errors.NewNetworkError(errors.ErrCodeRequestFailed, "down", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, statusForError(errors.NewNetworkError(errors.ErrCodeAPIUnavailable, "open", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, statusForError(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, statusForError(io.ErrUnexpectedEOF))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, listener) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestAnalysisWithUnknownResumeLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.on("GET /job-descriptions/7", 200, `{"id": 7, "title": "SRE"}`)

	rec := f.do(t, http.MethodPost, "/analysis", `{"jobDescriptionId": "7", "resumeId": "404"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	st := decodeBody[store.State](t, f.do(t, http.MethodGet, "/state", ""))
	assert.Nil(t, st.CurrentJobDescription)
	assert.Nil(t, st.CurrentResume)
}
