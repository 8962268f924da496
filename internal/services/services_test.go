package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"applytrack/internal/client"
	"applytrack/internal/config"
	applytrackErrors "applytrack/internal/errors"
	"applytrack/internal/normalize"
	"applytrack/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testNormalizer() *normalize.Normalizer {
	n := 0
	return &normalize.Normalizer{
		Clock: func() time.Time { return fixedNow },
		IDs: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
	}
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeBackend serves canned responses per "METHOD /path" and records every call.
type fakeBackend struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]string
	statuses  map[string]int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *client.Client) {
	t.Helper()
	fb := &fakeBackend{responses: map[string]string{}, statuses: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, client.New(config.APIConfig{BaseURL: srv.URL + "/api"}, nil)
}

func (fb *fakeBackend) on(method, path string, status int, body string) {
	key := method + " " + path
	fb.statuses[key] = status
	fb.responses[key] = body
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	var body string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			if f, h, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(f)
				body = h.Filename + ":" + string(data)
				_ = f.Close()
			}
		}
	} else {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
	}

	path := strings.TrimPrefix(r.URL.Path, "/api")
	fb.mu.Lock()
	fb.requests = append(fb.requests, recordedRequest{Method: r.Method, Path: path, Query: r.URL.RawQuery, Body: body})
	fb.mu.Unlock()

	key := r.Method + " " + path
	status, ok := fb.statuses[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, fb.responses[key])
}

func (fb *fakeBackend) calls() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recordedRequest{}, fb.requests...)
}

func TestJobAnalyze(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/job-descriptions/analyze", 200, `{"id": 7, "title": "Backend Engineer", "company": "Acme"}`)
	svc := NewJobService(c, testNormalizer())

	job, err := svc.Analyze(context.Background(), "https://acme.example/jobs/7", true)
	require.NoError(t, err)
	assert.Equal(t, "7", job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.NotNil(t, job.ExtractedData.Keywords)

	_, err = svc.Analyze(context.Background(), "We need a Go developer", false)
	require.NoError(t, err)

	calls := fb.calls()
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"url": "https://acme.example/jobs/7"}`, calls[0].Body)
	assert.JSONEq(t, `{"text": "We need a Go developer"}`, calls[1].Body)
}

func TestJobAnalyzeRejectsEmptyInput(t *testing.T) {
	fb, c := newFakeBackend(t)
	svc := NewJobService(c, testNormalizer())

	_, err := svc.Analyze(context.Background(), "   ", false)
	require.Error(t, err)

	var appErr *applytrackErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, applytrackErrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, applytrackErrors.ErrCodeEmptyInput, appErr.Code)
	assert.Empty(t, fb.calls())
}

func TestJobGetHTTPError(t *testing.T) {
	_, c := newFakeBackend(t)
	svc := NewJobService(c, testNormalizer())

	_, err := svc.Get(context.Background(), "99")
	code, ok := client.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestResumeUpload(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/resumes/upload", 200,
		`{"id": 5, "name": "cv.pdf", "originalContent": {"summary": "S", "skills": ["Go"]}}`)
	svc := NewResumeService(c, testNormalizer())

	resume, err := svc.Upload(context.Background(), "cv.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, "5", resume.ID)
	assert.Equal(t, "S", resume.OptimizedContent.Summary)
	assert.Equal(t, []string{"Go"}, resume.OptimizedContent.Skills)
	assert.Equal(t, "1.0", resume.Version)
	assert.Equal(t, fixedNow, resume.CreatedAt)

	calls := fb.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "cv.pdf:pdf bytes", calls[0].Body)
}

func TestResumeUploadMissingContent(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/resumes/upload", 200, `{"id": 5}`)
	svc := NewResumeService(c, testNormalizer())

	_, err := svc.Upload(context.Background(), "cv.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to upload resume: "))
	assert.True(t, applytrackErrors.IsType(err, applytrackErrors.ErrorTypeValidation))
}

func TestResumeUploadHTTPErrorIsWrapped(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/resumes/upload", http.StatusUnsupportedMediaType, ``)
	svc := NewResumeService(c, testNormalizer())

	_, err := svc.Upload(context.Background(), "cv.exe", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "failed to upload resume: API Error: Unsupported Media Type", err.Error())
}

func TestResumeOptimize(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/resumes/5/optimize/7", 200, `{
		"id": 5,
		"originalContent": {"summary": "old"},
		"optimizedContent": {"summary": "new"},
		"changes": [{"section": "SUMMARY", "original": "old", "optimized": "new", "keywordsAdded": ["Go"]}]
	}`)
	svc := NewResumeService(c, testNormalizer())

	result, err := svc.Optimize(context.Background(), "5", "7")
	require.NoError(t, err)
	assert.Equal(t, "old", result.Resume.OriginalContent.Summary)
	assert.Equal(t, "new", result.Resume.OptimizedContent.Summary)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, types.SectionSummary, result.Changes[0].Section)
	assert.Equal(t, "gen-1", result.Changes[0].ID)

	calls := fb.calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Body)
}

func TestResumeOptimizeWithoutChanges(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/resumes/5/optimize/7", 200, `{"id": 5}`)
	svc := NewResumeService(c, testNormalizer())

	result, err := svc.Optimize(context.Background(), "5", "7")
	require.NoError(t, err)
	assert.NotNil(t, result.Changes)
	assert.Empty(t, result.Changes)
}

func TestCoverLetterUpload(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/cover-letters/upload", 200, `{"id": 3, "originalContent": "Dear team"}`)
	svc := NewCoverLetterService(c, testNormalizer(), nil)

	letter, local, err := svc.Upload(context.Background(), "letter.txt", []byte("Dear team"))
	require.NoError(t, err)
	assert.False(t, local)
	assert.Equal(t, "3", letter.ID)
	assert.Equal(t, "letter.txt", letter.Name)
	assert.Equal(t, "Dear team", letter.OptimizedContent)
}

func TestCoverLetterUploadFallsBackLocally(t *testing.T) {
	_, c := newFakeBackend(t)
	svc := NewCoverLetterService(c, testNormalizer(), nil)

	letter, local, err := svc.Upload(context.Background(), "letter.txt", []byte("Hello there"))
	require.NoError(t, err)
	assert.True(t, local)
	assert.Equal(t, "gen-1", letter.ID)
	assert.Equal(t, "letter.txt", letter.Name)
	assert.Equal(t, "Hello there", letter.OriginalContent)
	assert.Equal(t, "Hello there", letter.OptimizedContent)
	assert.Equal(t, "1.0", letter.Version)
	assert.Equal(t, fixedNow, letter.CreatedAt)
}

func TestATSScore(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodGet, "/ats/score", 200, `{"score": 72.5, "matchedKeywords": null,
		"missingKeywords": [{"keyword": "Kafka", "matched": false, "category": "TECHNOLOGY"}]}`)
	svc := NewATSService(c, testNormalizer())

	score, err := svc.Score(context.Background(), "5", "7")
	require.NoError(t, err)
	assert.Equal(t, 72.5, score.Score)
	assert.NotNil(t, score.MatchedKeywords)
	assert.Empty(t, score.MatchedKeywords)
	require.Len(t, score.MissingKeywords, 1)
	assert.Equal(t, types.CategoryTechnology, score.MissingKeywords[0].Category)

	calls := fb.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "jobDescriptionId=7&resumeId=5", calls[0].Query)
}

func TestApplicationCreate(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPost, "/applications", 201, `{"id": 11, "company": "Acme", "role": "SRE", "resumeId": 5, "status": "NOT_APPLIED"}`)
	svc := NewApplicationService(c, testNormalizer())

	app, err := svc.Create(context.Background(), "7", "5")
	require.NoError(t, err)
	assert.Equal(t, "11", app.ID)
	assert.Equal(t, "5", app.ResumeID)
	assert.Equal(t, types.StatusNotApplied, app.Status)

	calls := fb.calls()
	require.Len(t, calls, 1)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.Equal(t, "7", string(body["jobDescriptionId"]))
	assert.Equal(t, "5", string(body["resumeId"]))
}

func TestApplicationCreateRejectsNonNumericIDs(t *testing.T) {
	fb, c := newFakeBackend(t)
	svc := NewApplicationService(c, testNormalizer())

	for _, ids := range [][2]string{{"abc", "5"}, {"7", "a-uuid"}, {"", "5"}} {
		_, err := svc.Create(context.Background(), ids[0], ids[1])
		require.Error(t, err, "ids %v", ids)
		assert.True(t, applytrackErrors.IsType(err, applytrackErrors.ErrorTypeValidation))
	}
	assert.Empty(t, fb.calls())
}

func TestApplicationList(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodGet, "/applications", 200, `[{"id": 1, "status": "APPLIED"}, {"id": 2, "status": "OFFER"}]`)
	svc := NewApplicationService(c, testNormalizer())

	apps, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, types.StatusOffer, apps[1].Status)

	_, err = svc.List(context.Background(), "acme corp", "")
	require.NoError(t, err)
	_, err = svc.List(context.Background(), "", "INTERVIEW")
	require.NoError(t, err)

	calls := fb.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "", calls[0].Query)
	assert.Equal(t, "search=acme+corp", calls[1].Query)
	assert.Equal(t, "status=INTERVIEW", calls[2].Query)
}

func TestApplicationUpdateStatusAndNote(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.on(http.MethodPut, "/applications/11/status", 200, `{"id": 11, "status": "NOT_APPLIED"}`)
	fb.on(http.MethodPost, "/applications/11/notes", 200, `{"id": 11, "notes": [{"id": 1, "content": "ping"}]}`)
	svc := NewApplicationService(c, testNormalizer())

	app, err := svc.UpdateStatus(context.Background(), "11", types.StatusNotApplied)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNotApplied, app.Status)

	app, err = svc.AddNote(context.Background(), "11", "ping")
	require.NoError(t, err)
	require.Len(t, app.Notes, 1)

	_, err = svc.UpdateStatus(context.Background(), "11", types.StatusUnknown)
	require.Error(t, err)

	calls := fb.calls()
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"status": "NOT_APPLIED"}`, calls[0].Body)
	assert.JSONEq(t, `{"note": "ping"}`, calls[1].Body)
}

func TestGetRequiresID(t *testing.T) {
	fb, c := newFakeBackend(t)
	norm := testNormalizer()

	_, err := NewResumeService(c, norm).Get(context.Background(), " ")
	assert.True(t, applytrackErrors.IsType(err, applytrackErrors.ErrorTypeValidation))
	_, err = NewApplicationService(c, norm).Get(context.Background(), "")
	assert.True(t, applytrackErrors.IsType(err, applytrackErrors.ErrorTypeValidation))
	_, err = NewCoverLetterService(c, norm, nil).Get(context.Background(), "")
	assert.True(t, applytrackErrors.IsType(err, applytrackErrors.ErrorTypeValidation))
	assert.Empty(t, fb.calls())
}
