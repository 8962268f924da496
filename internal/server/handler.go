package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"applytrack/internal/client"
	applytrackErrors "applytrack/internal/errors"
	"applytrack/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// analyzeJobHandler handles POST /jobs/analyze
func (s *Server) analyzeJobHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.analyze_job")
	defer span.End()

	var req AnalyzeJobRequest
	if err := parseJSONRequest(r, &req, false); err != nil {
		s.fail(w, span, err, "Invalid request body")
		return
	}

	text, url := strings.TrimSpace(req.Text), strings.TrimSpace(req.URL)
	if (text == "") == (url == "") {
		err := applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"exactly one of text and url is required", nil)
		s.fail(w, span, err, "Invalid job posting")
		return
	}

	isURL := url != ""
	input := text
	if isURL {
		input = url
	}
	span.SetAttributes(attribute.Bool("job.from_url", isURL))

	job, err := s.Session.AnalyzeJob(ctx, input, isURL)
	if err != nil {
		s.fail(w, span, err, "Job analysis failed")
		return
	}
	writeJSONResponse(w, http.StatusOK, job)
}

// readUpload reads the single uploaded document of a multipart request
func readUpload(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile(client.UploadField)
	if err != nil {
		return "", nil, applytrackErrors.NewValidationError(applytrackErrors.ErrCodeMissingContent,
			fmt.Sprintf("multipart field %q is required", client.UploadField), err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}

// uploadResumeHandler handles POST /resumes
func (s *Server) uploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.upload_resume")
	defer span.End()

	filename, data, err := readUpload(r)
	if err != nil {
		s.fail(w, span, err, "Invalid upload")
		return
	}

	resume, err := s.Session.UploadResume(ctx, filename, bytes.NewReader(data))
	if err != nil {
		s.fail(w, span, err, "Resume upload failed")
		return
	}
	writeJSONResponse(w, http.StatusCreated, resume)
}

// uploadCoverLetterHandler handles POST /cover-letters
func (s *Server) uploadCoverLetterHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.upload_cover_letter")
	defer span.End()

	filename, data, err := readUpload(r)
	if err != nil {
		s.fail(w, span, err, "Invalid upload")
		return
	}

	letter, local, err := s.Session.UploadCoverLetter(ctx, filename, data)
	if err != nil {
		s.fail(w, span, err, "Cover letter upload failed")
		return
	}
	span.SetAttributes(attribute.Bool("cover_letter.local", local))
	writeJSONResponse(w, http.StatusCreated, CoverLetterResponse{CoverLetter: letter, Local: local})
}

// analysisHandler handles POST /analysis. Ids in the body are fetched and
// made current together before the run; if either fetch fails neither is.
func (s *Server) analysisHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.run_analysis")
	defer span.End()

	var req AnalysisRequest
	if err := parseJSONRequest(r, &req, true); err != nil {
		s.fail(w, span, err, "Invalid request body")
		return
	}

	if err := s.Session.SelectForAnalysis(ctx, req.JobDescriptionID, req.ResumeID); err != nil {
		s.fail(w, span, err, "Analysis inputs not available")
		return
	}

	result, err := s.Session.RunAnalysis(ctx)
	if err != nil {
		s.fail(w, span, err, "Analysis failed")
		return
	}
	span.SetAttributes(attribute.Float64("ats.score", result.Score.Score))
	writeJSONResponse(w, http.StatusOK, result)
}

// listApplicationsHandler handles GET /applications. With sync=true the
// backend list is merged into the session first.
func (s *Server) listApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.list_applications")
	defer span.End()

	query := r.URL.Query()
	search, status := query.Get("search"), query.Get("status")

	if sync, _ := strconv.ParseBool(query.Get("sync")); sync {
		if _, err := s.Session.SyncApplications(ctx, search, status); err != nil {
			s.fail(w, span, err, "Failed to load applications")
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, s.Session.Applications(search, status))
}

// createApplicationHandler handles POST /applications
func (s *Server) createApplicationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.create_application")
	defer span.End()

	var req CreateApplicationRequest
	if err := parseJSONRequest(r, &req, false); err != nil {
		s.fail(w, span, err, "Invalid request body")
		return
	}

	app, err := s.Session.CreateApplication(ctx, req.JobDescriptionID, req.ResumeID)
	if err != nil {
		s.fail(w, span, err, "Failed to create application")
		return
	}
	writeJSONResponse(w, http.StatusCreated, app)
}

// getApplicationHandler handles GET /applications/{id} and selects the application
func (s *Server) getApplicationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.select_application")
	defer span.End()

	app, err := s.Session.SelectApplication(ctx, r.PathValue("id"))
	if err != nil {
		s.fail(w, span, err, "Application not available")
		return
	}
	writeJSONResponse(w, http.StatusOK, app)
}

// updateStatusHandler handles PUT /applications/{id}/status
func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.change_status")
	defer span.End()

	var req StatusRequest
	if err := parseJSONRequest(r, &req, false); err != nil {
		s.fail(w, span, err, "Invalid request body")
		return
	}

	status := types.ParseApplicationStatus(req.Status)
	span.SetAttributes(attribute.String("application.status", string(status)))

	app, err := s.Session.ChangeStatus(ctx, r.PathValue("id"), status)
	if err != nil {
		s.fail(w, span, err, "Failed to update status")
		return
	}
	writeJSONResponse(w, http.StatusOK, app)
}

// addNoteHandler handles POST /applications/{id}/notes
func (s *Server) addNoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "session.add_note")
	defer span.End()

	var req NoteRequest
	if err := parseJSONRequest(r, &req, false); err != nil {
		s.fail(w, span, err, "Invalid request body")
		return
	}

	app, err := s.Session.AddNote(ctx, r.PathValue("id"), req.Note)
	if err != nil {
		s.fail(w, span, err, "Failed to add note")
		return
	}
	writeJSONResponse(w, http.StatusOK, app)
}

// getDraftHandler handles GET /drafts/cover-letter
func (s *Server) getDraftHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "session.load_draft")
	defer span.End()

	content, saved, err := s.Session.LoadDraft()
	if err != nil {
		s.fail(w, span, err, "Failed to load draft")
		return
	}
	writeJSONResponse(w, http.StatusOK, DraftResponse{Content: content, Saved: saved})
}

// putDraftHandler handles PUT /drafts/cover-letter
func (s *Server) putDraftHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "session.save_draft")
	defer span.End()

	var req DraftRequest
	if err := parseJSONRequest(r, &req, false); err != nil {
		s.fail(w, span, err, "Invalid request body")
		return
	}

	if err := s.Session.SaveDraft(req.Content); err != nil {
		s.fail(w, span, err, "Failed to save draft")
		return
	}
	writeJSONResponse(w, http.StatusOK, DraftResponse{Content: req.Content, Saved: true})
}
