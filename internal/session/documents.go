package session

import (
	"context"
	"io"
	"strings"

	"applytrack/internal/drafts"
	"applytrack/internal/errors"
	"applytrack/internal/observability"
	"applytrack/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// AnalyzeJob sends a posting (text or URL) for analysis and makes the result
// the current job description.
func (s *Session) AnalyzeJob(ctx context.Context, input string, isURL bool) (types.JobDescription, error) {
	job, err := s.svc.Jobs.Analyze(ctx, input, isURL)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricJobAnalyzed, err == nil,
		attribute.Bool("from_url", isURL))
	if err != nil {
		return types.JobDescription{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.JobDescription{}, err
	}

	s.store.SetCurrentJobDescription(&job)
	s.store.AddJobDescription(job)
	s.logger.Info("Job description analyzed", "job_id", job.ID, "title", job.Title)
	return job, nil
}

// SelectJob fetches an existing job description and makes it current
func (s *Session) SelectJob(ctx context.Context, id string) (types.JobDescription, error) {
	job, err := s.svc.Jobs.Get(ctx, id)
	if err != nil {
		return types.JobDescription{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.JobDescription{}, err
	}

	s.store.SetCurrentJobDescription(&job)
	return job, nil
}

// UploadResume uploads a resume and makes it current
func (s *Session) UploadResume(ctx context.Context, filename string, r io.Reader) (types.Resume, error) {
	resume, err := s.svc.Resumes.Upload(ctx, filename, r)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricResumeUploaded, err == nil)
	if err != nil {
		return types.Resume{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Resume{}, err
	}

	s.store.SetCurrentResume(&resume)
	s.store.AddResume(resume)
	s.logger.Info("Resume uploaded", "resume_id", resume.ID, "name", resume.Name)
	return resume, nil
}

// SelectResume fetches an existing resume and makes it current
func (s *Session) SelectResume(ctx context.Context, id string) (types.Resume, error) {
	resume, err := s.svc.Resumes.Get(ctx, id)
	if err != nil {
		return types.Resume{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Resume{}, err
	}

	s.store.SetCurrentResume(&resume)
	return resume, nil
}

// UploadCoverLetter uploads a cover letter and makes it current. A letter the
// backend could not take is kept locally; local reports that case.
func (s *Session) UploadCoverLetter(ctx context.Context, filename string, content []byte) (letter types.CoverLetter, local bool, err error) {
	letter, local, err = s.svc.CoverLetters.Upload(ctx, filename, content)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricCoverLetterUploaded, err == nil,
		attribute.Bool("local", local))
	if err != nil {
		return types.CoverLetter{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return types.CoverLetter{}, false, err
	}

	s.store.SetCurrentCoverLetter(&letter)
	s.store.AddCoverLetter(letter)
	if local {
		s.logger.Warn("Cover letter kept locally", "cover_letter_id", letter.ID, "name", letter.Name)
	}
	return letter, local, nil
}

// SaveDraft stores the cover letter draft. Blank drafts are rejected.
func (s *Session) SaveDraft(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NewValidationError(errors.ErrCodeEmptyInput, "cover letter draft is empty", nil)
	}
	if s.drafts == nil {
		return errors.NewStateError(errors.ErrCodeDraftUnavailable, "draft storage is not configured", nil)
	}
	return s.drafts.Set(drafts.CoverLetterKey, text)
}

// LoadDraft returns the saved cover letter draft, if any
func (s *Session) LoadDraft() (string, bool, error) {
	if s.drafts == nil {
		return "", false, nil
	}
	return s.drafts.Get(drafts.CoverLetterKey)
}
