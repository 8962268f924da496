package session

import (
	"context"
	"fmt"

	"applytrack/internal/errors"
	"applytrack/internal/observability"
	"applytrack/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// AnalysisResult is everything one analysis run produced
type AnalysisResult struct {
	JobDescription types.JobDescription       `json:"jobDescription"`
	Score          types.ATSScore             `json:"atsScore"`
	Resume         types.Resume               `json:"resume"`
	Changes        []types.OptimizationChange `json:"optimizationChanges"`
	Application    types.JobApplication       `json:"application"`
}

// SelectForAnalysis fetches the job description and the resume named by the
// non-empty ids and only then makes both current, so a failed fetch changes
// nothing in the store.
func (s *Session) SelectForAnalysis(ctx context.Context, jobID, resumeID string) error {
	var job *types.JobDescription
	if jobID != "" {
		fetched, err := s.svc.Jobs.Get(ctx, jobID)
		if err != nil {
			return fmt.Errorf("job description unavailable: %w", err)
		}
		job = &fetched
	}

	var resume *types.Resume
	if resumeID != "" {
		fetched, err := s.svc.Resumes.Get(ctx, resumeID)
		if err != nil {
			return fmt.Errorf("resume unavailable: %w", err)
		}
		resume = &fetched
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if job != nil {
		s.store.SetCurrentJobDescription(job)
	}
	if resume != nil {
		s.store.SetCurrentResume(resume)
	}
	return nil
}

// RunAnalysis scores the current resume against the current job description,
// optimizes the resume and creates an application for the pair. The steps run
// strictly in order; a failing step stops the run and leaves the results of
// the earlier steps in the store.
func (s *Session) RunAnalysis(ctx context.Context) (*AnalysisResult, error) {
	st := s.store.Snapshot()
	if st.CurrentJobDescription == nil {
		return nil, errors.NewStateError(errors.ErrCodeNoCurrentJob,
			"no current job description, analyze a job posting first", nil)
	}
	if st.CurrentResume == nil {
		return nil, errors.NewStateError(errors.ErrCodeNoCurrentResume,
			"no current resume, upload a resume first", nil)
	}

	job := *st.CurrentJobDescription
	resumeID := st.CurrentResume.ID
	logger := s.logger.With("job_id", job.ID, "resume_id", resumeID)

	score, err := s.svc.ATS.Score(ctx, resumeID, job.ID)
	if err != nil {
		return nil, fmt.Errorf("ATS scoring failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.SetATSScore(score)
	logger.Info("ATS score calculated", "score", score.Score)

	optimized, err := s.svc.Resumes.Optimize(ctx, resumeID, job.ID)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricResumeOptimized, err == nil)
	if err != nil {
		return nil, fmt.Errorf("resume optimization failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.SetCurrentResume(&optimized.Resume)
	s.store.SetOptimizationChanges(optimized.Changes)
	logger.Info("Resume optimized", "changes", len(optimized.Changes))

	// The application references the resume that was analyzed, not the optimized copy.
	app, err := s.svc.Applications.Create(ctx, job.ID, resumeID)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricApplicationCreated, err == nil,
		attribute.String("source", "analysis"))
	if err != nil {
		return nil, fmt.Errorf("application creation failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.AddApplication(app)
	logger.Info("Application created", "application_id", app.ID)

	return &AnalysisResult{
		JobDescription: job,
		Score:          score,
		Resume:         optimized.Resume,
		Changes:        optimized.Changes,
		Application:    app,
	}, nil
}
