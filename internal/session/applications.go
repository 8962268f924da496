package session

import (
	"context"
	"strings"

	"applytrack/internal/errors"
	"applytrack/internal/observability"
	"applytrack/internal/store"
	"applytrack/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// StatusAll disables status filtering
const StatusAll = "all"

// SyncApplications fetches the backend's application list and merges it into
// the store: known ids are replaced, new ones are appended in backend order.
// search and status are passed through to the backend.
func (s *Session) SyncApplications(ctx context.Context, search, status string) ([]types.JobApplication, error) {
	if status == StatusAll {
		status = ""
	}

	apps, err := s.svc.Applications.List(ctx, search, status)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, app := range apps {
		if !s.store.UpdateApplication(app.ID, fullPatch(app)) {
			s.store.AddApplication(app)
		}
	}
	return apps, nil
}

// CreateApplication creates an application for an existing job description
// and resume and appends it to the store.
func (s *Session) CreateApplication(ctx context.Context, jobID, resumeID string) (types.JobApplication, error) {
	app, err := s.svc.Applications.Create(ctx, jobID, resumeID)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricApplicationCreated, err == nil,
		attribute.String("source", "direct"))
	if err != nil {
		return types.JobApplication{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.JobApplication{}, err
	}

	s.store.AddApplication(app)
	return app, nil
}

// SelectApplication makes the application with id the selected one. The
// store is consulted first; unknown ids are fetched and added.
func (s *Session) SelectApplication(ctx context.Context, id string) (types.JobApplication, error) {
	app, err := s.application(ctx, id)
	if err != nil {
		return types.JobApplication{}, err
	}
	s.store.SetSelectedApplication(&app)
	return app, nil
}

// ChangeStatus updates an application's status on the backend, then records
// it locally with a status change event. Moving to applied stamps the
// application date when none is set.
func (s *Session) ChangeStatus(ctx context.Context, id string, status types.ApplicationStatus) (types.JobApplication, error) {
	current, err := s.application(ctx, id)
	if err != nil {
		return types.JobApplication{}, err
	}

	_, err = s.svc.Applications.UpdateStatus(ctx, current.ID, status)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricStatusChanged, err == nil,
		attribute.String("status", string(status)))
	if err != nil {
		return types.JobApplication{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.JobApplication{}, err
	}

	now := s.norm.Now()
	patch := store.ApplicationPatch{
		Status: &status,
		Timeline: append(current.Timeline, types.TimelineEvent{
			ID:          s.norm.NewID(),
			Type:        types.EventStatusChange,
			Title:       "Status changed to " + status.Label(),
			Description: "Application status updated",
			Date:        now,
		}),
	}
	if status == types.StatusApplied && current.ApplicationDate == nil {
		patch.ApplicationDate = &now
	}

	return s.patch(current, patch), nil
}

// AddNote attaches a note on the backend, then records it locally with a
// note event. Blank notes are ignored and return the application unchanged.
func (s *Session) AddNote(ctx context.Context, id, note string) (types.JobApplication, error) {
	current, err := s.application(ctx, id)
	if err != nil {
		return types.JobApplication{}, err
	}
	if strings.TrimSpace(note) == "" {
		return current, nil
	}

	_, err = s.svc.Applications.AddNote(ctx, current.ID, note)
	s.metrics.RecordBusinessMetric(ctx, observability.MetricNoteAdded, err == nil)
	if err != nil {
		return types.JobApplication{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.JobApplication{}, err
	}

	now := s.norm.Now()
	patch := store.ApplicationPatch{
		Notes: append(current.Notes, types.ApplicationNote{
			ID:        s.norm.NewID(),
			Content:   note,
			CreatedAt: now,
		}),
		Timeline: append(current.Timeline, types.TimelineEvent{
			ID:          s.norm.NewID(),
			Type:        types.EventNote,
			Title:       "Note added",
			Description: note,
			Date:        now,
		}),
	}

	return s.patch(current, patch), nil
}

// application returns the stored application with id, fetching and storing
// it when the store does not know it.
func (s *Session) application(ctx context.Context, id string) (types.JobApplication, error) {
	if strings.TrimSpace(id) == "" {
		return types.JobApplication{}, errors.NewValidationError(errors.ErrCodeInvalidID, "application id is required", nil)
	}
	if app, ok := s.store.Application(id); ok {
		return app, nil
	}

	app, err := s.svc.Applications.Get(ctx, id)
	if err != nil {
		return types.JobApplication{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.JobApplication{}, err
	}
	s.store.AddApplication(app)
	return app, nil
}

// patch applies p to the stored application and returns the result
func (s *Session) patch(current types.JobApplication, p store.ApplicationPatch) types.JobApplication {
	s.store.UpdateApplication(current.ID, p)
	if app, ok := s.store.Application(current.ID); ok {
		return app
	}
	return current
}

func fullPatch(app types.JobApplication) store.ApplicationPatch {
	return store.ApplicationPatch{
		Company:         &app.Company,
		Role:            &app.Role,
		JobLink:         &app.JobLink,
		ResumeID:        &app.ResumeID,
		CoverLetterID:   app.CoverLetterID,
		Status:          &app.Status,
		ApplicationDate: app.ApplicationDate,
		Notes:           app.Notes,
		Timeline:        app.Timeline,
	}
}

// FilterApplications keeps applications whose company or role contains
// search, case-insensitively, and whose status matches status. An empty
// status or "all" matches every status.
func FilterApplications(apps []types.JobApplication, search, status string) []types.JobApplication {
	term := strings.ToLower(strings.TrimSpace(search))
	var want types.ApplicationStatus
	if status != "" && status != StatusAll {
		want = types.ParseApplicationStatus(status)
	}

	out := make([]types.JobApplication, 0, len(apps))
	for _, app := range apps {
		if term != "" &&
			!strings.Contains(strings.ToLower(app.Company), term) &&
			!strings.Contains(strings.ToLower(app.Role), term) {
			continue
		}
		if want != "" && app.Status != want {
			continue
		}
		out = append(out, app)
	}
	return out
}

// Applications returns the stored applications filtered like FilterApplications
func (s *Session) Applications(search, status string) []types.JobApplication {
	return FilterApplications(s.store.Applications(), search, status)
}
