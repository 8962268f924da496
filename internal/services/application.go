package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	applytrackErrors "applytrack/internal/errors"
	"applytrack/internal/normalize"
	"applytrack/internal/types"
)

// ApplicationService manages job applications on the backend
type ApplicationService struct {
	api  Requester
	norm *normalize.Normalizer
}

// NewApplicationService creates a new application service
func NewApplicationService(api Requester, norm *normalize.Normalizer) *ApplicationService {
	return &ApplicationService{api: api, norm: norm}
}

type createInput struct {
	JobID    string `json:"jobDescriptionId" validate:"required,number"`
	ResumeID string `json:"resumeId" validate:"required,number"`
}

// createRequest is the only place ids travel as numbers
type createRequest struct {
	JobDescriptionID int64 `json:"jobDescriptionId"`
	ResumeID         int64 `json:"resumeId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type noteInput struct {
	Note string `json:"note" validate:"required"`
}

type noteRequest struct {
	Note string `json:"note"`
}

// Create opens an application for a job description with a resume. Both ids
// must be numeric; nothing is sent otherwise.
func (s *ApplicationService) Create(ctx context.Context, jobID, resumeID string) (types.JobApplication, error) {
	in := createInput{JobID: strings.TrimSpace(jobID), ResumeID: strings.TrimSpace(resumeID)}
	if err := validateInput(in); err != nil {
		return types.JobApplication{}, err
	}

	jobNum, err := parseNumericID("jobDescriptionId", in.JobID)
	if err != nil {
		return types.JobApplication{}, err
	}
	resumeNum, err := parseNumericID("resumeId", in.ResumeID)
	if err != nil {
		return types.JobApplication{}, err
	}

	v, err := s.api.Request(ctx, http.MethodPost, "/applications", createRequest{
		JobDescriptionID: jobNum,
		ResumeID:         resumeNum,
	})
	if err != nil {
		return types.JobApplication{}, err
	}
	return s.norm.Application(v), nil
}

// List returns applications, filtered on the backend by the non-empty arguments.
func (s *ApplicationService) List(ctx context.Context, search, status string) ([]types.JobApplication, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if status != "" {
		query.Set("status", status)
	}

	endpoint := "/applications"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	v, err := s.api.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return s.norm.Applications(v), nil
}

// Get fetches an application by id
func (s *ApplicationService) Get(ctx context.Context, id string) (types.JobApplication, error) {
	seg, err := requireID(id)
	if err != nil {
		return types.JobApplication{}, err
	}

	v, err := s.api.Request(ctx, http.MethodGet, "/applications/"+seg, nil)
	if err != nil {
		return types.JobApplication{}, err
	}
	return s.norm.Application(v), nil
}

// UpdateStatus moves an application to status. Any status may follow any other.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status types.ApplicationStatus) (types.JobApplication, error) {
	seg, err := requireID(id)
	if err != nil {
		return types.JobApplication{}, err
	}
	if !status.Valid() {
		return types.JobApplication{}, applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"unknown application status: "+string(status), nil)
	}

	v, err := s.api.Request(ctx, http.MethodPut, "/applications/"+seg+"/status", statusRequest{Status: status.WireValue()})
	if err != nil {
		return types.JobApplication{}, err
	}
	return s.norm.Application(v), nil
}

// AddNote attaches a free text note to an application
func (s *ApplicationService) AddNote(ctx context.Context, id, note string) (types.JobApplication, error) {
	seg, err := requireID(id)
	if err != nil {
		return types.JobApplication{}, err
	}
	if err := validateInput(noteInput{Note: strings.TrimSpace(note)}); err != nil {
		return types.JobApplication{}, err
	}

	v, err := s.api.Request(ctx, http.MethodPost, "/applications/"+seg+"/notes", noteRequest{Note: note})
	if err != nil {
		return types.JobApplication{}, err
	}
	return s.norm.Application(v), nil
}

func parseNumericID(field, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidID,
			field+" must be numeric, got "+strconv.Quote(raw), err).WithContext("field", field)
	}
	return n, nil
}
