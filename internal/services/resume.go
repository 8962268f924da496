package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"applytrack/internal/normalize"
	"applytrack/internal/payload"
	"applytrack/internal/types"
)

// ResumeService uploads, fetches and optimizes resumes
type ResumeService struct {
	api  Requester
	norm *normalize.Normalizer
}

// NewResumeService creates a new resume service
func NewResumeService(api Requester, norm *normalize.Normalizer) *ResumeService {
	return &ResumeService{api: api, norm: norm}
}

// OptimizationResult is an optimized resume with the edits the backend reported.
// Changes is empty, never nil, when the backend reported none.
type OptimizationResult struct {
	Resume  types.Resume               `json:"resume"`
	Changes []types.OptimizationChange `json:"changes"`
}

type uploadInput struct {
	Filename string `json:"filename" validate:"required"`
}

type optimizeInput struct {
	ResumeID string `json:"resumeId" validate:"required"`
	JobID    string `json:"jobDescriptionId" validate:"required"`
}

// Upload sends a resume document. The backend must answer with parsed content.
func (s *ResumeService) Upload(ctx context.Context, filename string, r io.Reader) (types.Resume, error) {
	in := uploadInput{Filename: strings.TrimSpace(filename)}
	if err := validateInput(in); err != nil {
		return types.Resume{}, err
	}

	v, err := s.api.Upload(ctx, "/resumes/upload", in.Filename, r)
	if err != nil {
		return types.Resume{}, fmt.Errorf("failed to upload resume: %w", err)
	}

	resume, err := s.norm.UploadedResume(v)
	if err != nil {
		return types.Resume{}, fmt.Errorf("failed to upload resume: %w", err)
	}
	return resume, nil
}

// Get fetches a resume by id
func (s *ResumeService) Get(ctx context.Context, id string) (types.Resume, error) {
	seg, err := requireID(id)
	if err != nil {
		return types.Resume{}, err
	}

	v, err := s.api.Request(ctx, http.MethodGet, "/resumes/"+seg, nil)
	if err != nil {
		return types.Resume{}, err
	}
	return s.norm.Resume(v), nil
}

// Optimize asks the backend to rewrite a resume for a job description.
func (s *ResumeService) Optimize(ctx context.Context, resumeID, jobID string) (OptimizationResult, error) {
	in := optimizeInput{ResumeID: strings.TrimSpace(resumeID), JobID: strings.TrimSpace(jobID)}
	if err := validateInput(in); err != nil {
		return OptimizationResult{}, err
	}

	endpoint := fmt.Sprintf("/resumes/%s/optimize/%s", url.PathEscape(in.ResumeID), url.PathEscape(in.JobID))
	v, err := s.api.Request(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return OptimizationResult{}, err
	}

	obj, _ := payload.AsObject(v)
	return OptimizationResult{
		Resume:  s.norm.Resume(obj),
		Changes: s.norm.OptimizationChanges(obj["changes"]),
	}, nil
}
