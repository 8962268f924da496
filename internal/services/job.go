package services

import (
	"context"
	"net/http"
	"strings"

	"applytrack/internal/normalize"
	"applytrack/internal/types"
)

// JobService analyzes and fetches job descriptions
type JobService struct {
	api  Requester
	norm *normalize.Normalizer
}

// NewJobService creates a new job description service
func NewJobService(api Requester, norm *normalize.Normalizer) *JobService {
	return &JobService{api: api, norm: norm}
}

// analyzeRequest carries exactly one of url and text
type analyzeRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

type analyzeInput struct {
	Input string `json:"input" validate:"required"`
}

// Analyze submits a posting, given as a URL or as raw text, for analysis.
func (s *JobService) Analyze(ctx context.Context, input string, isURL bool) (types.JobDescription, error) {
	in := analyzeInput{Input: strings.TrimSpace(input)}
	if err := validateInput(in); err != nil {
		return types.JobDescription{}, err
	}

	body := analyzeRequest{Text: in.Input}
	if isURL {
		body = analyzeRequest{URL: in.Input}
	}

	v, err := s.api.Request(ctx, http.MethodPost, "/job-descriptions/analyze", body)
	if err != nil {
		return types.JobDescription{}, err
	}
	return s.norm.JobDescription(v), nil
}

// Get fetches a job description by id
func (s *JobService) Get(ctx context.Context, id string) (types.JobDescription, error) {
	seg, err := requireID(id)
	if err != nil {
		return types.JobDescription{}, err
	}

	v, err := s.api.Request(ctx, http.MethodGet, "/job-descriptions/"+seg, nil)
	if err != nil {
		return types.JobDescription{}, err
	}
	return s.norm.JobDescription(v), nil
}
