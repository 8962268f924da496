package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"applytrack/internal/normalize"
	"applytrack/internal/types"
)

// ATSService requests keyword match scores
type ATSService struct {
	api  Requester
	norm *normalize.Normalizer
}

// NewATSService creates a new ATS scoring service
func NewATSService(api Requester, norm *normalize.Normalizer) *ATSService {
	return &ATSService{api: api, norm: norm}
}

type scoreInput struct {
	ResumeID string `json:"resumeId" validate:"required"`
	JobID    string `json:"jobDescriptionId" validate:"required"`
}

// Score returns the match score of a resume against a job description
func (s *ATSService) Score(ctx context.Context, resumeID, jobID string) (types.ATSScore, error) {
	in := scoreInput{ResumeID: strings.TrimSpace(resumeID), JobID: strings.TrimSpace(jobID)}
	if err := validateInput(in); err != nil {
		return types.ATSScore{}, err
	}

	query := url.Values{}
	query.Set("resumeId", in.ResumeID)
	query.Set("jobDescriptionId", in.JobID)

	v, err := s.api.Request(ctx, http.MethodGet, "/ats/score?"+query.Encode(), nil)
	if err != nil {
		return types.ATSScore{}, err
	}
	return s.norm.ATSScore(v), nil
}
