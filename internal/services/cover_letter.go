package services

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	applytrackErrors "applytrack/internal/errors"
	"applytrack/internal/normalize"
	"applytrack/internal/types"
)

// CoverLetterService uploads and fetches cover letters
type CoverLetterService struct {
	api    Requester
	norm   *normalize.Normalizer
	logger *applytrackErrors.Logger
}

// NewCoverLetterService creates a new cover letter service
func NewCoverLetterService(api Requester, norm *normalize.Normalizer, logger *applytrackErrors.Logger) *CoverLetterService {
	if logger == nil {
		logger = applytrackErrors.NewNopLogger()
	}
	return &CoverLetterService{api: api, norm: norm, logger: logger}
}

// Upload sends a cover letter. When the backend cannot take it, for any
// reason, a local cover letter built from the file text is returned instead.
// The second result reports whether the letter is local only.
func (s *CoverLetterService) Upload(ctx context.Context, filename string, content []byte) (types.CoverLetter, bool, error) {
	in := uploadInput{Filename: strings.TrimSpace(filename)}
	if err := validateInput(in); err != nil {
		return types.CoverLetter{}, false, err
	}

	v, err := s.api.Upload(ctx, "/cover-letters/upload", in.Filename, bytes.NewReader(content))
	if err != nil {
		if ctx.Err() != nil {
			return types.CoverLetter{}, false, ctx.Err()
		}
		s.logger.LogError(err, "Cover letter upload failed, keeping a local copy", "file", in.Filename)
		return s.norm.LocalCoverLetter(in.Filename, string(content)), true, nil
	}

	return s.norm.CoverLetter(v, in.Filename), false, nil
}

// Get fetches a cover letter by id
func (s *CoverLetterService) Get(ctx context.Context, id string) (types.CoverLetter, error) {
	seg, err := requireID(id)
	if err != nil {
		return types.CoverLetter{}, err
	}

	v, err := s.api.Request(ctx, http.MethodGet, "/cover-letters/"+seg, nil)
	if err != nil {
		return types.CoverLetter{}, err
	}
	return s.norm.CoverLetter(v, ""), nil
}
