// Package normalize turns loosely shaped backend payloads into fully
// populated domain records. Missing or malformed optional fields degrade to
// documented defaults; the only failure is a resume upload without content.
package normalize

import (
	"time"

	"applytrack/internal/errors"
	"applytrack/internal/payload"
	"applytrack/internal/types"

	"github.com/google/uuid"
)

// DefaultVersion is the version label given to documents the backend sent without one.
const DefaultVersion = "1.0"

// Normalizer carries the clock and id source used for defaults.
type Normalizer struct {
	Clock func() time.Time
	IDs   func() string
}

// New returns a Normalizer using the wall clock and random UUIDs.
func New() *Normalizer {
	return &Normalizer{Clock: time.Now, IDs: uuid.NewString}
}

// Now returns the current time in UTC.
func (n *Normalizer) Now() time.Time {
	if n == nil || n.Clock == nil {
		return time.Now().UTC()
	}
	return n.Clock().UTC()
}

// NewID returns a fresh unique identifier.
func (n *Normalizer) NewID() string {
	if n == nil || n.IDs == nil {
		return uuid.NewString()
	}
	return n.IDs()
}

// Resume normalizes a resume payload. optimizedContent defaults to a deep copy
// of originalContent when the backend has not produced one.
func (n *Normalizer) Resume(v any) types.Resume {
	obj, _ := payload.AsObject(v)

	original := n.ResumeSection(obj["originalContent"])
	optimized := original.Clone()
	if raw, ok := obj.Object("optimizedContent"); ok {
		optimized = n.ResumeSection(raw)
	}

	return types.Resume{
		ID:               n.id(obj),
		Name:             obj.StringOr("name", ""),
		OriginalContent:  original,
		OptimizedContent: optimized,
		Version:          version(obj),
		CreatedAt:        n.timeOr(obj, "createdAt"),
	}
}

// UploadedResume normalizes the response of a resume upload. A response without
// originalContent means the backend could not parse the document.
func (n *Normalizer) UploadedResume(v any) (types.Resume, error) {
	obj, ok := payload.AsObject(v)
	if !ok {
		return types.Resume{}, errors.NewValidationError(errors.ErrCodeMissingContent,
			"invalid response from server: empty payload", nil)
	}
	if _, ok := obj.Object("originalContent"); !ok {
		return types.Resume{}, errors.NewValidationError(errors.ErrCodeMissingContent,
			"invalid response from server: missing resume content", nil)
	}
	return n.Resume(obj), nil
}

// ResumeSection normalizes the structured body of a resume.
func (n *Normalizer) ResumeSection(v any) types.ResumeSection {
	obj, _ := payload.AsObject(v)

	section := types.ResumeSection{
		Summary:    obj.StringOr("summary", ""),
		Experience: []types.ExperienceItem{},
		Skills:     obj.Strings("skills"),
		Projects:   []types.ProjectItem{},
	}

	for _, raw := range obj.List("experience") {
		item, ok := payload.AsObject(raw)
		if !ok {
			continue
		}
		section.Experience = append(section.Experience, types.ExperienceItem{
			ID:       n.idOrNew(item),
			Company:  item.StringOr("company", ""),
			Role:     item.StringOr("role", ""),
			Duration: item.StringOr("duration", ""),
			Bullets:  item.Strings("bullets"),
		})
	}

	for _, raw := range obj.List("projects") {
		item, ok := payload.AsObject(raw)
		if !ok {
			continue
		}
		section.Projects = append(section.Projects, types.ProjectItem{
			ID:           n.idOrNew(item),
			Name:         item.StringOr("name", ""),
			Description:  item.StringOr("description", ""),
			Technologies: item.Strings("technologies"),
		})
	}

	return section
}

// JobDescription normalizes an analyzed job posting. All five extracted lists
// are always present.
func (n *Normalizer) JobDescription(v any) types.JobDescription {
	obj, _ := payload.AsObject(v)
	extracted, _ := obj.Object("extractedData")

	return types.JobDescription{
		ID:          n.id(obj),
		URL:         obj.StringOr("url", ""),
		Title:       obj.StringOr("title", ""),
		Company:     obj.StringOr("company", ""),
		Description: obj.StringOr("description", ""),
		ExtractedData: types.ExtractedData{
			RequiredSkills:   extracted.Strings("requiredSkills"),
			Keywords:         extracted.Strings("keywords"),
			Technologies:     extracted.Strings("technologies"),
			SoftSkills:       extracted.Strings("softSkills"),
			Responsibilities: extracted.Strings("responsibilities"),
		},
		CreatedAt: n.timeOr(obj, "createdAt"),
	}
}

// CoverLetter normalizes a cover letter payload. fallbackName is used when the
// backend omits the name, optimizedContent defaults to originalContent.
func (n *Normalizer) CoverLetter(v any, fallbackName string) types.CoverLetter {
	obj, _ := payload.AsObject(v)

	original := obj.StringOr("originalContent", "")
	optimized := obj.StringOr("optimizedContent", "")
	if optimized == "" {
		optimized = original
	}
	name := obj.StringOr("name", "")
	if name == "" {
		name = fallbackName
	}

	return types.CoverLetter{
		ID:               n.id(obj),
		Name:             name,
		OriginalContent:  original,
		OptimizedContent: optimized,
		Version:          version(obj),
		CreatedAt:        n.timeOr(obj, "createdAt"),
	}
}

// LocalCoverLetter builds a cover letter that only exists on this client,
// used when the backend cannot store the upload.
func (n *Normalizer) LocalCoverLetter(name, text string) types.CoverLetter {
	return types.CoverLetter{
		ID:               n.NewID(),
		Name:             name,
		OriginalContent:  text,
		OptimizedContent: text,
		Version:          DefaultVersion,
		CreatedAt:        n.Now(),
	}
}

// ATSScore normalizes a score payload. The score itself is passed through.
func (n *Normalizer) ATSScore(v any) types.ATSScore {
	obj, _ := payload.AsObject(v)
	score, _ := obj.Number("score")

	return types.ATSScore{
		Score:             score,
		MatchedKeywords:   keywordMatches(obj.List("matchedKeywords")),
		MissingKeywords:   keywordMatches(obj.List("missingKeywords")),
		SuggestedKeywords: keywordMatches(obj.List("suggestedKeywords")),
	}
}

func keywordMatches(raw []any) []types.KeywordMatch {
	out := make([]types.KeywordMatch, 0, len(raw))
	for _, r := range raw {
		item, ok := payload.AsObject(r)
		if !ok {
			continue
		}
		matched, _ := item.Bool("matched")
		suggested, _ := item.Bool("suggested")
		out = append(out, types.KeywordMatch{
			Keyword:   item.StringOr("keyword", ""),
			Matched:   matched,
			Suggested: suggested,
			Category:  types.ParseKeywordCategory(item.StringOr("category", "")),
		})
	}
	return out
}

// OptimizationChanges normalizes the list of suggested edits returned with an
// optimization. A non-array input yields an empty list.
func (n *Normalizer) OptimizationChanges(v any) []types.OptimizationChange {
	raw, _ := v.([]any)
	out := make([]types.OptimizationChange, 0, len(raw))
	for _, r := range raw {
		item, ok := payload.AsObject(r)
		if !ok {
			continue
		}
		out = append(out, types.OptimizationChange{
			ID:            n.idOrNew(item),
			Section:       types.ParseOptimizationSection(item.StringOr("section", "")),
			Original:      item.StringOr("original", ""),
			Optimized:     item.StringOr("optimized", ""),
			Explanation:   item.StringOr("explanation", ""),
			KeywordsAdded: item.Strings("keywordsAdded"),
		})
	}
	return out
}

func (n *Normalizer) id(obj payload.Object) string {
	id, _ := obj.ID("id")
	return id
}

func (n *Normalizer) idOrNew(obj payload.Object) string {
	if id, ok := obj.ID("id"); ok {
		return id
	}
	return n.NewID()
}

func (n *Normalizer) timeOr(obj payload.Object, key string) time.Time {
	if t, ok := obj.Time(key); ok {
		return t
	}
	return n.Now()
}

func version(obj payload.Object) string {
	if v := obj.StringOr("version", ""); v != "" {
		return v
	}
	return DefaultVersion
}
