package formatters

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"applytrack/internal/services"
	"applytrack/internal/session"
	"applytrack/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleApplication() types.JobApplication {
	applied := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	return types.JobApplication{
		ID:              "11",
		Company:         "Acme",
		Role:            "Backend Engineer",
		ResumeID:        "5",
		Status:          types.StatusNotApplied,
		ApplicationDate: &applied,
		Notes:           []types.ApplicationNote{{ID: "n1", Content: "Called recruiter", CreatedAt: applied}},
		Timeline: []types.TimelineEvent{
			{ID: "t1", Type: types.EventNote, Title: "Note added", Description: "Called recruiter", Date: applied},
		},
	}
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestJSONFormatsAnything(t *testing.T) {
	out, err := GlobalRegistry.Format(map[string]int{"a": 1}, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, out)

	out, err = GlobalRegistry.Format(sampleApplication(), "json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "not_applied", decoded["status"])
}

func TestUnknownFormat(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleApplication(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no formatter found for format 'xml' and type 'JobApplication'")

	_, err = GlobalRegistry.Format(map[string]int{}, "text")
	assert.Error(t, err, "text has no generic fallback")
}

func TestApplicationText(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleApplication(), "text")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "=== BACKEND ENGINEER AT ACME ===\n"))
	assert.Contains(t, out, "Status: not applied\n")
	assert.Contains(t, out, "Applied on: 2025-03-04\n")
	assert.Contains(t, out, "2025-03-04: Called recruiter\n")
	assert.Contains(t, out, "- 2025-03-04 Note added: Called recruiter\n")
	assert.NotContains(t, out, "Job link")
}

func TestApplicationPointerAndMarkdown(t *testing.T) {
	app := sampleApplication()
	out, err := GlobalRegistry.Format(&app, "markdown")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Backend Engineer at Acme\n"))
	assert.Contains(t, out, "**Status:** not applied")
	assert.Contains(t, out, "## Timeline")
}

func TestApplicationList(t *testing.T) {
	apps := []types.JobApplication{sampleApplication(), {ID: "12", Role: "SRE", Status: types.StatusOffer}}
	out, err := GlobalRegistry.Format(apps, "text")
	require.NoError(t, err)

	assert.Contains(t, out, "=== APPLICATIONS (2) ===")
	assert.Contains(t, out, "- [11] Backend Engineer at Acme (not applied)\n")
	assert.Contains(t, out, "- [12] SRE (offer)\n")

	out, err = GlobalRegistry.Format([]types.JobApplication{}, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "_None_")
}

func TestATSScoreText(t *testing.T) {
	score := types.ATSScore{
		Score:           72.5,
		MatchedKeywords: []types.KeywordMatch{{Keyword: "Go", Matched: true, Category: types.CategorySkill}},
		MissingKeywords: []types.KeywordMatch{{Keyword: "Kafka", Category: types.CategoryUnknown}},
	}
	out, err := GlobalRegistry.Format(score, "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Score: 72.5/100\n")
	assert.Contains(t, out, "- Go (skill)\n")
	assert.Contains(t, out, "- Kafka\n")
	assert.Contains(t, out, "--- SUGGESTED KEYWORDS ---\n(none)\n")
}

func TestJobDescriptionMarkdown(t *testing.T) {
	job := types.JobDescription{
		ID:      "7",
		Title:   "Backend Engineer",
		Company: "Acme",
		ExtractedData: types.ExtractedData{
			RequiredSkills: []string{"Go", "SQL"},
		},
	}
	out, err := GlobalRegistry.Format(job, "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Job Description")
	assert.Contains(t, out, "**Title:** Backend Engineer")
	assert.Contains(t, out, "## Required Skills\n\n- Go\n- SQL\n")
}

func TestOptimizationAndResume(t *testing.T) {
	result := services.OptimizationResult{
		Resume: types.Resume{
			ID:      "6",
			Version: "1.0",
			OptimizedContent: types.ResumeSection{
				Summary:    "Go engineer",
				Experience: []types.ExperienceItem{{Company: "Acme", Role: "Dev", Duration: "2y", Bullets: []string{"Built APIs"}}},
			},
		},
		Changes: []types.OptimizationChange{{Section: types.SectionSummary, Original: "old", Optimized: "new", KeywordsAdded: []string{"Go", "gRPC"}}},
	}

	out, err := GlobalRegistry.Format(result, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "1. summary\n")
	assert.Contains(t, out, "Keywords added: Go, gRPC\n")
	assert.Contains(t, out, "Dev at Acme (2y)\n- Built APIs\n")

	out, err = GlobalRegistry.Format(result.Resume, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Go engineer")
	assert.NotContains(t, out, "CHANGES")
}

func TestDashboardAndAnalysis(t *testing.T) {
	d := session.NewDashboard([]types.JobApplication{sampleApplication()})
	out, err := GlobalRegistry.Format(d, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Total applications: 1\n")
	assert.Contains(t, out, "Response rate: 0.0%\n")
	assert.Contains(t, out, "- not applied: 1\n")

	result := &session.AnalysisResult{
		JobDescription: types.JobDescription{Title: "SRE"},
		Score:          types.ATSScore{Score: 90},
		Application:    types.JobApplication{ID: "11"},
	}
	out, err = GlobalRegistry.Format(result, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "**Job:** SRE")
	assert.Contains(t, out, "**Score:** 90.0/100")
	assert.Contains(t, out, "## Changes\n\n_None_")
}
