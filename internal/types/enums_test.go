package types

import (
	"testing"
	"time"
)

func TestParseApplicationStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected ApplicationStatus
	}{
		{"applied", StatusApplied},
		{"APPLIED", StatusApplied},
		{"  Interview ", StatusInterview},
		{"NOT_APPLIED", StatusNotApplied},
		{"not-applied", StatusNotApplied},
		{"offer", StatusOffer},
		{"Rejected", StatusRejected},
		{"ghosted", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseApplicationStatus(tt.raw); got != tt.expected {
				t.Errorf("ParseApplicationStatus(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestApplicationStatusForms(t *testing.T) {
	if got := StatusNotApplied.WireValue(); got != "NOT_APPLIED" {
		t.Errorf("WireValue() = %q, want NOT_APPLIED", got)
	}
	if got := StatusNotApplied.Label(); got != "not applied" {
		t.Errorf("Label() = %q, want %q", got, "not applied")
	}
	if StatusUnknown.Valid() {
		t.Error("unknown status must not be valid")
	}
}

func TestParseKeywordCategory(t *testing.T) {
	tests := map[string]KeywordCategory{
		"skill":      CategorySkill,
		"TECHNOLOGY": CategoryTechnology,
		"soft-skill": CategorySoftSkill,
		"SOFT_SKILL": CategorySoftSkill,
		"keyword":    CategoryKeyword,
		"tool":       CategoryUnknown,
	}
	for raw, expected := range tests {
		if got := ParseKeywordCategory(raw); got != expected {
			t.Errorf("ParseKeywordCategory(%q) = %q, want %q", raw, got, expected)
		}
	}
}

func TestParseTimelineEventTypeAndSection(t *testing.T) {
	if got := ParseTimelineEventType("STATUS_CHANGE"); got != EventStatusChange {
		t.Errorf("got %q, want status_change", got)
	}
	if got := ParseTimelineEventType("email"); got != EventUnknown {
		t.Errorf("got %q, want unknown", got)
	}
	if got := ParseOptimizationSection("Skills"); got != SectionSkills {
		t.Errorf("got %q, want skills", got)
	}
	if got := ParseOptimizationSection("education"); got != SectionUnknown {
		t.Errorf("got %q, want unknown", got)
	}
}

func TestResumeSectionCloneIsDeep(t *testing.T) {
	orig := ResumeSection{
		Summary:    "S",
		Experience: []ExperienceItem{{ID: "e1", Bullets: []string{"a"}}},
		Skills:     []string{"go"},
		Projects:   []ProjectItem{{ID: "p1", Technologies: []string{"k8s"}}},
	}
	clone := orig.Clone()
	clone.Experience[0].Bullets[0] = "changed"
	clone.Skills[0] = "rust"
	clone.Projects[0].Technologies[0] = "nomad"

	if orig.Experience[0].Bullets[0] != "a" || orig.Skills[0] != "go" || orig.Projects[0].Technologies[0] != "k8s" {
		t.Errorf("clone shares memory with original: %+v", orig)
	}
}

func TestJobApplicationCloneCopiesPointers(t *testing.T) {
	cl := "7"
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	app := JobApplication{ID: "1", CoverLetterID: &cl, ApplicationDate: &date, Notes: []ApplicationNote{{ID: "n1"}}}

	clone := app.Clone()
	*clone.CoverLetterID = "8"
	*clone.ApplicationDate = date.Add(time.Hour)
	clone.Notes[0].Content = "x"

	if *app.CoverLetterID != "7" || !app.ApplicationDate.Equal(date) || app.Notes[0].Content != "" {
		t.Errorf("clone shares memory with original: %+v", app)
	}
}
