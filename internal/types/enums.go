package types

import "strings"

// ApplicationStatus is the closed set of states an application can be in.
// Any status may follow any other.
type ApplicationStatus string

const (
	StatusNotApplied ApplicationStatus = "not_applied"
	StatusApplied    ApplicationStatus = "applied"
	StatusInterview  ApplicationStatus = "interview"
	StatusOffer      ApplicationStatus = "offer"
	StatusRejected   ApplicationStatus = "rejected"
	StatusUnknown    ApplicationStatus = "unknown"
)

// ApplicationStatuses lists the known statuses in board order.
var ApplicationStatuses = []ApplicationStatus{
	StatusNotApplied,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

// ParseApplicationStatus maps any raw string onto the closed set.
// Unrecognized values map to StatusUnknown.
func ParseApplicationStatus(raw string) ApplicationStatus {
	s := ApplicationStatus(normalizeTag(raw, "-", "_"))
	if s.Valid() {
		return s
	}
	return StatusUnknown
}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusNotApplied, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// WireValue is the upper-case form the backend expects.
func (s ApplicationStatus) WireValue() string {
	return strings.ToUpper(string(s))
}

// Label is the human readable form, e.g. "not applied".
func (s ApplicationStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// KeywordCategory classifies a keyword match
type KeywordCategory string

const (
	CategorySkill      KeywordCategory = "skill"
	CategoryTechnology KeywordCategory = "technology"
	CategorySoftSkill  KeywordCategory = "soft-skill"
	CategoryKeyword    KeywordCategory = "keyword"
	CategoryUnknown    KeywordCategory = "unknown"
)

// ParseKeywordCategory maps any raw string onto the closed set.
func ParseKeywordCategory(raw string) KeywordCategory {
	switch c := KeywordCategory(normalizeTag(raw, "_", "-")); c {
	case CategorySkill, CategoryTechnology, CategorySoftSkill, CategoryKeyword:
		return c
	}
	return CategoryUnknown
}

// TimelineEventType classifies a timeline event
type TimelineEventType string

const (
	EventOptimized    TimelineEventType = "optimized"
	EventSubmitted    TimelineEventType = "submitted"
	EventStatusChange TimelineEventType = "status_change"
	EventNote         TimelineEventType = "note"
	EventUnknown      TimelineEventType = "unknown"
)

// ParseTimelineEventType maps any raw string onto the closed set.
func ParseTimelineEventType(raw string) TimelineEventType {
	switch t := TimelineEventType(normalizeTag(raw, "-", "_")); t {
	case EventOptimized, EventSubmitted, EventStatusChange, EventNote:
		return t
	}
	return EventUnknown
}

// OptimizationSection names the resume section an optimization change touches
type OptimizationSection string

const (
	SectionSummary    OptimizationSection = "summary"
	SectionExperience OptimizationSection = "experience"
	SectionSkills     OptimizationSection = "skills"
	SectionProjects   OptimizationSection = "projects"
	SectionUnknown    OptimizationSection = "unknown"
)

// ParseOptimizationSection maps any raw string onto the closed set.
func ParseOptimizationSection(raw string) OptimizationSection {
	switch s := OptimizationSection(normalizeTag(raw, "", "")); s {
	case SectionSummary, SectionExperience, SectionSkills, SectionProjects:
		return s
	}
	return SectionUnknown
}

// normalizeTag trims and lower-cases raw and, when from is set, replaces
// every occurrence of from with to.
func normalizeTag(raw, from, to string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if from != "" {
		tag = strings.ReplaceAll(tag, from, to)
	}
	return tag
}
