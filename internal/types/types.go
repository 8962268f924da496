package types

import "time"

// ExtractedData holds the keyword lists the backend pulls out of a job posting.
// Every list is non-nil once a JobDescription has been normalized.
type ExtractedData struct {
	RequiredSkills   []string `json:"requiredSkills"`
	Keywords         []string `json:"keywords"`
	Technologies     []string `json:"technologies"`
	SoftSkills       []string `json:"softSkills"`
	Responsibilities []string `json:"responsibilities"`
}

// JobDescription represents an analyzed job posting
type JobDescription struct {
	ID            string        `json:"id"`
	URL           string        `json:"url,omitempty"`
	Title         string        `json:"title"`
	Company       string        `json:"company"`
	Description   string        `json:"description"`
	ExtractedData ExtractedData `json:"extractedData"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Clone returns a deep copy of the job description.
func (j JobDescription) Clone() JobDescription {
	j.ExtractedData = ExtractedData{
		RequiredSkills:   cloneStrings(j.ExtractedData.RequiredSkills),
		Keywords:         cloneStrings(j.ExtractedData.Keywords),
		Technologies:     cloneStrings(j.ExtractedData.Technologies),
		SoftSkills:       cloneStrings(j.ExtractedData.SoftSkills),
		Responsibilities: cloneStrings(j.ExtractedData.Responsibilities),
	}
	return j
}

// ExperienceItem is one position in the experience section of a resume
type ExperienceItem struct {
	ID       string   `json:"id"`
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Duration string   `json:"duration"`
	Bullets  []string `json:"bullets"`
}

// ProjectItem is one entry in the projects section of a resume
type ProjectItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// ResumeSection is the structured body of a resume. It is used for both the
// original and the optimized content of a Resume.
type ResumeSection struct {
	Summary    string           `json:"summary"`
	Experience []ExperienceItem `json:"experience"`
	Skills     []string         `json:"skills"`
	Projects   []ProjectItem    `json:"projects"`
}

// Clone returns a deep copy of the section.
func (s ResumeSection) Clone() ResumeSection {
	out := ResumeSection{
		Summary:    s.Summary,
		Experience: make([]ExperienceItem, len(s.Experience)),
		Skills:     cloneStrings(s.Skills),
		Projects:   make([]ProjectItem, len(s.Projects)),
	}
	for i, exp := range s.Experience {
		exp.Bullets = cloneStrings(exp.Bullets)
		out.Experience[i] = exp
	}
	for i, proj := range s.Projects {
		proj.Technologies = cloneStrings(proj.Technologies)
		out.Projects[i] = proj
	}
	return out
}

// Resume is an uploaded resume together with its optimized counterpart
type Resume struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	OriginalContent  ResumeSection `json:"originalContent"`
	OptimizedContent ResumeSection `json:"optimizedContent"`
	Version          string        `json:"version"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Clone returns a deep copy of the resume.
func (r Resume) Clone() Resume {
	r.OriginalContent = r.OriginalContent.Clone()
	r.OptimizedContent = r.OptimizedContent.Clone()
	return r
}

// CoverLetter holds a plain text cover letter
type CoverLetter struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	OriginalContent  string    `json:"originalContent"`
	OptimizedContent string    `json:"optimizedContent"`
	Version          string    `json:"version"`
	CreatedAt        time.Time `json:"createdAt"`
}

// KeywordMatch describes how a single job keyword relates to the resume
type KeywordMatch struct {
	Keyword   string          `json:"keyword"`
	Matched   bool            `json:"matched"`
	Suggested bool            `json:"suggested"`
	Category  KeywordCategory `json:"category"`
}

// ATSScore is the backend's keyword match result for a resume and a job.
// Score is passed through as received, nominally in [0,100].
type ATSScore struct {
	Score             float64        `json:"score"`
	MatchedKeywords   []KeywordMatch `json:"matchedKeywords"`
	MissingKeywords   []KeywordMatch `json:"missingKeywords"`
	SuggestedKeywords []KeywordMatch `json:"suggestedKeywords"`
}

// Clone returns a deep copy of the score.
func (a ATSScore) Clone() ATSScore {
	a.MatchedKeywords = append([]KeywordMatch{}, a.MatchedKeywords...)
	a.MissingKeywords = append([]KeywordMatch{}, a.MissingKeywords...)
	a.SuggestedKeywords = append([]KeywordMatch{}, a.SuggestedKeywords...)
	return a
}

// OptimizationChange is one suggested edit to a resume section
type OptimizationChange struct {
	ID            string              `json:"id"`
	Section       OptimizationSection `json:"section"`
	Original      string              `json:"original"`
	Optimized     string              `json:"optimized"`
	Explanation   string              `json:"explanation"`
	KeywordsAdded []string            `json:"keywordsAdded"`
}

// Clone returns a deep copy of the change.
func (c OptimizationChange) Clone() OptimizationChange {
	c.KeywordsAdded = cloneStrings(c.KeywordsAdded)
	return c
}

// ApplicationNote is a free text note attached to an application
type ApplicationNote struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TimelineEvent records something that happened to an application
type TimelineEvent struct {
	ID          string            `json:"id"`
	Type        TimelineEventType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
}

// JobApplication joins a job with the resume (and optionally the cover letter)
// used to apply for it. Ids are kept as strings on the client.
type JobApplication struct {
	ID              string            `json:"id"`
	Company         string            `json:"company"`
	Role            string            `json:"role"`
	JobLink         string            `json:"jobLink"`
	ResumeID        string            `json:"resumeId"`
	CoverLetterID   *string           `json:"coverLetterId,omitempty"`
	Status          ApplicationStatus `json:"status"`
	ApplicationDate *time.Time        `json:"applicationDate,omitempty"`
	Notes           []ApplicationNote `json:"notes"`
	Timeline        []TimelineEvent   `json:"timeline"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Clone returns a copy that shares no mutable memory with the receiver.
func (a JobApplication) Clone() JobApplication {
	if a.CoverLetterID != nil {
		id := *a.CoverLetterID
		a.CoverLetterID = &id
	}
	if a.ApplicationDate != nil {
		d := *a.ApplicationDate
		a.ApplicationDate = &d
	}
	a.Notes = append([]ApplicationNote{}, a.Notes...)
	a.Timeline = append([]TimelineEvent{}, a.Timeline...)
	return a
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}
