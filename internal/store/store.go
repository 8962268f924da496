// Package store holds the in-memory session state: the current job
// description, resume and cover letter, their histories, the last ATS score
// and optimization changes, and the tracked applications.
//
// A Store is created once by the caller and passed to whoever needs it.
// Every action is a whole-field replace or an append, applied atomically
// under the store's lock. Records go in and come out as copies, so callers
// never share memory with the store.
package store

import (
	"sync"
	"time"

	"applytrack/internal/types"
)

// State is a point-in-time copy of the store contents.
type State struct {
	CurrentJobDescription *types.JobDescription      `json:"currentJobDescription"`
	JobDescriptions       []types.JobDescription     `json:"jobDescriptions"`
	CurrentResume         *types.Resume              `json:"currentResume"`
	Resumes               []types.Resume             `json:"resumes"`
	CurrentCoverLetter    *types.CoverLetter         `json:"currentCoverLetter"`
	CoverLetters          []types.CoverLetter        `json:"coverLetters"`
	ATSScore              *types.ATSScore            `json:"atsScore"`
	OptimizationChanges   []types.OptimizationChange `json:"optimizationChanges"`
	Applications          []types.JobApplication     `json:"applications"`
	SelectedApplication   *types.JobApplication      `json:"selectedApplication"`
}

// ApplicationPatch lists the fields UpdateApplication may change. Nil fields
// are left alone. Notes and Timeline replace the whole list; callers append
// to the current list themselves. The id cannot be patched.
type ApplicationPatch struct {
	Company         *string
	Role            *string
	JobLink         *string
	ResumeID        *string
	CoverLetterID   *string
	Status          *types.ApplicationStatus
	ApplicationDate *time.Time
	Notes           []types.ApplicationNote
	Timeline        []types.TimelineEvent
}

// Store is the session state container. The zero value is not usable; call New.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(State)
}

// New returns a store with empty collections and nothing selected.
func New() *Store {
	return &Store{state: emptyState()}
}

func emptyState() State {
	return State{
		JobDescriptions:     []types.JobDescription{},
		Resumes:             []types.Resume{},
		CoverLetters:        []types.CoverLetter{},
		OptimizationChanges: []types.OptimizationChange{},
		Applications:        []types.JobApplication{},
	}
}

// Subscribe registers fn to be called with a snapshot after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// mutate applies fn under the write lock, then notifies listeners outside it.
func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	listeners := append([]listener(nil), s.listeners...)
	var snapshot State
	if len(listeners) > 0 {
		snapshot = cloneState(s.state)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(snapshot)
	}
}

// SetCurrentJobDescription replaces the current job description; nil clears it.
func (s *Store) SetCurrentJobDescription(job *types.JobDescription) {
	s.mutate(func(st *State) { st.CurrentJobDescription = clonePtr(job, types.JobDescription.Clone) })
}

// AddJobDescription appends job to the job description history.
func (s *Store) AddJobDescription(job types.JobDescription) {
	s.mutate(func(st *State) { st.JobDescriptions = append(st.JobDescriptions, job.Clone()) })
}

// SetCurrentResume replaces the current resume; nil clears it.
func (s *Store) SetCurrentResume(resume *types.Resume) {
	s.mutate(func(st *State) { st.CurrentResume = clonePtr(resume, types.Resume.Clone) })
}

// AddResume appends resume to the resume history.
func (s *Store) AddResume(resume types.Resume) {
	s.mutate(func(st *State) { st.Resumes = append(st.Resumes, resume.Clone()) })
}

// SetCurrentCoverLetter replaces the current cover letter; nil clears it.
func (s *Store) SetCurrentCoverLetter(letter *types.CoverLetter) {
	s.mutate(func(st *State) { st.CurrentCoverLetter = clonePtr(letter, identity[types.CoverLetter]) })
}

// AddCoverLetter appends letter to the cover letter history.
func (s *Store) AddCoverLetter(letter types.CoverLetter) {
	s.mutate(func(st *State) { st.CoverLetters = append(st.CoverLetters, letter) })
}

// SetATSScore replaces the last ATS score.
func (s *Store) SetATSScore(score types.ATSScore) {
	s.mutate(func(st *State) {
		c := score.Clone()
		st.ATSScore = &c
	})
}

// SetOptimizationChanges replaces the optimization changes.
func (s *Store) SetOptimizationChanges(changes []types.OptimizationChange) {
	s.mutate(func(st *State) { st.OptimizationChanges = cloneSlice(changes, types.OptimizationChange.Clone) })
}

// AddApplication appends app to the applications list. Duplicates are kept.
func (s *Store) AddApplication(app types.JobApplication) {
	s.mutate(func(st *State) { st.Applications = append(st.Applications, app.Clone()) })
}

// UpdateApplication applies patch to the application with the given id and
// reports whether one was found. The selected application is patched too
// when it has the same id. Unknown ids change nothing.
func (s *Store) UpdateApplication(id string, patch ApplicationPatch) bool {
	found := false
	s.mutate(func(st *State) {
		for i := range st.Applications {
			if st.Applications[i].ID == id {
				st.Applications[i] = patch.apply(st.Applications[i])
				found = true
			}
		}
		if st.SelectedApplication != nil && st.SelectedApplication.ID == id {
			patched := patch.apply(*st.SelectedApplication)
			st.SelectedApplication = &patched
		}
	})
	return found
}

// SetSelectedApplication replaces the selected application; nil clears it.
func (s *Store) SetSelectedApplication(app *types.JobApplication) {
	s.mutate(func(st *State) { st.SelectedApplication = clonePtr(app, types.JobApplication.Clone) })
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

// Application returns a copy of the application with the given id.
func (s *Store) Application(id string) (types.JobApplication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.state.Applications {
		if app.ID == id {
			return app.Clone(), true
		}
	}
	return types.JobApplication{}, false
}

// Applications returns a copy of the applications list in insertion order.
func (s *Store) Applications() []types.JobApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.state.Applications, types.JobApplication.Clone)
}

// apply returns app with the set fields of p merged over it.
func (p ApplicationPatch) apply(app types.JobApplication) types.JobApplication {
	out := app.Clone()
	if p.Company != nil {
		out.Company = *p.Company
	}
	if p.Role != nil {
		out.Role = *p.Role
	}
	if p.JobLink != nil {
		out.JobLink = *p.JobLink
	}
	if p.ResumeID != nil {
		out.ResumeID = *p.ResumeID
	}
	if p.CoverLetterID != nil {
		id := *p.CoverLetterID
		out.CoverLetterID = &id
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.ApplicationDate != nil {
		d := *p.ApplicationDate
		out.ApplicationDate = &d
	}
	if p.Notes != nil {
		out.Notes = append([]types.ApplicationNote{}, p.Notes...)
	}
	if p.Timeline != nil {
		out.Timeline = append([]types.TimelineEvent{}, p.Timeline...)
	}
	return out
}

func cloneState(st State) State {
	return State{
		CurrentJobDescription: clonePtr(st.CurrentJobDescription, types.JobDescription.Clone),
		JobDescriptions:       cloneSlice(st.JobDescriptions, types.JobDescription.Clone),
		CurrentResume:         clonePtr(st.CurrentResume, types.Resume.Clone),
		Resumes:               cloneSlice(st.Resumes, types.Resume.Clone),
		CurrentCoverLetter:    clonePtr(st.CurrentCoverLetter, identity[types.CoverLetter]),
		CoverLetters:          cloneSlice(st.CoverLetters, identity[types.CoverLetter]),
		ATSScore:              clonePtr(st.ATSScore, types.ATSScore.Clone),
		OptimizationChanges:   cloneSlice(st.OptimizationChanges, types.OptimizationChange.Clone),
		Applications:          cloneSlice(st.Applications, types.JobApplication.Clone),
		SelectedApplication:   clonePtr(st.SelectedApplication, types.JobApplication.Clone),
	}
}

func clonePtr[T any](v *T, clone func(T) T) *T {
	if v == nil {
		return nil
	}
	c := clone(*v)
	return &c
}

func cloneSlice[T any](in []T, clone func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

func identity[T any](v T) T { return v }
