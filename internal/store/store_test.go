package store

import (
	"sync"
	"testing"
	"time"

	"applytrack/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleApplication(id string) types.JobApplication {
	cl := "cl-" + id
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	return types.JobApplication{
		ID:              id,
		Company:         "Acme " + id,
		Role:            "Engineer",
		JobLink:         "https://acme.example/" + id,
		ResumeID:        "20",
		CoverLetterID:   &cl,
		Status:          types.StatusApplied,
		ApplicationDate: &date,
		Notes:           []types.ApplicationNote{{ID: "n1", Content: "first", CreatedAt: date}},
		Timeline:        []types.TimelineEvent{{ID: "t1", Type: types.EventSubmitted, Title: "Submitted", Date: date}},
		CreatedAt:       date,
	}
}

func statusPtr(s types.ApplicationStatus) *types.ApplicationStatus { return &s }

func TestNewStoreIsEmpty(t *testing.T) {
	st := New().Snapshot()

	assert.Nil(t, st.CurrentJobDescription)
	assert.Nil(t, st.CurrentResume)
	assert.Nil(t, st.CurrentCoverLetter)
	assert.Nil(t, st.ATSScore)
	assert.Nil(t, st.SelectedApplication)
	assert.NotNil(t, st.JobDescriptions)
	assert.NotNil(t, st.Resumes)
	assert.NotNil(t, st.CoverLetters)
	assert.NotNil(t, st.OptimizationChanges)
	assert.NotNil(t, st.Applications)
	assert.Empty(t, st.Applications)
}

func TestAddApplicationKeepsOrder(t *testing.T) {
	s := New()
	a, b := sampleApplication("A"), sampleApplication("B")

	s.AddApplication(a)
	s.AddApplication(b)
	s.AddApplication(a)

	apps := s.Applications()
	require.Len(t, apps, 3)
	assert.Equal(t, "A", apps[0].ID)
	assert.Equal(t, "B", apps[1].ID)
	assert.Equal(t, "A", apps[2].ID)
}

func TestUpdateApplicationStatusOnly(t *testing.T) {
	s := New()
	a, b := sampleApplication("A"), sampleApplication("B")
	s.AddApplication(a)
	s.AddApplication(b)

	ok := s.UpdateApplication("A", ApplicationPatch{Status: statusPtr(types.StatusOffer)})
	require.True(t, ok)

	apps := s.Applications()
	want := a.Clone()
	want.Status = types.StatusOffer
	assert.Equal(t, want, apps[0])
	assert.Equal(t, b, apps[1])
}

func TestUpdateApplicationUnknownID(t *testing.T) {
	s := New()
	s.AddApplication(sampleApplication("A"))
	before := s.Applications()

	ok := s.UpdateApplication("missing", ApplicationPatch{Status: statusPtr(types.StatusRejected)})
	assert.False(t, ok)
	assert.Equal(t, before, s.Applications())
}

func TestUpdateApplicationReplacesLists(t *testing.T) {
	s := New()
	s.AddApplication(sampleApplication("A"))

	notes := []types.ApplicationNote{{ID: "n2", Content: "only"}}
	require.True(t, s.UpdateApplication("A", ApplicationPatch{Notes: notes}))

	app, ok := s.Application("A")
	require.True(t, ok)
	assert.Equal(t, notes, app.Notes)
	assert.Len(t, app.Timeline, 1, "timeline was not part of the patch")

	notes[0].Content = "mutated by caller"
	app, _ = s.Application("A")
	assert.Equal(t, "only", app.Notes[0].Content)
}

func TestUpdateApplicationRefreshesSelection(t *testing.T) {
	s := New()
	a := sampleApplication("A")
	other := sampleApplication("B")
	s.AddApplication(a)
	s.AddApplication(other)

	s.SetSelectedApplication(&a)
	role := "Staff Engineer"
	s.UpdateApplication("A", ApplicationPatch{Role: &role})
	require.NotNil(t, s.Snapshot().SelectedApplication)
	assert.Equal(t, "Staff Engineer", s.Snapshot().SelectedApplication.Role)

	s.SetSelectedApplication(&other)
	s.UpdateApplication("A", ApplicationPatch{Role: &role, Status: statusPtr(types.StatusInterview)})
	assert.Equal(t, other, *s.Snapshot().SelectedApplication)
}

func TestSelectionIsPatchedEvenWhenNotListed(t *testing.T) {
	s := New()
	a := sampleApplication("A")
	s.SetSelectedApplication(&a)

	ok := s.UpdateApplication("A", ApplicationPatch{Status: statusPtr(types.StatusRejected)})
	assert.False(t, ok)
	assert.Equal(t, types.StatusRejected, s.Snapshot().SelectedApplication.Status)
	assert.Empty(t, s.Applications())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New()
	resume := types.Resume{
		ID:              "5",
		OriginalContent: types.ResumeSection{Skills: []string{"Go"}},
	}
	s.SetCurrentResume(&resume)
	s.AddResume(resume)

	resume.OriginalContent.Skills[0] = "changed by caller"

	snap := s.Snapshot()
	assert.Equal(t, "Go", snap.CurrentResume.OriginalContent.Skills[0])
	snap.Resumes[0].OriginalContent.Skills[0] = "changed by reader"
	assert.Equal(t, "Go", s.Snapshot().Resumes[0].OriginalContent.Skills[0])
}

func TestSetCurrentNilClears(t *testing.T) {
	s := New()
	job := types.JobDescription{ID: "7"}
	s.SetCurrentJobDescription(&job)
	require.NotNil(t, s.Snapshot().CurrentJobDescription)

	s.SetCurrentJobDescription(nil)
	assert.Nil(t, s.Snapshot().CurrentJobDescription)
}

func TestWholeValueReplace(t *testing.T) {
	s := New()
	s.SetATSScore(types.ATSScore{Score: 40})
	s.SetATSScore(types.ATSScore{Score: 80})
	s.SetOptimizationChanges([]types.OptimizationChange{{ID: "c1"}, {ID: "c2"}})
	s.SetOptimizationChanges([]types.OptimizationChange{{ID: "c3"}})
	s.AddCoverLetter(types.CoverLetter{ID: "1"})
	letter := types.CoverLetter{ID: "2"}
	s.SetCurrentCoverLetter(&letter)

	snap := s.Snapshot()
	assert.Equal(t, 80.0, snap.ATSScore.Score)
	require.Len(t, snap.OptimizationChanges, 1)
	assert.Equal(t, "c3", snap.OptimizationChanges[0].ID)
	assert.Equal(t, "2", snap.CurrentCoverLetter.ID)
	assert.Len(t, snap.CoverLetters, 1)

	s.SetOptimizationChanges(nil)
	assert.NotNil(t, s.Snapshot().OptimizationChanges)
}

func TestSubscribe(t *testing.T) {
	s := New()
	var seen []int
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, len(st.JobDescriptions)) })

	s.AddJobDescription(types.JobDescription{ID: "1"})
	s.AddJobDescription(types.JobDescription{ID: "2"})
	unsubscribe()
	s.AddJobDescription(types.JobDescription{ID: "3"})

	assert.Equal(t, []int{1, 2}, seen)
}

func TestConcurrentAppends(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app := sampleApplication("A")
			app.Role = string(rune('a' + i%26))
			s.AddApplication(app)
			s.UpdateApplication("A", ApplicationPatch{Status: statusPtr(types.StatusInterview)})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	apps := s.Applications()
	assert.Len(t, apps, 50)
	for _, app := range apps {
		assert.Equal(t, types.StatusInterview, app.Status)
	}
}
