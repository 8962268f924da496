package session

import (
	"math"

	"applytrack/internal/types"
)

// recentLimit is how many applications the dashboard lists
const recentLimit = 5

// Dashboard summarizes the tracked applications
type Dashboard struct {
	Total        int                    `json:"total"`
	NotApplied   int                    `json:"notApplied"`
	Applied      int                    `json:"applied"`
	Interview    int                    `json:"interview"`
	Offer        int                    `json:"offer"`
	Rejected     int                    `json:"rejected"`
	ResponseRate float64                `json:"responseRate"`
	Recent       []types.JobApplication `json:"recentApplications"`
}

// NewDashboard computes the dashboard for apps. The response rate is the
// share of applications that reached interview or offer, as a percentage
// rounded to one decimal, and 0 when there are none.
func NewDashboard(apps []types.JobApplication) Dashboard {
	d := Dashboard{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case types.StatusNotApplied:
			d.NotApplied++
		case types.StatusApplied:
			d.Applied++
		case types.StatusInterview:
			d.Interview++
		case types.StatusOffer:
			d.Offer++
		case types.StatusRejected:
			d.Rejected++
		}
	}

	if d.Total > 0 {
		rate := float64(d.Interview+d.Offer) / float64(d.Total) * 100
		d.ResponseRate = math.Round(rate*10) / 10
	}

	n := min(len(apps), recentLimit)
	d.Recent = make([]types.JobApplication, n)
	copy(d.Recent, apps[:n])
	return d
}

// Dashboard summarizes the applications in the store
func (s *Session) Dashboard() Dashboard {
	return NewDashboard(s.store.Applications())
}
