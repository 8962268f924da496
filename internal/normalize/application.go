package normalize

import (
	"applytrack/internal/payload"
	"applytrack/internal/types"
)

// Application normalizes a job application payload. Status and event types
// are mapped onto their closed sets; ids become strings.
func (n *Normalizer) Application(v any) types.JobApplication {
	obj, _ := payload.AsObject(v)

	app := types.JobApplication{
		ID:        n.id(obj),
		Company:   obj.StringOr("company", ""),
		Role:      obj.StringOr("role", ""),
		JobLink:   obj.StringOr("jobLink", ""),
		ResumeID:  obj.StringOr("resumeId", ""),
		Status:    types.ParseApplicationStatus(obj.StringOr("status", "")),
		Notes:     n.notes(obj.List("notes")),
		Timeline:  n.timeline(obj.List("timeline")),
		CreatedAt: n.timeOr(obj, "createdAt"),
	}
	if id, ok := obj.ID("coverLetterId"); ok {
		app.CoverLetterID = &id
	}
	if date, ok := obj.Time("applicationDate"); ok {
		app.ApplicationDate = &date
	}
	return app
}

// Applications normalizes a list of applications. A non-array input yields
// an empty list; non-object entries are dropped.
func (n *Normalizer) Applications(v any) []types.JobApplication {
	raw, _ := v.([]any)
	out := make([]types.JobApplication, 0, len(raw))
	for _, r := range raw {
		if _, ok := payload.AsObject(r); !ok {
			continue
		}
		out = append(out, n.Application(r))
	}
	return out
}

func (n *Normalizer) notes(raw []any) []types.ApplicationNote {
	out := make([]types.ApplicationNote, 0, len(raw))
	for _, r := range raw {
		item, ok := payload.AsObject(r)
		if !ok {
			continue
		}
		out = append(out, types.ApplicationNote{
			ID:        n.idOrNew(item),
			Content:   item.StringOr("content", ""),
			CreatedAt: n.timeOr(item, "createdAt"),
		})
	}
	return out
}

func (n *Normalizer) timeline(raw []any) []types.TimelineEvent {
	out := make([]types.TimelineEvent, 0, len(raw))
	for _, r := range raw {
		item, ok := payload.AsObject(r)
		if !ok {
			continue
		}
		out = append(out, types.TimelineEvent{
			ID:          n.idOrNew(item),
			Type:        types.ParseTimelineEventType(item.StringOr("type", "")),
			Title:       item.StringOr("title", ""),
			Description: item.StringOr("description", ""),
			Date:        n.timeOr(item, "date"),
		})
	}
	return out
}
