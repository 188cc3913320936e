package github

import (
	"fmt"
	"time"

	"githubActivityWidget/internal/model"

	"github.com/google/go-github/v66/github"
)

func convertEvents(events []*github.Event) ([]model.Event, error) {
	out := make([]model.Event, 0, len(events))
	for i, ge := range events {
		e, err := convertEvent(ge, fmt.Sprintf("data[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func convertEvent(ge *github.Event, path string) (model.Event, error) {
	var e model.Event
	if ge == nil || ge.Type == nil {
		return e, model.NewMalformedResponseError(path+".type", "missing", nil)
	}
	e.Type = ge.GetType()
	if !e.IsPush() {
		return e, nil
	}

	if ge.CreatedAt == nil {
		return e, model.NewMalformedResponseError(path+".created_at", "missing", nil)
	}
	e.CreatedAt = ge.GetCreatedAt().UTC().Format(time.RFC3339)

	if ge.Repo == nil || ge.Repo.Name == nil {
		return e, model.NewMalformedResponseError(path+".repo.name", "missing", nil)
	}
	e.Repo.Name = ge.Repo.GetName()

	if ge.RawPayload == nil {
		return e, model.NewMalformedResponseError(path+".payload", "missing", nil)
	}
	payload, err := ge.ParsePayload()
	if err != nil {
		return e, model.NewMalformedResponseError(path+".payload", "undecodable", err)
	}
	push, ok := payload.(*github.PushEvent)
	if !ok || push == nil {
		return e, model.NewMalformedResponseError(path+".payload", "not a push payload", nil)
	}
	// newer feeds may drop size and commits from push payloads; count what
	// arrived rather than failing the whole feed
	e.Payload.Size = len(push.Commits)
	if push.Size != nil {
		e.Payload.Size = push.GetSize()
	}

	for j, hc := range push.Commits {
		cpath := fmt.Sprintf("%s.payload.commits[%d]", path, j)
		if hc == nil || hc.SHA == nil {
			return e, model.NewMalformedResponseError(cpath+".sha", "missing", nil)
		}
		if hc.Author == nil {
			return e, model.NewMalformedResponseError(cpath+".author", "missing", nil)
		}
		var c model.Commit
		c.SHA = hc.GetSHA()
		c.Message = hc.GetMessage()
		c.Author.Email = hc.Author.GetEmail()
		e.Payload.Commits = append(e.Payload.Commits, c)
	}
	return e, nil
}
