package model

import "fmt"

// Validate checks the fields the widget dereferences. Only push events are
// inspected beyond their type.
func (f *EventFeedResponse) Validate() error {
	for i := range f.Data {
		if err := f.Data[i].validate(fmt.Sprintf("data[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Event) validate(path string) error {
	if e.Type == "" {
		return NewMalformedResponseError(path+".type", "missing", nil)
	}
	if !e.IsPush() {
		return nil
	}
	if _, err := e.CreatedTime(); err != nil {
		return NewMalformedResponseError(path+".created_at", "not an RFC 3339 timestamp", err)
	}
	if e.Repo.Name == "" {
		return NewMalformedResponseError(path+".repo.name", "missing", nil)
	}
	if e.Payload.Size < 0 {
		return NewMalformedResponseError(path+".payload.size", "negative", nil)
	}
	for j, c := range e.Payload.Commits {
		if c.SHA == "" {
			return NewMalformedResponseError(fmt.Sprintf("%s.payload.commits[%d].sha", path, j), "missing", nil)
		}
	}
	return nil
}
