package model

import "time"

const PushEventType = "PushEvent"

type EventFeedResponse struct {
	Meta Meta    `json:"meta"`
	Data []Event `json:"data"`
}

type Meta struct {
	Status int `json:"status"`
}

type Event struct {
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	Repo      struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Size    int      `json:"size"`
		Commits []Commit `json:"commits"`
	} `json:"payload"`
}

type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  struct {
		Email string `json:"email"`
	} `json:"author"`
}

func (e *Event) IsPush() bool { return e.Type == PushEventType }

// CreatedTime parses created_at. Validate guarantees it succeeds for push events.
func (e *Event) CreatedTime() (time.Time, error) {
	return time.Parse(time.RFC3339, e.CreatedAt)
}

// ShortSHA returns the conventional 7 character abbreviation.
func (c *Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// Render is one recorded widget invocation.
type Render struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Status    int    `json:"status"`
	Pushes    int    `json:"pushes"`
	HTML      string `json:"html"`
	CreatedAt string `json:"created_at"`
}
