package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ContentKind names the kinds of group content the service tracks.
type ContentKind string

const (
	ContentList ContentKind = "list"
	ContentItem ContentKind = "item"
	ContentNote ContentKind = "note"
	ContentPoll ContentKind = "poll"
)

var (
	ErrInvalidContentKind = errors.New("invalid content kind")
	ErrTitleRequired      = errors.New("content title is required")
	ErrParentRequired     = errors.New("items must belong to a list")
	ErrUnexpectedParent   = errors.New("only items have a parent list")
)

func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(strings.ToLower(s))
	switch k {
	case ContentList, ContentItem, ContentNote, ContentPoll:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidContentKind, s)
}

// Content is the minimal record of a list, item, note or poll: enough to know
// who wrote it and which group owns it.
type Content struct {
	ID        string
	GroupID   string
	Kind      ContentKind
	ParentID  string // list id for items
	AuthorID  string
	Title     string
	CreatedAt time.Time
}

// Validate checks the shape of a new content record.
func (c Content) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrTitleRequired
	}
	if c.Kind == ContentItem && c.ParentID == "" {
		return ErrParentRequired
	}
	if c.Kind != ContentItem && c.ParentID != "" {
		return ErrUnexpectedParent
	}
	return nil
}

// ContentCounts reports how many records of each kind a cascade removed.
type ContentCounts struct {
	Lists int
	Items int
	Notes int
	Polls int
}

func (c ContentCounts) Total() int { return c.Lists + c.Items + c.Notes + c.Polls }

// Add returns the element-wise sum, used when a cascade is retried.
func (c ContentCounts) Add(o ContentCounts) ContentCounts {
	return ContentCounts{
		Lists: c.Lists + o.Lists,
		Items: c.Items + o.Items,
		Notes: c.Notes + o.Notes,
		Polls: c.Polls + o.Polls,
	}
}
