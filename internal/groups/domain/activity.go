package domain

import "time"

type ActivityCategory string

const (
	ActivityGroup       ActivityCategory = "GROUP"
	ActivityContent     ActivityCategory = "CONTENT"
	ActivityInteraction ActivityCategory = "INTERACTION"
)

// Activity is one entry in a group's activity log.
type Activity struct {
	ID          string
	GroupID     string
	Category    ActivityCategory
	Message     string
	AuthorID    string
	AuthorName  string
	ContentKind ContentKind // optional
	ContentID   string      // optional
	CreatedAt   time.Time
}

const (
	DefaultActivityPageSize = 20
	MaxActivityPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NormalizePage clamps a page request to sane bounds.
func NormalizePage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultActivityPageSize
	}
	if size > MaxActivityPageSize {
		size = MaxActivityPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Pages is the number of pages needed to hold total entries.
func (p Page) Pages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}
