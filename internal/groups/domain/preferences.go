package domain

import (
	"errors"
	"fmt"
)

// Category is a notification category a member can mute.
type Category string

const (
	CategoryAssignment Category = "ASSIGNMENT"
	CategoryMention    Category = "MENTION"
	CategoryGroup      Category = "GROUP"
	CategoryReminder   Category = "REMINDER"
	CategoryPoll       Category = "POLL"
)

var ErrUnknownCategory = errors.New("unknown notification category")

// NotificationPreferences holds one switch per category.
type NotificationPreferences struct {
	Assignment bool
	Mention    bool
	Group      bool
	Reminder   bool
	Poll       bool
}

// DefaultPreferences is what members get on join.
func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		Group:    true,
		Reminder: true,
		Poll:     true,
	}
}

// CreatorPreferences is what the creator gets: everything on.
func CreatorPreferences() NotificationPreferences {
	return NotificationPreferences{
		Assignment: true,
		Mention:    true,
		Group:      true,
		Reminder:   true,
		Poll:       true,
	}
}

// Enabled reports whether c is switched on. Unknown categories are off.
func (p NotificationPreferences) Enabled(c Category) bool {
	switch c {
	case CategoryAssignment:
		return p.Assignment
	case CategoryMention:
		return p.Mention
	case CategoryGroup:
		return p.Group
	case CategoryReminder:
		return p.Reminder
	case CategoryPoll:
		return p.Poll
	default:
		return false
	}
}

// With returns p with category c set to on.
func (p NotificationPreferences) With(c Category, on bool) (NotificationPreferences, error) {
	switch c {
	case CategoryAssignment:
		p.Assignment = on
	case CategoryMention:
		p.Mention = on
	case CategoryGroup:
		p.Group = on
	case CategoryReminder:
		p.Reminder = on
	case CategoryPoll:
		p.Poll = on
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return p, nil
}

// MemberSettings is a member's update to their own settings; nil fields are untouched.
type MemberSettings struct {
	Pinned      *bool
	Preferences map[Category]bool
}

// Apply returns m with the settings applied.
func (s MemberSettings) Apply(m Member) (Member, error) {
	if s.Pinned != nil {
		m.Pinned = *s.Pinned
	}
	for c, on := range s.Preferences {
		p, err := m.Preferences.With(c, on)
		if err != nil {
			return m, err
		}
		m.Preferences = p
	}
	return m, nil
}
