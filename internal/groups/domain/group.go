package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultIcon  = "default-icon"
	DefaultColor = "white"

	MaxNameLength        = 100
	MaxDescriptionLength = 500
	maxStyleLength       = 64
)

var (
	ErrNameRequired = errors.New("group name is required")
	ErrNameTooLong  = errors.New("group name is too long")
	ErrFieldTooLong = errors.New("group field is too long")
)

// Group is the aggregate root: metadata plus the ordered roster.
type Group struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
	AuthorID    string
	Members     Members
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupPatch carries the fields an update supplies; nil means untouched.
type GroupPatch struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
}

func (p GroupPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Icon == nil && p.Color == nil
}

// Apply returns g with the patch applied. It does not touch timestamps.
func (p GroupPatch) Apply(g Group) Group {
	if p.Name != nil {
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Icon != nil {
		g.Icon = *p.Icon
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
	return g
}

// ValidateMetadata checks the user-editable fields of g.
func ValidateMetadata(g Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(g.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(g.Description) > MaxDescriptionLength ||
		utf8.RuneCountInString(g.Icon) > maxStyleLength ||
		utf8.RuneCountInString(g.Color) > maxStyleLength {
		return ErrFieldTooLong
	}
	return nil
}

// NewGroup builds a group whose only member is the creator as owner.
func NewGroup(id, name, description, icon, color, creatorID string, now time.Time) Group {
	if icon == "" {
		icon = DefaultIcon
	}
	if color == "" {
		color = DefaultColor
	}
	return Group{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: description,
		Icon:        icon,
		Color:       color,
		AuthorID:    creatorID,
		Members: Members{{
			UserID:      creatorID,
			Role:        RoleOwner,
			JoinedAt:    now,
			Preferences: CreatorPreferences(),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Member is one user's membership in a group.
type Member struct {
	UserID      string
	Username    string // resolved from the user directory, not persisted with the member
	Role        Role
	JoinedAt    time.Time
	Pinned      bool
	Preferences NotificationPreferences
}

// NewMember builds a plain member with the default joiner preferences.
func NewMember(userID string, now time.Time) Member {
	return Member{
		UserID:      userID,
		Role:        RoleMember,
		JoinedAt:    now,
		Preferences: DefaultPreferences(),
	}
}

// Members is a roster in join order.
type Members []Member

// RoleOf implements RoleLookup.
func (ms Members) RoleOf(userID string) (Role, bool) {
	if m, ok := ms.Find(userID); ok {
		return m.Role, true
	}
	return "", false
}

func (ms Members) Find(userID string) (Member, bool) {
	for _, m := range ms {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

func (ms Members) Contains(userID string) bool {
	_, ok := ms.Find(userID)
	return ok
}

// CountRole counts members holding r.
func (ms Members) CountRole(r Role) int {
	n := 0
	for _, m := range ms {
		if m.Role == r {
			n++
		}
	}
	return n
}
