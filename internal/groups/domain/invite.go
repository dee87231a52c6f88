package domain

import "time"

const (
	// UnlimitedUses marks an invite that never exhausts.
	UnlimitedUses = -1

	DefaultInviteTTL     = 48 * time.Hour
	DefaultInviteMaxUses = 1
)

// InviteStatus is what a lookup reports about an invite.
type InviteStatus string

const (
	InviteActive    InviteStatus = "active"
	InviteExpired   InviteStatus = "expired"
	InviteExhausted InviteStatus = "exhausted"
)

// Invite is a stored join token. Only the fingerprint of the token is kept.
type Invite struct {
	ID        string
	TokenHash string
	GroupID   string
	CreatedBy string
	ExpiresAt time.Time
	MaxUses   int
	UsesCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired is true from ExpiresAt onwards.
func (i Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Exhausted is true once a finite invite has been used MaxUses times.
func (i Invite) Exhausted() bool {
	return i.MaxUses != UnlimitedUses && i.UsesCount >= i.MaxUses
}

// Status reports exhaustion before expiry; both mean the invite is unusable.
func (i Invite) Status(now time.Time) InviteStatus {
	switch {
	case i.Exhausted():
		return InviteExhausted
	case i.Expired(now):
		return InviteExpired
	default:
		return InviteActive
	}
}

// RemainingUses is UnlimitedUses for unlimited invites.
func (i Invite) RemainingUses() int {
	if i.MaxUses == UnlimitedUses {
		return UnlimitedUses
	}
	return max(i.MaxUses-i.UsesCount, 0)
}

// ValidMaxUses accepts a positive count or UnlimitedUses.
func ValidMaxUses(n int) bool {
	return n == UnlimitedUses || n >= 1
}
