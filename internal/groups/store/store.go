package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict means a conditional write found its precondition no longer
	// holds (the row changed underneath the caller).
	ErrConflict = errors.New("store: precondition failed")
)

// Store is the root data access interface. Concrete drivers (sqlite, mongo)
// implement this. It exposes sub-repositories so a transaction-scoped Store
// has exactly the same shape as the root one.
type Store interface {
	Groups() Groups
	Members() Members
	Invites() Invites
	Users() Users
	Content() Content
	Activity() Activity

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Only the Tx passed to fn may be used inside fn.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Guard is the precondition for a conditional membership write. The target
// must still hold TargetRole and, when ActorID is set, the actor must still
// be a member holding ActorRole. A write whose guard fails returns ErrConflict.
type Guard struct {
	TargetRole domain.Role
	ActorID    string
	ActorRole  domain.Role
}

type Groups interface {
	// CreateGroup inserts the group and its initial roster as one unit.
	CreateGroup(ctx context.Context, g domain.Group) error

	// GetGroup returns the group with its roster in join order.
	GetGroup(ctx context.Context, id string) (domain.Group, error)

	// ListGroupsForUser returns every group userID belongs to, most recently
	// updated first.
	ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)

	// UpdateGroup writes name, description, icon, color and updated_at.
	UpdateGroup(ctx context.Context, g domain.Group) error

	// DeleteGroup removes the group record and its roster.
	DeleteGroup(ctx context.Context, id string) error
}

type Members interface {
	// AddMember appends m to the roster. It returns ErrNotFound when the group
	// is gone and ErrAlreadyExists when the user is already a member.
	AddMember(ctx context.Context, groupID string, m domain.Member) error

	// RemoveMember deletes userID from the roster if g still holds.
	RemoveMember(ctx context.Context, groupID, userID string, g Guard) error

	// SetRole changes userID's role if g still holds.
	SetRole(ctx context.Context, groupID, userID string, role domain.Role, g Guard) error

	// UpdateSettings writes the pinned flag and notification preferences.
	UpdateSettings(ctx context.Context, groupID string, m domain.Member) error

	CountMembers(ctx context.Context, groupID string) (int, error)
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetInviteByTokenHash looks an invite up by token fingerprint.
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// ConsumeInvite increments uses_count in the same operation that checks the
	// invite is unexpired and not exhausted at now, returning the updated row.
	// ErrNotFound: no such invite. ErrConflict: it exists but is unusable.
	ConsumeInvite(ctx context.Context, hash string, now time.Time) (domain.Invite, error)

	// DeleteInvite is idempotent.
	DeleteInvite(ctx context.Context, id string) error

	DeleteInvitesByGroup(ctx context.Context, groupID string) (int, error)

	// DeleteUnusableInvites removes invites that are expired at now or exhausted.
	DeleteUnusableInvites(ctx context.Context, now time.Time) (int, error)

	// DeleteOrphanedInvites removes invites whose group no longer exists.
	DeleteOrphanedInvites(ctx context.Context) (int, error)
}

type Users interface {
	// UpsertUser records the latest username seen for a user id.
	UpsertUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, error)
}

type Content interface {
	CreateContent(ctx context.Context, c domain.Content) error
	GetContent(ctx context.Context, kind domain.ContentKind, id string) (domain.Content, error)

	// DeleteContent removes one record; deleting a list removes its items.
	DeleteContent(ctx context.Context, kind domain.ContentKind, id string) (domain.ContentCounts, error)

	// DeleteGroupContent removes everything the group owns. Re-running it after
	// a partial cascade deletes nothing and reports zero counts.
	DeleteGroupContent(ctx context.Context, groupID string) (domain.ContentCounts, error)
}

type Activity interface {
	AppendActivity(ctx context.Context, a domain.Activity) error
	GetActivity(ctx context.Context, id string) (domain.Activity, error)

	// ListActivity returns one page, newest first, plus the total entry count.
	ListActivity(ctx context.Context, groupID string, page domain.Page) ([]domain.Activity, int, error)

	DeleteActivity(ctx context.Context, id string) error
	DeleteGroupActivity(ctx context.Context, groupID string) (int, error)
	DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int, error)
}
