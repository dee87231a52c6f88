// Package events carries side effects of group mutations (activity log
// entries, member notifications) to their sinks. Delivery is best-effort:
// callers emit and move on, sink failures are logged and dropped.
package events

import (
	"context"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

type Type string

const (
	GroupCreated      Type = "group.created"
	GroupUpdated      Type = "group.updated"
	GroupDeleted      Type = "group.deleted"
	MemberJoined      Type = "member.joined"
	MemberLeft        Type = "member.left"
	MemberKicked      Type = "member.kicked"
	MemberRoleChanged Type = "member.role_changed"
	InviteCreated     Type = "invite.created"
	ContentCreated    Type = "content.created"
	ContentRemoved    Type = "content.removed"
)

// Event describes one completed mutation.
type Event struct {
	ID         string
	Type       Type
	GroupID    string
	ActorID    string
	ActorName  string
	Category   domain.ActivityCategory
	Message    string
	OccurredAt time.Time

	// Set for content events.
	ContentKind domain.ContentKind
	ContentID   string

	// NotifyUserID is the member to notify, empty when nobody is notified.
	NotifyUserID string
}

// Sink receives events. Publish may be called from many goroutines.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Discard drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) {}
