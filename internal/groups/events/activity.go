package events

import (
	"context"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
)

// ActivitySink appends events to their group's activity log.
type ActivitySink struct {
	Store store.Store
}

func (s *ActivitySink) Publish(ctx context.Context, e Event) error {
	// The group's log is gone with it.
	if e.Type == GroupDeleted {
		return nil
	}

	category := e.Category
	if category == "" {
		category = domain.ActivityGroup
	}

	return s.Store.Activity().AppendActivity(ctx, domain.Activity{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Category:    category,
		Message:     e.Message,
		AuthorID:    e.ActorID,
		AuthorName:  e.ActorName,
		ContentKind: e.ContentKind,
		ContentID:   e.ContentID,
		CreatedAt:   e.OccurredAt,
	})
}
