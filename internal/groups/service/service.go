// Package service implements the group operations on top of the store: the
// permission checks, the membership rules and the invite lifecycle. Services
// are stateless; every precondition a write depends on is re-checked by the
// store in the same operation that performs the write.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

func nowFrom(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now().UTC()
	}
	return fn().UTC()
}

func emitter(e events.Emitter) events.Emitter {
	if e == nil {
		return events.Discard
	}
	return e
}

// loadGroup fetches a group, translating store errors into service errors.
func loadGroup(ctx context.Context, st store.Store, groupID string) (domain.Group, error) {
	g, err := st.Groups().GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Group{}, ErrGroupNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch group",
			slog.String("group_id", groupID),
			slogx.Err(err),
		)
		return domain.Group{}, internal(err)
	}
	return g, nil
}

// displayName returns the directory username for userID, falling back to
// the id itself.
func displayName(ctx context.Context, st store.Store, userID string) string {
	u, err := st.Users().GetUser(ctx, userID)
	if err != nil || u.Username == "" {
		return userID
	}
	return u.Username
}
