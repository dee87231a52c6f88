package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/pkg/idx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

type GroupService struct {
	Store  store.Store
	Events events.Emitter
	Now    func() time.Time
}

// CreateGroupInput is the metadata for a new group. Empty Icon and Color
// fall back to the defaults.
type CreateGroupInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
}

// DeleteResult reports what a cascade removed.
type DeleteResult struct {
	GroupID  string
	Content  domain.ContentCounts
	Invites  int
	Activity int
}

// CreateGroup creates a group whose sole member is the creator, as owner.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID string, in CreateGroupInput) (domain.Group, error) {
	log := slogx.FromContext(ctx)
	now := nowFrom(s.Now)

	// 1. Build and validate the aggregate.
	g := domain.NewGroup(idx.NewAt(now).String(), in.Name, in.Description, in.Icon, in.Color, creatorID, now)
	if err := domain.ValidateMetadata(g); err != nil {
		log.Warn("rejected group creation", slogx.Err(err))
		return domain.Group{}, validation(err)
	}

	// 2. Persist metadata and roster together.
	if err := s.Store.Groups().CreateGroup(ctx, g); err != nil {
		log.Error("failed to create group", slog.String("group_id", g.ID), slogx.Err(err))
		return domain.Group{}, internal(err)
	}

	// 3. Read back so member usernames are resolved.
	created, err := loadGroup(ctx, s.Store, g.ID)
	if err != nil {
		return domain.Group{}, err
	}

	log.Info("group created",
		slog.String("group_id", g.ID),
		slog.String("creator_id", creatorID),
	)
	emitter(s.Events).Emit(ctx, events.Event{
		Type:      events.GroupCreated,
		GroupID:   g.ID,
		ActorID:   creatorID,
		ActorName: displayName(ctx, s.Store, creatorID),
		Category:  domain.ActivityGroup,
		Message:   fmt.Sprintf("created the group %q", g.Name),
	})
	return created, nil
}

// GetGroup returns the group if the requester is a member of it.
func (s *GroupService) GetGroup(ctx context.Context, groupID, requesterID string) (domain.Group, error) {
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !g.Members.Contains(requesterID) {
		slogx.FromContext(ctx).Warn("non-member attempted to view group",
			slog.String("group_id", groupID),
			slog.String("user_id", requesterID),
		)
		return domain.Group{}, ErrNotAuthorized
	}
	return g, nil
}

// ListGroups returns every group the requester belongs to, most recently
// updated first.
func (s *GroupService) ListGroups(ctx context.Context, requesterID string) ([]domain.Group, error) {
	groups, err := s.Store.Groups().ListGroupsForUser(ctx, requesterID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list groups", slog.String("user_id", requesterID), slogx.Err(err))
		return nil, internal(err)
	}
	return groups, nil
}

// UpdateGroup applies the supplied fields. It requires MANAGE_GROUP.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, requesterID string, patch domain.GroupPatch) (domain.Group, error) {
	log := slogx.FromContext(ctx)

	// 1. Authorize against the current roster.
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !domain.CheckPermission(g.Members, requesterID, domain.Can(domain.ActionManageGroup)) {
		log.Warn("group update denied",
			slog.String("group_id", groupID),
			slog.String("user_id", requesterID),
		)
		return domain.Group{}, ErrPermissionDenied
	}

	// 2. Apply and validate.
	if patch.Empty() {
		return domain.Group{}, ErrEmptyUpdate
	}
	updated := patch.Apply(g)
	if err := domain.ValidateMetadata(updated); err != nil {
		return domain.Group{}, validation(err)
	}
	updated.UpdatedAt = nowFrom(s.Now)

	// 3. Persist.
	if err := s.Store.Groups().UpdateGroup(ctx, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Group{}, ErrGroupNotFound
		}
		log.Error("failed to update group", slog.String("group_id", groupID), slogx.Err(err))
		return domain.Group{}, internal(err)
	}

	log.Info("group updated", slog.String("group_id", groupID))
	emitter(s.Events).Emit(ctx, events.Event{
		Type:      events.GroupUpdated,
		GroupID:   groupID,
		ActorID:   requesterID,
		ActorName: displayName(ctx, s.Store, requesterID),
		Category:  domain.ActivityGroup,
		Message:   "updated the group details",
	})
	return updated, nil
}

// DeleteGroup removes the group and everything it owns. It requires
// MANAGE_GROUP.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, requesterID string) (DeleteResult, error) {
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return DeleteResult{}, err
	}
	if !domain.CheckPermission(g.Members, requesterID, domain.Can(domain.ActionManageGroup)) {
		slogx.FromContext(ctx).Warn("group deletion denied",
			slog.String("group_id", groupID),
			slog.String("user_id", requesterID),
		)
		return DeleteResult{}, ErrPermissionDenied
	}

	res, err := cascadeDelete(ctx, s.Store, groupID)
	if err != nil {
		return res, err
	}

	emitter(s.Events).Emit(ctx, events.Event{
		Type:     events.GroupDeleted,
		GroupID:  groupID,
		ActorID:  requesterID,
		Category: domain.ActivityGroup,
		Message:  fmt.Sprintf("deleted the group %q", g.Name),
	})
	return res, nil
}

// cascadeDelete removes a group's content, invites and activity, then the
// group itself. Both steps are idempotent, so a failed cascade can be re-run.
func cascadeDelete(ctx context.Context, st store.Store, groupID string) (DeleteResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("group_id", groupID))
	res := DeleteResult{GroupID: groupID}

	// 1. Owned records, as one unit.
	err := st.WithTx(ctx, func(tx store.Tx) error {
		content, err := tx.Content().DeleteGroupContent(ctx, groupID)
		if err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		invites, err := tx.Invites().DeleteInvitesByGroup(ctx, groupID)
		if err != nil {
			return fmt.Errorf("delete invites: %w", err)
		}
		activity, err := tx.Activity().DeleteGroupActivity(ctx, groupID)
		if err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}
		res.Content, res.Invites, res.Activity = content, invites, activity
		return nil
	})
	if err != nil {
		log.Error("group cascade failed", slogx.Err(err))
		return DeleteResult{GroupID: groupID}, internal(err)
	}

	// 2. The group record and roster.
	if err := st.Groups().DeleteGroup(ctx, groupID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("group record deletion failed after cascade",
			slog.Int("records_removed", res.Content.Total()),
			slogx.Err(err),
		)
		return res, &ErrDeleteIncomplete{GroupID: groupID, Counts: res.Content, Err: err}
	}

	log.Info("group deleted",
		slog.Int("lists", res.Content.Lists),
		slog.Int("items", res.Content.Items),
		slog.Int("notes", res.Content.Notes),
		slog.Int("polls", res.Content.Polls),
		slog.Int("invites", res.Invites),
	)
	return res, nil
}
