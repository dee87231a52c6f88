package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

type MembershipService struct {
	Store  store.Store
	Events events.Emitter
	Now    func() time.Time
}

// LeaveResult tells the caller whether their departure emptied the group.
type LeaveResult struct {
	GroupDeleted bool
	Deleted      DeleteResult
}

// Leave removes the requester from the group. Owners must hand over or delete
// the group first, and the last member must delete it instead.
func (s *MembershipService) Leave(ctx context.Context, groupID, userID string) (LeaveResult, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
	)

	// 1. Check the rules against the current roster.
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return LeaveResult{}, err
	}
	m, err := domain.CheckLeave(g.Members, userID)
	if err != nil {
		log.Warn("leave rejected", slogx.Err(err))
		return LeaveResult{}, membershipError(err)
	}

	// 2. Remove the member while they still hold the role we checked, and
	// count who is left.
	var remaining int
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Members().RemoveMember(ctx, groupID, userID, store.Guard{TargetRole: m.Role}); err != nil {
			return err
		}
		n, err := tx.Members().CountMembers(ctx, groupID)
		remaining = n
		return err
	})
	if err != nil {
		return LeaveResult{}, s.writeError(ctx, "leave", err)
	}

	name := displayName(ctx, s.Store, userID)

	// 3. A group never outlives its roster.
	if remaining == 0 {
		log.Info("last member left, deleting group")
		res, err := cascadeDelete(ctx, s.Store, groupID)
		if err != nil {
			return LeaveResult{GroupDeleted: false, Deleted: res}, err
		}
		emitter(s.Events).Emit(ctx, events.Event{
			Type:     events.GroupDeleted,
			GroupID:  groupID,
			ActorID:  userID,
			Category: domain.ActivityGroup,
			Message:  fmt.Sprintf("%s left and the group was deleted", name),
		})
		return LeaveResult{GroupDeleted: true, Deleted: res}, nil
	}

	log.Info("member left group")
	emitter(s.Events).Emit(ctx, events.Event{
		Type:      events.MemberLeft,
		GroupID:   groupID,
		ActorID:   userID,
		ActorName: name,
		Category:  domain.ActivityGroup,
		Message:   fmt.Sprintf("%s left the group", name),
	})
	return LeaveResult{}, nil
}

// Kick removes targetID from the group. It requires MANAGE_MEMBERS and never
// removes an owner.
func (s *MembershipService) Kick(ctx context.Context, groupID, actorID, targetID string) error {
	log := slogx.FromContext(ctx).With(
		slog.String("group_id", groupID),
		slog.String("user_id", actorID),
		slog.String("target_id", targetID),
	)

	// 1. Authorize and check the target.
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return err
	}
	target, err := domain.CheckKick(g.Members, actorID, targetID)
	if err != nil {
		log.Warn("kick rejected", slogx.Err(err))
		return membershipError(err)
	}
	actorRole, _ := g.Members.RoleOf(actorID)

	// 2. Remove only if both roles are still what we authorized against.
	err = s.Store.Members().RemoveMember(ctx, groupID, targetID, store.Guard{
		TargetRole: target.Role,
		ActorID:    actorID,
		ActorRole:  actorRole,
	})
	if err != nil {
		return s.writeError(ctx, "kick", err)
	}

	log.Info("member kicked")
	targetName := displayName(ctx, s.Store, targetID)
	e := events.Event{
		Type:      events.MemberKicked,
		GroupID:   groupID,
		ActorID:   actorID,
		ActorName: displayName(ctx, s.Store, actorID),
		Category:  domain.ActivityGroup,
		Message:   fmt.Sprintf("removed %s from the group", targetName),
	}
	if target.Preferences.Enabled(domain.CategoryGroup) {
		e.NotifyUserID = targetID
	}
	emitter(s.Events).Emit(ctx, e)
	return nil
}

// ChangeRole sets targetID's role. The actor must outrank the target and may
// not grant a role above their own.
func (s *MembershipService) ChangeRole(ctx context.Context, groupID, actorID, targetID, role string) (domain.Member, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("group_id", groupID),
		slog.String("user_id", actorID),
		slog.String("target_id", targetID),
	)

	// Unparseable roles still go through the permission check first.
	newRole, err := domain.ParseRole(role)
	if err != nil {
		newRole = domain.Role(strings.TrimSpace(role))
	}

	// 1. Authorize and check the rank rules.
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return domain.Member{}, err
	}
	actor, target, err := domain.CheckRoleChange(g.Members, actorID, targetID, newRole)
	if err != nil {
		log.Warn("role change rejected", slog.String("role", role), slogx.Err(err))
		return domain.Member{}, membershipError(err)
	}

	// 2. Write only if neither role moved since the check.
	err = s.Store.Members().SetRole(ctx, groupID, targetID, newRole, store.Guard{
		TargetRole: target.Role,
		ActorID:    actorID,
		ActorRole:  actor.Role,
	})
	if err != nil {
		return domain.Member{}, s.writeError(ctx, "role change", err)
	}

	log.Info("member role changed",
		slog.String("from", target.Role.String()),
		slog.String("to", newRole.String()),
	)
	target.Role = newRole

	e := events.Event{
		Type:      events.MemberRoleChanged,
		GroupID:   groupID,
		ActorID:   actorID,
		ActorName: displayName(ctx, s.Store, actorID),
		Category:  domain.ActivityGroup,
		Message:   fmt.Sprintf("made %s a %s", displayName(ctx, s.Store, targetID), newRole),
	}
	if target.Preferences.Enabled(domain.CategoryGroup) {
		e.NotifyUserID = targetID
	}
	emitter(s.Events).Emit(ctx, e)
	return target, nil
}

// UpdateMemberSettings changes the requester's own pinned flag and
// notification preferences.
func (s *MembershipService) UpdateMemberSettings(ctx context.Context, groupID, userID string, settings domain.MemberSettings) (domain.Member, error) {
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return domain.Member{}, err
	}
	m, ok := g.Members.Find(userID)
	if !ok {
		return domain.Member{}, ErrNotMember
	}

	updated, err := settings.Apply(m)
	if err != nil {
		return domain.Member{}, validation(err)
	}

	if err := s.Store.Members().UpdateSettings(ctx, groupID, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Member{}, ErrNotMember
		}
		slogx.FromContext(ctx).Error("failed to update member settings",
			slog.String("group_id", groupID),
			slog.String("user_id", userID),
			slogx.Err(err),
		)
		return domain.Member{}, internal(err)
	}
	return updated, nil
}

// writeError maps the outcome of a guarded membership write.
func (s *MembershipService) writeError(ctx context.Context, op string, err error) error {
	log := slogx.FromContext(ctx)
	if errors.Is(err, store.ErrConflict) {
		log.Warn("membership write lost a race", slog.String("op", op))
		return ErrMembershipRace
	}
	log.Error("membership write failed", slog.String("op", op), slogx.Err(err))
	return internal(err)
}
