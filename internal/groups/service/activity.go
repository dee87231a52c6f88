package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

type ActivityService struct {
	Store store.Store
}

// ActivityPage is one page of a group's activity log, newest first.
type ActivityPage struct {
	Entries []domain.Activity
	Page    int
	Limit   int
	Total   int
	Pages   int
}

// ListActivity returns a page of the group's log. Out-of-range page and limit
// values are clamped.
func (s *ActivityService) ListActivity(ctx context.Context, groupID, requesterID string, page, limit int) (ActivityPage, error) {
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return ActivityPage{}, err
	}
	if !domain.CheckPermission(g.Members, requesterID, domain.Can(domain.ActionCreateAndView)) {
		return ActivityPage{}, ErrNotAuthorized
	}

	p := domain.NormalizePage(page, limit)
	entries, total, err := s.Store.Activity().ListActivity(ctx, groupID, p)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list activity", slog.String("group_id", groupID), slogx.Err(err))
		return ActivityPage{}, internal(err)
	}

	return ActivityPage{
		Entries: entries,
		Page:    p.Number,
		Limit:   p.Size,
		Total:   total,
		Pages:   p.Pages(total),
	}, nil
}

// DeleteActivity removes one log entry. It requires MODERATE_CONTENT in the
// entry's group.
func (s *ActivityService) DeleteActivity(ctx context.Context, activityID, requesterID string) error {
	log := slogx.FromContext(ctx).With(
		slog.String("activity_id", activityID),
		slog.String("user_id", requesterID),
	)

	a, err := s.Store.Activity().GetActivity(ctx, activityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActivityNotFound
		}
		log.Error("failed to fetch activity", slogx.Err(err))
		return internal(err)
	}

	g, err := loadGroup(ctx, s.Store, a.GroupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return ErrActivityNotFound
		}
		return err
	}
	if !domain.CheckPermission(g.Members, requesterID, domain.Can(domain.ActionModerateContent)) {
		log.Warn("activity deletion denied")
		return ErrPermissionDenied
	}

	if err := s.Store.Activity().DeleteActivity(ctx, activityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActivityNotFound
		}
		log.Error("failed to delete activity", slogx.Err(err))
		return internal(err)
	}
	return nil
}
