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
	"github.com/aussiebroadwan/docket/pkg/idx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

// ContentService authorizes and tracks the content records groups own.
type ContentService struct {
	Store  store.Store
	Events events.Emitter
	Now    func() time.Time
}

// Authorize answers a permission question about userID in the group.
func (s *ContentService) Authorize(ctx context.Context, groupID, userID string, ac domain.AuthzContext) (bool, error) {
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return false, err
	}
	return domain.CheckPermission(g.Members, userID, ac), nil
}

// CreateContent records a new list, item, note or poll. Items must name a
// list in the same group.
func (s *ContentService) CreateContent(ctx context.Context, groupID, requesterID, kind, title, parentID string) (domain.Content, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("group_id", groupID),
		slog.String("user_id", requesterID),
	)

	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return domain.Content{}, err
	}
	if !domain.CheckPermission(g.Members, requesterID, domain.Can(domain.ActionCreateAndView)) {
		log.Warn("content creation denied")
		return domain.Content{}, ErrPermissionDenied
	}

	k, err := domain.ParseContentKind(kind)
	if err != nil {
		return domain.Content{}, validation(err)
	}

	now := nowFrom(s.Now)
	c := domain.Content{
		ID:        idx.NewAt(now).String(),
		GroupID:   groupID,
		Kind:      k,
		ParentID:  strings.TrimSpace(parentID),
		AuthorID:  requesterID,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return domain.Content{}, validation(err)
	}

	if c.Kind == domain.ContentItem {
		parent, err := s.Store.Content().GetContent(ctx, domain.ContentList, c.ParentID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to fetch parent list", slogx.Err(err))
			return domain.Content{}, internal(err)
		}
		if err != nil || parent.GroupID != groupID {
			return domain.Content{}, ErrParentNotFound
		}
	}

	if err := s.Store.Content().CreateContent(ctx, c); err != nil {
		log.Error("failed to create content", slogx.Err(err))
		return domain.Content{}, internal(err)
	}

	emitter(s.Events).Emit(ctx, events.Event{
		Type:        events.ContentCreated,
		GroupID:     groupID,
		ActorID:     requesterID,
		ActorName:   displayName(ctx, s.Store, requesterID),
		Category:    domain.ActivityContent,
		Message:     fmt.Sprintf("added the %s %q", c.Kind, c.Title),
		ContentKind: c.Kind,
		ContentID:   c.ID,
	})
	return c, nil
}

// RemoveContent deletes a content record; removing a list removes its items.
// Members may remove their own content, moderators and owners anyone's.
func (s *ContentService) RemoveContent(ctx context.Context, groupID, requesterID, kind, contentID string) (domain.ContentCounts, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("group_id", groupID),
		slog.String("user_id", requesterID),
		slog.String("content_id", contentID),
	)

	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return domain.ContentCounts{}, err
	}
	if !g.Members.Contains(requesterID) {
		log.Warn("content removal by non-member")
		return domain.ContentCounts{}, ErrPermissionDenied
	}

	k, err := domain.ParseContentKind(kind)
	if err != nil {
		return domain.ContentCounts{}, validation(err)
	}

	c, err := s.Store.Content().GetContent(ctx, k, contentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ContentCounts{}, ErrContentNotFound
		}
		log.Error("failed to fetch content", slogx.Err(err))
		return domain.ContentCounts{}, internal(err)
	}
	if c.GroupID != groupID {
		return domain.ContentCounts{}, ErrContentNotFound
	}

	if !domain.CheckPermission(g.Members, requesterID, domain.CanOn(domain.ActionModifyOwnResource, c.AuthorID)) {
		log.Warn("content removal denied", slog.String("author_id", c.AuthorID))
		return domain.ContentCounts{}, ErrPermissionDenied
	}

	counts, err := s.Store.Content().DeleteContent(ctx, k, contentID)
	if err != nil {
		log.Error("failed to delete content", slogx.Err(err))
		return domain.ContentCounts{}, internal(err)
	}

	log.Info("content removed", slog.Int("records", counts.Total()))
	emitter(s.Events).Emit(ctx, events.Event{
		Type:        events.ContentRemoved,
		GroupID:     groupID,
		ActorID:     requesterID,
		ActorName:   displayName(ctx, s.Store, requesterID),
		Category:    domain.ActivityContent,
		Message:     fmt.Sprintf("removed the %s %q", c.Kind, c.Title),
		ContentKind: c.Kind,
		ContentID:   c.ID,
	})
	return counts, nil
}
