package http

import (
	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/pkg/groupsdk"
)

func toGroupResponse(g domain.Group) groupsdk.Group {
	members := make([]groupsdk.Member, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, toMemberResponse(m))
	}
	return groupsdk.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Icon:        g.Icon,
		Color:       g.Color,
		AuthorID:    g.AuthorID,
		Members:     members,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toMemberResponse(m domain.Member) groupsdk.Member {
	return groupsdk.Member{
		UserID:   m.UserID,
		Username: m.Username,
		Role:     m.Role.String(),
		JoinedAt: m.JoinedAt,
		IsPinned: m.Pinned,
		NotificationPreferences: map[string]bool{
			string(domain.CategoryAssignment): m.Preferences.Assignment,
			string(domain.CategoryMention):    m.Preferences.Mention,
			string(domain.CategoryGroup):      m.Preferences.Group,
			string(domain.CategoryReminder):   m.Preferences.Reminder,
			string(domain.CategoryPoll):       m.Preferences.Poll,
		},
	}
}

func toCounts(c domain.ContentCounts) groupsdk.ContentCounts {
	return groupsdk.ContentCounts{Lists: c.Lists, Items: c.Items, Notes: c.Notes, Polls: c.Polls}
}

func toDeleteResponse(res service.DeleteResult) groupsdk.DeleteGroupResponse {
	return groupsdk.DeleteGroupResponse{
		GroupID:  res.GroupID,
		Deleted:  toCounts(res.Content),
		Invites:  res.Invites,
		Activity: res.Activity,
	}
}

func toActivityResponse(a domain.Activity) groupsdk.Activity {
	return groupsdk.Activity{
		ID:          a.ID,
		GroupID:     a.GroupID,
		Category:    string(a.Category),
		Message:     a.Message,
		AuthorID:    a.AuthorID,
		AuthorName:  a.AuthorName,
		ContentKind: string(a.ContentKind),
		ContentID:   a.ContentID,
		CreatedAt:   a.CreatedAt,
	}
}

func toContentResponse(c domain.Content) groupsdk.Content {
	return groupsdk.Content{
		ID:        c.ID,
		GroupID:   c.GroupID,
		Kind:      string(c.Kind),
		ParentID:  c.ParentID,
		AuthorID:  c.AuthorID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
	}
}
