package mongodb

import (
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

type prefsDoc struct {
	Assignment bool `bson:"ASSIGNMENT"`
	Mention    bool `bson:"MENTION"`
	Group      bool `bson:"GROUP"`
	Reminder   bool `bson:"REMINDER"`
	Poll       bool `bson:"POLL"`
}

type memberDoc struct {
	UserID      string    `bson:"user_id"`
	Role        string    `bson:"role"`
	JoinedAt    time.Time `bson:"joined_at"`
	Pinned      bool      `bson:"is_pinned"`
	Preferences prefsDoc  `bson:"notification_preferences"`
}

type groupDoc struct {
	ID          string      `bson:"_id"`
	Name        string      `bson:"name"`
	Description string      `bson:"description"`
	Icon        string      `bson:"icon"`
	Color       string      `bson:"color"`
	AuthorID    string      `bson:"author_id"`
	Members     []memberDoc `bson:"members"`
	CreatedAt   time.Time   `bson:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at"`
}

type inviteDoc struct {
	ID        string    `bson:"_id"`
	TokenHash string    `bson:"token_hash"`
	GroupID   string    `bson:"group_id"`
	CreatedBy string    `bson:"created_by"`
	ExpiresAt time.Time `bson:"expires_at"`
	MaxUses   int       `bson:"max_uses"`
	UsesCount int       `bson:"uses_count"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type contentDoc struct {
	ID        string    `bson:"_id"`
	GroupID   string    `bson:"group_id"`
	Kind      string    `bson:"kind"`
	ParentID  string    `bson:"parent_id,omitempty"`
	AuthorID  string    `bson:"author_id"`
	Title     string    `bson:"title"`
	CreatedAt time.Time `bson:"created_at"`
}

type activityDoc struct {
	ID          string    `bson:"_id"`
	GroupID     string    `bson:"group_id"`
	Category    string    `bson:"category"`
	Message     string    `bson:"message"`
	AuthorID    string    `bson:"author_id"`
	AuthorName  string    `bson:"author_name"`
	ContentKind string    `bson:"content_kind,omitempty"`
	ContentID   string    `bson:"content_id,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func toPrefsDoc(p domain.NotificationPreferences) prefsDoc {
	return prefsDoc{
		Assignment: p.Assignment,
		Mention:    p.Mention,
		Group:      p.Group,
		Reminder:   p.Reminder,
		Poll:       p.Poll,
	}
}

func toMemberDoc(m domain.Member) memberDoc {
	return memberDoc{
		UserID:      m.UserID,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt.UTC(),
		Pinned:      m.Pinned,
		Preferences: toPrefsDoc(m.Preferences),
	}
}

func toGroupDoc(g domain.Group) groupDoc {
	members := make([]memberDoc, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, toMemberDoc(m))
	}
	return groupDoc{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Icon:        g.Icon,
		Color:       g.Color,
		AuthorID:    g.AuthorID,
		Members:     members,
		CreatedAt:   g.CreatedAt.UTC(),
		UpdatedAt:   g.UpdatedAt.UTC(),
	}
}

func (d groupDoc) toDomain(usernames map[string]string) domain.Group {
	members := make(domain.Members, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, domain.Member{
			UserID:   m.UserID,
			Username: usernames[m.UserID],
			Role:     domain.Role(m.Role),
			JoinedAt: m.JoinedAt.UTC(),
			Pinned:   m.Pinned,
			Preferences: domain.NotificationPreferences{
				Assignment: m.Preferences.Assignment,
				Mention:    m.Preferences.Mention,
				Group:      m.Preferences.Group,
				Reminder:   m.Preferences.Reminder,
				Poll:       m.Preferences.Poll,
			},
		})
	}
	return domain.Group{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Color:       d.Color,
		AuthorID:    d.AuthorID,
		Members:     members,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func toInviteDoc(inv domain.Invite) inviteDoc {
	return inviteDoc{
		ID:        inv.ID,
		TokenHash: inv.TokenHash,
		GroupID:   inv.GroupID,
		CreatedBy: inv.CreatedBy,
		ExpiresAt: inv.ExpiresAt.UTC(),
		MaxUses:   inv.MaxUses,
		UsesCount: inv.UsesCount,
		CreatedAt: inv.CreatedAt.UTC(),
		UpdatedAt: inv.UpdatedAt.UTC(),
	}
}

func (d inviteDoc) toDomain() domain.Invite {
	return domain.Invite{
		ID:        d.ID,
		TokenHash: d.TokenHash,
		GroupID:   d.GroupID,
		CreatedBy: d.CreatedBy,
		ExpiresAt: d.ExpiresAt.UTC(),
		MaxUses:   d.MaxUses,
		UsesCount: d.UsesCount,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (d contentDoc) toDomain() domain.Content {
	return domain.Content{
		ID:        d.ID,
		GroupID:   d.GroupID,
		Kind:      domain.ContentKind(d.Kind),
		ParentID:  d.ParentID,
		AuthorID:  d.AuthorID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (d activityDoc) toDomain() domain.Activity {
	return domain.Activity{
		ID:          d.ID,
		GroupID:     d.GroupID,
		Category:    domain.ActivityCategory(d.Category),
		Message:     d.Message,
		AuthorID:    d.AuthorID,
		AuthorName:  d.AuthorName,
		ContentKind: domain.ContentKind(d.ContentKind),
		ContentID:   d.ContentID,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
