package groupsdk

import "time"

// ============================================================================
// Groups
// ============================================================================

// CreateGroupRequest is the body of POST /v1/groups.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Icon        string `json:"icon,omitempty" validate:"max=64"`
	Color       string `json:"color,omitempty" validate:"max=64"`
}

// UpdateGroupRequest is the body of PATCH /v1/groups/{id}. Omitted fields
// are left untouched.
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=64"`
	Color       *string `json:"color,omitempty" validate:"omitempty,max=64"`
}

// Member is one entry of a group's roster.
type Member struct {
	UserID                  string          `json:"user_id"`
	Username                string          `json:"username,omitempty"`
	Role                    string          `json:"role"`
	JoinedAt                time.Time       `json:"joined_at"`
	IsPinned                bool            `json:"is_pinned"`
	NotificationPreferences map[string]bool `json:"notification_preferences"`
}

// Group is a group with its roster in join order.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	AuthorID    string    `json:"author_id"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupListResponse is the body of GET /v1/groups.
type GroupListResponse struct {
	Groups []Group `json:"groups"`
}

// ContentCounts reports how many records of each kind a delete removed.
type ContentCounts struct {
	Lists int `json:"lists"`
	Items int `json:"items"`
	Notes int `json:"notes"`
	Polls int `json:"polls"`
}

// DeleteGroupResponse is the body of DELETE /v1/groups/{id}.
type DeleteGroupResponse struct {
	GroupID  string        `json:"group_id"`
	Deleted  ContentCounts `json:"deleted"`
	Invites  int           `json:"invites"`
	Activity int           `json:"activity"`
}

// ============================================================================
// Membership
// ============================================================================

// LeaveResponse is the body of POST /v1/groups/{id}/leave.
type LeaveResponse struct {
	Message      string         `json:"message"`
	GroupDeleted bool           `json:"group_deleted"`
	Deleted      *ContentCounts `json:"deleted,omitempty"`
}

// ChangeRoleRequest is the body of PUT /v1/groups/{id}/members/{userId}/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// MemberSettingsRequest is the body of PATCH /v1/groups/{id}/members/me.
type MemberSettingsRequest struct {
	IsPinned                *bool           `json:"is_pinned,omitempty"`
	NotificationPreferences map[string]bool `json:"notification_preferences,omitempty"`
}

// ============================================================================
// Invites
// ============================================================================

// InviteResponse is the body of POST /v1/groups/{id}/invites. The token is
// only ever shown here.
type InviteResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InviteGroup is the group identity shown on an invite preview.
type InviteGroup struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// InviteDetails is only present for usable invites.
type InviteDetails struct {
	CreatedBy string    `json:"created_by"`
	ExpiresAt time.Time `json:"expires_at"`
	MaxUses   int       `json:"max_uses"`
	UsesCount int       `json:"uses_count"`
	Remaining int       `json:"remaining_uses"` // -1 when unlimited
}

// InviteLookupResponse is the body of GET /v1/invites/lookup.
type InviteLookupResponse struct {
	Status     string         `json:"status"`
	Group      InviteGroup    `json:"group"`
	Invitation *InviteDetails `json:"invitation,omitempty"`
}

// RedeemRequest is the body of POST /v1/invites/redeem.
type RedeemRequest struct {
	Token string `json:"token" validate:"required"`
}

// RedeemResponse is the body of a successful redemption.
type RedeemResponse struct {
	Message       string `json:"message"`
	AlreadyMember bool   `json:"already_member"`
	Group         Group  `json:"group"`
}

// ============================================================================
// Activity and content
// ============================================================================

type Activity struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	Category    string    `json:"category"`
	Message     string    `json:"message"`
	AuthorID    string    `json:"author_id,omitempty"`
	AuthorName  string    `json:"author_name,omitempty"`
	ContentKind string    `json:"content_kind,omitempty"`
	ContentID   string    `json:"content_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ActivityListResponse is the body of GET /v1/groups/{id}/activity.
type ActivityListResponse struct {
	Activities []Activity `json:"activities"`
	Pagination Pagination `json:"pagination"`
}

// CreateContentRequest is the body of POST /v1/groups/{id}/content/{kind}.
// ParentID names the list an item belongs to.
type CreateContentRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	ParentID string `json:"parent_id,omitempty"`
}

type Content struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Kind      string    `json:"kind"`
	ParentID  string    `json:"parent_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// RemoveContentResponse is the body of DELETE /v1/groups/{id}/content/{kind}/{contentId}.
type RemoveContentResponse struct {
	Deleted ContentCounts `json:"deleted"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz; only readyz sets Checks.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is the status of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Events   string `json:"events,omitempty"`
}
