package domain

// Action is a capability checked against a member's role.
type Action string

const (
	// ActionManageGroup covers renaming, restyling and deleting the group.
	ActionManageGroup Action = "MANAGE_GROUP"
	// ActionManageMembers covers kicking members and changing roles.
	ActionManageMembers Action = "MANAGE_MEMBERS"
	// ActionModerateContent covers removing anyone's content and activity.
	ActionModerateContent Action = "MODERATE_CONTENT"
	// ActionModifyOwnResource covers editing content; members only their own.
	ActionModifyOwnResource Action = "MODIFY_OWN_RESOURCE"
	// ActionCreateAndView is the baseline capability of every member.
	ActionCreateAndView Action = "CREATE_AND_VIEW"
)

// AuthzContext is the question asked of the permission matrix. ResourceAuthorID
// only matters for ActionModifyOwnResource.
type AuthzContext struct {
	Action           Action
	ResourceAuthorID string
}

// Can builds a context for an action that does not concern a specific resource.
func Can(a Action) AuthzContext {
	return AuthzContext{Action: a}
}

// CanOn builds a context for an action on a resource authored by authorID.
func CanOn(a Action, authorID string) AuthzContext {
	return AuthzContext{Action: a, ResourceAuthorID: authorID}
}

// RoleLookup is the read-only projection the permission check needs.
type RoleLookup interface {
	RoleOf(userID string) (Role, bool)
}

// CheckPermission answers whether userID may perform ac in the group described
// by roster. Non-members and unknown actions are always denied.
func CheckPermission(roster RoleLookup, userID string, ac AuthzContext) bool {
	role, ok := roster.RoleOf(userID)
	if !ok {
		return false
	}
	if role == RoleOwner {
		return true
	}

	switch ac.Action {
	case ActionManageGroup:
		return false
	case ActionManageMembers, ActionModerateContent:
		return role.Rank() >= RoleModerator.Rank()
	case ActionModifyOwnResource:
		if role.Rank() >= RoleModerator.Rank() {
			return true
		}
		return ac.ResourceAuthorID != "" && ac.ResourceAuthorID == userID
	case ActionCreateAndView:
		return true
	default:
		return false
	}
}
