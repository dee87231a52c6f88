package domain

import "errors"

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotMember          = errors.New("user is not a member of this group")
	ErrOwnerMustTransfer  = errors.New("owner must transfer ownership or delete the group before leaving")
	ErrSoleMember         = errors.New("sole member cannot leave; delete the group instead")
	ErrOwnerNotKickable   = errors.New("owners cannot be kicked")
	ErrKickSelf           = errors.New("use leave to remove yourself")
	ErrTargetOutranks     = errors.New("cannot act on a member of equal or higher rank")
	ErrPromotionAboveSelf = errors.New("cannot grant a role above your own")
)

// CheckLeave decides whether userID may leave the group. It returns the
// departing member.
func CheckLeave(ms Members, userID string) (Member, error) {
	m, ok := ms.Find(userID)
	if !ok {
		return Member{}, ErrNotMember
	}
	if len(ms) == 1 {
		return Member{}, ErrSoleMember
	}
	if m.Role == RoleOwner {
		return Member{}, ErrOwnerMustTransfer
	}
	return m, nil
}

// CheckKick decides whether actorID may remove targetID. Permission is checked
// before anything about the target is revealed.
func CheckKick(ms Members, actorID, targetID string) (Member, error) {
	if !CheckPermission(ms, actorID, Can(ActionManageMembers)) {
		return Member{}, ErrPermissionDenied
	}
	target, ok := ms.Find(targetID)
	if !ok {
		return Member{}, ErrNotMember
	}
	if actorID == targetID {
		return Member{}, ErrKickSelf
	}
	if target.Role == RoleOwner {
		return Member{}, ErrOwnerNotKickable
	}
	return target, nil
}

// CheckRoleChange decides whether actorID may set targetID's role to newRole.
// It returns the actor and the target as they were before the change.
func CheckRoleChange(ms Members, actorID, targetID string, newRole Role) (actor, target Member, err error) {
	if !CheckPermission(ms, actorID, Can(ActionManageMembers)) {
		return Member{}, Member{}, ErrPermissionDenied
	}
	if !newRole.Valid() {
		return Member{}, Member{}, ErrInvalidRole
	}
	actor, _ = ms.Find(actorID)
	target, ok := ms.Find(targetID)
	if !ok {
		return Member{}, Member{}, ErrNotMember
	}
	if !actor.Role.Outranks(target.Role) {
		return Member{}, Member{}, ErrTargetOutranks
	}
	if newRole.Outranks(actor.Role) {
		return Member{}, Member{}, ErrPromotionAboveSelf
	}
	return actor, target, nil
}
