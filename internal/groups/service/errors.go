package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

// Error kinds. Every error a service returns matches exactly one of these
// with errors.Is; KindOf resolves it.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrGone       = errors.New("gone")
	ErrValidation = errors.New("validation failed")
	ErrInternal   = errors.New("internal error")
)

var kinds = []error{ErrNotFound, ErrForbidden, ErrConflict, ErrGone, ErrValidation, ErrInternal}

var (
	ErrGroupNotFound    = kindError(ErrNotFound, "group not found")
	ErrInviteNotFound   = kindError(ErrNotFound, "invite link is invalid or has expired")
	ErrContentNotFound  = kindError(ErrNotFound, "content not found")
	ErrActivityNotFound = kindError(ErrNotFound, "activity entry not found")
	ErrInviteGone       = kindError(ErrGone, "invite link is expired or invalid")
	ErrInviteUsedUp     = kindError(ErrGone, "invite link has reached its maximum usage limit")
	ErrInviteGroupGone  = kindError(ErrNotFound, "the linked group was not found")
	ErrNotAuthorized    = kindError(ErrForbidden, "not authorized for this group")
	ErrMembershipRace   = kindError(ErrConflict, "membership changed concurrently; retry")
	ErrInvalidRequest   = kindError(ErrValidation, "invalid request")
	ErrEmptyUpdate      = kindError(ErrValidation, "no fields to update")
	ErrParentNotFound   = kindError(ErrValidation, "parent list not found in this group")

	// Domain rule violations, each carrying its kind.
	ErrPermissionDenied     = wrapKind(ErrForbidden, domain.ErrPermissionDenied)
	ErrNotMember            = wrapKind(ErrNotFound, domain.ErrNotMember)
	ErrOwnerMustTransfer    = wrapKind(ErrConflict, domain.ErrOwnerMustTransfer)
	ErrSoleMemberMustDelete = wrapKind(ErrConflict, domain.ErrSoleMember)
	ErrOwnerNotKickable     = wrapKind(ErrForbidden, domain.ErrOwnerNotKickable)
	ErrKickSelf             = wrapKind(ErrValidation, domain.ErrKickSelf)
	ErrTargetOutranks       = wrapKind(ErrForbidden, domain.ErrTargetOutranks)
	ErrPromotionAboveSelf   = wrapKind(ErrForbidden, domain.ErrPromotionAboveSelf)
	ErrInvalidRole          = wrapKind(ErrValidation, domain.ErrInvalidRole)
)

// kinded is an error that reports its own message and matches both its kind
// and, when set, the domain error it came from.
type kinded struct {
	kind  error
	msg   string
	cause error
}

func (e *kinded) Error() string { return e.msg }

func (e *kinded) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func kindError(kind error, msg string) error {
	return &kinded{kind: kind, msg: msg}
}

func wrapKind(kind, cause error) error {
	return &kinded{kind: kind, msg: cause.Error(), cause: cause}
}

// validation wraps a domain validation failure, keeping its message.
func validation(err error) error {
	return wrapKind(ErrValidation, err)
}

// internal hides a store or infrastructure failure behind ErrInternal. The
// cause stays reachable with errors.Is for logging and tests.
func internal(err error) error {
	return &kinded{kind: ErrInternal, msg: ErrInternal.Error(), cause: err}
}

// KindOf returns the kind of err, or ErrInternal for errors that carry none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// ErrDeleteIncomplete reports a cascade that stopped part way. Counts holds
// what was removed before the failure; re-running the delete is safe.
type ErrDeleteIncomplete struct {
	GroupID string
	Counts  domain.ContentCounts
	Err     error
}

func (e *ErrDeleteIncomplete) Error() string {
	return fmt.Sprintf("group %s deletion incomplete after removing %d records", e.GroupID, e.Counts.Total())
}

func (e *ErrDeleteIncomplete) Unwrap() []error { return []error{ErrInternal, e.Err} }

// membershipError maps a domain membership rule violation to its service error.
func membershipError(err error) error {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, domain.ErrNotMember):
		return ErrNotMember
	case errors.Is(err, domain.ErrOwnerMustTransfer):
		return ErrOwnerMustTransfer
	case errors.Is(err, domain.ErrSoleMember):
		return ErrSoleMemberMustDelete
	case errors.Is(err, domain.ErrOwnerNotKickable):
		return ErrOwnerNotKickable
	case errors.Is(err, domain.ErrKickSelf):
		return ErrKickSelf
	case errors.Is(err, domain.ErrTargetOutranks):
		return ErrTargetOutranks
	case errors.Is(err, domain.ErrPromotionAboveSelf):
		return ErrPromotionAboveSelf
	case errors.Is(err, domain.ErrInvalidRole):
		return ErrInvalidRole
	}
	return internal(err)
}
