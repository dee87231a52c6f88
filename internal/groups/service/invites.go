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
	"github.com/aussiebroadwan/docket/pkg/cryptox"
	"github.com/aussiebroadwan/docket/pkg/idx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

// InviteTokenSize is the entropy of an invite token in bytes.
const InviteTokenSize = cryptox.TokenSize256

// InvitePolicy decides which members may generate invites.
type InvitePolicy string

const (
	// InviteByMembers lets every member invite.
	InviteByMembers InvitePolicy = "members"
	// InviteByModerators restricts invites to moderators and owners.
	InviteByModerators InvitePolicy = "moderators"
)

var ErrInvalidInvitePolicy = errors.New("invalid invite policy")

func ParseInvitePolicy(s string) (InvitePolicy, error) {
	switch p := InvitePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case InviteByMembers, InviteByModerators:
		return p, nil
	case "":
		return InviteByMembers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidInvitePolicy, s)
}

func (p InvitePolicy) action() domain.Action {
	if p == InviteByModerators {
		return domain.ActionModerateContent
	}
	return domain.ActionCreateAndView
}

type InviteService struct {
	Store  store.Store
	Events events.Emitter
	Now    func() time.Time

	// TTL and MaxUses default to 48h and a single use.
	TTL     time.Duration
	MaxUses int
	Policy  InvitePolicy
}

// GeneratedInvite is all a caller ever learns about a new invite.
type GeneratedInvite struct {
	Token     string
	ExpiresAt time.Time
}

// GroupSummary is the minimal group identity shown on an invite preview.
type GroupSummary struct {
	ID          string
	Name        string
	MemberCount int
}

// InvitePreview is what Lookup reports. For unusable invites only the status
// and the group name and size are filled in.
type InvitePreview struct {
	Status      domain.InviteStatus
	Group       GroupSummary
	InviterName string
	ExpiresAt   time.Time
	MaxUses     int
	UsesCount   int
	Remaining   int
}

// RedeemResult is the group after the join.
type RedeemResult struct {
	Group         domain.Group
	AlreadyMember bool
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL <= 0 {
		return domain.DefaultInviteTTL
	}
	return s.TTL
}

func (s *InviteService) maxUses() int {
	if !domain.ValidMaxUses(s.MaxUses) {
		return domain.DefaultInviteMaxUses
	}
	return s.MaxUses
}

// GenerateInvite mints a new invite token for the group.
func (s *InviteService) GenerateInvite(ctx context.Context, groupID, requesterID string) (GeneratedInvite, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("group_id", groupID),
		slog.String("user_id", requesterID),
	)

	// 1. Authorize under the configured policy.
	g, err := loadGroup(ctx, s.Store, groupID)
	if err != nil {
		return GeneratedInvite{}, err
	}
	if !domain.CheckPermission(g.Members, requesterID, domain.Can(s.Policy.action())) {
		log.Warn("invite generation denied", slog.String("policy", string(s.Policy)))
		return GeneratedInvite{}, ErrPermissionDenied
	}

	// 2. Generate random token.
	token, err := cryptox.GenerateToken(InviteTokenSize)
	if err != nil {
		log.Error("failed to generate invite token", slogx.Err(err))
		return GeneratedInvite{}, internal(err)
	}

	// 3. Store only the fingerprint.
	now := nowFrom(s.Now)
	invite := domain.Invite{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		GroupID:   groupID,
		CreatedBy: requesterID,
		ExpiresAt: now.Add(s.ttl()),
		MaxUses:   s.maxUses(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Invites().CreateInvite(ctx, invite); err != nil {
		log.Error("failed to create invite", slog.String("invite_id", invite.ID), slogx.Err(err))
		return GeneratedInvite{}, internal(err)
	}

	log.Debug("invite created",
		slog.String("invite_id", invite.ID),
		slog.Int("max_uses", invite.MaxUses),
		slog.Time("expires_at", invite.ExpiresAt),
	)
	emitter(s.Events).Emit(ctx, events.Event{
		Type:      events.InviteCreated,
		GroupID:   groupID,
		ActorID:   requesterID,
		ActorName: displayName(ctx, s.Store, requesterID),
		Category:  domain.ActivityGroup,
		Message:   "created an invite link",
	})

	// 4. Return the raw token (not the fingerprint).
	return GeneratedInvite{Token: token, ExpiresAt: invite.ExpiresAt}, nil
}

// LookupInvite previews an invite without changing it. Unknown tokens and
// invites whose group is gone are indistinguishable.
func (s *InviteService) LookupInvite(ctx context.Context, token string) (InvitePreview, error) {
	log := slogx.FromContext(ctx)

	if !cryptox.WellFormedToken(token, InviteTokenSize) {
		return InvitePreview{}, ErrInviteNotFound
	}

	inv, err := s.Store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InvitePreview{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invite", slogx.Err(err))
		return InvitePreview{}, internal(err)
	}

	g, err := s.Store.Groups().GetGroup(ctx, inv.GroupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("invite lookup for deleted group", slog.String("invite_id", inv.ID))
			return InvitePreview{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invite group", slog.String("invite_id", inv.ID), slogx.Err(err))
		return InvitePreview{}, internal(err)
	}

	status := inv.Status(nowFrom(s.Now))
	if status != domain.InviteActive {
		return InvitePreview{
			Status: status,
			Group:  GroupSummary{Name: g.Name, MemberCount: len(g.Members)},
		}, nil
	}

	return InvitePreview{
		Status:      status,
		Group:       GroupSummary{ID: g.ID, Name: g.Name, MemberCount: len(g.Members)},
		InviterName: displayName(ctx, s.Store, inv.CreatedBy),
		ExpiresAt:   inv.ExpiresAt,
		MaxUses:     inv.MaxUses,
		UsesCount:   inv.UsesCount,
		Remaining:   inv.RemainingUses(),
	}, nil
}

// Sentinels that roll a redemption transaction back.
var (
	errJoinedMeanwhile = errors.New("joined meanwhile")
	errGroupVanished   = errors.New("group vanished")
)

// RedeemInvite adds userID to the invite's group. The use is counted in the
// same transaction as the join, by a conditional increment, so a single-use
// invite admits exactly one user however many redeem it at once.
func (s *InviteService) RedeemInvite(ctx context.Context, token, userID string) (RedeemResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("user_id", userID))
	now := nowFrom(s.Now)

	// 1. Fingerprint the token and look it up.
	if !cryptox.WellFormedToken(token, InviteTokenSize) {
		log.Warn("invite redemption with malformed token")
		return RedeemResult{}, ErrInviteGone
	}
	hash := cryptox.FingerprintToken(token)
	inv, err := s.Store.Invites().GetInviteByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite redemption with unknown token")
			return RedeemResult{}, ErrInviteGone
		}
		log.Error("failed to fetch invite", slogx.Err(err))
		return RedeemResult{}, internal(err)
	}
	log = log.With(slog.String("invite_id", inv.ID), slog.String("group_id", inv.GroupID))

	// 2. Used up: clean it away.
	if inv.Exhausted() {
		s.deleteInvite(ctx, inv.ID)
		log.Warn("invite redemption after exhaustion")
		return RedeemResult{}, ErrInviteUsedUp
	}

	// 3. Expired.
	if inv.Expired(now) {
		log.Warn("invite redemption after expiry", slog.Time("expires_at", inv.ExpiresAt))
		return RedeemResult{}, ErrInviteGone
	}

	// 4. The group must still exist.
	g, err := s.Store.Groups().GetGroup(ctx, inv.GroupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.deleteInvite(ctx, inv.ID)
			log.Warn("invite redemption for deleted group")
			return RedeemResult{}, ErrInviteGroupGone
		}
		log.Error("failed to fetch invite group", slogx.Err(err))
		return RedeemResult{}, internal(err)
	}

	// 5. Already in: nothing to count.
	if g.Members.Contains(userID) {
		log.Debug("invite redeemed by existing member")
		return RedeemResult{Group: g, AlreadyMember: true}, nil
	}

	// 6. Count the use and join together.
	var consumed domain.Invite
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := tx.Invites().ConsumeInvite(ctx, hash, now)
		consumed = c
		if err != nil {
			return err
		}
		if err := tx.Members().AddMember(ctx, g.ID, domain.NewMember(userID, now)); err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				return errJoinedMeanwhile
			case errors.Is(err, store.ErrNotFound):
				return errGroupVanished
			}
			return err
		}
		if c.Exhausted() {
			return tx.Invites().DeleteInvite(ctx, c.ID)
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errJoinedMeanwhile):
		g, err := loadGroup(ctx, s.Store, g.ID)
		if err != nil {
			return RedeemResult{}, err
		}
		return RedeemResult{Group: g, AlreadyMember: true}, nil
	case errors.Is(err, errGroupVanished):
		s.deleteInvite(ctx, inv.ID)
		log.Warn("invite group deleted during redemption")
		return RedeemResult{}, ErrInviteGroupGone
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
		// Another redeemer took the last use or the invite expired meanwhile.
		if consumed.ID != "" && consumed.Exhausted() {
			s.deleteInvite(ctx, consumed.ID)
		}
		log.Warn("invite redemption lost to a concurrent redeemer or expiry")
		return RedeemResult{}, ErrInviteGone
	default:
		log.Error("failed to redeem invite", slogx.Err(err))
		return RedeemResult{}, internal(err)
	}

	// 7. Return the group as it is now.
	joined, err := loadGroup(ctx, s.Store, g.ID)
	if err != nil {
		return RedeemResult{}, err
	}

	name := displayName(ctx, s.Store, userID)
	log.Info("user joined group via invite",
		slog.Int("uses_count", consumed.UsesCount),
		slog.Int("max_uses", consumed.MaxUses),
	)
	emitter(s.Events).Emit(ctx, events.Event{
		Type:      events.MemberJoined,
		GroupID:   g.ID,
		ActorID:   userID,
		ActorName: name,
		Category:  domain.ActivityGroup,
		Message:   fmt.Sprintf("%s joined the group", name),
	})
	return RedeemResult{Group: joined}, nil
}

// deleteInvite removes an invite as cleanup; failures are logged only.
func (s *InviteService) deleteInvite(ctx context.Context, id string) {
	if err := s.Store.Invites().DeleteInvite(ctx, id); err != nil {
		slogx.FromContext(ctx).Error("failed to delete invite",
			slog.String("invite_id", id),
			slogx.Err(err),
		)
	}
}
