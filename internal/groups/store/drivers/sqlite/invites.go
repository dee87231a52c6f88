package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, token_hash, group_id, created_by, expires_at, max_uses, uses_count, created_at, updated_at`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_invites (`+inviteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.GroupID, inv.CreatedBy, inv.ExpiresAt.UTC(),
		inv.MaxUses, inv.UsesCount, inv.CreatedAt.UTC(), inv.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM group_invites WHERE token_hash = ?`, hash)
	inv, err := scanInvite(row)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, hash string, now time.Time) (domain.Invite, error) {
	now = now.UTC()

	// The usability check and the increment are one statement.
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_invites
		SET uses_count = uses_count + 1, updated_at = ?
		WHERE token_hash = ?
		  AND expires_at > ?
		  AND (max_uses = -1 OR uses_count < max_uses)`,
		now, hash, now,
	)
	if err != nil {
		return domain.Invite{}, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return domain.Invite{}, err
	}

	inv, err := r.GetInviteByTokenHash(ctx, hash)
	if err != nil {
		return domain.Invite{}, err
	}
	if n == 0 {
		return inv, store.ErrConflict
	}
	return inv, nil
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM group_invites WHERE id = ?`, id)
	return err
}

func (r *invitesRepo) DeleteInvitesByGroup(ctx context.Context, groupID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_invites WHERE group_id = ?`, groupID)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func (r *invitesRepo) DeleteUnusableInvites(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM group_invites
		WHERE expires_at <= ?
		   OR (max_uses <> -1 AND uses_count >= max_uses)`, now.UTC())
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func (r *invitesRepo) DeleteOrphanedInvites(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM group_invites
		WHERE NOT EXISTS (SELECT 1 FROM docket_groups g WHERE g.id = group_invites.group_id)`)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func scanInvite(s scanner) (domain.Invite, error) {
	var inv domain.Invite
	err := s.Scan(&inv.ID, &inv.TokenHash, &inv.GroupID, &inv.CreatedBy, &inv.ExpiresAt,
		&inv.MaxUses, &inv.UsesCount, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invite{}, err
	}
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}
