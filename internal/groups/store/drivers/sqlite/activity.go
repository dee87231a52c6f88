package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

type activityRepo struct {
	db dbtx
}

const activityColumns = `id, group_id, category, message, author_id, author_name, content_kind, content_id, created_at`

func (r *activityRepo) AppendActivity(ctx context.Context, a domain.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_activity (`+activityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.GroupID, string(a.Category), a.Message, a.AuthorID, a.AuthorName,
		string(a.ContentKind), a.ContentID, a.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *activityRepo) GetActivity(ctx context.Context, id string) (domain.Activity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM group_activity WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, mapNotFound(err)
	}
	return a, nil
}

func (r *activityRepo) ListActivity(ctx context.Context, groupID string, page domain.Page) ([]domain.Activity, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_activity WHERE group_id = ?`, groupID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM group_activity
		WHERE group_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, groupID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Activity, 0, page.Size)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *activityRepo) DeleteActivity(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_activity WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOne(res)
}

func (r *activityRepo) DeleteGroupActivity(ctx context.Context, groupID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_activity WHERE group_id = ?`, groupID)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func (r *activityRepo) DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_activity WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a              domain.Activity
		category, kind string
	)
	err := s.Scan(&a.ID, &a.GroupID, &category, &a.Message, &a.AuthorID, &a.AuthorName,
		&kind, &a.ContentID, &a.CreatedAt)
	if err != nil {
		return domain.Activity{}, err
	}
	a.Category = domain.ActivityCategory(category)
	a.ContentKind = domain.ContentKind(kind)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
