package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

type contentRepo struct {
	db dbtx
}

func (r *contentRepo) CreateContent(ctx context.Context, c domain.Content) error {
	var parent sql.NullString
	if c.ParentID != "" {
		parent = sql.NullString{String: c.ParentID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_content (id, group_id, kind, parent_id, author_id, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.GroupID, string(c.Kind), parent, c.AuthorID, c.Title, c.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *contentRepo) GetContent(ctx context.Context, kind domain.ContentKind, id string) (domain.Content, error) {
	var (
		c      domain.Content
		k      string
		parent sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, kind, parent_id, author_id, title, created_at
		FROM group_content WHERE id = ? AND kind = ?`, id, string(kind)).
		Scan(&c.ID, &c.GroupID, &k, &parent, &c.AuthorID, &c.Title, &c.CreatedAt)
	if err != nil {
		return domain.Content{}, mapNotFound(err)
	}
	c.Kind = domain.ContentKind(k)
	c.ParentID = parent.String
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *contentRepo) DeleteContent(ctx context.Context, kind domain.ContentKind, id string) (domain.ContentCounts, error) {
	// Count first: items removed by the parent cascade are not reported by
	// RowsAffected.
	counts, err := r.count(ctx, `WHERE (id = ? AND kind = ?) OR (parent_id = ? AND ? = 'list')`,
		id, string(kind), id, string(kind))
	if err != nil {
		return domain.ContentCounts{}, err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM group_content WHERE id = ? AND kind = ?`, id, string(kind))
	if err != nil {
		return domain.ContentCounts{}, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return domain.ContentCounts{}, err
	}
	if n == 0 {
		return domain.ContentCounts{}, nil
	}
	return counts, nil
}

func (r *contentRepo) DeleteGroupContent(ctx context.Context, groupID string) (domain.ContentCounts, error) {
	counts, err := r.count(ctx, `WHERE group_id = ?`, groupID)
	if err != nil {
		return domain.ContentCounts{}, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_content WHERE group_id = ?`, groupID); err != nil {
		return domain.ContentCounts{}, err
	}
	return counts, nil
}

func (r *contentRepo) count(ctx context.Context, where string, args ...any) (domain.ContentCounts, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM group_content `+where+` GROUP BY kind`, args...)
	if err != nil {
		return domain.ContentCounts{}, err
	}
	defer rows.Close()

	var counts domain.ContentCounts
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return domain.ContentCounts{}, err
		}
		switch domain.ContentKind(kind) {
		case domain.ContentList:
			counts.Lists = n
		case domain.ContentItem:
			counts.Items = n
		case domain.ContentNote:
			counts.Notes = n
		case domain.ContentPoll:
			counts.Polls = n
		}
	}
	return counts, rows.Err()
}
