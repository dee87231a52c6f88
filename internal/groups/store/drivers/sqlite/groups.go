package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
)

type groupsRepo struct {
	db dbtx
}

const groupColumns = `g.id, g.name, g.description, g.icon, g.color, g.author_id, g.created_at, g.updated_at`

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO docket_groups (id, name, description, icon, color, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, g.Icon, g.Color, g.AuthorID, g.CreatedAt.UTC(), g.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}

	members := &membersRepo{db: r.db}
	for _, m := range g.Members {
		if err := members.insert(ctx, g.ID, m); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *groupsRepo) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM docket_groups g WHERE g.id = ?`, id)
	g, err := scanGroup(row)
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}

	g.Members, err = (&membersRepo{db: r.db}).list(ctx, id)
	if err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

func (r *groupsRepo) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+groupColumns+`
		FROM docket_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.updated_at DESC, g.id DESC`, userID)
	if err != nil {
		return nil, err
	}

	var groups []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows are closed before loading rosters: an in-memory database has a
	// single connection.
	members := &membersRepo{db: r.db}
	for i := range groups {
		if groups[i].Members, err = members.list(ctx, groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (r *groupsRepo) UpdateGroup(ctx context.Context, g domain.Group) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE docket_groups
		SET name = ?, description = ?, icon = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		g.Name, g.Description, g.Icon, g.Color, g.UpdatedAt.UTC(), g.ID,
	)
	if err != nil {
		return err
	}
	return requireOne(res)
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM docket_groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOne(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(s scanner) (domain.Group, error) {
	var (
		g                    domain.Group
		createdAt, updatedAt time.Time
	)
	if err := s.Scan(&g.ID, &g.Name, &g.Description, &g.Icon, &g.Color, &g.AuthorID, &createdAt, &updatedAt); err != nil {
		return domain.Group{}, err
	}
	g.CreatedAt, g.UpdatedAt = createdAt.UTC(), updatedAt.UTC()
	return g, nil
}

func requireOne(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
