package sqlite

import (
	"context"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, updated_at = excluded.updated_at
		WHERE users.username <> excluded.username`,
		u.ID, u.Username, u.UpdatedAt.UTC(),
	)
	return err
}

func (r *usersRepo) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `SELECT id, username, updated_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
