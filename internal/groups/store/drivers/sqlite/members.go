package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
)

type membersRepo struct {
	db dbtx
}

const memberColumns = `m.user_id, COALESCE(u.username, ''), m.role, m.joined_at, m.pinned,
	m.notify_assignment, m.notify_mention, m.notify_group, m.notify_reminder, m.notify_poll`

func (r *membersRepo) insert(ctx context.Context, groupID string, m domain.Member) error {
	p := m.Preferences
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at, pinned,
			notify_assignment, notify_mention, notify_group, notify_reminder, notify_poll)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		groupID, m.UserID, string(m.Role), m.JoinedAt.UTC(), m.Pinned,
		p.Assignment, p.Mention, p.Group, p.Reminder, p.Poll,
	)
	return err
}

func (r *membersRepo) list(ctx context.Context, groupID string) (domain.Members, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM group_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY m.rowid`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out domain.Members
	for rows.Next() {
		var (
			m    domain.Member
			role string
		)
		p := &m.Preferences
		if err := rows.Scan(&m.UserID, &m.Username, &role, &m.JoinedAt, &m.Pinned,
			&p.Assignment, &p.Mention, &p.Group, &p.Reminder, &p.Poll); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		m.JoinedAt = m.JoinedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membersRepo) AddMember(ctx context.Context, groupID string, m domain.Member) error {
	p := m.Preferences
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at, pinned,
			notify_assignment, notify_mention, notify_group, notify_reminder, notify_poll)
		SELECT id, ?, ?, ?, ?, ?, ?, ?, ?, ? FROM docket_groups WHERE id = ?
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		m.UserID, string(m.Role), m.JoinedAt.UTC(), m.Pinned,
		p.Assignment, p.Mention, p.Group, p.Reminder, p.Poll,
		groupID,
	)
	if err != nil {
		return err
	}
	n, err := rowsAffected(res)
	if err != nil || n == 1 {
		return err
	}

	// Nothing inserted: either the group is gone or the user is already in it.
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM docket_groups WHERE id = ?`, groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrAlreadyExists
}

// guardClause appends the Guard conditions to a statement already filtering
// on group_members (group_id, user_id).
func guardClause(groupID string, g store.Guard) (string, []any) {
	clause := ` AND role = ?`
	args := []any{string(g.TargetRole)}
	if g.ActorID != "" {
		clause += ` AND EXISTS (SELECT 1 FROM group_members a WHERE a.group_id = ? AND a.user_id = ? AND a.role = ?)`
		args = append(args, groupID, g.ActorID, string(g.ActorRole))
	}
	return clause, args
}

func (r *membersRepo) RemoveMember(ctx context.Context, groupID, userID string, g store.Guard) error {
	clause, guardArgs := guardClause(groupID, g)
	args := append([]any{groupID, userID}, guardArgs...)

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`+clause, args...)
	if err != nil {
		return err
	}
	return r.guardResult(res)
}

func (r *membersRepo) SetRole(ctx context.Context, groupID, userID string, role domain.Role, g store.Guard) error {
	clause, guardArgs := guardClause(groupID, g)
	args := append([]any{string(role), groupID, userID}, guardArgs...)

	res, err := r.db.ExecContext(ctx,
		`UPDATE group_members SET role = ? WHERE group_id = ? AND user_id = ?`+clause, args...)
	if err != nil {
		return err
	}
	return r.guardResult(res)
}

func (r *membersRepo) guardResult(res sql.Result) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *membersRepo) UpdateSettings(ctx context.Context, groupID string, m domain.Member) error {
	p := m.Preferences
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_members
		SET pinned = ?, notify_assignment = ?, notify_mention = ?, notify_group = ?,
			notify_reminder = ?, notify_poll = ?
		WHERE group_id = ? AND user_id = ?`,
		m.Pinned, p.Assignment, p.Mention, p.Group, p.Reminder, p.Poll,
		groupID, m.UserID,
	)
	if err != nil {
		return err
	}
	return requireOne(res)
}

func (r *membersRepo) CountMembers(ctx context.Context, groupID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID).Scan(&n)
	return n, err
}
