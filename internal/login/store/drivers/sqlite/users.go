package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
)

const (
	upsertUserSQL = `
INSERT INTO kakao_users (id, display_name, email, avatar_url, created_at, updated_at, last_login)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    display_name = excluded.display_name,
    email        = excluded.email,
    avatar_url   = excluded.avatar_url,
    updated_at   = excluded.updated_at,
    last_login   = excluded.last_login`

	selectUserColumns = `SELECT id, display_name, email, avatar_url, created_at, updated_at, last_login FROM kakao_users`

	getUserSQL    = selectUserColumns + ` WHERE id = ?`
	listUsersSQL  = selectUserColumns + ` ORDER BY last_login DESC, id DESC`
	deleteUserSQL = `DELETE FROM kakao_users WHERE id = ?`
	countUsersSQL = `SELECT COUNT(*) FROM kakao_users`
)

type usersRepo struct{ s *Store }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                   domain.User
		name, email, avatar sql.NullString
	)
	if err := row.Scan(&u.ID, &name, &email, &avatar, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
		return domain.User{}, err
	}
	u.DisplayName = mapNullString(name)
	u.Email = mapNullString(email)
	u.AvatarURL = mapNullString(avatar)
	return u, nil
}

func (r *usersRepo) UpsertUser(ctx context.Context, p domain.Profile, loginAt time.Time) (int64, error) {
	at := dbTime(loginAt)
	var affected int64
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, upsertUserSQL,
			p.ID,
			mapStringNull(p.DisplayName),
			mapStringNull(p.Email),
			mapStringNull(p.AvatarURL),
			at, at, at,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func (r *usersRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		u, err = scanUser(conn.QueryRowContext(ctx, getUserSQL, id))
		return mapNotFound(err)
	})
	return u, err
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, listUsersSQL)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, deleteUserSQL, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		found = n > 0
		return err
	})
	return found, err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, countUsersSQL).Scan(&n)
	})
	return n, err
}
