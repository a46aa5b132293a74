package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertUserSQL = `
INSERT INTO kakao_users (id, display_name, email, avatar_url, created_at, updated_at, last_login)
VALUES ($1, $2, $3, $4, $5, $5, $5)
ON CONFLICT (id) DO UPDATE SET
    display_name = EXCLUDED.display_name,
    email        = EXCLUDED.email,
    avatar_url   = EXCLUDED.avatar_url,
    updated_at   = EXCLUDED.updated_at,
    last_login   = EXCLUDED.last_login`

	selectUserColumns = `SELECT id, display_name, email, avatar_url, created_at, updated_at, last_login FROM kakao_users`

	getUserSQL    = selectUserColumns + ` WHERE id = $1`
	listUsersSQL  = selectUserColumns + ` ORDER BY last_login DESC, id DESC`
	deleteUserSQL = `DELETE FROM kakao_users WHERE id = $1`
	countUsersSQL = `SELECT COUNT(*) FROM kakao_users`
)

type usersRepo struct{ s *Store }

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u                   domain.User
		name, email, avatar *string
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
	var affected int64
	err := r.s.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, upsertUserSQL,
			p.ID,
			mapStringNull(p.DisplayName),
			mapStringNull(p.Email),
			mapStringNull(p.AvatarURL),
			loginAt.UTC(),
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

func (r *usersRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.s.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		u, err = scanUser(conn.QueryRow(ctx, getUserSQL, id))
		return mapNotFound(err)
	})
	return u, err
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := r.s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, listUsersSQL)
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
	err := r.s.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, deleteUserSQL, id)
		if err != nil {
			return err
		}
		found = tag.RowsAffected() > 0
		return nil
	})
	return found, err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, countUsersSQL).Scan(&n)
	})
	return n, err
}
