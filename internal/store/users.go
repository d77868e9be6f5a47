package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"legalconnect-engine/internal/domain"
)

// NormalizeEmail is the lookup key for users.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateUser inserts u; PasswordHash must already be set. A taken email is
// ErrExists.
func CreateUser(ctx context.Context, db *sql.DB, u domain.User) (domain.User, error) {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	created := nowText()
	res, err := db.ExecContext(ctx, `
INSERT INTO users(name, email, password, role, created_at)
VALUES(?,?,?,?,?);`, u.Name, u.Email, u.PasswordHash, string(u.Role), created)
	if isUniqueViolation(err) {
		return domain.User{}, ErrExists
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID, _ = res.LastInsertId()
	u.CreatedAt = parseTime(created)
	return u, nil
}

func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (domain.User, error) {
	return getUser(ctx, db, `email = ?`, NormalizeEmail(email))
}

func GetUserByID(ctx context.Context, db *sql.DB, id int64) (domain.User, error) {
	return getUser(ctx, db, `id = ?`, id)
}

func getUser(ctx context.Context, db *sql.DB, where string, arg any) (domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt string
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, password, role, created_at FROM users WHERE `+where+` LIMIT 1;`, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}
