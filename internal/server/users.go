// users.go - Credential store: persistence for user records.
//
// Role is part of the lookup key for authentication, and (email, role)
// carries its own uniqueness constraint in the schema so "one email,
// one role" is enforced by the database, not by convention.
package server

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Role classifies an account: ops accounts upload and administer files,
// client accounts consume them.
type Role string

const (
	RoleOps    Role = "ops"
	RoleClient Role = "client"
)

// User is a credential-store record.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
}

// UserStore persists user records.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. A verification token is stored for
// unverified accounts; pass empty for pre-verified ops accounts.
func (s *UserStore) Create(ctx context.Context, u User, verificationToken string) error {
	tok := sql.NullString{String: verificationToken, Valid: verificationToken != ""}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.Verified, tok)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// ByEmailAndRole looks a user up by the compound authentication key.
func (s *UserStore) ByEmailAndRole(ctx context.Context, email string, role Role) (*User, error) {
	u := User{Email: email, Role: role}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash, is_verified, created_at
		FROM users
		WHERE email = $1 AND role = $2
	`, email, role).Scan(&u.ID, &u.PasswordHash, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ByID resolves a bearer-token subject to a full user record.
func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u := User{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT email, password_hash, role, is_verified, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.Email, &u.PasswordHash, &u.Role, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Verify consumes a verification token: marks the account verified and
// clears the token in one statement. Returns ErrNotFound when no
// account holds the token (unknown or already consumed).
func (s *UserStore) Verify(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_verified = TRUE,
		    verification_token = NULL
		WHERE verification_token = $1
	`, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
