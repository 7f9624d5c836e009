package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Account struct {
	ID             int64
	Email          string
	PasswordHash   string
	Role           string
	FailedAttempts int
	LockedUntil    sql.NullTime
	TOTPSecret     sql.NullString
	TOTPEnabled    bool
	IsDisabled     bool
	CreatedAt      time.Time
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	RecordFailure(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error
	ResetFailures(ctx context.Context, id int64) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetTOTPSecret(ctx context.Context, id int64, secret string) error
	EnableTOTP(ctx context.Context, id int64) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT account_id, email, password_hash, role, failed_attempts, locked_until,
       totp_secret, totp_enabled, is_disabled, created_at
FROM auth_accounts
WHERE email = ?
LIMIT 1
`
	var a Account
	var totpEnabled, isDisabled int
	err := s.db.QueryRowContext(ctx, q, email).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.FailedAttempts,
		&a.LockedUntil,
		&a.TOTPSecret,
		&totpEnabled,
		&isDisabled,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.TOTPEnabled = totpEnabled != 0
	a.IsDisabled = isDisabled != 0
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_accounts (email, password_hash, role, failed_attempts, totp_enabled, is_disabled, created_at)
VALUES (?, ?, ?, 0, 0, 0, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, a.Email, a.PasswordHash, a.Role)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	a.ID = id
	return nil
}

func (s *Store) RecordFailure(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error {
	const q = `UPDATE auth_accounts SET failed_attempts = ?, locked_until = ? WHERE account_id = ?`
	_, err := s.db.ExecContext(ctx, q, attempts, lockedUntil, id)
	return err
}

func (s *Store) ResetFailures(ctx context.Context, id int64) error {
	const q = `UPDATE auth_accounts SET failed_attempts = 0, locked_until = NULL WHERE account_id = ?`
	_, err := s.db.ExecContext(ctx, q, id)
	return err
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE auth_accounts SET password_hash = ? WHERE account_id = ?`
	_, err := s.db.ExecContext(ctx, q, hash, id)
	return err
}

func (s *Store) SetTOTPSecret(ctx context.Context, id int64, secret string) error {
	const q = `UPDATE auth_accounts SET totp_secret = ?, totp_enabled = 0 WHERE account_id = ?`
	_, err := s.db.ExecContext(ctx, q, secret, id)
	return err
}

func (s *Store) EnableTOTP(ctx context.Context, id int64) error {
	const q = `UPDATE auth_accounts SET totp_enabled = 1 WHERE account_id = ?`
	_, err := s.db.ExecContext(ctx, q, id)
	return err
}
