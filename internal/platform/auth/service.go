package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"arc-backend/internal/platform/apierr"
)

const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

const totpIssuer = "ARC Rental"

func validRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

type Options struct {
	JWTSecret      []byte
	TokenTTL       time.Duration
	MaxLoginFails  int
	LockoutPeriod  time.Duration
}

type Service struct {
	store AccountStore
	opts  Options
	now   func() time.Time
}

func NewService(db *sql.DB, opts Options) *Service {
	return &Service{store: NewStore(db), opts: opts, now: time.Now}
}

// NewServiceWithStore is used by the composition root in tests.
func NewServiceWithStore(store AccountStore, opts Options) *Service {
	return &Service{store: store, opts: opts, now: time.Now}
}

func (s *Service) Register(ctx context.Context, email, password, role string) (*Account, error) {
	if email == "" || password == "" {
		return nil, apierr.Invalid("email and password are required")
	}
	if len(password) < 8 {
		return nil, apierr.Invalid("password must be at least 8 characters")
	}
	if role == "" {
		role = RoleEmployee
	}
	if !validRole(role) {
		return nil, apierr.Invalidf("invalid role %q", role)
	}

	exists, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, apierr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acct := &Account{Email: email, PasswordHash: string(hash), Role: role}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Login checks password (and TOTP code once 2FA is active) and returns a signed JWT.
// Consecutive failures lock the account for the configured period.
func (s *Service) Login(ctx context.Context, email, password, otpCode string) (string, error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", apierr.Unauthorized("authentication failed")
	}
	if acct.IsDisabled {
		return "", apierr.Forbidden("account disabled")
	}

	now := s.now()
	if acct.LockedUntil.Valid && now.Before(acct.LockedUntil.Time) {
		return "", apierr.Forbidden("account locked, try again later")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", s.registerFailure(ctx, acct, now)
	}

	if acct.TOTPEnabled {
		if otpCode == "" {
			return "", apierr.Unauthorized("otp code required")
		}
		if !acct.TOTPSecret.Valid || !totp.Validate(otpCode, acct.TOTPSecret.String) {
			return "", s.registerFailure(ctx, acct, now)
		}
	}

	if acct.FailedAttempts > 0 || acct.LockedUntil.Valid {
		if err := s.store.ResetFailures(ctx, acct.ID); err != nil {
			return "", err
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.Email,
		"role": acct.Role,
		"exp":  now.Add(s.opts.TokenTTL).Unix(),
	})
	return token.SignedString(s.opts.JWTSecret)
}

func (s *Service) registerFailure(ctx context.Context, acct *Account, now time.Time) error {
	attempts := acct.FailedAttempts + 1
	var lockedUntil *time.Time
	if attempts >= s.opts.MaxLoginFails {
		t := now.Add(s.opts.LockoutPeriod)
		lockedUntil = &t
		attempts = 0
	}
	if err := s.store.RecordFailure(ctx, acct.ID, attempts, lockedUntil); err != nil {
		return err
	}
	if lockedUntil != nil {
		return apierr.Forbidden("account locked, try again later")
	}
	return apierr.Unauthorized("authentication failed")
}

func (s *Service) ChangePassword(ctx context.Context, email, current, next string) error {
	if len(next) < 8 {
		return apierr.Invalid("password must be at least 8 characters")
	}
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		return apierr.NotFound("account not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(current)); err != nil {
		return apierr.Unauthorized("authentication failed")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, acct.ID, string(hash))
}

// EnableTOTP generates a fresh secret for the account. The secret stays inactive
// until a code is verified via VerifyTOTP.
func (s *Service) EnableTOTP(ctx context.Context, email string) (secret, uri string, err error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if acct == nil {
		return "", "", apierr.NotFound("account not found")
	}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: acct.Email})
	if err != nil {
		return "", "", err
	}
	if err := s.store.SetTOTPSecret(ctx, acct.ID, key.Secret()); err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

func (s *Service) VerifyTOTP(ctx context.Context, email, code string) error {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		return apierr.NotFound("account not found")
	}
	if !acct.TOTPSecret.Valid {
		return apierr.Invalid("2fa setup not started")
	}
	if !totp.Validate(code, acct.TOTPSecret.String) {
		return apierr.Unauthorized("invalid otp code")
	}
	return s.store.EnableTOTP(ctx, acct.ID)
}
