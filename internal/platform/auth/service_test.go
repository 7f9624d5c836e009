package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccountStore struct {
	accounts map[string]*Account
	nextID   int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*Account{}, nextID: 1}
}

func (f *fakeAccountStore) byID(id int64) *Account {
	for _, a := range f.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*Account, error) {
	a, ok := f.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) Create(_ context.Context, a *Account) error {
	a.ID = f.nextID
	f.nextID++
	cp := *a
	f.accounts[a.Email] = &cp
	return nil
}

func (f *fakeAccountStore) RecordFailure(_ context.Context, id int64, attempts int, lockedUntil *time.Time) error {
	a := f.byID(id)
	a.FailedAttempts = attempts
	if lockedUntil != nil {
		a.LockedUntil.Time = *lockedUntil
		a.LockedUntil.Valid = true
	} else {
		a.LockedUntil.Valid = false
	}
	return nil
}

func (f *fakeAccountStore) ResetFailures(_ context.Context, id int64) error {
	a := f.byID(id)
	a.FailedAttempts = 0
	a.LockedUntil.Valid = false
	return nil
}

func (f *fakeAccountStore) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	f.byID(id).PasswordHash = hash
	return nil
}

func (f *fakeAccountStore) SetTOTPSecret(_ context.Context, id int64, secret string) error {
	a := f.byID(id)
	a.TOTPSecret.String = secret
	a.TOTPSecret.Valid = true
	a.TOTPEnabled = false
	return nil
}

func (f *fakeAccountStore) EnableTOTP(_ context.Context, id int64) error {
	f.byID(id).TOTPEnabled = true
	return nil
}

var testOpts = Options{
	JWTSecret:     []byte("test-secret"),
	TokenTTL:      time.Hour,
	MaxLoginFails: 5,
	LockoutPeriod: 15 * time.Minute,
}

func seedAccount(t *testing.T, store *fakeAccountStore, email, password string) *Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	acct := &Account{Email: email, PasswordHash: string(hash), Role: RoleEmployee}
	require.NoError(t, store.Create(context.Background(), acct))
	return store.accounts[email]
}

func TestLoginIssuesToken(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "ana@example.com", "s3cret-pass")
	svc := NewServiceWithStore(store, testOpts)

	tokenStr, err := svc.Login(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (any, error) { return testOpts.JWTSecret, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "ana@example.com", claims["sub"])
	assert.Equal(t, RoleEmployee, claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "ana@example.com", "s3cret-pass")
	svc := NewServiceWithStore(store, testOpts)

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Equal(t, 1, store.accounts["ana@example.com"].FailedAttempts)
}

func TestLockoutOnFifthFailure(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "ana@example.com", "s3cret-pass")
	svc := NewServiceWithStore(store, testOpts)

	for i := 0; i < 4; i++ {
		_, err := svc.Login(context.Background(), "ana@example.com", "wrong", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "authentication failed")
	}

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account locked")
	assert.True(t, store.accounts["ana@example.com"].LockedUntil.Valid)

	// the right password does not help while locked
	_, err = svc.Login(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account locked")
}

func TestLockoutExpires(t *testing.T) {
	store := newFakeAccountStore()
	acct := seedAccount(t, store, "ana@example.com", "s3cret-pass")
	acct.LockedUntil.Time = time.Now().Add(-time.Minute)
	acct.LockedUntil.Valid = true
	svc := NewServiceWithStore(store, testOpts)

	_, err := svc.Login(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.NoError(t, err)
	assert.False(t, store.accounts["ana@example.com"].LockedUntil.Valid)
	assert.Equal(t, 0, store.accounts["ana@example.com"].FailedAttempts)
}

func TestLoginRequiresOTPOnceEnabled(t *testing.T) {
	store := newFakeAccountStore()
	acct := seedAccount(t, store, "ana@example.com", "s3cret-pass")
	svc := NewServiceWithStore(store, testOpts)

	secret, uri, err := svc.EnableTOTP(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, uri, "otpauth://")

	// secret is staged but not active yet
	_, err = svc.Login(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.VerifyTOTP(context.Background(), "ana@example.com", code))
	assert.True(t, store.byID(acct.ID).TOTPEnabled)

	_, err = svc.Login(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "otp code required")

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "ana@example.com", "s3cret-pass", code)
	require.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewServiceWithStore(store, testOpts)

	_, err := svc.Register(context.Background(), "ana@example.com", "short", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8")

	acct, err := svc.Register(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, acct.Role)

	_, err = svc.Register(context.Background(), "ana@example.com", "s3cret-pass", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	_, err = svc.Register(context.Background(), "bob@example.com", "s3cret-pass", "SUPERVISOR")
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "ana@example.com", "s3cret-pass")
	svc := NewServiceWithStore(store, testOpts)

	err := svc.ChangePassword(context.Background(), "ana@example.com", "wrong", "new-password")
	require.Error(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), "ana@example.com", "s3cret-pass", "new-password"))
	_, err = svc.Login(context.Background(), "ana@example.com", "new-password", "")
	require.NoError(t, err)
}
