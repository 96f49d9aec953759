package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
	"github.com/agritrack/farm-records/internal/utils"
)

const testSecret = "test-secret"

type fakeUsers struct {
	byName map[string]model.User
	byID   map[uint64]model.User
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeLedger struct{ revoked map[string]bool }

func (f *fakeLedger) Insert(_ context.Context, jti string, _ uint64, _ time.Time) error {
	if f.revoked[jti] {
		return repository.ErrAlreadyRevoked
	}
	f.revoked[jti] = true
	return nil
}

func (f *fakeLedger) Contains(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func newTestService(t *testing.T) (*Service, *fakeLedger) {
	t.Helper()
	hash, err := utils.HashPassword("pw1", 4)
	require.NoError(t, err)
	alice := model.User{ID: 7, Username: "alice", Email: "alice@example.com", PasswordHash: hash}
	users := &fakeUsers{
		byName: map[string]model.User{"alice": alice},
		byID:   map[uint64]model.User{7: alice},
	}
	ledger := &fakeLedger{revoked: map[string]bool{}}
	return NewService(testSecret, 15, 7, users, ledger), ledger
}

func TestIssueAndValidate(t *testing.T) {
	svc, _ := newTestService(t)

	pair, u, err := svc.Issue(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, uint64(7), u.ID)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.NotEqual(t, pair.Access, pair.Refresh)

	access, err := svc.Validate(pair.Access, TypeAccess)
	require.NoError(t, err)
	require.Equal(t, uint64(7), access.UserID)
	require.NotEmpty(t, access.ID)

	refresh, err := svc.Validate(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	require.Equal(t, uint64(7), refresh.UserID)
	require.NotEqual(t, access.ID, refresh.ID)
}

func TestIssueInvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct{ username, password string }{
		{"alice", "wrong"},
		{"alice", ""},
		{"nobody", "pw1"},
	}
	for _, tc := range cases {
		pair, _, err := svc.Issue(context.Background(), tc.username, tc.password)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Empty(t, pair.Access)
		require.Empty(t, pair.Refresh)
	}
}

func TestValidateRejectsWrongType(t *testing.T) {
	svc, _ := newTestService(t)
	pair, _, err := svc.Issue(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	_, err = svc.Validate(pair.Refresh, TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Validate(pair.Access, TypeRefresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbageAndWrongSecret(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Validate("not-a-jwt", TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	other, _ := newTestService(t)
	other.secret = []byte("another-secret")
	pair, _, err := other.Issue(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	_, err = svc.Validate(pair.Access, TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc, _ := newTestService(t)
	svc.accessTTL = -time.Minute
	pair, _, err := svc.Issue(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	_, err = svc.Validate(pair.Access, TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeAndRefresh(t *testing.T) {
	svc, ledger := newTestService(t)
	pair, _, err := svc.Issue(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	// A live refresh token mints a fresh access token.
	access, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	claims, err := svc.Validate(access, TypeAccess)
	require.NoError(t, err)
	require.Equal(t, uint64(7), claims.UserID)

	require.NoError(t, svc.Revoke(context.Background(), pair.Refresh))
	rc, err := svc.Validate(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	require.True(t, ledger.revoked[rc.ID])

	// Once revoked, the token can never mint again.
	_, err = svc.Refresh(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Second revocation reports the duplicate without side effects.
	err = svc.Revoke(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeRejectsMalformedAndAccessTokens(t *testing.T) {
	svc, ledger := newTestService(t)
	pair, _, err := svc.Issue(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Revoke(context.Background(), "garbage"), ErrInvalidToken)
	require.ErrorIs(t, svc.Revoke(context.Background(), pair.Access), ErrInvalidToken)
	require.Empty(t, ledger.revoked)
}
