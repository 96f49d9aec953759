package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/farm-records/internal/config"
	"github.com/agritrack/farm-records/internal/middleware"
	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
	"github.com/agritrack/farm-records/internal/token"
	"github.com/agritrack/farm-records/internal/utils"
)

// memStore is an in-memory credential store and blacklist ledger backing the
// auth endpoints under test. It satisfies token.CredentialStore,
// token.Ledger and UserStore.
type memStore struct {
	users   map[uint64]*model.User
	byName  map[string]uint64
	revoked map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[uint64]*model.User{},
		byName:  map[string]uint64{},
		revoked: map[string]bool{},
	}
}

func (s *memStore) add(t *testing.T, u model.User, password string) {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	u.PasswordHash = hash
	s.users[u.ID] = &u
	s.byName[u.Username] = u.ID
}

func (s *memStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	id, ok := s.byName[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return *s.users[id], nil
}

func (s *memStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (s *memStore) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (s *memStore) Insert(_ context.Context, jti string, _ uint64, _ time.Time) error {
	if s.revoked[jti] {
		return repository.ErrAlreadyRevoked
	}
	s.revoked[jti] = true
	return nil
}

func (s *memStore) Contains(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

func newAuthServer(t *testing.T) (*echo.Echo, *memStore, *token.Service) {
	t.Helper()
	store := newMemStore()
	store.add(t, model.User{
		ID: 1, Username: "alice", Email: "alice@example.com",
		FirstName: "Alice", LastName: "Mwangi",
	}, "pw1")
	store.add(t, model.User{
		ID: 2, Username: "root", Email: "root@example.com", IsStaff: true, IsSuperuser: true,
	}, "rootpw")

	tokens := token.NewService("test-secret", 15, 7, store, store)
	h := NewAuthHandler(config.Config{BcryptCost: 4}, tokens, store)

	e := echo.New()
	e.POST("/api/token/", h.Login)
	e.POST("/api/token/refresh/", h.Refresh)
	g := e.Group("/api", middleware.JWTAuth(tokens))
	g.POST("/logout/", h.Logout)
	g.POST("/current-user/", h.CurrentUser)
	g.POST("/change-password/", h.ChangePassword)
	return e, store, tokens
}

// do performs a JSON POST against the test server, optionally with a bearer
// token, and returns the recorder plus the decoded body.
func do(t *testing.T, e *echo.Echo, path, bearer, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func login(t *testing.T, e *echo.Echo, username, password string) (access, refresh string) {
	t.Helper()
	rec, body := do(t, e, "/api/token/", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	access, _ = body["access"].(string)
	refresh, _ = body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func TestLoginReturnsTokenPairAndUser(t *testing.T) {
	e, _, tokens := newAuthServer(t)

	rec, body := do(t, e, "/api/token/", "", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	access := body["access"].(string)
	claims, err := tokens.Validate(access, token.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, uint64(1), claims.UserID)

	user := body["user"].(map[string]any)
	require.Equal(t, float64(1), user["id"])
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "alice@example.com", user["email"])
	require.Equal(t, "Alice", user["first_name"])
	require.Equal(t, "Mwangi", user["last_name"])
	require.Equal(t, false, user["is_staff"])
	require.Equal(t, "clerk", user["role"])
}

func TestLoginSuperuserRoleResolvesAdmin(t *testing.T) {
	e, _, _ := newAuthServer(t)
	rec, body := do(t, e, "/api/token/", "", `{"username":"root","password":"rootpw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	require.Equal(t, "admin", user["role"])
	require.Equal(t, true, user["is_staff"])
}

func TestLoginFailures(t *testing.T) {
	e, _, _ := newAuthServer(t)

	rec, body := do(t, e, "/api/token/", "", `{"username":"alice","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotContains(t, body, "access")
	require.NotContains(t, body, "refresh")

	rec, _ = do(t, e, "/api/token/", "", `{"username":"nobody","password":"pw1"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, e, "/api/token/", "", `{"username":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	e, _, _ := newAuthServer(t)
	access, refresh := login(t, e, "alice", "pw1")

	// The refresh token works until it is revoked.
	rec, body := do(t, e, "/api/token/refresh/", "", `{"refresh":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body["access"])

	rec, body = do(t, e, "/api/logout/", access, `{"refresh":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Successfully logged out.", body["detail"])

	// Minting with the revoked token must fail from now on.
	rec, _ = do(t, e, "/api/token/refresh/", "", `{"refresh":"`+refresh+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A second logout with the same token fails without side effects.
	rec, body = do(t, e, "/api/logout/", access, `{"refresh":"`+refresh+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Failed to log out.", body["detail"])
}

func TestLogoutFailureModes(t *testing.T) {
	e, _, _ := newAuthServer(t)
	access, _ := login(t, e, "alice", "pw1")

	// Unauthenticated callers never reach the handler.
	rec, _ := do(t, e, "/api/logout/", "", `{"refresh":"whatever"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing and malformed refresh tokens coalesce into the generic reply.
	rec, body := do(t, e, "/api/logout/", access, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Failed to log out.", body["detail"])

	rec, body = do(t, e, "/api/logout/", access, `{"refresh":"garbage"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Failed to log out.", body["detail"])

	// An access token is not a refresh token.
	rec, body = do(t, e, "/api/logout/", access, `{"refresh":"`+access+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Failed to log out.", body["detail"])
}

func TestCurrentUserReflectsLiveData(t *testing.T) {
	e, store, _ := newAuthServer(t)
	access, _ := login(t, e, "alice", "pw1")

	rec, body := do(t, e, "/api/current-user/", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "alice@example.com", body["email"])
	require.Equal(t, float64(1), body["id"])

	// The endpoint reads the store, not a token-embedded snapshot.
	store.users[1].Email = "alice@farm.example"
	rec, body = do(t, e, "/api/current-user/", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice@farm.example", body["email"])

	rec, _ = do(t, e, "/api/current-user/", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword(t *testing.T) {
	e, _, _ := newAuthServer(t)
	access, _ := login(t, e, "alice", "pw1")

	// Wrong old password: 401 and the stored hash is untouched.
	rec, body := do(t, e, "/api/change-password/", access, `{"old_password":"nope","new_password":"pw2"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Old password is incorrect.", body["detail"])
	login(t, e, "alice", "pw1")

	// Missing fields are a validation error.
	rec, _ = do(t, e, "/api/change-password/", access, `{"old_password":"pw1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Correct old password rewrites the hash.
	rec, body = do(t, e, "/api/change-password/", access, `{"old_password":"pw1","new_password":"pw2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Password updated successfully.", body["detail"])

	// The old secret no longer authenticates, the new one does.
	rec, _ = do(t, e, "/api/token/", "", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	login(t, e, "alice", "pw2")

	// Existing access tokens stay valid until natural expiry.
	rec, _ = do(t, e, "/api/current-user/", access, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedEndpointsRejectBadTokens(t *testing.T) {
	e, _, _ := newAuthServer(t)
	_, refresh := login(t, e, "alice", "pw1")

	rec, _ := do(t, e, "/api/current-user/", "not-a-token", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Refresh tokens are not bearer credentials.
	rec, _ = do(t, e, "/api/current-user/", refresh, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
