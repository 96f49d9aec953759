package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
	"github.com/agritrack/farm-records/internal/token"
	"github.com/agritrack/farm-records/internal/utils"
)

type stubUsers struct{ users map[uint64]model.User }

func (s *stubUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type stubLedger struct{}

func (stubLedger) Insert(context.Context, string, uint64, time.Time) error { return nil }
func (stubLedger) Contains(context.Context, string) (bool, error)         { return false, nil }

func newStub(t *testing.T, staff bool) (*token.Service, *stubUsers) {
	t.Helper()
	hash, err := utils.HashPassword("pw", 4)
	require.NoError(t, err)
	users := &stubUsers{users: map[uint64]model.User{
		1: {ID: 1, Username: "u", PasswordHash: hash, IsStaff: staff},
	}}
	return token.NewService("secret", 5, 1, users, stubLedger{}), users
}

func serve(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthInjectsUserID(t *testing.T) {
	svc, _ := newStub(t, false)
	pair, _, err := svc.Issue(context.Background(), "u", "pw")
	require.NoError(t, err)

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, err := UserID(c)
		require.NoError(t, err)
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}, JWTAuth(svc))

	rec := serve(e, pair.Access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":1}`, rec.Body.String())
}

func TestJWTAuthRejections(t *testing.T) {
	svc, _ := newStub(t, false)
	pair, _, err := svc.Issue(context.Background(), "u", "pw")
	require.NoError(t, err)

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, JWTAuth(svc))

	require.Equal(t, http.StatusUnauthorized, serve(e, "").Code)
	require.Equal(t, http.StatusUnauthorized, serve(e, "garbage").Code)
	// Refresh tokens do not authorize API calls.
	require.Equal(t, http.StatusUnauthorized, serve(e, pair.Refresh).Code)
}

func TestRequireStaff(t *testing.T) {
	for _, staff := range []bool{true, false} {
		svc, users := newStub(t, staff)
		pair, _, err := svc.Issue(context.Background(), "u", "pw")
		require.NoError(t, err)

		e := echo.New()
		e.GET("/protected", func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}, JWTAuth(svc), RequireStaff(users))

		want := http.StatusOK
		if !staff {
			want = http.StatusForbidden
		}
		require.Equal(t, want, serve(e, pair.Access).Code)
	}
}

func TestRequireStaffWithoutIdentity(t *testing.T) {
	_, users := newStub(t, true)
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireStaff(users))

	require.Equal(t, http.StatusUnauthorized, serve(e, "").Code)
}

func TestUserIDMissing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserID(c)
	require.ErrorIs(t, err, ErrNoIdentity)
}
