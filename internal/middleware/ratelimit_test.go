package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/farm-records/internal/config"
	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/token"
	"github.com/agritrack/farm-records/internal/utils"
)

// newTwoUserService builds a token service with two accounts and returns an
// access token per username.
func newTwoUserService(t *testing.T) (*token.Service, map[string]string) {
	t.Helper()
	hash, err := utils.HashPassword("pw", 4)
	require.NoError(t, err)
	users := &stubUsers{users: map[uint64]model.User{
		1: {ID: 1, Username: "alice", PasswordHash: hash},
		2: {ID: 2, Username: "bob", PasswordHash: hash},
	}}
	svc := token.NewService("secret", 5, 1, users, stubLedger{})

	bearers := map[string]string{}
	for _, name := range []string{"alice", "bob"} {
		pair, _, err := svc.Issue(context.Background(), name, "pw")
		require.NoError(t, err)
		bearers[name] = pair.Access
	}
	return svc, bearers
}

func TestBuildRateKeySegmentsByIdentity(t *testing.T) {
	cfg := config.RateLimitConfig{KeyStrategy: "ip_user_route", Prefix: "rl"}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/protected", nil), httptest.NewRecorder())

	require.Contains(t, buildRateKey(cfg, c), ":user:guest:")

	c.Set(ctxUserID, uint64(7))
	require.Contains(t, buildRateKey(cfg, c), ":user:7:")
}

func TestTokenBucketPerUserBuckets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc, bearers := newTwoUserService(t)

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "user",
		Prefix:         "rl",
	}

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, JWTAuth(svc), NewTokenBucket(cfg, rdb))

	require.Equal(t, http.StatusOK, serve(e, bearers["alice"]).Code)

	rec := serve(e, bearers["alice"])
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// The second user draws from their own bucket, not alice's.
	require.Equal(t, http.StatusOK, serve(e, bearers["bob"]).Code)
}

func TestTokenBucketDisabledPassThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewTokenBucket(cfg, nil))

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve(e, "").Code)
	}
}
