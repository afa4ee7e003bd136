package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/infrastructure/memory"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", time.Hour, "pos-api")
	subject := uuid.New()
	token, err := jwtManager.GenerateToken(subject, "Register 2", utils.RoleTerminal)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":   c.MustGet(SubjectIDKey).(uuid.UUID).String(),
			"role": c.GetString(SubjectRoleKey),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), subject.String())
	assert.Contains(t, w.Body.String(), `"role":"terminal"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code, "websocket clients pass the token as a query parameter")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { c.Set(SubjectRoleKey, utils.RoleTerminal) }, RequireRole(utils.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestSubjectRateLimiter(t *testing.T) {
	rl := NewSubjectRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	defer rl.Stop()

	first, second := uuid.New(), uuid.New()
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if c.Query("who") == "second" {
			c.Set(SubjectIDKey, second)
		} else {
			c.Set(SubjectIDKey, first)
		}
	}, rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x?who=second", nil)).Code, "limits are per subject")
	assert.Equal(t, 2, rl.Stats()["active_subjects"])
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(120, 60)
	assert.InDelta(t, 2.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 120, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFor(0, 60))
}

func TestTimeoutMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/x", TimeoutMiddleware(time.Second), func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		if !ok || time.Until(deadline) > time.Second {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestIdempotency_ScopedToEndpointAndRenewedAfterExpiry(t *testing.T) {
	store, err := memory.New(logger.NewNop())
	require.NoError(t, err)
	now := time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)
	subject := uuid.New()

	calls := 0
	handle := func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	}
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(SubjectIDKey, subject) }, Idempotency(IdempotencyConfig{
		Repo: store.Repositories().Idempotency,
		TTL:  time.Hour,
		Now:  func() time.Time { return now },
	}))
	r.POST("/orders", handle)
	r.POST("/stock-in", handle)

	post := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(IdempotencyKeyHeader, "k-1")
		return serve(r, req)
	}

	first := post("/orders")
	require.Equal(t, http.StatusCreated, first.Code)
	replay := post("/orders")
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), replay.Body.String())

	other := post("/stock-in")
	assert.Equal(t, http.StatusUnprocessableEntity, other.Code)
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Hour)
	renewed := post("/orders")
	require.Equal(t, http.StatusCreated, renewed.Code)
	assert.Empty(t, renewed.Header().Get("X-Idempotency-Replayed"))
	assert.Contains(t, renewed.Body.String(), `"call":2`)

	again := post("/orders")
	assert.Equal(t, "true", again.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, renewed.Body.String(), again.Body.String())
	assert.Equal(t, 2, calls)
}
