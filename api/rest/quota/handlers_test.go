package quota

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"codeberg.org/printableperks/server/internal/auth"
	"codeberg.org/printableperks/server/internal/quota"
	"codeberg.org/printableperks/server/perks/generations"
	"codeberg.org/printableperks/server/perks/subscriptions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(engine *quota.Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), engine)

	return router
}

func newTestEngine() (*quota.Engine, *subscriptions.MemoryResolver, *generations.MemoryStore) {
	resolver := subscriptions.NewMemoryResolver()
	stats := generations.NewMemoryStore()
	engine := quota.NewEngine(quota.NewMemoryAnonymousStore(), resolver, stats)

	return engine, resolver, stats
}

func TestStatsAnonymousFreshDevice(t *testing.T) {
	engine, _, _ := newTestEngine()
	router := newTestRouter(engine)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quota/stats", nil)
	req.Header.Set(auth.HeaderDeviceKey, "device-abc")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats quota.UserGenerationStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))

	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, quota.DailyLimitAnonymous, stats.RemainingToday)
	assert.True(t, stats.FreeGenerationAvailable)
	assert.False(t, stats.IsPaidUser)
	assert.Nil(t, stats.MonthlyLimit)
}

func TestStatsMintsDeviceKeyWhenMissing(t *testing.T) {
	engine, _, _ := newTestEngine()
	router := newTestRouter(engine)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quota/stats", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(auth.HeaderDeviceKey))
}

func TestStatsRegisteredPaidUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key") //nolint:errcheck
	defer os.Unsetenv("JWT_SECRET")            //nolint:errcheck

	engine, resolver, stats := newTestEngine()
	router := newTestRouter(engine)

	now := time.Now().UTC()
	resolver.Add(subscriptions.Subscription{
		UserID:                 "user-123",
		Status:                 subscriptions.StatusActive,
		PlanName:               "Creator",
		MonthlyGenerationLimit: 300,
		CreatedAt:              now,
		CurrentPeriodStart:     now,
		CurrentPeriodEnd:       now.AddDate(0, 1, 0),
	})

	for i := 0; i < 7; i++ {
		require.NoError(t, stats.Record(context.Background(), "user-123", now))
	}

	token, err := auth.GenerateJWT("user-123", "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quota/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body quota.UserGenerationStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 7, body.Count)
	assert.True(t, body.IsPaidUser)
	assert.Equal(t, quota.UnlimitedDailySentinel, body.RemainingToday)

	require.NotNil(t, body.MonthlyLimit)
	require.NotNil(t, body.RemainingMonthly)
	assert.Equal(t, 300, *body.MonthlyLimit)
	assert.Equal(t, 293, *body.RemainingMonthly)
}

func TestAvailabilityAnonymousFlipsAtLimit(t *testing.T) {
	engine, _, _ := newTestEngine()
	router := newTestRouter(engine)

	check := func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quota/availability", nil)
		req.Header.Set(auth.HeaderDeviceKey, "device-limits")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		return body.Available
	}

	for i := 0; i < quota.DailyLimitAnonymous; i++ {
		assert.True(t, check())
		require.NoError(t, engine.RecordGeneration(context.Background(), quota.AnonymousCaller("device-limits")))
	}

	assert.False(t, check())
}
