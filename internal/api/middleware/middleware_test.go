package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/crewchat/internal/api/middleware"
	"github.com/Rrens/crewchat/internal/repository/redis"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (redis.Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(redis.Decision), args.Error(1)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := new(mockLimiter)
	limiter.On("Allow", mock.Anything, "10.0.0.1").Return(redis.Decision{}, errors.New("redis down"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()

	middleware.NewRateLimitMiddleware(limiter).Limit(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	limiter.AssertExpectations(t)
}

func TestRateLimit_Rejects(t *testing.T) {
	limiter := new(mockLimiter)
	reset := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)
	limiter.On("Allow", mock.Anything, "10.0.0.2").Return(redis.Decision{
		Allowed: false,
		Limit:   140,
		Reset:   reset,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:80"
	rec := httptest.NewRecorder()

	middleware.NewRateLimitMiddleware(limiter).Limit(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "140", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2026-01-01T12:01:00Z", rec.Header().Get("X-RateLimit-Reset"))
}

func TestLogger_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	middleware.Logger(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
