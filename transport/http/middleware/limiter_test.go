package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/otel/mocks"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/transport/http/middleware"
)

func limitedHandler(t *testing.T, enable bool) (*cacheMocks.MockRedisCache, http.Handler) {
	t.Helper()

	cache := cacheMocks.NewMockRedisCache(gomock.NewController(t))

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return cache, middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache).RateLimit()(ok)
}

func hit(handler http.Handler) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	request.RemoteAddr = "203.0.113.7:51234"

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		hits          int64
		err           error
		wantCode      int
		wantRemaining string
	}{
		{name: "first request", hits: 1, wantCode: http.StatusNoContent, wantRemaining: "1"},
		{name: "last allowed request", hits: 2, wantCode: http.StatusNoContent, wantRemaining: "0"},
		{name: "over the limit", hits: 3, wantCode: http.StatusTooManyRequests, wantRemaining: "0"},
		{name: "redis down fails open", err: errors.New("dial tcp: refused"), wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, handler := limitedHandler(t, true)

			cache.EXPECT().Increment(gomock.Any(), "limiter:203.0.113.7", time.Minute).Return(tt.hits, tt.err)

			recorder := hit(handler)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Equal(t, tt.wantRemaining, recorder.Header().Get(constant.RequestHeaderRateLimitRemaining))

			if tt.wantCode == http.StatusTooManyRequests {
				assert.Equal(t, "60", recorder.Header().Get(constant.RequestHeaderRetryAfter))
			}
		})
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	_, handler := limitedHandler(t, false)

	assert.Equal(t, http.StatusNoContent, hit(handler).Code)
}
