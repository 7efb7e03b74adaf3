package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const testSecret = "test-secret"

func callerEcho(t *testing.T, got *domain.Caller) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := GetCaller(r.Context())
		assert.True(t, ok)
		*got = caller
		w.WriteHeader(http.StatusNoContent)
	})
}

func signToken(t *testing.T, claims Claims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuth_Headers(t *testing.T) {
	var got domain.Caller
	h := Auth(AuthConfig{}, logger.NewNop())(callerEcho(t, &got))

	tests := []struct {
		name   string
		id     string
		role   string
		status int
		want   domain.Caller
	}{
		{name: "client", id: "1", role: "client", status: http.StatusNoContent, want: domain.Caller{ID: 1, Role: domain.RoleClient}},
		{name: "provider upper case", id: "10", role: "PROVIDER", status: http.StatusNoContent, want: domain.Caller{ID: 10, Role: domain.RoleProvider}},
		{name: "missing role", id: "1", status: http.StatusUnauthorized},
		{name: "bad id", id: "abc", role: "client", status: http.StatusUnauthorized},
		{name: "negative id", id: "-5", role: "client", status: http.StatusUnauthorized},
		{name: "unknown role", id: "1", role: "admin", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = domain.Caller{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
			if tt.id != "" {
				req.Header.Set(HeaderUserID, tt.id)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAuth_Token(t *testing.T) {
	var got domain.Caller
	cfg := AuthConfig{JWTSecret: testSecret, Issuer: "identity"}
	h := Auth(cfg, logger.NewNop())(callerEcho(t, &got))

	valid := Claims{
		Role: "provider",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "10",
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	foreign := valid
	foreign.Issuer = "someone-else"

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + signToken(t, valid, jwt.SigningMethodHS256, []byte(testSecret)), status: http.StatusNoContent},
		{name: "wrong secret", header: "Bearer " + signToken(t, valid, jwt.SigningMethodHS256, []byte("other")), status: http.StatusUnauthorized},
		{name: "wrong algorithm", header: "Bearer " + signToken(t, valid, jwt.SigningMethodHS512, []byte(testSecret)), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, []byte(testSecret)), status: http.StatusUnauthorized},
		{name: "foreign issuer", header: "Bearer " + signToken(t, foreign, jwt.SigningMethodHS256, []byte(testSecret)), status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "missing", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			// Заголовки игнорируются, когда настроен секрет
			req.Header.Set(HeaderUserID, "1")
			req.Header.Set(HeaderUserRole, "client")
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, valid, jwt.SigningMethodHS256, []byte(testSecret)))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, domain.Caller{ID: 10, Role: domain.RoleProvider}, got)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(caller domain.Caller) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithCaller(req.Context(), caller))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	alice := domain.Caller{ID: 1, Role: domain.RoleClient}
	assert.Equal(t, http.StatusOK, do(alice))
	assert.Equal(t, http.StatusOK, do(alice))
	assert.Equal(t, http.StatusTooManyRequests, do(alice))

	// Лимит считается отдельно для каждого инициатора
	assert.Equal(t, http.StatusOK, do(domain.Caller{ID: 1, Role: domain.RoleProvider}))
}

func TestRateLimiter_EvictsIdleCallers(t *testing.T) {
	clock := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2, WithIdleTTL(time.Minute))
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	for id := int64(1); id <= 50; id++ {
		assert.True(t, rl.allow(fmt.Sprintf("client:%d", id)))
	}
	assert.Equal(t, 50, rl.size())

	// Недавний инициатор не удаляется
	clock = clock.Add(30 * time.Second)
	assert.True(t, rl.allow("client:busy"))
	assert.True(t, rl.allow("client:busy"))

	clock = clock.Add(31 * time.Second)
	assert.True(t, rl.allow("client:new"))
	assert.Equal(t, 2, rl.size(), "idle callers are evicted, busy and new remain")

	assert.True(t, rl.allow("client:busy"))
}

func TestMetricsMiddleware(t *testing.T) {
	collector := metrics.NewWithRegistry(prometheus.NewRegistry(), "test")

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(collector))
	r.HandleFunc("/api/v1/appointments/{appointmentId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/appointments/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/appointments/2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(
		collector.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/appointments/{appointmentId}", "404")))
}
