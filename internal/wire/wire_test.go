package wire

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/pkg/utils"

	"go.uber.org/zap"
)

func newTestApp() *App {
	config := &utils.Config{JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1}}
	return Wiring(&repository.Repository{}, nil, nil, config, zap.NewNop())
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp()

	for _, path := range []string{"/health", "/metrics"} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp()

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/user/profile"},
		{http.MethodGet, "/api/user/reservations"},
		{http.MethodPost, "/api/reservations"},
		{http.MethodGet, "/api/reservations/0b6f7f0e-8f43-4a8e-9a51-1f7c7d1f3a10"},
		{http.MethodPost, "/api/reservations/0b6f7f0e-8f43-4a8e-9a51-1f7c7d1f3a10/cancel"},
		{http.MethodPost, "/api/payments"},
		{http.MethodGet, "/api/tickets/0b6f7f0e-8f43-4a8e-9a51-1f7c7d1f3a10"},
		{http.MethodGet, "/api/tickets/download/0b6f7f0e-8f43-4a8e-9a51-1f7c7d1f3a10"},
	}

	for _, route := range routes {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, strings.NewReader(`{}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
	}
}

func TestSignupRejectsMalformedBody(t *testing.T) {
	app := newTestApp()

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"name":`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
