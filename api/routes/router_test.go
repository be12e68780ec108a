package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/pkg/config"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type stubPar struct{}

func (stubPar) Suggest(context.Context, par.SuggestParams) ([]par.Suggestion, error) {
	return nil, nil
}

func (stubPar) Velocity(context.Context, par.VelocityParams) ([]par.VelocityRow, error) {
	return []par.VelocityRow{}, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.Auth.APIToken = "secret-token"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(Deps{
		Config: cfg,
		Logger: logg,
		Par:    stubPar{},
	})
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/health/live status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rec.Code)
	}
}

func TestPrivateRoutesRequireBearerToken(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/velocity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/velocity", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 with wrong token", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/velocity", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid token: %s", rec.Code, rec.Body.String())
	}
}
