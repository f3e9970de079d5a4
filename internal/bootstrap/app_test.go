package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ats-backend/internal/checks"
	"ats-backend/internal/shared/config"
)

func devConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "8080",
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		QuotaTimezone:   "UTC",
		MaxUploadBytes:  5 << 20,
		IngestTimeout:   5 * time.Second,
		StorageTimeout:  3 * time.Second,
	}
}

func TestBuildDevFallsBackToMemoryRepo(t *testing.T) {
	app, err := Build(devConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if app.DB != nil {
		t.Fatalf("expected nil DB without DATABASE_URL")
	}
	if _, ok := app.ChecksRepo.(*checks.MemoryRepo); !ok {
		t.Fatalf("repo = %T, want *checks.MemoryRepo", app.ChecksRepo)
	}
	if app.Router == nil {
		t.Fatalf("router not built")
	}
	if len(app.Taxonomy.Categories) == 0 {
		t.Fatalf("default taxonomy not loaded")
	}
}

func TestBuildRejectsBadTimezone(t *testing.T) {
	cfg := devConfig(t)
	cfg.QuotaTimezone = "Not/AZone"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error for bad timezone")
	}
}

func TestBuiltRouterServesHealthAndGuardsAPI(t *testing.T) {
	app, err := Build(devConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resume/history", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated history status = %d, want 401", rec.Code)
	}
}
