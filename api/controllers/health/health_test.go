package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gouravrajak985/project45/pkg/config"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func TestLive(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	Live(cfg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-App-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-App-Env"))
	}
}

func TestReadyAllDependenciesUp(t *testing.T) {
	cfg := &config.Config{}
	deps := map[string]Pinger{
		"postgres": &fakePinger{},
		"redis":    &fakePinger{},
	}

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	Ready(cfg, nil, deps).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestReadyDependencyDown(t *testing.T) {
	cfg := &config.Config{}
	deps := map[string]Pinger{
		"postgres": &fakePinger{err: errors.New("connection refused")},
	}

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	Ready(cfg, nil, deps).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
