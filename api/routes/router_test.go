package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	internalorders "github.com/gouravrajak985/project45/internal/orders"
	pkgauth "github.com/gouravrajak985/project45/pkg/auth"
	"github.com/gouravrajak985/project45/pkg/config"
	"github.com/gouravrajak985/project45/pkg/db/models"
	"github.com/gouravrajak985/project45/pkg/enums"
	"github.com/gouravrajak985/project45/pkg/logger"
	"github.com/gouravrajak985/project45/pkg/metrics"
	"github.com/gouravrajak985/project45/pkg/pagination"
	"github.com/gouravrajak985/project45/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, actor internalorders.Actor, input internalorders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrdersService) Get(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrdersService) Pay(ctx context.Context, actor *internalorders.Actor, orderID uuid.UUID, result models.PaymentResult) (*models.Order, error) {
	return &models.Order{ID: orderID, IsPaid: true}, nil
}

func (stubOrdersService) MarkDelivered(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, trackingNumber *string) (*models.Order, error) {
	return &models.Order{ID: orderID, IsDelivered: true}, nil
}

func (stubOrdersService) UpdateShippingStatus(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, status string, trackingNumber *string) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrdersService) ListMine(ctx context.Context, actor internalorders.Actor) ([]models.Order, error) {
	return nil, nil
}

func (stubOrdersService) ListSeller(ctx context.Context, actor internalorders.Actor) ([]models.Order, error) {
	return nil, nil
}

func (stubOrdersService) ListAll(ctx context.Context, params pagination.Params) (*internalorders.OrderPage, error) {
	return &internalorders.OrderPage{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, registry *prometheus.Registry, httpMetrics *metrics.HTTPMetrics) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		registry,
		httpMetrics,
		stubOrdersService{},
		nil,
		nil,
		nil,
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		Email:  string(role) + "@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyChecksDependencies(t *testing.T) {
	router := newTestRouter(testConfig(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/orders/myorders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersAllowValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/orders/myorders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestAdminListingRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil, nil)

	asBuyer := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	asBuyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asBuyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer got %d", resp.Code)
	}

	asAdmin := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	asAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asAdmin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestPayRouteIsAuthenticated(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil, nil)
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/pay", strings.NewReader(`{"id":"pi_1","status":"succeeded"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/pay", strings.NewReader(`{"id":"pi_1","status":"succeeded"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp2.Code, resp2.Body.String())
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	router := newTestRouter(testConfig(), registry, httpMetrics)

	warm := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	router.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in exposition, got: %.200s", resp.Body.String())
	}
}
