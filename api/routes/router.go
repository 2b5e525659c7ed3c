package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthcontrollers "github.com/gouravrajak985/project45/api/controllers/health"
	ordercontrollers "github.com/gouravrajak985/project45/api/controllers/orders"
	paymentcontrollers "github.com/gouravrajak985/project45/api/controllers/payments"
	"github.com/gouravrajak985/project45/api/middleware"
	"github.com/gouravrajak985/project45/internal/orders"
	"github.com/gouravrajak985/project45/internal/payments"
	"github.com/gouravrajak985/project45/pkg/config"
	"github.com/gouravrajak985/project45/pkg/db"
	"github.com/gouravrajak985/project45/pkg/logger"
	"github.com/gouravrajak985/project45/pkg/metrics"
	"github.com/gouravrajak985/project45/pkg/redis"
	"github.com/gouravrajak985/project45/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	ordersSvc orders.Service,
	paymentsSvc *payments.Service,
	stripeClient *stripe.Client,
	webhookGuard *payments.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	readyDeps := map[string]healthcontrollers.Pinger{}
	if dbP != nil {
		readyDeps["postgres"] = dbP
	}
	if redisClient != nil {
		readyDeps["redis"] = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", healthcontrollers.Live(cfg))
		r.Get("/ready", healthcontrollers.Ready(cfg, logg, readyDeps))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Unauthenticated: the webhook authenticates via the provider signature.
	r.Post("/api/payments/webhook", paymentcontrollers.Webhook(paymentsSvc, stripeClient, webhookGuard, logg))

	var payStore middleware.RateLimiterStore
	if redisClient != nil {
		payStore = redisClient
	}
	payLimit := middleware.PayRateLimit(cfg.PayRateLimit, payStore, logg)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.With(middleware.RequireRole("admin", logg)).Get("/", ordercontrollers.ListAll(ordersSvc, logg))
			r.Get("/myorders", ordercontrollers.ListMine(ordersSvc, logg))
			r.Get("/sellerorders", ordercontrollers.ListSeller(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.With(payLimit).Put("/{orderId}/pay", ordercontrollers.Pay(ordersSvc, logg))
			r.Put("/{orderId}/deliver", ordercontrollers.Deliver(ordersSvc, logg))
			r.Put("/{orderId}/shipping", ordercontrollers.Shipping(ordersSvc, logg))
		})

		r.With(payLimit).Post("/payments/create-payment-intent", paymentcontrollers.CreateIntent(paymentsSvc, logg))
	})

	return r
}
