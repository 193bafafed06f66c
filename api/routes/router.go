package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmarasigan/printshop-pos-backend/api/controllers"
	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/internal/discount"
	"github.com/rmarasigan/printshop-pos-backend/internal/orders"
	"github.com/rmarasigan/printshop-pos-backend/internal/settings"
	"github.com/rmarasigan/printshop-pos-backend/internal/settlement"
	"github.com/rmarasigan/printshop-pos-backend/internal/stats"
	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Cart       cart.Service
	Discount   discount.Service
	Resolver   *orders.Resolver
	Settlement settlement.Service
	Stats      stats.Service
	Settings   settings.Service
}

// NewRouter assembles the terminal API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	registry *prometheus.Registry,
	services Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(services.Cart, logg))
			r.Delete("/", controllers.CartClear(services.Cart, logg))
			r.Post("/lines", controllers.CartAddLine(services.Cart, logg))
			r.Post("/order-settlements", controllers.CartAddOrderSettlement(services.Cart, services.Resolver, logg))
			r.Patch("/lines/{lineId}", controllers.CartUpdateLine(services.Cart, logg))
			r.Delete("/lines/{lineId}", controllers.CartRemoveLine(services.Cart, logg))
		})

		r.Route("/discount", func(r chi.Router) {
			r.Post("/verify", controllers.DiscountVerify(services.Discount, logg))
			r.Put("/amount", controllers.DiscountSetAmount(services.Discount, logg))
			r.Post("/lock", controllers.DiscountLock(services.Discount, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/resolve", controllers.OrdersResolve(services.Resolver, logg))
			r.Get("/search", controllers.OrdersSearch(services.Resolver, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.Checkout(services.Settlement, logg))
			r.Post("/downpayment", controllers.CheckoutDownpayment(services.Settlement, logg))
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/session", controllers.StatsSession(services.Stats, logg))
			r.Post("/session/reset", controllers.StatsSessionReset(services.Stats, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(services.Settings, logg))
			r.Put("/", controllers.SettingsSave(services.Settings, logg))
		})
	})

	return r
}
