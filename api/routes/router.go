package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bildin8/postergram-juice-sub000/api/controllers"
	"github.com/bildin8/postergram-juice-sub000/api/middleware"
	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/internal/cron"
	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/internal/reconciliation"
	"github.com/bildin8/postergram-juice-sub000/internal/receipts"
	"github.com/bildin8/postergram-juice-sub000/internal/stocksessions"
	"github.com/bildin8/postergram-juice-sub000/pkg/config"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Consumption    consumption.Service
	Par            par.Service
	StockSessions  stocksessions.Service
	Receipts       receipts.Service
	Reconciliation reconciliation.Service
	FeedSync       cron.Job
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, deps.RedisPinger))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.Auth, deps.Logger))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/usage", controllers.UsageReport(deps.Consumption, deps.Logger))
			r.Get("/par", controllers.ParReport(deps.Par, deps.Logger))
			r.Get("/velocity", controllers.VelocityReport(deps.Par, deps.Logger))
		})

		r.Route("/stock-sessions", func(r chi.Router) {
			r.Post("/", controllers.OpenStockSession(deps.StockSessions, deps.Logger))
			r.Get("/", controllers.ListStockSessions(deps.StockSessions, deps.Logger))
			r.Get("/{sessionID}", controllers.GetStockSession(deps.StockSessions, deps.Logger))
			r.Post("/{sessionID}/entries", controllers.AddStockEntry(deps.StockSessions, deps.Logger))
			r.Post("/{sessionID}/complete", controllers.CompleteStockSession(deps.StockSessions, deps.Logger))
		})

		r.Route("/goods-receipts", func(r chi.Router) {
			r.Post("/", controllers.CreateGoodsReceipt(deps.Receipts, deps.Logger))
			r.Get("/", controllers.ListGoodsReceipts(deps.Receipts, deps.Logger))
		})

		r.Route("/reconciliations", func(r chi.Router) {
			r.Post("/", controllers.RunReconciliation(deps.Reconciliation, deps.Logger))
			r.Get("/", controllers.ListReconciliations(deps.Reconciliation, deps.Logger))
		})

		r.Post("/sync/run", controllers.RunSync(deps.FeedSync, deps.Logger))
	})

	return r
}
