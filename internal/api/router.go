package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Investment-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/config"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/service"
)

// Services groups the services the router dispatches to.
type Services struct {
	System       *service.SystemService
	Positions    *service.PositionService
	Transactions *service.TransactionService
	Portfolio    *service.PortfolioService
	Audit        *service.AuditService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Everything else acts on behalf of an owner
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireOwner)

			r.Route("/position", func(r chi.Router) {
				positionHandler := handlers.NewPositionHandler(services.Positions, services.Audit)
				r.Get("/", positionHandler.Positions)
				r.Post("/", positionHandler.CreatePosition)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", positionHandler.GetPosition)
					r.Put("/", positionHandler.UpdatePosition)
					r.Delete("/", positionHandler.DeletePosition)
					r.Get("/audit", positionHandler.AuditPosition)
				})
			})

			r.Route("/transaction", func(r chi.Router) {
				transactionHandler := handlers.NewTransactionHandler(services.Positions, services.Transactions)
				r.Get("/", transactionHandler.Transactions)
				r.Post("/", transactionHandler.CreateTransaction)
				r.Get("/export", transactionHandler.ExportTransactions)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", transactionHandler.GetTransaction)
					r.Delete("/", transactionHandler.DeleteTransaction)
				})
			})

			r.Route("/portfolio", func(r chi.Router) {
				portfolioHandler := handlers.NewPortfolioHandler(services.Portfolio)
				r.Get("/summary", portfolioHandler.PortfolioSummary)
			})
		})
	})

	return r
}
