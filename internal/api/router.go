// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finflow-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(bankingHandler *handler.BankingHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(requestLogger(logger))                      // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Banking API routes, all scoped to the caller identity
	r.Route("/api/banking", func(r chi.Router) {
		r.Use(bankingHandler.RequireUser)
		r.Get("/accounts", bankingHandler.GetAccounts)
		r.Get("/transactions", bankingHandler.GetTransactions)
		r.Get("/feed", bankingHandler.GetFeed)
		r.Get("/profile", bankingHandler.GetProfile)
		r.Post("/transfer", bankingHandler.Transfer)
		r.Get("/transfer-logs", bankingHandler.GetTransferLogs)
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
