// Package api exposes the vault over HTTP: read endpoints for balances
// and the native price, mutating endpoints for deposits, withdrawals,
// and capability-gated administration. The caller identity is taken
// from the X-Vault-Identity header.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-io/vault-ledger/internal/config"
	"github.com/custodia-io/vault-ledger/internal/observability/metrics"
	"github.com/custodia-io/vault-ledger/internal/services"
)

const identityHeader = "X-Vault-Identity"

type Server struct {
	httpServer *http.Server
	svc        *services.Service
}

func New(cfg *config.ServerConfig, svc *services.Service) *Server {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(requestMetrics)

	r.Get("/healthcheck", s.healthcheck)
	r.Get("/v1/price", s.getPrice)
	r.Get("/v1/balances/{identity}/{asset}", s.getBalance)
	r.Get("/v1/events/{identity}", s.getEvents)

	r.Post("/v1/deposits", s.deposit)
	r.Post("/v1/withdrawals", s.withdraw)
	r.Post("/v1/emergency-withdrawals", s.emergencyWithdraw)

	r.Post("/v1/assets", s.registerAsset)
	r.Post("/v1/roles", s.grantRole)
	r.Put("/v1/cap", s.updateGlobalCap)
	r.Put("/v1/withdraw-limit", s.updateWithdrawLimit)
	r.Put("/v1/price-source", s.updatePriceSource)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.RecordHTTPRequest(time.Since(startTime), r.Method, r.URL.Path, recorder.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
