// Package api provides the HTTP server for the cooperative ledger. It
// exposes member self-service endpoints and the admin operations that
// drive approvals, distributions and settlement.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adeyemio/coopledger/internal/auth"
	"github.com/adeyemio/coopledger/internal/middleware"
	"github.com/adeyemio/coopledger/internal/service"
)

// Server is the ledger HTTP API server.
type Server struct {
	members       *service.MemberService
	contributions *service.ContributionService
	bonuses       *service.BonusService
	dividends     *service.DividendService
	withdrawals   *service.WithdrawalService
	settlements   *service.SettlementService

	jwt   *auth.JWTManager
	admin *auth.AdminAuthenticator

	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(
	members *service.MemberService,
	contributions *service.ContributionService,
	bonuses *service.BonusService,
	dividends *service.DividendService,
	withdrawals *service.WithdrawalService,
	settlements *service.SettlementService,
	jwt *auth.JWTManager,
	admin *auth.AdminAuthenticator,
) *Server {
	return &Server{
		members:       members,
		contributions: contributions,
		bonuses:       bonuses,
		dividends:     dividends,
		withdrawals:   withdrawals,
		settlements:   settlements,
		jwt:           jwt,
		admin:         admin,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/admin-login", s.handleAdminLogin)

	// Member endpoints: a member acts on their own records; admins may
	// act on anyone's.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwt))

		r.Get("/api/members/{id}/balance", s.handleGetBalance)
		r.Get("/api/members/{id}/balance/{bucket}/available", s.handleAvailableBalance)
		r.Get("/api/members/{id}/referrals", s.handleAncestors)
		r.Get("/api/members/{id}/withdrawals", s.handleListWithdrawals)

		r.Post("/api/contributions", s.handleSubmitContribution)
		r.Post("/api/fees", s.handleRecordFee)
		r.Post("/api/withdrawals", s.handleRequestWithdrawal)
	})

	// Admin endpoints.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.jwt))

		r.Post("/api/members", s.handleRegisterMember)
		r.Post("/api/contributions/{id}/approve", s.handleApproveContribution)
		r.Post("/api/fees/{id}/approve", s.handleApproveFee)
		r.Get("/api/fees/{id}/distribution", s.handleGetBonusDistribution)
		r.Post("/api/dividends", s.handleRunDividend)
		r.Get("/api/dividends/{id}", s.handleGetDividend)
		r.Delete("/api/dividends/{id}", s.handleDeleteDividend)
		r.Post("/api/withdrawals/{id}/approve", s.handleApproveWithdrawal)
		r.Post("/api/withdrawals/{id}/complete", s.handleCompleteWithdrawal)
		r.Post("/api/withdrawals/{id}/reject", s.handleRejectWithdrawal)
		r.Post("/api/settlements/{month}", s.handleSettleMonth)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
