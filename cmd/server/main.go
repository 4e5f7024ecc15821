package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/adeyemio/coopledger/internal/api"
	"github.com/adeyemio/coopledger/internal/auth"
	"github.com/adeyemio/coopledger/internal/config"
	"github.com/adeyemio/coopledger/internal/events"
	"github.com/adeyemio/coopledger/internal/service"
	"github.com/adeyemio/coopledger/internal/storage/sqlite"
	"github.com/adeyemio/coopledger/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	emitter := events.LogEmitter{}

	members := service.NewMemberService(store, cfg.TreeMaxDepth)
	contributions := service.NewContributionService(store, emitter, cfg.ActingAmount)
	bonuses := service.NewBonusService(store, emitter, cfg.SupportFee, cfg.BonusReserve, cfg.BonusMaxDepth)
	dividends := service.NewDividendService(store, emitter)
	withdrawals := service.NewWithdrawalService(store, emitter)
	settlements := service.NewSettlementService(store, emitter)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	admin := auth.NewAdminAuthenticator(cfg.AdminPasswordHash)

	server := api.NewServer(members, contributions, bonuses, dividends,
		withdrawals, settlements, jwtManager, admin)
	if cfg.MetricsEnabled {
		server.EnableMetrics()
	}

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, server.Handler()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
