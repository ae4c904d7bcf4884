package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/shift-roster/internal/application"
	"github.com/example/shift-roster/internal/config"
	"github.com/example/shift-roster/internal/cycle"
	httptransport "github.com/example/shift-roster/internal/http"
	"github.com/example/shift-roster/internal/logging"
	"github.com/example/shift-roster/internal/metrics"
	"github.com/example/shift-roster/internal/persistence/sqlite"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	logger := logging.NewLogger("shift-roster")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	roster := cycle.Roster{
		SchemeStart: cfg.SchemeStart,
		Length:      cfg.CycleLength,
		WorkDays:    cfg.CycleWorkDays,
		RestDays:    cfg.CycleRestDays,
	}
	if err := roster.Validate(); err != nil {
		logger.Error("invalid roster configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	metrics.Register()

	idGenerator := uuid.NewString
	now := time.Now

	teams := sqlite.NewTeamRepository(pool)
	shifts := sqlite.NewShiftRepository(pool)
	rules := sqlite.NewRuleRepository(pool)
	assignments := sqlite.NewAssignmentRepository(pool)
	exceptions := sqlite.NewExceptionRepository(pool)

	scheduleService := application.NewScheduleServiceWithLogger(
		assignments, rules, exceptions, teams, shifts,
		application.ScheduleServiceConfig{
			Roster:         roster,
			DefaultShiftID: cfg.DefaultShiftID,
			MaxRangeDays:   cfg.MaxRangeDays,
			RangeWorkers:   cfg.RangeWorkers,
			CacheSize:      cfg.CacheSize,
		},
		now, logger)
	catalogService := application.NewCatalogServiceWithLogger(teams, shifts, roster, idGenerator, now, logger)
	rosterService := application.NewRosterServiceWithLogger(rules, assignments, exceptions, scheduleService, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Schedules:  httptransport.NewScheduleHandler(scheduleService, logger),
		Admin:      httptransport.NewAdminHandler(catalogService, rosterService, logger),
		Health:     pool,
		Metrics:    promhttp.Handler(),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("roster API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
