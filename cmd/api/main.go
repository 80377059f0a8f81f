package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/config"
	appHTTP "github.com/cmlabs-hris/salon-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/cache"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/salon-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/salon-payroll-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/salon-payroll-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.App.LogLevel),
	})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	staffRepo := postgresql.NewStaffRepository(db)
	tierRepo := postgresql.NewTierRepository(db)
	bonusRepo := postgresql.NewBonusRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	appointmentRepo := postgresql.NewAppointmentRepository(db)
	payrollRecordRepo := postgresql.NewPayrollRecordRepository(db)

	opts := payrollService.Options{
		QueryTimeout:     cfg.Payroll.QueryTimeout,
		BatchConcurrency: cfg.Payroll.BatchConcurrency,
	}
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// summaries are served from postgres when the cache is down
			slog.Warn("Redis unavailable, summary cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer redisClient.Close()
			opts.SummaryCache = cache.NewRedisSummaryCache(redisClient, cfg.Redis.TTL)
		}
	}

	payrollSvc := payrollService.NewPayrollService(
		staffRepo,
		tierRepo,
		bonusRepo,
		settingsRepo,
		appointmentRepo,
		payrollRecordRepo,
		opts,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	router := appHTTP.NewRouter(JWTService, payrollHandler, cfg.App.Env)

	scheduler := cron.NewScheduler()
	if cfg.Payroll.CronEnabled {
		payrollJobs := cron.NewPayrollJobs(payrollSvc)
		if err := payrollJobs.RegisterJobs(scheduler, cfg.Payroll.CronSpec); err != nil {
			slog.Error("Error registering payroll jobs", "spec", cfg.Payroll.CronSpec, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	if cfg.Payroll.CronEnabled {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
