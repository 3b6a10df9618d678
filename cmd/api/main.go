package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-dtr-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-dtr-go/internal/repository/postgresql"
	dtrService "github.com/cmlabs-hris/hris-dtr-go/internal/service/dtr"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})).With(slog.String("app", "hris-dtr"), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	location := cfg.Location()
	breakDefaults, err := dtrService.ParseBreakDefaults(cfg.DTR.BreakOutDefault, cfg.DTR.BreakInDefault)
	if err != nil {
		slog.Error("Invalid break defaults", "error", err)
		os.Exit(1)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		slog.Error("Failed to initialize local storage", "error", err)
		os.Exit(1)
	}

	punchRepo := postgresql.NewPunchRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, 0)
	dtrSvc := dtrService.NewDTRService(punchRepo, rosterRepo, location, cfg.DTR.Workers, breakDefaults)
	importSvc := dtrService.NewImportService(punchRepo, rosterRepo, fileStorage, location, cfg.DTR.ImportMaxRows)

	dtrHandler := appHTTP.NewDTRHandler(dtrSvc, importSvc)
	router := appHTTP.NewRouter(JWTService, dtrHandler, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	scheduler := cron.NewScheduler()
	cron.NewDTRJobs(dtrSvc, location, cfg.DTR.ReconcileInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
