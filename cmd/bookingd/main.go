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

	"github.com/example/facility-booking/internal/booking"
	"github.com/example/facility-booking/internal/config"
	httptransport "github.com/example/facility-booking/internal/http"
	"github.com/example/facility-booking/internal/logging"
	"github.com/example/facility-booking/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewLogger("bookingd")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool, now)
	serviceRepo := sqlite.NewServiceRepository(pool, now)
	resourceRepo := sqlite.NewResourceRepository(pool, now)
	appointmentRepo := sqlite.NewAppointmentRepository(pool, now)

	defaultDuration := time.Duration(cfg.DefaultDurationMinutes) * time.Minute
	scheduler := booking.NewScheduler(appointmentRepo, serviceRepo, resourceRepo, userRepo, idGenerator, booking.NewReferenceCode, now, defaultDuration, logger)
	catalog := booking.NewCatalog(userRepo, serviceRepo, resourceRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Appointments: httptransport.NewAppointmentHandler(scheduler, logger),
		Catalog:      httptransport.NewCatalogHandler(catalog, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
