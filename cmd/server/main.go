// Command server runs the street vendor discovery API and the expiry sweeper.
//
// @title           Street Vendor Discovery API
// @version         1.0
// @description     Vendor check-in, expiry and proximity search for street vendors.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer JWT issued by the identity service
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-vendor-backend/internal/config"
	httpapi "github.com/tbourn/go-vendor-backend/internal/http"
	"github.com/tbourn/go-vendor-backend/internal/observability"
	"github.com/tbourn/go-vendor-backend/internal/payment/mpesa"
	"github.com/tbourn/go-vendor-backend/internal/repo"
	"github.com/tbourn/go-vendor-backend/internal/services"
	"github.com/tbourn/go-vendor-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("could not read .env")
	}
	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "go-vendor-backend"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing disabled")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	var gw services.PaymentGateway
	if cfg.MPesa.Enabled {
		client, err := mpesa.New(mpesa.Config{
			BaseURL:        cfg.MPesa.BaseURL,
			ConsumerKey:    cfg.MPesa.ConsumerKey,
			ConsumerSecret: cfg.MPesa.ConsumerSecret,
			ShortCode:      cfg.MPesa.ShortCode,
			PassKey:        cfg.MPesa.PassKey,
			CallbackURL:    cfg.MPesa.CallbackURL,
			Timeout:        cfg.MPesa.Timeout,
		})
		if err != nil {
			return err
		}
		gw = client
	} else {
		log.Info().Msg("payments disabled (MPESA_ENABLED=false)")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, gw, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(sctx)
	})
	if cfg.Availability.SweeperEnabled {
		sw := services.NewSweeper(db, cfg.Availability.SweepInterval)
		g.Go(func() error { return sw.Run(gctx) })
	} else {
		log.Info().Msg("expiry sweeper disabled on this instance")
	}

	return g.Wait()
}
