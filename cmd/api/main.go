package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kira/internal/app"
	"kira/internal/http/handlers"
	httpapi "kira/internal/http/httpapi"
	"kira/internal/infra"
	"kira/internal/infra/geoip"
	"kira/internal/middleware"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg, "api")

	ctx := context.Background()
	container, err := app.NewContainer(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}
	defer container.Close()

	api := &handlers.App{
		Config:    cfg,
		Logger:    logger,
		Service:   container.Service,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("redis unavailable, rate limiting per process")
	case redisClient != nil:
		defer redisClient.Close()
		api.Limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimitPerMin, time.Minute)
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
	} else if resolver != nil {
		defer resolver.Close()
		api.CountryLookup = resolver.Lookup
	}

	router := httpapi.NewRouter(api)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
