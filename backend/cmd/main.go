package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"socialhub/backend/actions"
	"socialhub/backend/auth"
	"socialhub/backend/config"
	"socialhub/backend/fanout"
	"socialhub/backend/feed"
	"socialhub/backend/handlers"
	"socialhub/backend/ledger"
	"socialhub/backend/logging"
	"socialhub/backend/metrics"
	"socialhub/backend/models"
	"socialhub/backend/router"
	"socialhub/backend/ws"
	"socialhub/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.NewLogger("")
		l.Fatal().Err(err).Msg("config")
	}
	log := logging.NewLogger(cfg.AppEnv)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.AppConfig, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	store, err := ledger.Open(ctx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("driver", cfg.DB.Driver).Msg("ledger ready")

	proc := actions.New(store, log, actions.WithPokeCooldown(cfg.PokeCooldown))

	if cfg.SeedUsers {
		err := database.InsertTestUsers(ctx, func(ctx context.Context, data models.RegistrationData) error {
			_, err := proc.Register(ctx, data)
			return err
		}, log)
		if err != nil {
			return err
		}
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	var pub fanout.Publisher = hub
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		relay := fanout.NewRedisRelay(hub, rdb, cfg.Redis.Channel, log)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("redis relay stopped")
			}
		}()
		pub = relay
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("redis fan-out enabled")
	}

	api := handlers.New(handlers.Deps{
		Processor:  proc,
		Assembler:  feed.New(store),
		Publisher:  pub,
		Hub:        hub,
		Issuer:     auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Log:        log,
		SendBuffer: cfg.Server.WSSendBuffer,
	})

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Options{
			API:            api,
			DB:             store,
			Log:            log,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
