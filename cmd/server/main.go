package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Consult/internal/adapters/auth"
	"github.com/dkeye/Consult/internal/adapters/directory"
	router "github.com/dkeye/Consult/internal/adapters/http"
	"github.com/dkeye/Consult/internal/adapters/presence"
	"github.com/dkeye/Consult/internal/adapters/rtc"
	sig "github.com/dkeye/Consult/internal/adapters/signal"
	"github.com/dkeye/Consult/internal/app"
	"github.com/dkeye/Consult/internal/app/orch"
	"github.com/dkeye/Consult/internal/config"
	"github.com/dkeye/Consult/internal/core"
)

type closableDirectory interface {
	core.AppointmentDirectory
	Close()
}

func openDirectory(ctx context.Context, cfg config.DirectoryConfig) (closableDirectory, error) {
	switch cfg.Driver {
	case "postgres":
		return directory.NewPostgres(ctx, cfg.DatabaseURL)
	case "memory", "":
		return directory.NewMemoryFromSeed(cfg.Seed)
	}
	return nil, fmt.Errorf("unknown directory driver %q", cfg.Driver)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	config.ApplyLogLevel(cfg.LogLevel)

	dir, err := openDirectory(ctx, cfg.Directory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open appointment directory")
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomManager()
	policy := app.NewAccessPolicy(dir, cfg.Directory.Timeout)
	o := orch.New(reg, rooms, policy)

	var pres *presence.Redis
	if cfg.Redis.Addr != "" {
		pres, err = presence.NewRedis(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.PresenceTTL)
		if err != nil {
			log.Error().Err(err).Msg("presence disabled")
		} else {
			o.Presence = pres
		}
	}

	ctl := sig.NewSignalWSController(o, auth.NewVerifier(cfg.Auth.JWTSecret), sig.Options{
		ReadLimit:     cfg.ReadLimit,
		PingPeriod:    cfg.PingPeriod,
		SendQueue:     cfg.Limits.SendQueue,
		MaxMessageLen: cfg.Limits.MaxMessageLen,
		EventsPerSec:  cfg.Limits.EventsPerSec,
		EventBurst:    cfg.Limits.EventBurst,
	})

	r := router.SetupRouter(ctx, cfg, ctl, reg, rtc.ConfigFrom(cfg.ICEServers))
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Consult server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	var presCloser io.Closer
	if pres != nil {
		presCloser = pres
	}
	shutdown(srv, dir, ctl, presCloser, cfg.Shutdown)
	log.Info().Msg("Server exited gracefully")
}

type drainer interface {
	Wait()
}

// shutdown stops the listener, then waits for the websocket pumps. Presence
// stays open until the pumps are gone so their disconnects still clear it.
func shutdown(srv *http.Server, dir closableDirectory, ctl drainer, pres io.Closer, timeout time.Duration) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight HTTP handlers.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	dir.Close()

	// Connection contexts derive from ctx, already cancelled; wait for the pumps.
	drained := make(chan struct{})
	go func() {
		ctl.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn().Msg("websocket handlers did not drain in time")
	}
	if pres != nil {
		if err := pres.Close(); err != nil {
			log.Error().Err(err).Msg("presence close")
		}
	}
}
