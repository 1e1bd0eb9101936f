package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certkit/Legra/acmeconfig"
	"github.com/certkit/Legra/cache"
	"github.com/certkit/Legra/gologger"
	"github.com/certkit/Legra/internal"
	"github.com/certkit/Legra/lego_runner"
	"github.com/certkit/Legra/orchestrator"
	"github.com/certkit/Legra/providers"
	"github.com/certkit/Legra/relation"
	"github.com/certkit/Legra/tracing"
	"github.com/certkit/Legra/utils"
	"golang.org/x/sync/errgroup"
)

var (
	logger = gologger.NewLogger()
)

func main() {
	logger.Info().Msg("starting Legra")

	ctx := context.Background()
	shutdownTracer, err := tracing.InitTracer(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing tracer")
	}

	provider, err := providers.FromEnv()
	if err != nil {
		// requests stay blocked until DNS_PROVIDER points at a known plugin
		logger.Warn().Err(err).Msg("no usable DNS provider configured")
	}

	store, err := relation.NewStore(relation.Env_RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating relation store")
	}

	allowlist, err := orchestrator.ParseAllowlist(utils.Env_AllowedDomains)
	if err != nil {
		logger.Fatal().Err(err).Msg("error parsing ALLOWED_DOMAINS")
	}

	statusHolder := relation.NewStatusHolder()
	lease := relation.NewLeaderLease(store)
	orch := &orchestrator.Orchestrator{
		Config:    acmeconfig.FromEnv,
		Provider:  provider,
		Backend:   lego_runner.NewRunner(),
		Leader:    lease,
		Scheduler: store,
		Publisher: store,
		Status:    statusHolder,
		Allowlist: allowlist,
	}
	orch.HandleConfigChanged(ctx)

	server := relation.NewServer(store, relation.NewCachedPublications(store), statusHolder)
	consumer := relation.NewConsumer(store, orch, lease)

	g := errgroup.Group{}
	g.Go(func() error {
		logger.Info().Msg("starting relation server")
		return server.Start()
	})
	g.Go(func() error {
		logger.Info().Msg("starting groupcache pool")
		return cache.CreateGroupCache()
	})
	g.Go(func() error {
		logger.Info().Msg("starting internal metrics server")
		err := internal.StartMetricsServer()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.Info().Msg("starting relation consumer")
		return consumer.Start()
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info().Msg("received shutdown signal, shutting down")

	if utils.Env_SleepSeconds > 0 {
		// let the load balancer drain before refusing connections
		logger.Info().Msgf("sleeping %d seconds before shutdown", utils.Env_SleepSeconds)
		time.Sleep(time.Second * time.Duration(utils.Env_SleepSeconds))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(utils.Env_ShutdownTimeoutSeconds))
	defer cancel()

	if err := consumer.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error stopping consumer")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down relation server")
	}
	if err := cache.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down groupcache")
	}
	if err := internal.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down internal server")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down tracer")
	}
	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing relation store")
	}

	err = g.Wait()
	if err != nil {
		logger.Error().Err(err).Msg("Error starting services")
	}
	logger.Info().Msg("shutdown complete")
}
