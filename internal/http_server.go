package internal

import (
	"fmt"
	"net/http"

	"github.com/certkit/Legra/common"
	"github.com/certkit/Legra/gologger"
	"github.com/certkit/Legra/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/context"
)

var (
	httpServer *http.Server
	logger     = gologger.NewLogger()

	Env_InternalPort = utils.EnvOrDefault("INTERNAL_PORT", "8091")
)

func StartMetricsServer() error {
	logger.Debug().Msgf("Starting internal http server on port %s", Env_InternalPort)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	// tally keeps its own registry
	mux.Handle("/metrics/tally", tallyReporter.HTTPHandler())

	httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", Env_InternalPort),
		Handler: mux,
	}
	return httpServer.ListenAndServe()
}

func Shutdown(ctx context.Context) error {
	if httpServer != nil {
		logger.Debug().Msg("Shutting down internal server")
		return httpServer.Shutdown(ctx)
	}
	return common.ErrNoServer
}
