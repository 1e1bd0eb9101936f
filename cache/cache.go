package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/certkit/Legra/common"
	"github.com/certkit/Legra/gologger"
	"github.com/certkit/Legra/utils"
	"github.com/mailgun/groupcache/v2"
	"github.com/samber/lo"
)

var (
	SelfAddr   = fmt.Sprintf("%s:%s", utils.Env_SelfIP, Env_GroupCachePort)
	httpServer *http.Server
	logger     = gologger.NewLogger()
)

// CreateGroupCache starts the groupcache peer pool and its HTTP server.
// Blocks until Shutdown or a listen error.
func CreateGroupCache() error {
	logger.Debug().Msgf("creating group cache at %s", SelfAddr)

	// Pool keeps track of peers in our cluster and identifies which peer owns a key.
	pool := groupcache.NewHTTPPoolOpts("http://"+SelfAddr, &groupcache.HTTPPoolOptions{})

	// The peer set must include this instance, else key ownership is not
	// consistent across the cluster.
	pool.Set(peerURLs()...)

	httpServer = &http.Server{
		Addr:    SelfAddr,
		Handler: pool,
	}

	err := httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error in ListenAndServe: %w", err)
	}
	return nil
}

func peerURLs() []string {
	peers := lo.Filter(strings.Split(Env_Peers, ","), func(peer string, _ int) bool {
		return strings.TrimSpace(peer) != ""
	})
	if len(peers) == 0 {
		return []string{"http://" + SelfAddr}
	}
	return lo.Map(peers, func(peer string, _ int) string {
		return "http://" + strings.TrimSpace(peer)
	})
}

func Shutdown(ctx context.Context) error {
	if httpServer != nil {
		logger.Debug().Msg("Shutting down groupcache server")
		return httpServer.Shutdown(ctx)
	}
	return common.ErrNoServer
}
