package cache

import "github.com/certkit/Legra/utils"

var (
	Env_GroupCachePort = utils.EnvOrDefault("CACHE_PORT", "8092")
	// Comma-separated peer addresses, host:port. Must include this instance.
	Env_Peers = utils.EnvOrDefault("CACHE_PEERS", "")
)
