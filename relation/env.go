package relation

import "github.com/certkit/Legra/utils"

var (
	Env_RedisURL          = utils.EnvOrDefault("REDIS_URL", "redis://localhost:6379")
	Env_Port              = utils.EnvOrDefault("RELATION_PORT", "8080")
	Env_RedeliverySeconds = utils.MustEnvOrDefaultInt64("REDELIVERY_SECONDS", 30)
	Env_LeaderTTLSeconds  = utils.MustEnvOrDefaultInt64("LEADER_TTL_SECONDS", 15)
	Env_ChainCacheMB      = utils.MustEnvOrDefaultInt64("CHAIN_CACHE_MB", 10_000_000)
	Env_ChainCacheSeconds = utils.MustEnvOrDefaultInt64("CHAIN_CACHE_SECONDS", 300)
)
