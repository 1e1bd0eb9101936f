package providers

// Cloudflare drives the lego cloudflare plugin using a scoped DNS API token.
type Cloudflare struct{}

var cloudflareOptionalKeys = []string{
	"CLOUDFLARE_HTTP_TIMEOUT",
	"CLOUDFLARE_POLLING_INTERVAL",
	"CLOUDFLARE_PROPAGATION_TIMEOUT",
	"CLOUDFLARE_TTL",
}

func (Cloudflare) Name() string {
	return "cloudflare"
}

func (Cloudflare) RequiredKeys() []string {
	return []string{"CLOUDFLARE_DNS_API_TOKEN"}
}

func (c Cloudflare) Environment() map[string]string {
	return collectEnv(c.RequiredKeys(), cloudflareOptionalKeys)
}

func (c Cloudflare) Validate() error {
	return requireKeys(c)
}
