package providers

// Namecheap drives the lego namecheap plugin.
type Namecheap struct{}

var namecheapOptionalKeys = []string{
	"NAMECHEAP_HTTP_TIMEOUT",
	"NAMECHEAP_POLLING_INTERVAL",
	"NAMECHEAP_PROPAGATION_TIMEOUT",
	"NAMECHEAP_TTL",
	"NAMECHEAP_SANDBOX",
}

func (Namecheap) Name() string {
	return "namecheap"
}

func (Namecheap) RequiredKeys() []string {
	return []string{"NAMECHEAP_API_USER", "NAMECHEAP_API_KEY"}
}

func (n Namecheap) Environment() map[string]string {
	return collectEnv(n.RequiredKeys(), namecheapOptionalKeys)
}

func (n Namecheap) Validate() error {
	return requireKeys(n)
}
