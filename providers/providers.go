package providers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrUnknownProvider = errors.New("unknown DNS provider")
)

// DNSProvider is the contract each DNS backend implements. The lego CLI does
// the actual DNS API calls through its plugin of the same Name; all a backend
// owns here is its credential surface: which env keys it needs, which are
// optional, and how they get handed to the lego process.
type DNSProvider interface {
	// Name is the lego --dns plugin name.
	Name() string
	// Environment returns the env mapping injected into the lego process.
	// Optional keys are omitted entirely when unset, never passed empty.
	Environment() map[string]string
	// RequiredKeys lists the env keys that must be non-empty before a run.
	RequiredKeys() []string
	// Validate reports every missing required key at once.
	Validate() error
}

var registry = map[string]func() DNSProvider{
	"gandiv5":    func() DNSProvider { return Gandi{} },
	"namecheap":  func() DNSProvider { return Namecheap{} },
	"cloudflare": func() DNSProvider { return Cloudflare{} },
	"route53":    func() DNSProvider { return Route53{} },
}

// FromName looks a provider up by its lego plugin name.
func FromName(name string) (DNSProvider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return factory(), nil
}

// FromEnv selects the provider named by the DNS_PROVIDER env var.
func FromEnv() (DNSProvider, error) {
	return FromName(os.Getenv("DNS_PROVIDER"))
}

// Names returns the registered plugin names.
func Names() []string {
	return lo.Keys(registry)
}

// requireKeys reports all missing required keys in one message, so operators
// fix everything in a single pass instead of playing whack-a-mole.
func requireKeys(p DNSProvider) error {
	missing := lo.Filter(p.RequiredKeys(), func(key string, _ int) bool {
		return os.Getenv(key) == ""
	})
	if len(missing) > 0 {
		return fmt.Errorf("The following config options must be set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// collectEnv builds the process environment for a provider: required keys are
// always present, optional keys only when set.
func collectEnv(required, optional []string) map[string]string {
	env := make(map[string]string, len(required)+len(optional))
	for _, key := range required {
		env[key] = os.Getenv(key)
	}
	for _, key := range optional {
		if val := os.Getenv(key); val != "" {
			env[key] = val
		}
	}
	return env
}
