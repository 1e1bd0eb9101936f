package providers

// Gandi drives the lego gandiv5 plugin (Gandi LiveDNS v5).
type Gandi struct{}

var gandiOptionalKeys = []string{
	"GANDIV5_HTTP_TIMEOUT",
	"GANDIV5_POLLING_INTERVAL",
	"GANDIV5_PROPAGATION_TIMEOUT",
	"GANDIV5_TTL",
}

func (Gandi) Name() string {
	return "gandiv5"
}

func (Gandi) RequiredKeys() []string {
	return []string{"GANDIV5_API_KEY"}
}

func (g Gandi) Environment() map[string]string {
	return collectEnv(g.RequiredKeys(), gandiOptionalKeys)
}

func (g Gandi) Validate() error {
	return requireKeys(g)
}
