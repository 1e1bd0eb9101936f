package providers

// Route53 drives the lego route53 plugin with static AWS credentials.
type Route53 struct{}

var route53OptionalKeys = []string{
	"AWS_SESSION_TOKEN",
	"AWS_HOSTED_ZONE_ID",
	"AWS_MAX_RETRIES",
	"AWS_PROPAGATION_TIMEOUT",
}

func (Route53) Name() string {
	return "route53"
}

func (Route53) RequiredKeys() []string {
	return []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION"}
}

func (r Route53) Environment() map[string]string {
	return collectEnv(r.RequiredKeys(), route53OptionalKeys)
}

func (r Route53) Validate() error {
	return requireKeys(r)
}
