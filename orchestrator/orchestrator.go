package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/certkit/Legra/acmeconfig"
	"github.com/certkit/Legra/csr"
	"github.com/certkit/Legra/gologger"
	"github.com/certkit/Legra/internal"
	"github.com/certkit/Legra/lego_runner"
	"github.com/certkit/Legra/providers"
	"github.com/certkit/Legra/tracing"
	"github.com/gobwas/glob"
)

var (
	logger = gologger.NewLogger()

	// ErrNotLeader is returned when a request reaches a unit that does not
	// hold the lease. The status surface stays untouched; the queue layer
	// re-parks the request so the leader picks it up.
	ErrNotLeader = errors.New("not the leader")
)

// CreationRequest is one certificate signing request correlated by id.
type CreationRequest struct {
	CorrelationID string `json:"correlation_id"`
	CSR           string `json:"csr"`
}

// Publication is the issued chain handed back to the requester.
// Certificate is the leaf, CA the topmost block of the chain file, Chain the
// full sequence root-first.
type Publication struct {
	Certificate string   `json:"certificate"`
	CA          string   `json:"ca"`
	Chain       []string `json:"chain"`
}

// Scheduler re-queues a request that could not be handled yet.
type Scheduler interface {
	Defer(ctx context.Context, req CreationRequest) error
}

// LeadershipOracle reports whether this unit may execute challenges.
type LeadershipOracle interface {
	IsLeader(ctx context.Context) (bool, error)
}

// ExecutionBackend is the lego side of the world: binary presence, CSR
// handoff, the challenge run, and the issued chain.
type ExecutionBackend interface {
	Available(ctx context.Context) bool
	PushCSR(csr string) error
	Run(ctx context.Context, email, server, plugin string, env map[string]string) error
	FetchChain(subject string) (lego_runner.Chain, error)
}

// Publisher delivers publications keyed by correlation id.
type Publisher interface {
	Publish(ctx context.Context, correlationID string, pub Publication) error
}

type Orchestrator struct {
	// Config is re-read on every pass, settings change underneath us.
	Config    func() acmeconfig.AcmeConfig
	Provider  providers.DNSProvider // nil when DNS_PROVIDER is unset or unknown
	Backend   ExecutionBackend
	Leader    LeadershipOracle
	Scheduler Scheduler
	Publisher Publisher
	Status    StatusSink
	// Allowlist constrains which subjects may be requested. Empty admits all.
	Allowlist []glob.Glob
}

// EvaluateConfig validates provider config first, then the generic ACME
// settings, and maps the first failure to a Blocked status. Active means
// everything checked out.
func EvaluateConfig(cfg acmeconfig.AcmeConfig, provider providers.DNSProvider) Status {
	if provider == nil {
		return Blocked("Invalid DNS provider")
	}
	if err := provider.Validate(); err != nil {
		return Blocked(err.Error())
	}
	if err := cfg.ValidateGeneric(); err != nil {
		return Blocked(err.Error())
	}
	return Active()
}

// HandleConfigChanged re-evaluates the config and applies the resulting
// status.
func (o *Orchestrator) HandleConfigChanged(ctx context.Context) Status {
	status := EvaluateConfig(o.Config(), o.Provider)
	o.Status.Set(status)
	return status
}

// HandleCreationRequest runs one request end to end: config gates, leader
// gate, backend gate, subject policy, lego execution, publication. A request
// stopped by a gate is deferred for redelivery; a request stopped by policy
// or execution failure is dropped with a Blocked status.
func (o *Orchestrator) HandleCreationRequest(ctx context.Context, req CreationRequest) error {
	ctx, span := tracing.LegraTracer.Start(ctx, "HandleCreationRequest")
	defer span.End()

	internal.Metric_CreationRequests.Inc()
	log := logger.With().Str("correlationID", req.CorrelationID).Logger()

	cfg := o.Config()
	if status := EvaluateConfig(cfg, o.Provider); status.Kind != StatusActive {
		o.Status.Set(status)
		return o.deferRequest(ctx, req)
	}

	isLeader, err := o.Leader.IsLeader(ctx)
	if err != nil {
		return fmt.Errorf("error in Leader.IsLeader: %w", err)
	}
	if !isLeader {
		log.Debug().Msg("not the leader, handing the request back")
		return ErrNotLeader
	}

	if !o.Backend.Available(ctx) {
		o.Status.Set(Waiting("Waiting for lego backend to be ready"))
		return o.deferRequest(ctx, req)
	}

	subject, err := csr.ExtractSubject(req.CSR)
	if err != nil {
		o.Status.Set(Blocked(fmt.Sprintf("Invalid CSR: %s", err)))
		return nil
	}
	if len(subject) > csr.MaxSubjectLength {
		o.Status.Set(Blocked(fmt.Sprintf("Subject is too long (> %d characters): %s", csr.MaxSubjectLength, subject)))
		return nil
	}
	if !o.subjectAllowed(subject) {
		o.Status.Set(Blocked(fmt.Sprintf("Subject not in allowed domains: %s", subject)))
		return nil
	}

	o.Status.Set(Maintenance("Executing lego command"))

	err = o.Backend.PushCSR(req.CSR)
	if err != nil {
		return fmt.Errorf("error in Backend.PushCSR: %w", err)
	}

	err = o.Backend.Run(ctx, cfg.Email, cfg.Server, o.Provider.Name(), o.Provider.Environment())
	if err != nil {
		internal.Metric_FailedExecutions.Inc()
		log.Error().Err(err).Str("subject", subject).Msg("lego run failed")
		o.Status.Set(Blocked("Lego command execution failed, see logs for details"))
		return nil
	}

	chain, err := o.Backend.FetchChain(subject)
	if err != nil {
		// lego succeeded but left no chain file, an operator has to look
		log.Error().Err(err).Str("subject", subject).Msg("chain retrieval failed")
		o.Status.Set(Blocked(fmt.Sprintf("Certificate not found for subject: %s", subject)))
		return nil
	}

	err = o.Publisher.Publish(ctx, req.CorrelationID, Publication{
		Certificate: chain.Leaf(),
		CA:          chain.CA(),
		Chain:       chain.RootToLeaf(),
	})
	if err != nil {
		return fmt.Errorf("error in Publisher.Publish: %w", err)
	}

	internal.Metric_IssuedCertificates.Inc()
	log.Info().Str("subject", subject).Msg("certificate issued")
	o.Status.Set(Active())
	return nil
}

func (o *Orchestrator) deferRequest(ctx context.Context, req CreationRequest) error {
	internal.Metric_DeferredRequests.Inc()
	err := o.Scheduler.Defer(ctx, req)
	if err != nil {
		return fmt.Errorf("error in Scheduler.Defer: %w", err)
	}
	return nil
}

func (o *Orchestrator) subjectAllowed(subject string) bool {
	if len(o.Allowlist) == 0 {
		return true
	}
	for _, g := range o.Allowlist {
		if g.Match(subject) {
			return true
		}
	}
	return false
}

// ParseAllowlist compiles a comma-separated list of domain glob patterns,
// '.' separated so "*.example.com" will not match nested subdomains.
func ParseAllowlist(csv string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, pattern := range strings.Split(csv, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("error compiling allowlist pattern %s: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
