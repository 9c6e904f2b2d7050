package policy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"transferguard/internal/audit"
	"transferguard/internal/policy/metrics"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/requestcontext"
)

// Config carries the registry's timing constants. Both values are
// deployment configuration, not hardcoded: the floor protects against an
// administrator disabling the governance delay outright.
type Config struct {
	DefaultActivationDelay time.Duration
	MinActivationDelay     time.Duration
}

// DefaultConfig returns the standard 24h default delay with a 1h floor.
func DefaultConfig() *Config {
	return &Config{
		DefaultActivationDelay: 24 * time.Hour,
		MinActivationDelay:     time.Hour,
	}
}

// Registry drives policy versions through Draft, Staged, Active, and
// Deprecated. All transitions are serialized by a mutex: they are
// low-frequency administrative actions, and serializing them keeps the
// "exactly one Active version" invariant trivially true across the
// deprecate-then-activate pair inside ActivatePolicy.
//
// The delay gate is a logical time check at call time. Nothing activates
// policies autonomously; someone must call ActivatePolicy once the window
// opens.
type Registry struct {
	mu    sync.Mutex
	store Store

	config         *Config
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher *audit.Publisher
	activationHook func(ctx context.Context, p *Policy)
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithConfig(cfg *Config) Option {
	return func(r *Registry) {
		r.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(r *Registry) {
		r.auditPublisher = publisher
	}
}

// WithActivationHook registers a callback invoked synchronously after a
// successful activation. The hook is how callers couple activation to
// swapping the engine's active configuration without the registry knowing
// about the engine.
func WithActivationHook(hook func(ctx context.Context, p *Policy)) Option {
	return func(r *Registry) {
		r.activationHook = hook
	}
}

// NewRegistry constructs the registry over a store.
func NewRegistry(store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "policy store is required")
	}

	r := &Registry{
		store:  store,
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RegisterPolicy creates a new Draft with the next sequential version and
// the default activation delay.
func (r *Registry) RegisterPolicy(ctx context.Context, configRef, description string) (*Policy, error) {
	if configRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "config ref is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	maxVersion, err := r.store.MaxVersion(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate policy version")
	}

	p := &Policy{
		ID:              uuid.New(),
		Version:         maxVersion + 1,
		Status:          StatusDraft,
		ConfigRef:       configRef,
		Description:     description,
		ActivationDelay: r.config.DefaultActivationDelay,
		CreatedAt:       requestcontext.Now(ctx),
		CreatedBy:       requestcontext.AdminSubject(ctx),
	}
	if err := r.store.Insert(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register policy")
	}

	r.logger.InfoContext(ctx, "policy registered", "version", p.Version, "config_ref", configRef)
	r.observeTransition(ctx, p, audit.EventPolicyRegistered)
	return p, nil
}

// StagePolicy moves a Draft to Staged and starts the activation delay clock.
func (r *Registry) StagePolicy(ctx context.Context, version int) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, version)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, dErrors.Newf(dErrors.CodeFailedPrecondition,
			"policy v%d is %s, only drafts can be staged", version, p.Status)
	}

	p.Status = StatusStaged
	p.StagedAt = requestcontext.Now(ctx)
	if err := r.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to stage policy")
	}

	r.logger.InfoContext(ctx, "policy staged",
		"version", p.Version, "activatable_at", p.ActivatableAt())
	r.observeTransition(ctx, p, audit.EventPolicyStaged)
	return p, nil
}

// ActivatePolicy promotes a Staged version to Active once its delay has
// elapsed. The previously Active version (if any) is deprecated in the same
// serialized step, so exactly one version is Active immediately after a
// successful call.
func (r *Registry) ActivatePolicy(ctx context.Context, version int) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, version)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusStaged {
		return nil, dErrors.Newf(dErrors.CodeFailedPrecondition,
			"policy v%d is %s, only staged policies can be activated", version, p.Status)
	}

	now := requestcontext.Now(ctx)
	if now.Before(p.ActivatableAt()) {
		return nil, dErrors.Newf(dErrors.CodeFailedPrecondition,
			"policy v%d cannot activate before %s", version, p.ActivatableAt().Format(time.RFC3339))
	}

	activeVersion, err := r.store.ActiveVersion(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read active policy")
	}
	if activeVersion != 0 {
		previous, err := r.get(ctx, activeVersion)
		if err != nil {
			return nil, err
		}
		previous.Status = StatusDeprecated
		previous.DeprecatedAt = now
		if err := r.store.Update(ctx, previous); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deprecate policy")
		}
		r.observeTransition(ctx, previous, audit.EventPolicyDeprecated)
	}

	p.Status = StatusActive
	p.ActivatedAt = now
	if err := r.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate policy")
	}

	r.logger.InfoContext(ctx, "policy activated",
		"version", p.Version, "deprecated_version", activeVersion)
	if r.metrics != nil {
		r.metrics.SetActiveVersion(p.Version)
	}
	r.observeTransition(ctx, p, audit.EventPolicyActivated)
	if r.activationHook != nil {
		r.activationHook(ctx, p)
	}
	return p, nil
}

// CancelStaging rolls a Staged version back to Draft, clearing the staging
// timestamp.
func (r *Registry) CancelStaging(ctx context.Context, version int) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, version)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusStaged {
		return nil, dErrors.Newf(dErrors.CodeFailedPrecondition,
			"policy v%d is %s, only staged policies can be canceled", version, p.Status)
	}

	p.Status = StatusDraft
	p.StagedAt = time.Time{}
	if err := r.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel staging")
	}

	r.logger.InfoContext(ctx, "policy staging canceled", "version", p.Version)
	r.observeTransition(ctx, p, audit.EventPolicyStagingCanceled)
	return p, nil
}

// SetActivationDelay overrides the delay for a Draft. The delay may never go
// below the configured floor.
func (r *Registry) SetActivationDelay(ctx context.Context, version int, delay time.Duration) (*Policy, error) {
	if delay < r.config.MinActivationDelay {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"activation delay %s is below the %s floor", delay, r.config.MinActivationDelay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, version)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, dErrors.Newf(dErrors.CodeFailedPrecondition,
			"policy v%d is %s, delay can only change while draft", version, p.Status)
	}

	p.ActivationDelay = delay
	if err := r.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to set activation delay")
	}

	r.logger.InfoContext(ctx, "policy activation delay changed", "version", p.Version, "delay", delay)
	r.observeTransition(ctx, p, audit.EventPolicyDelayChanged)
	return p, nil
}

// GetActiveVersion returns the currently Active version, 0 when none.
func (r *Registry) GetActiveVersion(ctx context.Context) (int, error) {
	version, err := r.store.ActiveVersion(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read active policy")
	}
	return version, nil
}

// GetPolicyMetadata returns the record for any registered version.
func (r *Registry) GetPolicyMetadata(ctx context.Context, version int) (*Policy, error) {
	return r.get(ctx, version)
}

// ListPolicies returns every version's record, oldest first.
func (r *Registry) ListPolicies(ctx context.Context) ([]*Policy, error) {
	policies, err := r.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, nil
}

func (r *Registry) get(ctx context.Context, version int) (*Policy, error) {
	p, err := r.store.Get(ctx, version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
	}
	if p == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "policy version %d not found", version)
	}
	return p, nil
}

func (r *Registry) observeTransition(ctx context.Context, p *Policy, eventType audit.EventType) {
	if r.metrics != nil {
		r.metrics.IncrementTransition(p.Status.String())
	}
	if r.auditPublisher == nil {
		return
	}
	r.auditPublisher.Emit(ctx, audit.Event{
		Category:      audit.CategoryCompliance,
		Type:          eventType,
		Actor:         requestcontext.AdminSubject(ctx),
		PolicyVersion: p.Version,
		Detail:        p.ConfigRef,
	})
}
