package compliance

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"transferguard/internal/audit"
	"transferguard/internal/compliance/metrics"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/requestcontext"
)

// EvaluationMode governs how individual rule outcomes combine into one
// verdict.
type EvaluationMode string

const (
	// ModeShortCircuit stops at the first failing rule, mandatory or not.
	// The default: fail fast, surface the first blocking reason.
	ModeShortCircuit EvaluationMode = "short_circuit"

	// ModeAllMustPass evaluates every enabled rule, records the first
	// failure, and fails iff any rule failed. Used for bulk compliance
	// audits that need full visibility at extra evaluation cost.
	ModeAllMustPass EvaluationMode = "all_must_pass"

	// ModeAnyMustPass passes on the first passing rule and fails only when
	// the whole set is exhausted without a pass.
	ModeAnyMustPass EvaluationMode = "any_must_pass"
)

// IsValid checks if the mode is one of the supported enum values.
func (m EvaluationMode) IsValid() bool {
	switch m {
	case ModeShortCircuit, ModeAllMustPass, ModeAnyMustPass:
		return true
	}
	return false
}

func (m EvaluationMode) String() string {
	return string(m)
}

// reasonNoRulesPassed is surfaced when AnyMustPass exhausts the set. No
// single rule is "the cause" in that mode, so FailedRule stays unset.
const reasonNoRulesPassed = "no rules passed"

// reasonNoRulesConfigured is surfaced when the engine is configured to fail
// closed on an empty rule set.
const reasonNoRulesConfigured = "no compliance rules configured"

// EvaluationResult is the single verdict for one operation.
type EvaluationResult struct {
	// Passed is the overall verdict.
	Passed bool `json:"passed"`
	// FailedRule is the first (or representative) failing rule id, empty
	// when the operation passed or no single rule caused the failure.
	FailedRule string `json:"failed_rule,omitempty"`
	// Reason explains the failure in end-user terms; empty when passed.
	Reason string `json:"reason,omitempty"`
	// EvaluatedRules counts the rules actually invoked, for cost
	// accounting and audit.
	EvaluatedRules int `json:"evaluated_rules"`
}

// engineState is the immutable snapshot swapped atomically on admin changes.
// In-flight evaluations complete against the snapshot they loaded.
type engineState struct {
	ruleSet *RuleSet
	mode    EvaluationMode
	version uint64
}

// Engine evaluates operations against the active rule set under the
// configured evaluation mode. Evaluate is safe for unlimited concurrent
// callers; administrative mutations swap an atomic snapshot and never block
// readers.
type Engine struct {
	state atomic.Pointer[engineState]
	mu    sync.Mutex // serializes administrative swaps

	failClosedWhenEmpty bool
	initialMode         EvaluationMode
	logger              *slog.Logger
	metrics             *metrics.Metrics
	auditPublisher      *audit.Publisher
	tracer              trace.Tracer
}

type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithAuditPublisher(publisher *audit.Publisher) EngineOption {
	return func(e *Engine) {
		e.auditPublisher = publisher
	}
}

// WithMode sets the initial evaluation mode. Defaults to ModeShortCircuit.
func WithMode(mode EvaluationMode) EngineOption {
	return func(e *Engine) {
		if mode.IsValid() {
			e.initialMode = mode
		}
	}
}

// WithFailClosedWhenEmpty makes an empty active rule set block every
// operation instead of permitting it. The permissive default matches the
// documented engine behavior; see DESIGN.md for the fail-open tension.
func WithFailClosedWhenEmpty() EngineOption {
	return func(e *Engine) {
		e.failClosedWhenEmpty = true
	}
}

// NewEngine constructs an engine over the given rule set.
func NewEngine(ruleSet *RuleSet, opts ...EngineOption) (*Engine, error) {
	if ruleSet == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "rule set is required")
	}

	e := &Engine{
		initialMode: ModeShortCircuit,
		logger:      slog.Default(),
		tracer:      otel.Tracer("transferguard/compliance"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state.Store(&engineState{ruleSet: ruleSet, mode: e.initialMode, version: 1})
	return e, nil
}

// Evaluate runs the active rules against op and returns exactly one result.
// Precedence is: mandatory failure beats any mode-specific continuation
// logic; only optional failures are deferred by AllMustPass and AnyMustPass.
// A compliance failure is the expected, common output here, never an error.
func (e *Engine) Evaluate(ctx context.Context, op Operation) EvaluationResult {
	st := e.state.Load()
	active := st.ruleSet.ActiveRules()

	ctx, span := e.tracer.Start(ctx, "compliance.Evaluate", trace.WithAttributes(
		attribute.String("operation.type", op.Type.String()),
		attribute.String("evaluation.mode", st.mode.String()),
		attribute.Int("ruleset.active_rules", len(active)),
	))
	defer span.End()

	result := e.run(ctx, st.mode, active, op)

	span.SetAttributes(
		attribute.Bool("evaluation.passed", result.Passed),
		attribute.Int("evaluation.rules_evaluated", result.EvaluatedRules),
	)
	if e.metrics != nil {
		e.metrics.ObserveEvaluation(result.Passed, st.mode.String(), result.EvaluatedRules)
		if result.FailedRule != "" {
			e.metrics.IncrementRuleFailure(result.FailedRule)
		}
	}
	e.emitEvaluated(ctx, op, result)
	return result
}

func (e *Engine) run(ctx context.Context, mode EvaluationMode, active []RuleEntry, op Operation) EvaluationResult {
	if len(active) == 0 {
		if e.failClosedWhenEmpty {
			return EvaluationResult{Passed: false, Reason: reasonNoRulesConfigured}
		}
		return EvaluationResult{Passed: true, EvaluatedRules: 0}
	}

	evaluated := 0
	var firstFailure *RuleResult

	for _, entry := range active {
		evaluated++
		res := entry.Rule.Evaluate(ctx, op)

		if res.Passed {
			if mode == ModeAnyMustPass {
				return EvaluationResult{Passed: true, EvaluatedRules: evaluated}
			}
			continue
		}

		// Mandatory failures are terminal in every mode.
		if entry.Mandatory || mode == ModeShortCircuit {
			return EvaluationResult{
				Passed:         false,
				FailedRule:     res.RuleID,
				Reason:         res.Reason,
				EvaluatedRules: evaluated,
			}
		}
		if firstFailure == nil {
			failure := res
			firstFailure = &failure
		}
	}

	switch mode {
	case ModeAnyMustPass:
		return EvaluationResult{
			Passed:         false,
			Reason:         reasonNoRulesPassed,
			EvaluatedRules: evaluated,
		}
	case ModeAllMustPass:
		if firstFailure != nil {
			return EvaluationResult{
				Passed:         false,
				FailedRule:     firstFailure.RuleID,
				Reason:         firstFailure.Reason,
				EvaluatedRules: evaluated,
			}
		}
	}
	return EvaluationResult{Passed: true, EvaluatedRules: evaluated}
}

// RuleSet returns the active rule set for administrative entry-point use.
// Entry mutations on it are individually atomic; multi-step reconfiguration
// should build a new set and swap it via SetRuleSet.
func (e *Engine) RuleSet() *RuleSet {
	return e.state.Load().ruleSet
}

// Mode returns the current evaluation mode.
func (e *Engine) Mode() EvaluationMode {
	return e.state.Load().mode
}

// ActiveRuleSetVersion returns the monotonically increasing version of the
// active rule set reference, bumped on every SetRuleSet.
func (e *Engine) ActiveRuleSetVersion() uint64 {
	return e.state.Load().version
}

// SetRuleSet atomically swaps the active rule set. In-flight evaluations
// finish against the snapshot they started with.
func (e *Engine) SetRuleSet(ctx context.Context, ruleSet *RuleSet) error {
	if ruleSet == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "rule set is required")
	}

	e.mu.Lock()
	old := e.state.Load()
	next := &engineState{ruleSet: ruleSet, mode: old.mode, version: old.version + 1}
	e.state.Store(next)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RuleSetSwapsTotal.Inc()
	}
	e.logger.InfoContext(ctx, "active rule set swapped", "version", next.version)
	e.emitConfigChange(ctx, audit.Event{
		Type:   audit.EventRuleSetSwapped,
		Detail: "active rule set reference replaced",
	})
	return nil
}

// SetMode atomically changes the evaluation mode.
func (e *Engine) SetMode(ctx context.Context, mode EvaluationMode) error {
	if !mode.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "invalid evaluation mode %q", mode)
	}

	e.mu.Lock()
	old := e.state.Load()
	e.state.Store(&engineState{ruleSet: old.ruleSet, mode: mode, version: old.version})
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.ModeChangesTotal.Inc()
	}
	e.logger.InfoContext(ctx, "evaluation mode changed", "mode", mode)
	e.emitConfigChange(ctx, audit.Event{
		Type: audit.EventModeChanged,
		Mode: mode.String(),
	})
	return nil
}

func (e *Engine) emitEvaluated(ctx context.Context, op Operation, result EvaluationResult) {
	if e.auditPublisher == nil {
		return
	}
	passed := result.Passed
	e.auditPublisher.Emit(ctx, audit.Event{
		Category:   audit.CategoryOperations,
		Type:       audit.EventEvaluationCompleted,
		Address:    op.Actor,
		Asset:      op.Asset,
		Passed:     &passed,
		FailedRule: result.FailedRule,
		Reason:     result.Reason,
		Detail:     op.Type.String(),
	})
}

func (e *Engine) emitConfigChange(ctx context.Context, event audit.Event) {
	if e.auditPublisher == nil {
		return
	}
	event.Category = audit.CategoryCompliance
	event.Actor = requestcontext.AdminSubject(ctx)
	e.auditPublisher.Emit(ctx, event)
}
