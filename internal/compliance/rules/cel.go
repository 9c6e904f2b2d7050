package rules

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"transferguard/internal/compliance"
)

// celCostLimit bounds expression evaluation so an administrator cannot
// register a runaway expression on the hot path.
const celCostLimit = 1_000_000

// CELRule is an administrator-defined predicate compiled from a CEL
// expression over the operation. It is the extension point for compliance
// checks the built-in rules do not cover: new predicates are added by
// registering expressions, not by modifying the engine.
//
// The expression sees an `op` map with operation_type, actor, counterparty,
// amount, asset, and timestamp, and must evaluate to a boolean; true means
// the operation passes. Evaluation errors and non-boolean results fail
// closed.
type CELRule struct {
	id         string
	expression string
	reason     string
	program    cel.Program
}

// NewCEL compiles the expression and returns the rule, or a descriptive
// compile error. The reason string is surfaced when the predicate blocks an
// operation.
func NewCEL(id, expression, reason string) (*CELRule, error) {
	if id == "" {
		return nil, fmt.Errorf("cel rule id is required")
	}
	if reason == "" {
		reason = fmt.Sprintf("blocked by rule %s", id)
	}

	env, err := cel.NewEnv(cel.Variable("op", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile cel expression: %w", issues.Err())
	}

	program, err := env.Program(ast, cel.CostLimit(celCostLimit))
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}

	return &CELRule{id: id, expression: expression, reason: reason, program: program}, nil
}

func (r *CELRule) ID() string {
	return r.id
}

// Expression returns the source expression, for the admin API.
func (r *CELRule) Expression() string {
	return r.expression
}

func (r *CELRule) Evaluate(_ context.Context, op compliance.Operation) compliance.RuleResult {
	out, _, err := r.program.Eval(map[string]any{
		"op": map[string]any{
			"operation_type": op.Type.String(),
			"actor":          op.Actor.String(),
			"counterparty":   op.Counterparty.String(),
			"amount":         op.Amount,
			"asset":          op.Asset.String(),
			"timestamp":      op.Timestamp,
		},
	})
	if err != nil {
		return compliance.Fail(r.id, fmt.Sprintf("expression evaluation failed: %v", err))
	}

	passed, ok := out.Value().(bool)
	if !ok {
		return compliance.Fail(r.id, "expression did not evaluate to a boolean")
	}
	if !passed {
		return compliance.Fail(r.id, r.reason)
	}
	return compliance.Pass(r.id)
}
