package engine

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"psychaid/backend/internal/policy/domain"
)

const decisionQuery = "data.psychaid.access.decision"

//go:embed policies/access.rego
var defaultAccessPolicy string

// ErrNoDecision is returned when the policy produced no usable result.
var ErrNoDecision = errors.New("policy produced no decision")

// OPAEvaluator evaluates the access policy with an in-process OPA query that
// is compiled and prepared once. Safe for concurrent use.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the embedded access policy.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	return NewOPAEvaluatorFromSource(ctx, defaultAccessPolicy)
}

// NewOPAEvaluatorFromSource compiles src, which must define data.psychaid.access.decision.
func NewOPAEvaluatorFromSource(ctx context.Context, src string) (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"access.rego": src})
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(decisionQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// EvaluateAccess runs the prepared query against in.
func (e *OPAEvaluator) EvaluateAccess(ctx context.Context, in domain.AccessInput) (domain.AccessDecision, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(in)))
	if err != nil {
		return domain.AccessDecision{}, fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return domain.AccessDecision{}, ErrNoDecision
	}
	obj, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return domain.AccessDecision{}, ErrNoDecision
	}
	allow, ok := obj["allow"].(bool)
	if !ok {
		return domain.AccessDecision{}, ErrNoDecision
	}
	reason, _ := obj["reason"].(string)
	return domain.AccessDecision{Allow: allow, Reason: reason}, nil
}

// HealthCheck evaluates a self-access probe and expects it to be allowed.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.EvaluateAccess(ctx, domain.AccessInput{CallerID: "probe", CallerRole: "student", TargetID: "probe"})
	if err != nil {
		return err
	}
	if !d.Allow || d.Reason != domain.ReasonSelf {
		return fmt.Errorf("access policy probe: unexpected decision %+v", d)
	}
	return nil
}

func buildInput(in domain.AccessInput) map[string]interface{} {
	children := make([]interface{}, 0, len(in.LinkedChildren))
	for _, c := range in.LinkedChildren {
		children = append(children, c)
	}
	return map[string]interface{}{
		"caller": map[string]interface{}{
			"id":              in.CallerID,
			"role":            in.CallerRole,
			"linked_children": children,
		},
		"target_id": in.TargetID,
	}
}
