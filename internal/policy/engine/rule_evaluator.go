package engine

import (
	"context"

	"psychaid/backend/internal/policy/domain"
)

// RuleEvaluator applies the access rules directly in Go. It mirrors
// policies/access.rego and is used where an OPA runtime is not wanted.
type RuleEvaluator struct{}

func (RuleEvaluator) EvaluateAccess(_ context.Context, in domain.AccessInput) (domain.AccessDecision, error) {
	if in.TargetID == in.CallerID {
		return domain.AccessDecision{Allow: true, Reason: domain.ReasonSelf}, nil
	}
	if in.CallerRole != "parent" {
		return domain.AccessDecision{Allow: false, Reason: domain.ReasonNotParent}, nil
	}
	for _, c := range in.LinkedChildren {
		if c == in.TargetID {
			return domain.AccessDecision{Allow: true, Reason: domain.ReasonLinkedChild}, nil
		}
	}
	return domain.AccessDecision{Allow: false, Reason: domain.ReasonNotLinked}, nil
}
