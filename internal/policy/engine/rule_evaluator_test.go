package engine

import (
	"context"
	"testing"

	"psychaid/backend/internal/policy/domain"
)

// The Go rules and the Rego policy must agree on every combination.
func TestRuleEvaluator_AgreesWithOPA(t *testing.T) {
	ctx := context.Background()
	opa := newEvaluator(t)
	var rules RuleEvaluator

	ids := []string{"A", "B", "C", "D"}
	roles := []string{"parent", "student", ""}
	childSets := [][]string{nil, {"C"}, {"C", "D"}}
	for _, caller := range ids {
		for _, role := range roles {
			for _, kids := range childSets {
				for _, target := range ids {
					in := domain.AccessInput{CallerID: caller, CallerRole: role, LinkedChildren: kids, TargetID: target}
					want, err := opa.EvaluateAccess(ctx, in)
					if err != nil {
						t.Fatalf("opa %+v: %v", in, err)
					}
					got, _ := rules.EvaluateAccess(ctx, in)
					if got != want {
						t.Errorf("%+v: rules = %+v, opa = %+v", in, got, want)
					}
				}
			}
		}
	}
}
