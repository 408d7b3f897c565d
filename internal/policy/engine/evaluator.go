package engine

import (
	"context"

	"psychaid/backend/internal/policy/domain"
)

// Evaluator decides whether a caller may read another user's data.
type Evaluator interface {
	// EvaluateAccess returns the decision for in. An error means no decision
	// could be reached; callers must treat it as deny.
	EvaluateAccess(ctx context.Context, in domain.AccessInput) (domain.AccessDecision, error)
}
