// Package rbac holds the single access-control decision point for reads that
// name another user's id.
package rbac

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	policydomain "psychaid/backend/internal/policy/domain"
	"psychaid/backend/internal/policy/engine"
	userdomain "psychaid/backend/internal/user/domain"
)

// Messages returned to clients on denial.
const (
	MsgNotParent  = "only parents may access another user's data"
	MsgNotLinked  = "not linked"
	MsgUnverified = "access could not be verified"
)

var (
	// ErrForbidden matches every denial via errors.Is.
	ErrForbidden = errors.New("forbidden")
	// ErrNoCaller is returned when the gate is asked to decide for an unresolved caller.
	ErrNoCaller = errors.New("caller not resolved")
)

// ForbiddenError is a denial with a stable reason code and client message.
type ForbiddenError struct {
	Reason  string
	Message string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Message }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// Gate decides whether a resolved caller may read a target user's data.
type Gate struct {
	evaluator engine.Evaluator
	log       logrus.FieldLogger
}

// NewGate returns a Gate backed by evaluator. A nil evaluator selects the
// built-in Go rules.
func NewGate(evaluator engine.Evaluator, log logrus.FieldLogger) *Gate {
	if evaluator == nil {
		evaluator = engine.RuleEvaluator{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gate{evaluator: evaluator, log: log}
}

// Authorize returns nil when caller may access targetID's data. An empty
// targetID means the caller's own data. Denials are *ForbiddenError; policy
// failures deny as well.
func (g *Gate) Authorize(ctx context.Context, caller *userdomain.User, targetID string) error {
	if caller == nil || caller.ID == "" {
		return ErrNoCaller
	}
	if targetID == "" {
		targetID = caller.ID
	}
	in := policydomain.AccessInput{
		CallerID:       caller.ID,
		CallerRole:     string(caller.Role),
		LinkedChildren: caller.LinkedChildren,
		TargetID:       targetID,
	}
	d, err := g.evaluator.EvaluateAccess(ctx, in)
	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{"caller_id": caller.ID, "target_id": targetID}).
			Error("rbac: access policy evaluation failed")
		return &ForbiddenError{Reason: "policy_error", Message: MsgUnverified}
	}
	if d.Allow {
		return nil
	}
	switch d.Reason {
	case policydomain.ReasonNotParent:
		return &ForbiddenError{Reason: d.Reason, Message: MsgNotParent}
	default:
		return &ForbiddenError{Reason: policydomain.ReasonNotLinked, Message: MsgNotLinked}
	}
}
