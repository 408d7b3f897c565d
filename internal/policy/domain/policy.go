package domain

// Reasons reported with an access decision.
const (
	ReasonSelf        = "self"
	ReasonNotParent   = "not_parent"
	ReasonNotLinked   = "not_linked"
	ReasonLinkedChild = "linked_child"
)

// AccessInput is what the access policy sees: the resolved caller and the
// id of the user whose data is requested.
type AccessInput struct {
	CallerID       string
	CallerRole     string
	LinkedChildren []string
	TargetID       string
}

// AccessDecision is the policy outcome. Reason is one of the Reason constants.
type AccessDecision struct {
	Allow  bool
	Reason string
}
