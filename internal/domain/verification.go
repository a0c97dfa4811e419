package domain

// Action enumerates privileged marketplace actions gated by verification.
type Action string

const (
	ActionApply        Action = "APPLY"
	ActionPostProperty Action = "POST_PROPERTY"
	ActionBook         Action = "BOOK"
)

// Decision is the outcome of a verification gate check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Gate reasons follow the rule ordering: email verification is reported
// before full identity so users complete prerequisites in sequence.
const (
	ReasonNotAuthenticated  = "you must be signed in to perform this action"
	ReasonOwnerRoleRequired = "only owners can post properties"
	ReasonEmailUnverified   = "email verification is required before continuing"
	ReasonNotFullyVerified  = "identity verification must be completed and approved"
)

// CanPerform evaluates the verification gate for the given action.
// Rules run in order and the first failure wins. No side effects; callers
// re-evaluate on every attempt since verification state can change between
// requests.
func CanPerform(user *User, action Action) Decision {
	if user == nil {
		return Decision{Reason: ReasonNotAuthenticated}
	}
	if action == ActionPostProperty && user.Role != RoleOwner && user.Role != RoleAdmin {
		return Decision{Reason: ReasonOwnerRoleRequired}
	}
	if !user.EmailVerified {
		return Decision{Reason: ReasonEmailUnverified}
	}
	if !user.FullyVerified || user.IDStatus != IDStatusVerified {
		return Decision{Reason: ReasonNotFullyVerified}
	}
	return Decision{Allowed: true}
}

// CompositeVerified folds the three verification channels into the derived
// trust flag.
func CompositeVerified(emailVerified, phoneVerified bool, idStatus IDStatus) bool {
	return emailVerified && phoneVerified && idStatus == IDStatusVerified
}
