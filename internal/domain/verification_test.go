package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func verifiedUser(role Role) *User {
	return &User{
		ID:            "u1",
		Role:          role,
		EmailVerified: true,
		PhoneVerified: true,
		IDStatus:      IDStatusVerified,
		FullyVerified: true,
	}
}

func TestCanPerformRuleOrder(t *testing.T) {
	t.Run("anonymous is refused first", func(t *testing.T) {
		decision := CanPerform(nil, ActionApply)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonNotAuthenticated, decision.Reason)
	})

	t.Run("role check outranks verification for posting", func(t *testing.T) {
		renter := &User{ID: "u1", Role: RoleRenter}
		decision := CanPerform(renter, ActionPostProperty)
		assert.Equal(t, ReasonOwnerRoleRequired, decision.Reason)
	})

	t.Run("email is reported before identity", func(t *testing.T) {
		user := &User{ID: "u1", Role: RoleRenter, IDStatus: IDStatusUnverified}
		decision := CanPerform(user, ActionApply)
		assert.Equal(t, ReasonEmailUnverified, decision.Reason)
	})

	t.Run("identity is the final gate", func(t *testing.T) {
		user := &User{
			ID:            "u1",
			Role:          RoleRenter,
			EmailVerified: true,
			PhoneVerified: true,
			IDStatus:      IDStatusPending,
		}
		decision := CanPerform(user, ActionApply)
		assert.Equal(t, ReasonNotFullyVerified, decision.Reason)
	})

	t.Run("fully verified renter may apply and book", func(t *testing.T) {
		user := verifiedUser(RoleRenter)
		assert.True(t, CanPerform(user, ActionApply).Allowed)
		assert.True(t, CanPerform(user, ActionBook).Allowed)
	})

	t.Run("fully verified owner may post", func(t *testing.T) {
		assert.True(t, CanPerform(verifiedUser(RoleOwner), ActionPostProperty).Allowed)
	})

	t.Run("admin may post without owner role", func(t *testing.T) {
		assert.True(t, CanPerform(verifiedUser(RoleAdmin), ActionPostProperty).Allowed)
	})
}

func TestCompositeVerified(t *testing.T) {
	cases := []struct {
		name     string
		email    bool
		phone    bool
		idStatus IDStatus
		want     bool
	}{
		{"all channels pass", true, true, IDStatusVerified, true},
		{"missing email", false, true, IDStatusVerified, false},
		{"missing phone", true, false, IDStatusVerified, false},
		{"id pending", true, true, IDStatusPending, false},
		{"id rejected", true, true, IDStatusRejected, false},
		{"nothing verified", false, false, IDStatusUnverified, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CompositeVerified(tc.email, tc.phone, tc.idStatus))
		})
	}
}

func TestDeactivatedUserIsNeverVerified(t *testing.T) {
	// deactivation force-resets every channel, so the composite rule alone
	// keeps an inactive stale session out of privileged actions
	user := verifiedUser(RoleRenter)
	user.Inactive = true
	user.EmailVerified = false
	user.PhoneVerified = false
	user.IDStatus = IDStatusUnverified
	user.FullyVerified = CompositeVerified(user.EmailVerified, user.PhoneVerified, user.IDStatus)

	decision := CanPerform(user, ActionApply)
	assert.False(t, decision.Allowed)
}
