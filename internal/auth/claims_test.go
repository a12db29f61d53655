package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimGate_Allows(t *testing.T) {
	raw := map[string]interface{}{
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"data-portal-user", "viewer"},
		},
	}

	gate := ClaimGate{"realm_access.roles": {"data-portal-user"}}
	assert.True(t, gate.Allows(raw))

	gate = ClaimGate{"realm_access.roles": {"admin"}}
	assert.False(t, gate.Allows(raw))

	assert.True(t, ClaimGate{}.Allows(raw))
}

func TestClaimGate_WholeWordMatch(t *testing.T) {
	raw := map[string]interface{}{"group": "data-portal-users-extra"}
	gate := ClaimGate{"group": {"data-portal-users"}}
	assert.False(t, gate.Allows(raw), "substring within a larger word must not match")

	gate = ClaimGate{"group": {"data-portal-users-extra"}}
	assert.True(t, gate.Allows(raw))
}

func TestIsAdmin(t *testing.T) {
	raw := map[string]interface{}{"role": "admin"}
	assert.True(t, IsAdmin(raw, ClaimGate{"role": {"admin"}}))
	assert.False(t, IsAdmin(raw, ClaimGate{"role": {"user"}}))
	assert.False(t, IsAdmin(raw, ClaimGate{}))
}

func FuzzClaimGate_Allows(f *testing.F) {
	f.Add("role", "admin")
	f.Fuzz(func(t *testing.T, key, value string) {
		raw := map[string]interface{}{key: value}
		gate := ClaimGate{key: {value}}
		assert.NotPanics(t, func() {
			gate.Allows(raw)
		})
	})
}
