package password_test

import (
	"testing"

	"github.com/dom/lunch-order-website/internal/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashAll(t *testing.T, h password.Hasher, plaintexts ...string) []string {
	t.Helper()
	hashes := make([]string, len(plaintexts))
	for i, p := range plaintexts {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		hashes[i] = hash
	}
	return hashes
}

func TestBcryptHasher(t *testing.T) {
	h := password.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("lunch2025")
	require.NoError(t, err)
	assert.NotEqual(t, "lunch2025", hash)
	assert.True(t, h.Verify("lunch2025", hash))
	assert.False(t, h.Verify("lunch2026", hash))
	assert.False(t, h.Verify("lunch2025", "not-a-hash"))
}

func TestPolicy_CheckReuse(t *testing.T) {
	h := password.NewBcryptHasher(bcrypt.MinCost)
	hashes := hashAll(t, h, "current1", "previous1", "previous2", "previous3")
	current, previous := hashes[0], hashes[1:]

	tests := []struct {
		name      string
		history   int
		candidate string
		wantReuse bool
	}{
		{name: "disabled allows current", history: 0, candidate: "current1"},
		{name: "count 1 blocks current", history: 1, candidate: "current1", wantReuse: true},
		{name: "count 1 allows previous", history: 1, candidate: "previous1"},
		{name: "count 3 blocks second previous", history: 3, candidate: "previous2", wantReuse: true},
		{name: "count 3 allows third previous", history: 3, candidate: "previous3"},
		{name: "fresh password", history: 5, candidate: "brandnew9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := password.DefaultPolicy()
			policy.HistoryCount = tt.history

			err := policy.CheckReuse(h, tt.candidate, current, previous)
			if !tt.wantReuse {
				assert.NoError(t, err)
				return
			}
			var policyErr *password.PolicyError
			require.ErrorAs(t, err, &policyErr)
			assert.True(t, policyErr.Has(password.ReasonReused))
		})
	}
}

func TestPolicy_RotateHistory(t *testing.T) {
	policy := password.DefaultPolicy()

	policy.HistoryCount = 0
	assert.Empty(t, policy.RotateHistory("h0", []string{"h1", "h2"}))

	policy.HistoryCount = 1
	assert.Empty(t, policy.RotateHistory("h0", []string{"h1"}))

	policy.HistoryCount = 3
	assert.Equal(t, []string{"h0", "h1"}, policy.RotateHistory("h0", []string{"h1", "h2", "h3"}))
	assert.Equal(t, []string{"h0"}, policy.RotateHistory("h0", nil))
}
