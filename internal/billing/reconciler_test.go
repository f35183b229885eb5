// AngelaMos | 2026
// reconciler_test.go

package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/habitflow/internal/user"
)

func TestTierEndDate(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("monthly adds 30 days", func(t *testing.T) {
		end := tierEndDate(user.TierMonthly, start)
		require.NotNil(t, end)
		assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), *end)
	})

	t.Run("annual adds 365 days", func(t *testing.T) {
		end := tierEndDate(user.TierAnnual, start)
		require.NotNil(t, end)
		assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), *end)
	})

	t.Run("lifetime never ends", func(t *testing.T) {
		assert.Nil(t, tierEndDate(user.TierLifetime, start))
	})
}

func TestSplitReference(t *testing.T) {
	tests := []struct {
		ref      string
		userID   string
		tier     string
		expectOK bool
	}{
		{"u-123:monthly", "u-123", "monthly", true},
		{"u-123:annual:1709280000", "u-123", "annual", true},
		{"u-123", "", "", false},
		{":monthly", "", "", false},
		{"u-123:", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		userID, tier, ok := splitReference(tt.ref)
		assert.Equal(t, tt.expectOK, ok, "ref %q", tt.ref)
		assert.Equal(t, tt.userID, userID, "ref %q", tt.ref)
		assert.Equal(t, tt.tier, tier, "ref %q", tt.ref)
	}
}

func TestParseAmountCents(t *testing.T) {
	assert.Equal(t, int64(999), parseAmountCents("9.99"))
	assert.Equal(t, int64(500), parseAmountCents("5"))
	assert.Equal(t, int64(9950), parseAmountCents("99.50"))
	assert.Equal(t, int64(0), parseAmountCents("not-a-number"))
	assert.Equal(t, int64(0), parseAmountCents(""))
}
