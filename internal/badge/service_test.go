// AngelaMos | 2026
// service_test.go

package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsConsistent(t *testing.T) {
	require.Len(t, Catalog, 21)

	slugs := make(map[string]struct{}, len(Catalog))
	orders := make(map[int]struct{}, len(Catalog))

	for _, def := range Catalog {
		_, dup := slugs[def.Slug]
		require.Falsef(t, dup, "duplicate slug %s", def.Slug)
		slugs[def.Slug] = struct{}{}

		_, dup = orders[def.DisplayOrder]
		require.Falsef(t, dup, "duplicate display order %d", def.DisplayOrder)
		orders[def.DisplayOrder] = struct{}{}

		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Icon)
		assert.Positive(t, def.RequirementValue)
	}
}

func TestRequirementMetCounters(t *testing.T) {
	progress := &Progress{
		TotalCompletions:  50,
		MaxStreak:         14,
		HabitsCreated:     5,
		EarlyCompletions:  9,
		LateCompletions:   10,
		ChallengesJoined:  1,
		ChallengesCreated: 0,
	}

	tests := []struct {
		name  string
		rtype string
		value int
		want  bool
	}{
		{"first completion", ReqAnyCompletion, 1, true},
		{"total completions met", ReqTotalCompletions, 50, true},
		{"total completions not met", ReqTotalCompletions, 100, false},
		{"streak met via max", ReqStreakDays, 14, true},
		{"streak above max", ReqStreakDays, 30, false},
		{"habits created", ReqHabitsCreated, 5, true},
		{"early one short", ReqEarlyCompletions, 10, false},
		{"late exactly met", ReqLateCompletions, 10, true},
		{"challenge joined", ReqChallengesJoined, 1, true},
		{"no challenges created", ReqChallengesCreated, 1, false},
		{"unknown type", "unknown", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequirementMet(tt.rtype, tt.value, progress)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequirementMetStreakUsesBestOfCurrentAndLongest(t *testing.T) {
	// MaxStreak is already GREATEST(current, longest) from the snapshot
	// query; a decayed current streak still counts via longest.
	progress := &Progress{MaxStreak: 30}

	assert.True(t, RequirementMet(ReqStreakDays, 30, progress))
	assert.False(t, RequirementMet(ReqStreakDays, 31, progress))
}
