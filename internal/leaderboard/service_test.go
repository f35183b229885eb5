// AngelaMos | 2026
// service_test.go

package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name  string
		rank  int
		total int
		want  int
	}{
		{"first of many", 1, 100, 100},
		{"last of many", 100, 100, 1},
		{"middle", 50, 100, 51},
		{"only user", 1, 1, 100},
		{"no ranked users", 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.rank, tt.total))
		})
	}
}

func TestDisplayNameFallsBackToEmailPrefix(t *testing.T) {
	assert.Equal(t, "Ana", displayName("Ana", "ana@example.com"))
	assert.Equal(t, "ana", displayName("", "ana@example.com"))
	assert.Equal(t, "broken", displayName("", "broken"))
}
