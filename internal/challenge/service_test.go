// AngelaMos | 2026
// service_test.go

package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestCollaborativeStatsAggregatesGroupProgress(t *testing.T) {
	today := date(2026, 3, 10)

	participants := []ParticipantRow{
		{Participant: Participant{
			CurrentStreak:    10,
			TotalCompletions: 40,
			LastActivity:     datePtr(2026, 3, 10),
		}},
		{Participant: Participant{
			CurrentStreak:    5,
			TotalCompletions: 20,
			LastActivity:     datePtr(2026, 3, 9),
		}},
		{Participant: Participant{
			CurrentStreak:    0,
			TotalCompletions: 0,
		}},
	}

	stats := collaborativeStats(participants, today)
	require.NotNil(t, stats)

	assert.Equal(t, 15, stats.TotalStreak)
	assert.Equal(t, 60, stats.TotalCompletions)
	assert.Equal(t, 3, stats.TotalParticipants)
	assert.Equal(t, 1, stats.ActiveToday)
	assert.InDelta(t, 5.0, stats.AverageStreak, 0.01)
	assert.InDelta(t, 33.3, stats.ParticipationRate, 0.01)
}

func TestCollaborativeStatsEmptyGroup(t *testing.T) {
	stats := collaborativeStats(nil, date(2026, 3, 10))

	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalParticipants)
	assert.Zero(t, stats.AverageStreak)
	assert.Zero(t, stats.ParticipationRate)
}

func TestInviteExpiry(t *testing.T) {
	now := time.Now()

	fresh := &Invite{ExpiresAt: now.Add(time.Hour)}
	stale := &Invite{ExpiresAt: now.Add(-time.Hour)}

	assert.False(t, fresh.Expired(now))
	assert.True(t, stale.Expired(now))
}

func TestParticipantNameFallsBackToEmail(t *testing.T) {
	named := &ParticipantRow{Name: "Sam", Email: "sam@example.com"}
	unnamed := &ParticipantRow{Email: "sam@example.com"}

	assert.Equal(t, "Sam", participantName(named))
	assert.Equal(t, "sam@example.com", participantName(unnamed))
}
