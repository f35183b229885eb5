// AngelaMos | 2026
// entity_test.go

package habit

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

func TestCompleteContinuesStreakFromYesterday(t *testing.T) {
	h := &Habit{
		StreakCount:   5,
		LongestStreak: 5,
		LastCompleted: datePtr(2024, time.January, 1),
	}

	ok := h.Complete(date(2024, time.January, 2))

	require.True(t, ok)
	assert.Equal(t, 6, h.StreakCount)
	assert.Equal(t, 6, h.LongestStreak)
	assert.Equal(t, date(2024, time.January, 2), *h.LastCompleted)
}

func TestCompleteResetsStreakAfterGap(t *testing.T) {
	h := &Habit{
		StreakCount:   6,
		LongestStreak: 6,
		LastCompleted: datePtr(2024, time.January, 2),
	}

	ok := h.Complete(date(2024, time.January, 4))

	require.True(t, ok)
	assert.Equal(t, 1, h.StreakCount)
	assert.Equal(t, 6, h.LongestStreak)
	assert.Equal(t, date(2024, time.January, 4), *h.LastCompleted)
}

func TestCompleteFreshHabit(t *testing.T) {
	h := &Habit{}

	ok := h.Complete(date(2024, time.March, 15))

	require.True(t, ok)
	assert.Equal(t, 1, h.StreakCount)
	assert.Equal(t, 1, h.LongestStreak)
	assert.Equal(t, date(2024, time.March, 15), *h.LastCompleted)
}

func TestCompleteSameDayTwiceIsRejected(t *testing.T) {
	h := &Habit{}
	today := date(2024, time.March, 15)

	require.True(t, h.Complete(today))

	streak := h.StreakCount
	longest := h.LongestStreak
	last := *h.LastCompleted

	ok := h.Complete(today)

	assert.False(t, ok)
	assert.Equal(t, streak, h.StreakCount)
	assert.Equal(t, longest, h.LongestStreak)
	assert.Equal(t, last, *h.LastCompleted)
}

func TestCompleteStreakResetWhenLastCompletedNil(t *testing.T) {
	h := &Habit{StreakCount: 0, LongestStreak: 9}

	require.True(t, h.Complete(date(2024, time.June, 1)))

	assert.Equal(t, 1, h.StreakCount)
	assert.Equal(t, 9, h.LongestStreak)
}

func TestLongestStreakNeverDecreases(t *testing.T) {
	h := &Habit{}
	maxObserved := 0

	days := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 2),
		date(2024, time.January, 3),
		date(2024, time.January, 7), // gap resets
		date(2024, time.January, 8),
		date(2024, time.January, 20), // gap resets again
	}

	prevLongest := 0
	for _, d := range days {
		require.True(t, h.Complete(d))
		if h.StreakCount > maxObserved {
			maxObserved = h.StreakCount
		}
		assert.GreaterOrEqual(t, h.LongestStreak, prevLongest)
		prevLongest = h.LongestStreak
	}

	assert.Equal(t, maxObserved, h.LongestStreak)
}

func TestUndoAfterCompleteRestoresPreviousDay(t *testing.T) {
	h := &Habit{
		StreakCount:   3,
		LongestStreak: 3,
		LastCompleted: datePtr(2024, time.April, 9),
	}
	today := date(2024, time.April, 10)

	require.True(t, h.Complete(today))
	require.Equal(t, 4, h.StreakCount)
	require.Equal(t, 4, h.LongestStreak)

	ok := h.Undo(today, datePtr(2024, time.April, 9))

	require.True(t, ok)
	assert.Equal(t, 3, h.StreakCount)
	assert.Equal(t, date(2024, time.April, 9), *h.LastCompleted)
	// the longest streak bump from the undone completion stays
	assert.Equal(t, 4, h.LongestStreak)
}

func TestUndoWithNoRemainingLogsZeroesStreak(t *testing.T) {
	h := &Habit{
		StreakCount:   1,
		LongestStreak: 1,
		LastCompleted: datePtr(2024, time.April, 10),
	}

	ok := h.Undo(date(2024, time.April, 10), nil)

	require.True(t, ok)
	assert.Equal(t, 0, h.StreakCount)
	assert.Nil(t, h.LastCompleted)
	assert.Equal(t, 1, h.LongestStreak)
}

func TestUndoWithOlderGapDiscardsStreakHistory(t *testing.T) {
	// The remaining newest log is two days back. The counter cannot tell
	// whether an unbroken run ended there, so it drops to zero.
	h := &Habit{
		StreakCount:   1,
		LongestStreak: 5,
		LastCompleted: datePtr(2024, time.April, 10),
	}

	ok := h.Undo(date(2024, time.April, 10), datePtr(2024, time.April, 8))

	require.True(t, ok)
	assert.Equal(t, 0, h.StreakCount)
	assert.Nil(t, h.LastCompleted)
	assert.Equal(t, 5, h.LongestStreak)
}

func TestUndoRejectedWhenNotCompletedToday(t *testing.T) {
	h := &Habit{
		StreakCount:   2,
		LongestStreak: 2,
		LastCompleted: datePtr(2024, time.April, 9),
	}

	ok := h.Undo(date(2024, time.April, 10), datePtr(2024, time.April, 9))

	assert.False(t, ok)
	assert.Equal(t, 2, h.StreakCount)
	assert.Equal(t, date(2024, time.April, 9), *h.LastCompleted)
}

func TestUndoRejectedOnFreshHabit(t *testing.T) {
	h := &Habit{}

	assert.False(t, h.Undo(date(2024, time.April, 10), nil))
	assert.Equal(t, 0, h.StreakCount)
	assert.Nil(t, h.LastCompleted)
}
