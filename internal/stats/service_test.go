// AngelaMos | 2026
// service_test.go

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaySeriesMondayFirstZeroFilled(t *testing.T) {
	labels, values := weekdaySeries([]WeekdayCount{
		{Weekday: 0, Count: 4}, // Sunday
		{Weekday: 1, Count: 7}, // Monday
		{Weekday: 5, Count: 2}, // Friday
	})

	require.Len(t, labels, 7)
	require.Len(t, values, 7)

	assert.Equal(t,
		[]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		labels,
	)
	assert.Equal(t, []int{7, 0, 0, 0, 2, 0, 4}, values)
}

func TestTrendSeriesFillsEveryDay(t *testing.T) {
	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)

	labels, values := trendSeries([]DayCount{
		{Day: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), Count: 3},
		{Day: time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC), Count: 1},
	}, from, to)

	require.Len(t, labels, 5)
	assert.Equal(t, "May 1", labels[0])
	assert.Equal(t, "May 5", labels[4])
	assert.Equal(t, []int{0, 3, 0, 0, 1}, values)
}
