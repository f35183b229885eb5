// AngelaMos | 2026
// prediction_test.go

package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultSettings() *Settings {
	return &Settings{
		AverageCycleLength:    DefaultCycleLength,
		AveragePeriodDuration: DefaultPeriodDuration,
	}
}

func TestPredictCyclesHighConfidence(t *testing.T) {
	// Stddev of {28, 29, 27} is 1, well under the high threshold.
	predictions := PredictCycles(
		[]int{28, 29, 27},
		date(2026, 1, 1),
		defaultSettings(),
		3,
	)

	require.Len(t, predictions, 3)
	assert.Equal(t, "high", predictions[0].Confidence)
	assert.Equal(t, date(2026, 1, 29), predictions[0].StartDate)
	assert.Equal(t, date(2026, 2, 2), predictions[0].EndDate)
	assert.Equal(t, date(2026, 2, 26), predictions[1].StartDate)
	assert.Equal(t, date(2026, 3, 26), predictions[2].StartDate)
}

func TestPredictCyclesMediumConfidence(t *testing.T) {
	// Stddev of {25, 28, 32} is about 3.5.
	predictions := PredictCycles(
		[]int{25, 28, 32},
		date(2026, 1, 1),
		defaultSettings(),
		1,
	)

	require.Len(t, predictions, 1)
	assert.Equal(t, "medium", predictions[0].Confidence)
}

func TestPredictCyclesLowConfidenceOnScatter(t *testing.T) {
	// Stddev of {21, 28, 38} is above 5.
	predictions := PredictCycles(
		[]int{21, 28, 38},
		date(2026, 1, 1),
		defaultSettings(),
		1,
	)

	require.Len(t, predictions, 1)
	assert.Equal(t, "low", predictions[0].Confidence)
}

func TestPredictCyclesFallsBackToSettings(t *testing.T) {
	settings := &Settings{
		AverageCycleLength:    30,
		AveragePeriodDuration: 4,
	}

	predictions := PredictCycles(
		[]int{28, 29},
		date(2026, 1, 1),
		settings,
		2,
	)

	require.Len(t, predictions, 2)
	assert.Equal(t, "low", predictions[0].Confidence)
	assert.Equal(t, date(2026, 1, 31), predictions[0].StartDate)
	assert.Equal(t, date(2026, 2, 3), predictions[0].EndDate)
	assert.Equal(t, date(2026, 3, 2), predictions[1].StartDate)
}

func TestCurrentPhaseBoundaries(t *testing.T) {
	settings := defaultSettings()
	start := date(2026, 3, 1)

	tests := []struct {
		name     string
		today    time.Time
		phase    string
		cycleDay int
	}{
		{"first day", date(2026, 3, 1), PhaseMenstrual, 1},
		{"last period day", date(2026, 3, 5), PhaseMenstrual, 5},
		{"follicular start", date(2026, 3, 6), PhaseFollicular, 6},
		{"cycle midpoint", date(2026, 3, 14), PhaseFollicular, 14},
		{"ovulation", date(2026, 3, 16), PhaseOvulation, 16},
		{"luteal", date(2026, 3, 20), PhaseLuteal, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := CurrentPhase(start, tt.today, settings)
			require.NotNil(t, info)
			assert.Equal(t, tt.phase, info.Phase)
			assert.Equal(t, tt.cycleDay, info.CycleDay)
		})
	}
}

func TestCurrentPhaseDaysUntilPeriod(t *testing.T) {
	settings := defaultSettings()
	start := date(2026, 3, 1)

	early := CurrentPhase(start, date(2026, 3, 10), settings)
	require.NotNil(t, early)
	assert.Equal(t, 18, early.DaysUntilPeriod)

	overdue := CurrentPhase(start, date(2026, 4, 5), settings)
	require.NotNil(t, overdue)
	assert.Zero(t, overdue.DaysUntilPeriod)
}

func TestCurrentPhaseBeforeCycleStart(t *testing.T) {
	info := CurrentPhase(date(2026, 3, 10), date(2026, 3, 1), defaultSettings())
	assert.Nil(t, info)
}
