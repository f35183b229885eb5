// AngelaMos | 2026
// prediction.go

package period

import (
	"math"
	"time"
)

type Prediction struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Confidence  string    `json:"confidence"`
	CycleNumber int       `json:"cycle_number"`
}

type PhaseInfo struct {
	Phase           string `json:"phase"`
	Emoji           string `json:"phase_emoji"`
	Color           string `json:"phase_color"`
	CycleDay        int    `json:"cycle_day"`
	DaysUntilPeriod int    `json:"days_until_period"`
	AverageCycle    int    `json:"average_cycle"`
}

// PredictCycles projects the next count cycle starts forward from lastStart.
// The interval is the mean of the supplied completed cycle lengths; with
// fewer than PredictionMinCycles samples the settings average is used and
// confidence drops to low. Otherwise confidence comes from the sample
// standard deviation: under 3 days high, under 5 medium, else low.
func PredictCycles(
	cycleLengths []int,
	lastStart time.Time,
	settings *Settings,
	count int,
) []Prediction {
	var (
		avgLength  float64
		confidence string
	)

	if len(cycleLengths) >= PredictionMinCycles {
		avgLength = mean(cycleLengths)
		if stddev(cycleLengths) < 3 {
			confidence = "high"
		} else if stddev(cycleLengths) < 5 {
			confidence = "medium"
		} else {
			confidence = "low"
		}
	} else {
		avgLength = float64(settings.cycleLength())
		confidence = "low"
	}

	duration := settings.periodDuration()

	predictions := make([]Prediction, 0, count)
	for i := 1; i <= count; i++ {
		start := lastStart.AddDate(0, 0, int(avgLength*float64(i)))
		predictions = append(predictions, Prediction{
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, duration-1),
			Confidence:  confidence,
			CycleNumber: i,
		})
	}

	return predictions
}

// CurrentPhase maps the day offset from the active cycle's start onto the
// hormonal phase: menstrual through the period duration, follicular to the
// cycle midpoint, ovulation to 60% of the cycle, luteal after.
func CurrentPhase(
	cycleStart, today time.Time,
	settings *Settings,
) *PhaseInfo {
	cycleDay := daysBetween(cycleStart, today) + 1
	if cycleDay < 1 {
		return nil
	}

	avgCycle := settings.cycleLength()
	duration := settings.periodDuration()

	info := &PhaseInfo{
		CycleDay:     cycleDay,
		AverageCycle: avgCycle,
	}

	switch {
	case cycleDay <= duration:
		info.Phase = PhaseMenstrual
		info.Emoji = "🩸"
		info.Color = "#ec4899"
	case float64(cycleDay) <= float64(avgCycle)*0.5:
		info.Phase = PhaseFollicular
		info.Emoji = "🌱"
		info.Color = "#10b981"
	case float64(cycleDay) <= float64(avgCycle)*0.6:
		info.Phase = PhaseOvulation
		info.Emoji = "🌸"
		info.Color = "#7c3aed"
	default:
		info.Phase = PhaseLuteal
		info.Emoji = "🌙"
		info.Color = "#f59e0b"
	}

	if avgCycle > cycleDay {
		info.DaysUntilPeriod = avgCycle - cycleDay
	}

	return info
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// stddev is the sample standard deviation, undefined below two values.
func stddev(values []int) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	var sum float64
	for _, v := range values {
		d := float64(v) - m
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(
		from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC,
	)
	toDay := time.Date(
		to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC,
	)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
