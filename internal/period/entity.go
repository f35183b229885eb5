// AngelaMos | 2026
// entity.go

package period

import (
	"time"
)

const (
	DefaultCycleLength    = 28
	DefaultPeriodDuration = 5

	PredictionCount = 3
	// Predictions average over at most this many completed cycles.
	PredictionWindow = 6
	// Fewer completed cycles than this falls back to the settings average.
	PredictionMinCycles = 3

	PhaseMenstrual  = "menstrual"
	PhaseFollicular = "follicular"
	PhaseOvulation  = "ovulation"
	PhaseLuteal     = "luteal"
)

type Cycle struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	StartDate   time.Time  `db:"start_date"`
	EndDate     *time.Time `db:"end_date"`
	CycleLength *int       `db:"cycle_length"`
	IsPredicted bool       `db:"is_predicted"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type DailyLog struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	LogDate   time.Time `db:"log_date"`
	Flow      string    `db:"flow"`
	Symptoms  string    `db:"symptoms"`
	Mood      string    `db:"mood"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Settings struct {
	ID                    string    `db:"id"`
	UserID                string    `db:"user_id"`
	TrackingEnabled       bool      `db:"tracking_enabled"`
	AverageCycleLength    int       `db:"average_cycle_length"`
	AveragePeriodDuration int       `db:"average_period_duration"`
	ReminderEnabled       bool      `db:"reminder_enabled"`
	ReminderDaysBefore    int       `db:"reminder_days_before"`
	ShowOnDashboard       bool      `db:"show_on_dashboard"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (s *Settings) cycleLength() int {
	if s == nil || s.AverageCycleLength <= 0 {
		return DefaultCycleLength
	}
	return s.AverageCycleLength
}

func (s *Settings) periodDuration() int {
	if s == nil || s.AveragePeriodDuration <= 0 {
		return DefaultPeriodDuration
	}
	return s.AveragePeriodDuration
}
