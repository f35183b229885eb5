// AngelaMos | 2026
// dto.go

package period

import (
	"time"
)

type AddCycleRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

type UpdateCycleRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

type DailyLogRequest struct {
	LogDate  string `json:"log_date" validate:"required,datetime=2006-01-02"`
	Flow     string `json:"flow"     validate:"omitempty,oneof=none spotting light medium heavy"`
	Symptoms string `json:"symptoms" validate:"max=500"`
	Mood     string `json:"mood"     validate:"max=100"`
	Notes    string `json:"notes"    validate:"max=1000"`
}

type UpdateSettingsRequest struct {
	TrackingEnabled       *bool `json:"tracking_enabled"`
	AverageCycleLength    *int  `json:"average_cycle_length"    validate:"omitempty,gte=15,lte=60"`
	AveragePeriodDuration *int  `json:"average_period_duration" validate:"omitempty,gte=1,lte=14"`
	ReminderEnabled       *bool `json:"reminder_enabled"`
	ReminderDaysBefore    *int  `json:"reminder_days_before"    validate:"omitempty,gte=1,lte=7"`
	ShowOnDashboard       *bool `json:"show_on_dashboard"`
}

type CycleResponse struct {
	ID          string    `json:"id"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date,omitempty"`
	CycleLength *int      `json:"cycle_length,omitempty"`
	IsPredicted bool      `json:"is_predicted"`
	CreatedAt   time.Time `json:"created_at"`
}

type DailyLogResponse struct {
	ID       string `json:"id"`
	LogDate  string `json:"log_date"`
	Flow     string `json:"flow"`
	Symptoms string `json:"symptoms"`
	Mood     string `json:"mood"`
	Notes    string `json:"notes"`
}

type SettingsResponse struct {
	TrackingEnabled       bool `json:"tracking_enabled"`
	AverageCycleLength    int  `json:"average_cycle_length"`
	AveragePeriodDuration int  `json:"average_period_duration"`
	ReminderEnabled       bool `json:"reminder_enabled"`
	ReminderDaysBefore    int  `json:"reminder_days_before"`
	ShowOnDashboard       bool `json:"show_on_dashboard"`
}

type DashboardResponse struct {
	Phase       *PhaseInfo         `json:"phase,omitempty"`
	PastCycles  []CycleResponse    `json:"past_cycles"`
	Predictions []CycleResponse    `json:"predictions"`
	RecentLogs  []DailyLogResponse `json:"recent_logs"`
	Settings    SettingsResponse   `json:"settings"`
}

const dateLayout = "2006-01-02"

func ToCycleResponse(c *Cycle) CycleResponse {
	resp := CycleResponse{
		ID:          c.ID,
		StartDate:   c.StartDate.Format(dateLayout),
		CycleLength: c.CycleLength,
		IsPredicted: c.IsPredicted,
		CreatedAt:   c.CreatedAt,
	}
	if c.EndDate != nil {
		end := c.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	return resp
}

func ToDailyLogResponse(l *DailyLog) DailyLogResponse {
	return DailyLogResponse{
		ID:       l.ID,
		LogDate:  l.LogDate.Format(dateLayout),
		Flow:     l.Flow,
		Symptoms: l.Symptoms,
		Mood:     l.Mood,
		Notes:    l.Notes,
	}
}

func ToSettingsResponse(s *Settings) SettingsResponse {
	return SettingsResponse{
		TrackingEnabled:       s.TrackingEnabled,
		AverageCycleLength:    s.AverageCycleLength,
		AveragePeriodDuration: s.AveragePeriodDuration,
		ReminderEnabled:       s.ReminderEnabled,
		ReminderDaysBefore:    s.ReminderDaysBefore,
		ShowOnDashboard:       s.ShowOnDashboard,
	}
}
