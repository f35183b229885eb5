// AngelaMos | 2026
// service.go

package stats

import (
	"context"
	"time"

	"github.com/carterperez-dev/habitflow/internal/user"
)

const trendDays = 14

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type ChartDataResponse struct {
	HabitNames       []string `json:"habit_names"`
	StreakCounts     []int    `json:"streak_counts"`
	DayLabels        []string `json:"day_labels"`
	CompletionsByDay []int    `json:"completions_by_day"`
	TrendLabels      []string `json:"trend_labels"`
	TrendData        []int    `json:"trend_data"`
	TotalCompletions int      `json:"total_completions"`
}

// dayLabels index 0 matches EXTRACT(DOW) = 0 (Sunday), rotated below so the
// chart reads Monday first.
var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) ChartData(
	ctx context.Context,
	userID string,
) (*ChartDataResponse, error) {
	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := owner.LocalDate(time.Now())

	streaks, err := s.repo.ActiveHabitStreaks(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekdays, err := s.repo.CompletionsByWeekday(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := today.AddDate(0, 0, -(trendDays - 1))
	perDay, err := s.repo.CompletionsPerDay(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.TotalCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &ChartDataResponse{
		HabitNames:       make([]string, 0, len(streaks)),
		StreakCounts:     make([]int, 0, len(streaks)),
		TotalCompletions: total,
	}

	for _, hs := range streaks {
		resp.HabitNames = append(resp.HabitNames, hs.Name)
		resp.StreakCounts = append(resp.StreakCounts, hs.StreakCount)
	}

	resp.DayLabels, resp.CompletionsByDay = weekdaySeries(weekdays)
	resp.TrendLabels, resp.TrendData = trendSeries(perDay, from, today)

	return resp, nil
}

// weekdaySeries produces Monday-first labels with zero-filled counts.
func weekdaySeries(counts []WeekdayCount) ([]string, []int) {
	byDow := make(map[int]int, len(counts))
	for _, c := range counts {
		byDow[c.Weekday] = c.Count
	}

	labels := make([]string, 0, 7)
	values := make([]int, 0, 7)
	for i := 1; i <= 7; i++ {
		dow := i % 7 // Mon(1)..Sat(6), Sun(0) last
		labels = append(labels, weekdayNames[dow])
		values = append(values, byDow[dow])
	}

	return labels, values
}

// trendSeries zero-fills the day range so the chart has one point per day.
func trendSeries(
	counts []DayCount,
	from, to time.Time,
) ([]string, []int) {
	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Day.Format("2006-01-02")] = c.Count
	}

	var labels []string
	var values []int
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		labels = append(labels, d.Format("Jan 2"))
		values = append(values, byDay[key])
	}

	return labels, values
}
