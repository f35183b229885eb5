// AngelaMos | 2026
// service.go

package period

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/user"
)

const recentLogCount = 7

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	db    *sqlx.DB
	repo  Repository
	users UserDirectory
}

func NewService(db *sqlx.DB, repo Repository, users UserDirectory) *Service {
	return &Service{db: db, repo: repo, users: users}
}

// Dashboard assembles the tracker view: current phase, recent history and
// the next predicted cycles. Stale predictions are regenerated in place.
func (s *Service) Dashboard(
	ctx context.Context,
	userID string,
) (*DashboardResponse, error) {
	settings, err := s.settingsOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !settings.TrackingEnabled {
		return nil, fmt.Errorf(
			"period dashboard: tracking disabled: %w", core.ErrForbidden,
		)
	}

	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := owner.LocalDate(time.Now())

	resp := &DashboardResponse{
		PastCycles:  []CycleResponse{},
		Predictions: []CycleResponse{},
		RecentLogs:  []DailyLogResponse{},
		Settings:    ToSettingsResponse(settings),
	}

	active, err := s.repo.ActiveCycleOn(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if active != nil {
		resp.Phase = CurrentPhase(active.StartDate, today, settings)
	}

	cycles, err := s.repo.ListCycles(ctx, userID)
	if err != nil {
		return nil, err
	}

	var predicted int
	for i := range cycles {
		c := &cycles[i]
		if c.IsPredicted {
			predicted++
			continue
		}
		if len(resp.PastCycles) < PredictionWindow {
			resp.PastCycles = append(resp.PastCycles, ToCycleResponse(c))
		}
	}

	predictions, err := s.refreshPredictions(
		ctx, userID, settings, predicted,
	)
	if err != nil {
		return nil, err
	}
	for i := range predictions {
		resp.Predictions = append(
			resp.Predictions, ToCycleResponse(&predictions[i]),
		)
	}

	logs, err := s.repo.RecentDailyLogs(ctx, userID, recentLogCount)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		resp.RecentLogs = append(resp.RecentLogs, ToDailyLogResponse(&logs[i]))
	}

	return resp, nil
}

// refreshPredictions rebuilds the stored prediction rows when fewer than
// PredictionCount remain.
func (s *Service) refreshPredictions(
	ctx context.Context,
	userID string,
	settings *Settings,
	existing int,
) ([]Cycle, error) {
	if existing >= PredictionCount {
		return s.repo.ListPredictions(ctx, userID)
	}

	last, err := s.repo.LatestActualCycle(ctx, userID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	lengths, err := s.repo.CompletedCycleLengths(
		ctx, userID, PredictionWindow,
	)
	if err != nil {
		return nil, err
	}

	predicted := PredictCycles(
		lengths, last.StartDate, settings, PredictionCount,
	)

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.DeletePredictions(ctx, userID); err != nil {
			return err
		}

		for _, p := range predicted {
			end := p.EndDate
			cycle := &Cycle{
				ID:          uuid.New().String(),
				UserID:      userID,
				StartDate:   p.StartDate,
				EndDate:     &end,
				IsPredicted: true,
			}
			if err := repo.CreateCycle(ctx, cycle); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.ListPredictions(ctx, userID)
}

// AddCycle records a period start (and optional end). The previous cycle's
// length is derived from the gap between the two start dates.
func (s *Service) AddCycle(
	ctx context.Context,
	userID string,
	req AddCycleRequest,
) (*Cycle, error) {
	start, end, err := parseCycleDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	overlap, err := s.repo.OverlappingCycle(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	if overlap != nil {
		return nil, fmt.Errorf(
			"add cycle: overlaps an existing cycle: %w", core.ErrConflict,
		)
	}

	cycle := &Cycle{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		prev, err := repo.PreviousCycleBefore(ctx, userID, start)
		if err != nil {
			return err
		}
		if prev != nil {
			length := daysBetween(prev.StartDate, start)
			if err := repo.SetCycleLength(ctx, prev.ID, length); err != nil {
				return err
			}
		}

		return repo.CreateCycle(ctx, cycle)
	})
	if err != nil {
		return nil, err
	}

	return cycle, nil
}

func (s *Service) UpdateCycle(
	ctx context.Context,
	userID, cycleID string,
	req UpdateCycleRequest,
) (*Cycle, error) {
	cycle, err := s.repo.GetOwnedCycle(ctx, userID, cycleID)
	if err != nil {
		return nil, err
	}

	start, end, err := parseCycleDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	cycle.StartDate = start
	cycle.EndDate = end

	next, err := s.repo.NextCycleAfter(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	if next != nil {
		length := daysBetween(start, next.StartDate)
		cycle.CycleLength = &length
	}

	if err := s.repo.UpdateCycle(ctx, cycle); err != nil {
		return nil, err
	}

	return cycle, nil
}

func (s *Service) DeleteCycle(
	ctx context.Context,
	userID, cycleID string,
) error {
	cycle, err := s.repo.GetOwnedCycle(ctx, userID, cycleID)
	if err != nil {
		return err
	}

	return s.repo.DeleteCycle(ctx, cycle.ID)
}

// CurrentPhase reports the phase for the owner's local date, nil when no
// cycle has been recorded yet.
func (s *Service) CurrentPhase(
	ctx context.Context,
	userID string,
) (*PhaseInfo, error) {
	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := owner.LocalDate(time.Now())

	active, err := s.repo.ActiveCycleOn(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}

	settings, err := s.settingsOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	return CurrentPhase(active.StartDate, today, settings), nil
}

func (s *Service) LogDay(
	ctx context.Context,
	userID string,
	req DailyLogRequest,
) (*DailyLog, error) {
	logDate, err := time.Parse(dateLayout, req.LogDate)
	if err != nil {
		return nil, fmt.Errorf("log day: %w", core.ErrInvalidInput)
	}

	log := &DailyLog{
		ID:       uuid.New().String(),
		UserID:   userID,
		LogDate:  logDate,
		Flow:     req.Flow,
		Symptoms: req.Symptoms,
		Mood:     req.Mood,
		Notes:    req.Notes,
	}

	if err := s.repo.UpsertDailyLog(ctx, log); err != nil {
		return nil, err
	}

	return log, nil
}

func (s *Service) Settings(
	ctx context.Context,
	userID string,
) (*Settings, error) {
	return s.settingsOrDefault(ctx, userID)
}

func (s *Service) UpdateSettings(
	ctx context.Context,
	userID string,
	req UpdateSettingsRequest,
) (*Settings, error) {
	settings, err := s.settingsOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.TrackingEnabled != nil {
		settings.TrackingEnabled = *req.TrackingEnabled
	}
	if req.AverageCycleLength != nil {
		settings.AverageCycleLength = *req.AverageCycleLength
	}
	if req.AveragePeriodDuration != nil {
		settings.AveragePeriodDuration = *req.AveragePeriodDuration
	}
	if req.ReminderEnabled != nil {
		settings.ReminderEnabled = *req.ReminderEnabled
	}
	if req.ReminderDaysBefore != nil {
		settings.ReminderDaysBefore = *req.ReminderDaysBefore
	}
	if req.ShowOnDashboard != nil {
		settings.ShowOnDashboard = *req.ShowOnDashboard
	}

	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// settingsOrDefault lazily creates a settings row with the defaults on
// first access.
func (s *Service) settingsOrDefault(
	ctx context.Context,
	userID string,
) (*Settings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !core.IsNotFound(err) {
		return nil, err
	}

	settings = &Settings{
		ID:                    uuid.New().String(),
		UserID:                userID,
		AverageCycleLength:    DefaultCycleLength,
		AveragePeriodDuration: DefaultPeriodDuration,
		ReminderDaysBefore:    2,
		ShowOnDashboard:       true,
	}
	if err := s.repo.CreateSettings(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

func parseCycleDates(
	startStr, endStr string,
) (time.Time, *time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf(
			"parse start date: %w", core.ErrInvalidInput,
		)
	}

	if endStr == "" {
		return start, nil, nil
	}

	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf(
			"parse end date: %w", core.ErrInvalidInput,
		)
	}
	if end.Before(start) {
		return time.Time{}, nil, fmt.Errorf(
			"end date before start date: %w", core.ErrInvalidInput,
		)
	}

	return start, &end, nil
}
