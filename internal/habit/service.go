// AngelaMos | 2026
// service.go

package habit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/user"
)

// UserDirectory is the slice of the user service the habit engine needs:
// timezone resolution and the habit limit.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// BadgeChecker runs the award pass inside the completion transaction and
// returns slugs of newly earned badges.
type BadgeChecker interface {
	CheckAndAward(
		ctx context.Context,
		db core.DBTX,
		userID string,
		now time.Time,
	) ([]string, error)
}

// CompletionHook lets the challenge layer recompute participant progress
// whenever a linked habit's completion state changes.
type CompletionHook interface {
	HabitCompletionChanged(
		ctx context.Context,
		db core.DBTX,
		userID, habitID string,
		date time.Time,
	) error
}

type Service struct {
	db     *sqlx.DB
	repo   Repository
	users  UserDirectory
	badges BadgeChecker
	hook   CompletionHook
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	users UserDirectory,
	badges BadgeChecker,
) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		badges: badges,
	}
}

// SetCompletionHook is called during wiring; the challenge service depends on
// habits, so the hook cannot be a constructor argument.
func (s *Service) SetCompletionHook(hook CompletionHook) {
	s.hook = hook
}

func (s *Service) Dashboard(
	ctx context.Context,
	userID string,
) (*DashboardResponse, error) {
	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := owner.LocalDate(time.Now())

	habits, err := s.repo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	resp := &DashboardResponse{
		Habits:      make([]HabitResponse, 0, len(habits)),
		TotalHabits: len(habits),
		HabitLimit:  owner.HabitLimit,
	}

	for i := range habits {
		h := &habits[i]
		resp.Habits = append(resp.Habits, ToHabitResponse(h, today))

		if h.StreakCount > 0 {
			resp.ActiveStreaks++
		}
		if h.LongestStreak > resp.LongestStreak {
			resp.LongestStreak = h.LongestStreak
		}
		if h.CompletedOn(today) {
			resp.CompletedToday++
		}
	}

	return resp, nil
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateHabitRequest,
) (*Habit, error) {
	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= owner.HabitLimit {
		return nil, fmt.Errorf(
			"create habit: limit of %d reached: %w",
			owner.HabitLimit,
			core.ErrForbidden,
		)
	}

	habit := &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Motivation:  req.Motivation,
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	if s.badges != nil {
		//nolint:errcheck // award pass must not fail habit creation
		_, _ = s.badges.CheckAndAward(ctx, s.db, userID, time.Now())
	}

	return habit, nil
}

func (s *Service) Get(
	ctx context.Context,
	userID, habitID string,
) (*Habit, error) {
	return s.getOwned(ctx, s.repo, userID, habitID)
}

func (s *Service) Update(
	ctx context.Context,
	userID, habitID string,
	req UpdateHabitRequest,
) (*Habit, error) {
	habit, err := s.getOwned(ctx, s.repo, userID, habitID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		habit.Name = *req.Name
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.Motivation != nil {
		habit.Motivation = *req.Motivation
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *Service) SetArchived(
	ctx context.Context,
	userID, habitID string,
	archived bool,
) (*Habit, error) {
	habit, err := s.getOwned(ctx, s.repo, userID, habitID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetArchived(ctx, habitID, archived); err != nil {
		return nil, err
	}

	habit.Archived = archived
	return habit, nil
}

func (s *Service) Delete(ctx context.Context, userID, habitID string) error {
	if _, err := s.getOwned(ctx, s.repo, userID, habitID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, habitID)
}

// Complete marks the habit done for the owner's current local date. The
// streak update, log insert, badge pass and challenge fan-out run in one
// transaction with the habit row locked up front.
func (s *Service) Complete(
	ctx context.Context,
	userID, habitID string,
) (*CompleteResponse, error) {
	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	today := owner.LocalDate(now)

	var resp *CompleteResponse

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		habit, err := s.lockOwned(ctx, repo, userID, habitID)
		if err != nil {
			return err
		}

		if !habit.Complete(today) {
			resp = &CompleteResponse{
				Habit:     ToHabitResponse(habit, today),
				Completed: false,
			}
			return nil
		}

		if err := repo.UpdateStreak(ctx, habit); err != nil {
			return err
		}

		log := &CompletionLog{
			ID:            uuid.New().String(),
			HabitID:       habit.ID,
			CompletedDate: today,
		}
		if err := repo.CreateCompletionLog(ctx, log); err != nil {
			return err
		}

		var newBadges []string
		if s.badges != nil {
			newBadges, err = s.badges.CheckAndAward(ctx, tx, userID, now)
			if err != nil {
				return err
			}
		}

		if s.hook != nil {
			if err := s.hook.HabitCompletionChanged(
				ctx, tx, userID, habit.ID, today,
			); err != nil {
				return err
			}
		}

		resp = &CompleteResponse{
			Habit:     ToHabitResponse(habit, today),
			Completed: true,
			NewBadges: newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Undo reverses today's completion. The streak is re-derived from the most
// recent remaining log row; if that row is not yesterday the counter resets
// to zero. Longest streak stays as-is.
func (s *Service) Undo(
	ctx context.Context,
	userID, habitID string,
) (*UndoResponse, error) {
	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := owner.LocalDate(time.Now())

	var resp *UndoResponse

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		habit, err := s.lockOwned(ctx, repo, userID, habitID)
		if err != nil {
			return err
		}

		if !habit.CompletedOn(today) {
			resp = &UndoResponse{
				Habit:  ToHabitResponse(habit, today),
				Undone: false,
			}
			return nil
		}

		if err := repo.DeleteCompletionLog(ctx, habitID, today); err != nil {
			return err
		}

		previous, err := repo.LatestCompletionDate(ctx, habitID)
		if err != nil {
			return err
		}

		habit.Undo(today, previous)

		if err := repo.UpdateStreak(ctx, habit); err != nil {
			return err
		}

		if s.hook != nil {
			if err := s.hook.HabitCompletionChanged(
				ctx, tx, userID, habit.ID, today,
			); err != nil {
				return err
			}
		}

		resp = &UndoResponse{
			Habit:  ToHabitResponse(habit, today),
			Undone: true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// getOwned fetches a habit and hides other users' habits behind not-found.
func (s *Service) getOwned(
	ctx context.Context,
	repo Repository,
	userID, habitID string,
) (*Habit, error) {
	habit, err := repo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, fmt.Errorf("get habit: %w", core.ErrNotFound)
	}

	return habit, nil
}

func (s *Service) lockOwned(
	ctx context.Context,
	repo Repository,
	userID, habitID string,
) (*Habit, error) {
	habit, err := repo.GetByIDForUpdate(ctx, habitID)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, fmt.Errorf("get habit: %w", core.ErrNotFound)
	}

	return habit, nil
}
