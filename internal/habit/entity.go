// AngelaMos | 2026
// entity.go

package habit

import (
	"time"
)

type Habit struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	Name          string     `db:"name"`
	Description   string     `db:"description"`
	Motivation    string     `db:"motivation"`
	StreakCount   int        `db:"streak_count"`
	LongestStreak int        `db:"longest_streak"`
	LastCompleted *time.Time `db:"last_completed"`
	Archived      bool       `db:"archived"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// CompletionLog is one immutable row per habit per calendar day. The unique
// (habit_id, completed_date) constraint backs completion idempotency.
type CompletionLog struct {
	ID            string    `db:"id"`
	HabitID       string    `db:"habit_id"`
	CompletedDate time.Time `db:"completed_date"`
	CreatedAt     time.Time `db:"created_at"`
}

// Complete applies one day's completion to the streak counters. today must be
// a calendar date in the habit owner's timezone. Returns false when the habit
// is already completed for today; that is a no-op, not an error.
func (h *Habit) Complete(today time.Time) bool {
	today = truncateDate(today)

	if h.LastCompleted != nil && sameDate(*h.LastCompleted, today) {
		return false
	}

	if h.LastCompleted != nil &&
		sameDate(*h.LastCompleted, today.AddDate(0, 0, -1)) {
		h.StreakCount++
	} else {
		h.StreakCount = 1
	}

	if h.StreakCount > h.LongestStreak {
		h.LongestStreak = h.StreakCount
	}

	h.LastCompleted = &today
	return true
}

// Undo reverses today's completion. previous is the most recent remaining
// completion date after today's log row is removed, or nil if none exist.
//
// When previous is not exactly yesterday the streak cannot be re-derived from
// the counters alone, so it drops to zero even if an older unbroken run
// exists in the log. Longest streak is never walked back.
func (h *Habit) Undo(today time.Time, previous *time.Time) bool {
	today = truncateDate(today)

	if h.LastCompleted == nil || !sameDate(*h.LastCompleted, today) {
		return false
	}

	if previous != nil && sameDate(*previous, today.AddDate(0, 0, -1)) {
		if h.StreakCount > 0 {
			h.StreakCount--
		}
		prev := truncateDate(*previous)
		h.LastCompleted = &prev
	} else {
		h.StreakCount = 0
		h.LastCompleted = nil
	}

	return true
}

func (h *Habit) CompletedOn(date time.Time) bool {
	return h.LastCompleted != nil && sameDate(*h.LastCompleted, date)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
