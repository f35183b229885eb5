// AngelaMos | 2026
// scheduler_test.go

package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/habitflow/internal/habit"
)

func TestIncompleteHabitNames(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	habits := []habit.Habit{
		{Name: "Read", LastCompleted: &today},
		{Name: "Run", LastCompleted: &yesterday},
		{Name: "Meditate"},
		{Name: "Old habit", Archived: true},
	}

	names := incompleteHabitNames(habits, today)
	assert.Equal(t, []string{"Run", "Meditate"}, names)
}

func TestIncompleteHabitNamesAllDone(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	habits := []habit.Habit{
		{Name: "Read", LastCompleted: &today},
	}

	assert.Empty(t, incompleteHabitNames(habits, today))
}
