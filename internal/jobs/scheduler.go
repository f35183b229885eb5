// AngelaMos | 2026
// scheduler.go

// Package jobs runs the recurring maintenance sweeps: daily reminder mail,
// subscription expiry, and purging of soft-deleted accounts. Each job is
// the same domain logic the routes use, driven by a cron spec from config.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carterperez-dev/habitflow/internal/billing"
	"github.com/carterperez-dev/habitflow/internal/config"
	"github.com/carterperez-dev/habitflow/internal/habit"
	"github.com/carterperez-dev/habitflow/internal/mail"
	"github.com/carterperez-dev/habitflow/internal/user"
)

const jobTimeout = 10 * time.Minute

type Scheduler struct {
	cron       *cron.Cron
	cfg        config.JobsConfig
	users      user.Repository
	habits     habit.Repository
	reconciler *billing.Reconciler
	mailer     *mail.Mailer
}

func NewScheduler(
	cfg config.JobsConfig,
	users user.Repository,
	habits habit.Repository,
	reconciler *billing.Reconciler,
	mailer *mail.Mailer,
) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		cfg:        cfg,
		users:      users,
		habits:     habits,
		reconciler: reconciler,
		mailer:     mailer,
	}
}

func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"daily_reminders", s.cfg.ReminderSpec, s.SendReminders},
		{"subscription_expiry", s.cfg.ExpirySpec, s.ExpireSubscriptions},
		{"account_purge", s.cfg.PurgeSpec, s.PurgeAccounts},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		run := job.run
		name := job.name
		_, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			start := time.Now()
			run(ctx)
			slog.Info("job finished",
				"job", name,
				"duration", time.Since(start),
			)
		})
		if err != nil {
			return err
		}
		slog.Info("job scheduled", "job", name, "spec", job.spec)
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// SendReminders mails every opted-in user who still has unfinished habits
// for their local calendar day.
func (s *Scheduler) SendReminders(ctx context.Context) {
	recipients, err := s.users.ListWithRemindersEnabled(ctx)
	if err != nil {
		slog.Error("reminder sweep failed", "error", err)
		return
	}

	now := time.Now()
	sent := 0

	for i := range recipients {
		account := &recipients[i]
		today := account.LocalDate(now)

		habits, err := s.habits.ListByUser(ctx, account.ID, false)
		if err != nil {
			slog.Error("reminder habit lookup failed",
				"user_id", account.ID,
				"error", err,
			)
			continue
		}

		pending := incompleteHabitNames(habits, today)
		if len(pending) == 0 {
			continue
		}

		if s.mailer.SendDailyReminder(
			account.Email, account.Name, pending, today,
		) {
			sent++
		}
	}

	slog.Info("reminder sweep complete",
		"candidates", len(recipients),
		"sent", sent,
	)
}

// ExpireSubscriptions downgrades paid accounts whose end date has passed.
func (s *Scheduler) ExpireSubscriptions(ctx context.Context) {
	count, err := s.reconciler.ExpireOverdue(ctx)
	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
		return
	}

	slog.Info("expiry sweep complete", "downgraded", count)
}

// PurgeAccounts hard-deletes soft-deleted users past their purge date.
// Dependent rows cascade at the database level.
func (s *Scheduler) PurgeAccounts(ctx context.Context) {
	purgeable, err := s.users.ListPurgeable(ctx, time.Now().UTC())
	if err != nil {
		slog.Error("purge sweep failed", "error", err)
		return
	}

	purged := 0
	for i := range purgeable {
		if err := s.users.HardDelete(ctx, purgeable[i].ID); err != nil {
			slog.Error("account purge failed",
				"user_id", purgeable[i].ID,
				"error", err,
			)
			continue
		}
		purged++
	}

	slog.Info("purge sweep complete",
		"candidates", len(purgeable),
		"purged", purged,
	)
}

func incompleteHabitNames(habits []habit.Habit, today time.Time) []string {
	var names []string
	for i := range habits {
		if habits[i].Archived {
			continue
		}
		if habits[i].CompletedOn(today) {
			continue
		}
		names = append(names, habits[i].Name)
	}
	return names
}
