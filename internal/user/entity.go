// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                     string     `db:"id"`
	Email                  string     `db:"email"`
	PasswordHash           string     `db:"password_hash"`
	Name                   string     `db:"name"`
	Role                   string     `db:"role"`
	Timezone               string     `db:"timezone"`
	TokenVersion           int        `db:"token_version"`
	SubscriptionTier       string     `db:"subscription_tier"`
	SubscriptionStatus     string     `db:"subscription_status"`
	SubscriptionStartDate  *time.Time `db:"subscription_start_date"`
	SubscriptionEndDate    *time.Time `db:"subscription_end_date"`
	LastPaymentDate        *time.Time `db:"last_payment_date"`
	PaymentFailureCount    int        `db:"payment_failure_count"`
	HabitLimit             int        `db:"habit_limit"`
	StripeCustomerID       *string    `db:"stripe_customer_id"`
	StripeSubscriptionID   *string    `db:"stripe_subscription_id"`
	PayPalPayerID          *string    `db:"paypal_payer_id"`
	TiloPayCustomerID      *string    `db:"tilopay_customer_id"`
	EmailRemindersEnabled  bool       `db:"email_reminders_enabled"`
	WeeklyDigestEnabled    bool       `db:"weekly_digest_enabled"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
	DeletedAt              *time.Time `db:"deleted_at"`
	PurgeAfter             *time.Time `db:"purge_after"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPremiumActive reports whether premium features are currently unlocked.
// Lifetime never expires; other paid tiers require an active status and an
// end date still in the future.
func (u *User) IsPremiumActive() bool {
	if u.SubscriptionTier == TierLifetime {
		return true
	}
	if u.SubscriptionTier == TierFree {
		return false
	}
	if u.SubscriptionStatus != SubStatusActive {
		return false
	}
	return u.SubscriptionEndDate != nil &&
		u.SubscriptionEndDate.After(time.Now())
}

// LocalDate resolves now to a calendar date in the user's stored timezone.
// Unknown zones fall back to UTC rather than failing the request.
func (u *User) LocalDate(now time.Time) time.Time {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(
		local.Year(), local.Month(), local.Day(),
		0, 0, 0, 0, time.UTC,
	)
}

// LocalTime resolves now to wall-clock time in the user's stored timezone.
func (u *User) LocalTime(now time.Time) time.Time {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return now.In(loc)
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UnlimitedHabits is the habit_limit written for premium users. Effectively
// no cap while keeping the column NOT NULL.
const UnlimitedHabits = 999999

const (
	TierFree     = "free"
	TierMonthly  = "monthly"
	TierAnnual   = "annual"
	TierLifetime = "lifetime"
)

const (
	SubStatusFree      = "free"
	SubStatusActive    = "active"
	SubStatusCancelled = "cancelled"
	SubStatusExpired   = "expired"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierFree, TierMonthly, TierAnnual, TierLifetime:
		return true
	}
	return false
}

func PaidTier(tier string) bool {
	switch tier {
	case TierMonthly, TierAnnual, TierLifetime:
		return true
	}
	return false
}
