// AngelaMos | 2026
// templates.go

package mail

import (
	"fmt"
	"strings"
	"time"
)

func (m *Mailer) SendPaymentSuccess(
	to, name, tier string,
	amount float64,
	currency string,
) bool {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your payment of %.2f %s was successful. You now have the %s "+
			"subscription with unlimited habits.\n\n"+
			"Date: %s\n\n"+
			"Thanks for supporting HabitFlow!\n",
		name, amount, currency, tier,
		time.Now().UTC().Format("January 2, 2006"),
	)
	return m.Send(to, "Payment Successful - HabitFlow", body)
}

func (m *Mailer) SendPaymentFailed(
	to, name string,
	amount float64,
	currency string,
) bool {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We could not process your payment of %.2f %s. Please update "+
			"your payment method to keep your premium features.\n",
		name, amount, currency,
	)
	return m.Send(to, "Payment Failed - HabitFlow", body)
}

func (m *Mailer) SendSubscriptionCancelled(
	to, name string,
	endDate *time.Time,
) bool {
	until := "immediately"
	if endDate != nil {
		until = endDate.Format("January 2, 2006")
	}

	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your subscription has been cancelled. Premium access ends: %s.\n\n"+
			"You can resubscribe any time from your account page.\n",
		name, until,
	)
	return m.Send(to, "Subscription Cancelled - HabitFlow", body)
}

func (m *Mailer) SendSubscriptionExpired(
	to, name string,
	habitsOverLimit int,
) bool {
	var b strings.Builder

	fmt.Fprintf(&b,
		"Hi %s,\n\n"+
			"Your subscription has expired and your account is back on the "+
			"free plan.\n",
		name,
	)
	if habitsOverLimit > 0 {
		fmt.Fprintf(&b,
			"\nYou have %d more active habits than the free plan allows. "+
				"Archive some habits or resubscribe to keep them all.\n",
			habitsOverLimit,
		)
	}

	return m.Send(to, "Subscription Expired - HabitFlow", b.String())
}

func (m *Mailer) SendDailyReminder(
	to, name string,
	habitNames []string,
	day time.Time,
) bool {
	var b strings.Builder

	fmt.Fprintf(&b,
		"Hi %s,\n\nYou still have habits to complete for %s:\n\n",
		name, day.Format("Monday, January 2, 2006"),
	)
	for _, habitName := range habitNames {
		fmt.Fprintf(&b, "  - %s\n", habitName)
	}
	b.WriteString("\nKeep your streaks alive!\n")

	return m.Send(to, "Your Daily Habit Reminder - HabitFlow", b.String())
}
