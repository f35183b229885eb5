// AngelaMos | 2026
// entity.go

package badge

import (
	"time"
)

type Badge struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Slug             string    `db:"slug"`
	Description      string    `db:"description"`
	Icon             string    `db:"icon"`
	Color            string    `db:"color"`
	Category         string    `db:"category"`
	RequirementType  string    `db:"requirement_type"`
	RequirementValue int       `db:"requirement_value"`
	Rarity           string    `db:"rarity"`
	DisplayOrder     int       `db:"display_order"`
	IsActive         bool      `db:"is_active"`
	CreatedAt        time.Time `db:"created_at"`
}

type UserBadge struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	BadgeID          string    `db:"badge_id"`
	EarnedAt         time.Time `db:"earned_at"`
	NotificationSeen bool      `db:"notification_seen"`
}

const (
	ReqAnyCompletion     = "any_completion"
	ReqStreakDays        = "streak_days"
	ReqTotalCompletions  = "total_completions"
	ReqPerfectWeek       = "perfect_week"
	ReqHabitsCreated     = "habits_created"
	ReqEarlyCompletions  = "early_completions"
	ReqLateCompletions   = "late_completions"
	ReqChallengesJoined  = "challenges_joined"
	ReqChallengesCreated = "challenges_created"
)

// Definition is a catalog entry seeded into the badges table at startup.
type Definition struct {
	Name             string
	Slug             string
	Description      string
	Icon             string
	Color            string
	Category         string
	RequirementType  string
	RequirementValue int
	Rarity           string
	DisplayOrder     int
}

// Catalog is the full badge set. Seeding is idempotent on slug; edits here
// update the stored rows on next startup.
var Catalog = []Definition{
	{
		Name: "First Steps", Slug: "first-steps",
		Description: "Complete your first habit",
		Icon:        "👣", Color: "blue", Category: "streak",
		RequirementType: ReqAnyCompletion, RequirementValue: 1,
		Rarity: "common", DisplayOrder: 1,
	},
	{
		Name: "Week Warrior", Slug: "week-warrior",
		Description: "Maintain a 7-day streak on any habit",
		Icon:        "🔥", Color: "orange", Category: "streak",
		RequirementType: ReqStreakDays, RequirementValue: 7,
		Rarity: "common", DisplayOrder: 2,
	},
	{
		Name: "Two Week Triumph", Slug: "two-week-triumph",
		Description: "Maintain a 14-day streak on any habit",
		Icon:        "💪", Color: "red", Category: "streak",
		RequirementType: ReqStreakDays, RequirementValue: 14,
		Rarity: "common", DisplayOrder: 3,
	},
	{
		Name: "Month Master", Slug: "month-master",
		Description: "Maintain a 30-day streak on any habit",
		Icon:        "🏆", Color: "gold", Category: "streak",
		RequirementType: ReqStreakDays, RequirementValue: 30,
		Rarity: "rare", DisplayOrder: 4,
	},
	{
		Name: "Century Club", Slug: "century-club",
		Description: "Achieve a 100-day streak on any habit",
		Icon:        "💯", Color: "purple", Category: "streak",
		RequirementType: ReqStreakDays, RequirementValue: 100,
		Rarity: "epic", DisplayOrder: 5,
	},
	{
		Name: "Habit Hero", Slug: "habit-hero",
		Description: "Maintain a 365-day streak - one full year!",
		Icon:        "🌟", Color: "rainbow", Category: "streak",
		RequirementType: ReqStreakDays, RequirementValue: 365,
		Rarity: "legendary", DisplayOrder: 6,
	},
	{
		Name: "Getting Started", Slug: "getting-started",
		Description: "Complete 10 total habit check-ins",
		Icon:        "✅", Color: "green", Category: "completion",
		RequirementType: ReqTotalCompletions, RequirementValue: 10,
		Rarity: "common", DisplayOrder: 10,
	},
	{
		Name: "Momentum Builder", Slug: "momentum-builder",
		Description: "Complete 50 total habit check-ins",
		Icon:        "⚡", Color: "yellow", Category: "completion",
		RequirementType: ReqTotalCompletions, RequirementValue: 50,
		Rarity: "common", DisplayOrder: 11,
	},
	{
		Name: "Commitment Champion", Slug: "commitment-champion",
		Description: "Complete 100 total habit check-ins",
		Icon:        "🎯", Color: "purple", Category: "completion",
		RequirementType: ReqTotalCompletions, RequirementValue: 100,
		Rarity: "rare", DisplayOrder: 12,
	},
	{
		Name: "Dedication Master", Slug: "dedication-master",
		Description: "Complete 500 total habit check-ins",
		Icon:        "👑", Color: "gold", Category: "completion",
		RequirementType: ReqTotalCompletions, RequirementValue: 500,
		Rarity: "epic", DisplayOrder: 13,
	},
	{
		Name: "Legendary Achiever", Slug: "legendary-achiever",
		Description: "Complete 1000 total habit check-ins",
		Icon:        "🦸", Color: "rainbow", Category: "completion",
		RequirementType: ReqTotalCompletions, RequirementValue: 1000,
		Rarity: "legendary", DisplayOrder: 14,
	},
	{
		Name: "Perfect Week", Slug: "perfect-week",
		Description: "Complete all habits every day for 7 days",
		Icon:        "⭐", Color: "blue", Category: "completion",
		RequirementType: ReqPerfectWeek, RequirementValue: 7,
		Rarity: "rare", DisplayOrder: 20,
	},
	{
		Name: "Flawless Fortnight", Slug: "flawless-fortnight",
		Description: "Complete all habits every day for 14 days",
		Icon:        "🌠", Color: "purple", Category: "completion",
		RequirementType: ReqPerfectWeek, RequirementValue: 14,
		Rarity: "epic", DisplayOrder: 21,
	},
	{
		Name: "Habit Starter", Slug: "habit-starter",
		Description: "Create 3 habits",
		Icon:        "🌱", Color: "green", Category: "habit_count",
		RequirementType: ReqHabitsCreated, RequirementValue: 3,
		Rarity: "common", DisplayOrder: 30,
	},
	{
		Name: "Routine Builder", Slug: "routine-builder",
		Description: "Create 5 habits",
		Icon:        "🏗️", Color: "blue", Category: "habit_count",
		RequirementType: ReqHabitsCreated, RequirementValue: 5,
		Rarity: "common", DisplayOrder: 31,
	},
	{
		Name: "Lifestyle Architect", Slug: "lifestyle-architect",
		Description: "Create 10 habits",
		Icon:        "🏛️", Color: "purple", Category: "habit_count",
		RequirementType: ReqHabitsCreated, RequirementValue: 10,
		Rarity: "rare", DisplayOrder: 32,
	},
	{
		Name: "Early Bird", Slug: "early-bird",
		Description: "Complete 10 habits before 6 AM",
		Icon:        "🌅", Color: "orange", Category: "special",
		RequirementType: ReqEarlyCompletions, RequirementValue: 10,
		Rarity: "rare", DisplayOrder: 40,
	},
	{
		Name: "Night Owl", Slug: "night-owl",
		Description: "Complete 10 habits after 10 PM",
		Icon:        "🦉", Color: "purple", Category: "special",
		RequirementType: ReqLateCompletions, RequirementValue: 10,
		Rarity: "rare", DisplayOrder: 41,
	},
	{
		Name: "Team Player", Slug: "team-player",
		Description: "Join your first challenge",
		Icon:        "🤝", Color: "blue", Category: "challenge",
		RequirementType: ReqChallengesJoined, RequirementValue: 1,
		Rarity: "common", DisplayOrder: 50,
	},
	{
		Name: "Challenge Creator", Slug: "challenge-creator",
		Description: "Create your first challenge",
		Icon:        "🎪", Color: "purple", Category: "challenge",
		RequirementType: ReqChallengesCreated, RequirementValue: 1,
		Rarity: "common", DisplayOrder: 51,
	},
	{
		Name: "Community Leader", Slug: "community-leader",
		Description: "Create 3 challenges",
		Icon:        "🎖️", Color: "gold", Category: "challenge",
		RequirementType: ReqChallengesCreated, RequirementValue: 3,
		Rarity: "rare", DisplayOrder: 52,
	},
}
