// AngelaMos | 2026
// entity.go

package challenge

import (
	"time"
)

const (
	TypeCompetitive   = "competitive"
	TypeCollaborative = "collaborative"

	GoalStreak      = "streak"
	GoalCompletions = "completions"

	StatusActive   = "active"
	StatusArchived = "archived"

	VisibilityInviteOnly = "invite_only"

	RoleCreator = "creator"
	RoleMember  = "member"

	ParticipantActive = "active"
	ParticipantLeft   = "left"

	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteExpired  = "expired"

	EmailInviteTTL    = 30 * 24 * time.Hour
	ShareableLinkTTL  = 90 * 24 * time.Hour
	ActivityFeedLimit = 20
)

// Activity feed event types.
const (
	ActivityChallengeCreated = "challenge_created"
	ActivityChallengeUpdated = "challenge_updated"
	ActivityChallengeDeleted = "challenge_deleted"
	ActivityInviteSent       = "invite_sent"
	ActivityUserJoined       = "user_joined"
	ActivityUserLeft         = "user_left"
	ActivityHabitLinked      = "habit_linked"
)

type Challenge struct {
	ID              string     `db:"id"`
	CreatorID       string     `db:"creator_id"`
	Name            string     `db:"name"`
	Description     string     `db:"description"`
	Icon            string     `db:"icon"`
	ChallengeType   string     `db:"challenge_type"`
	GoalType        string     `db:"goal_type"`
	GoalTarget      *int       `db:"goal_target"`
	MaxParticipants *int       `db:"max_participants"`
	Status          string     `db:"status"`
	Visibility      string     `db:"visibility"`
	AllowInvites    bool       `db:"allow_invites"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

type Participant struct {
	ID               string     `db:"id"`
	ChallengeID      string     `db:"challenge_id"`
	UserID           string     `db:"user_id"`
	Role             string     `db:"role"`
	Status           string     `db:"status"`
	CurrentStreak    int        `db:"current_streak"`
	LongestStreak    int        `db:"longest_streak"`
	TotalCompletions int        `db:"total_completions"`
	LastActivity     *time.Time `db:"last_activity"`
	JoinedAt         time.Time  `db:"joined_at"`
	LeftAt           *time.Time `db:"left_at"`
}

type Invite struct {
	ID               string     `db:"id"`
	ChallengeID      string     `db:"challenge_id"`
	InviterID        string     `db:"inviter_id"`
	InviteeEmail     *string    `db:"invitee_email"`
	PersonalMessage  string     `db:"personal_message"`
	Token            string     `db:"token"`
	Status           string     `db:"status"`
	ExpiresAt        time.Time  `db:"expires_at"`
	AcceptedAt       *time.Time `db:"accepted_at"`
	AcceptedByUserID *string    `db:"accepted_by_user_id"`
	CreatedAt        time.Time  `db:"created_at"`
}

func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

type HabitLink struct {
	ID            string     `db:"id"`
	HabitID       string     `db:"habit_id"`
	ChallengeID   string     `db:"challenge_id"`
	ParticipantID string     `db:"participant_id"`
	IsActive      bool       `db:"is_active"`
	LinkedAt      time.Time  `db:"linked_at"`
	UnlinkedAt    *time.Time `db:"unlinked_at"`
}

type Activity struct {
	ID           string    `db:"id"`
	ChallengeID  string    `db:"challenge_id"`
	UserID       string    `db:"user_id"`
	ActivityType string    `db:"activity_type"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
}

// Progress is the recomputed participant aggregate over actively linked
// habits. Zero values when nothing is linked.
type Progress struct {
	CurrentStreak    int        `db:"current_streak"`
	LongestStreak    int        `db:"longest_streak"`
	TotalCompletions int        `db:"total_completions"`
	LastActivity     *time.Time `db:"last_activity"`
}
