// AngelaMos | 2026
// repository.go

package challenge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	CreateChallenge(ctx context.Context, c *Challenge) error
	GetChallenge(ctx context.Context, id string) (*Challenge, error)
	UpdateChallenge(ctx context.Context, c *Challenge) error
	SoftDeleteChallenge(ctx context.Context, id string) error
	ListCreatedBy(ctx context.Context, userID string) ([]Challenge, error)
	ListJoinedBy(ctx context.Context, userID string) ([]Challenge, error)

	CreateParticipant(ctx context.Context, p *Participant) error
	GetParticipant(
		ctx context.Context,
		challengeID, userID string,
	) (*Participant, error)
	ActiveParticipant(
		ctx context.Context,
		challengeID, userID string,
	) (*Participant, error)
	ListActiveParticipants(
		ctx context.Context,
		challengeID string,
	) ([]ParticipantRow, error)
	CountActiveParticipants(
		ctx context.Context,
		challengeID string,
	) (int, error)
	Reactivate(ctx context.Context, participantID string) error
	MarkLeft(ctx context.Context, participantID string, leftAt time.Time) error
	UpdateProgress(
		ctx context.Context,
		participantID string,
		progress *Progress,
	) error
	RecomputeProgress(
		ctx context.Context,
		participantID string,
	) (*Progress, error)

	CreateInvite(ctx context.Context, inv *Invite) error
	GetInviteByToken(ctx context.Context, token string) (*Invite, error)
	PendingEmailInvite(
		ctx context.Context,
		challengeID, email string,
	) (*Invite, error)
	PendingShareableLink(
		ctx context.Context,
		challengeID string,
		now time.Time,
	) (*Invite, error)
	MarkInviteExpired(ctx context.Context, inviteID string) error
	MarkInviteAccepted(
		ctx context.Context,
		inviteID, userID string,
		at time.Time,
	) error

	CreateLink(ctx context.Context, link *HabitLink) error
	ActiveLink(
		ctx context.Context,
		challengeID, participantID, habitID string,
	) (*HabitLink, error)
	ActiveLinkedHabitIDs(
		ctx context.Context,
		challengeID, participantID string,
	) ([]string, error)
	ActiveLinksForHabit(
		ctx context.Context,
		habitID string,
	) ([]HabitLink, error)
	DeactivateLink(
		ctx context.Context,
		linkID string,
		unlinkedAt time.Time,
	) error
	DeactivateParticipantLinks(
		ctx context.Context,
		participantID string,
		unlinkedAt time.Time,
	) error

	LogActivity(ctx context.Context, a *Activity) error
	RecentActivity(
		ctx context.Context,
		challengeID string,
		limit int,
	) ([]Activity, error)
}

// ParticipantRow joins the participant with the user's display fields for
// leaderboards and detail pages.
type ParticipantRow struct {
	Participant
	Email string `db:"email"`
	Name  string `db:"user_name"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const challengeColumns = `
	id, creator_id, name, description, icon, challenge_type, goal_type,
	goal_target, max_participants, status, visibility, allow_invites,
	created_at, updated_at, deleted_at`

func (r *repository) CreateChallenge(ctx context.Context, c *Challenge) error {
	query := `
		INSERT INTO challenges (
			id, creator_id, name, description, icon, challenge_type,
			goal_type, goal_target, max_participants, status, visibility,
			allow_invites
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		c.ID, c.CreatorID, c.Name, c.Description, c.Icon, c.ChallengeType,
		c.GoalType, c.GoalTarget, c.MaxParticipants, c.Status, c.Visibility,
		c.AllowInvites,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	return nil
}

func (r *repository) GetChallenge(
	ctx context.Context,
	id string,
) (*Challenge, error) {
	query := `SELECT` + challengeColumns + `FROM challenges WHERE id = $1`

	var c Challenge
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get challenge: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	return &c, nil
}

func (r *repository) UpdateChallenge(ctx context.Context, c *Challenge) error {
	query := `
		UPDATE challenges
		SET name = $2, description = $3, icon = $4, challenge_type = $5,
		    goal_type = $6, goal_target = $7, max_participants = $8,
		    allow_invites = $9, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(
		ctx, query,
		c.ID, c.Name, c.Description, c.Icon, c.ChallengeType,
		c.GoalType, c.GoalTarget, c.MaxParticipants, c.AllowInvites,
	)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update challenge: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SoftDeleteChallenge(ctx context.Context, id string) error {
	query := `
		UPDATE challenges
		SET deleted_at = NOW(), status = 'archived', updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete challenge: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListCreatedBy(
	ctx context.Context,
	userID string,
) ([]Challenge, error) {
	query := `
		SELECT` + challengeColumns + `
		FROM challenges
		WHERE creator_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	var challenges []Challenge
	if err := r.db.SelectContext(ctx, &challenges, query, userID); err != nil {
		return nil, fmt.Errorf("list created challenges: %w", err)
	}

	return challenges, nil
}

func (r *repository) ListJoinedBy(
	ctx context.Context,
	userID string,
) ([]Challenge, error) {
	query := `
		SELECT c.id, c.creator_id, c.name, c.description, c.icon,
		       c.challenge_type, c.goal_type, c.goal_target,
		       c.max_participants, c.status, c.visibility, c.allow_invites,
		       c.created_at, c.updated_at, c.deleted_at
		FROM challenges c
		JOIN challenge_participants p ON p.challenge_id = c.id
		WHERE p.user_id = $1 AND p.status = 'active'
		  AND c.creator_id != $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at DESC`

	var challenges []Challenge
	if err := r.db.SelectContext(ctx, &challenges, query, userID); err != nil {
		return nil, fmt.Errorf("list joined challenges: %w", err)
	}

	return challenges, nil
}

const participantColumns = `
	id, challenge_id, user_id, role, status, current_streak, longest_streak,
	total_completions, last_activity, joined_at, left_at`

func (r *repository) CreateParticipant(
	ctx context.Context,
	p *Participant,
) error {
	query := `
		INSERT INTO challenge_participants (
			id, challenge_id, user_id, role, status
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING joined_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		p.ID, p.ChallengeID, p.UserID, p.Role, p.Status,
	).Scan(&p.JoinedAt)
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}

	return nil
}

func (r *repository) GetParticipant(
	ctx context.Context,
	challengeID, userID string,
) (*Participant, error) {
	query := `
		SELECT` + participantColumns + `
		FROM challenge_participants
		WHERE challenge_id = $1 AND user_id = $2`

	var p Participant
	err := r.db.GetContext(ctx, &p, query, challengeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get participant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}

	return &p, nil
}

func (r *repository) ActiveParticipant(
	ctx context.Context,
	challengeID, userID string,
) (*Participant, error) {
	query := `
		SELECT` + participantColumns + `
		FROM challenge_participants
		WHERE challenge_id = $1 AND user_id = $2 AND status = 'active'`

	var p Participant
	err := r.db.GetContext(ctx, &p, query, challengeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get participant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}

	return &p, nil
}

func (r *repository) ListActiveParticipants(
	ctx context.Context,
	challengeID string,
) ([]ParticipantRow, error) {
	query := `
		SELECT p.id, p.challenge_id, p.user_id, p.role, p.status,
		       p.current_streak, p.longest_streak, p.total_completions,
		       p.last_activity, p.joined_at, p.left_at,
		       u.email, u.name AS user_name
		FROM challenge_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.challenge_id = $1 AND p.status = 'active'
		ORDER BY p.current_streak DESC, p.total_completions DESC`

	var rows []ParticipantRow
	if err := r.db.SelectContext(ctx, &rows, query, challengeID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return rows, nil
}

func (r *repository) CountActiveParticipants(
	ctx context.Context,
	challengeID string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM challenge_participants
		WHERE challenge_id = $1 AND status = 'active'`

	var count int
	if err := r.db.GetContext(ctx, &count, query, challengeID); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}

	return count, nil
}

func (r *repository) Reactivate(
	ctx context.Context,
	participantID string,
) error {
	query := `
		UPDATE challenge_participants
		SET status = 'active', left_at = NULL
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, participantID); err != nil {
		return fmt.Errorf("reactivate participant: %w", err)
	}

	return nil
}

func (r *repository) MarkLeft(
	ctx context.Context,
	participantID string,
	leftAt time.Time,
) error {
	query := `
		UPDATE challenge_participants
		SET status = 'left', left_at = $2
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, participantID, leftAt); err != nil {
		return fmt.Errorf("mark participant left: %w", err)
	}

	return nil
}

func (r *repository) UpdateProgress(
	ctx context.Context,
	participantID string,
	progress *Progress,
) error {
	query := `
		UPDATE challenge_participants
		SET current_streak = $2, longest_streak = $3,
		    total_completions = $4, last_activity = $5
		WHERE id = $1`

	_, err := r.db.ExecContext(
		ctx, query,
		participantID,
		progress.CurrentStreak,
		progress.LongestStreak,
		progress.TotalCompletions,
		progress.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	return nil
}

// RecomputeProgress aggregates over the participant's actively linked
// habits: best current streak, best longest streak, total completions and
// the most recent completion date.
func (r *repository) RecomputeProgress(
	ctx context.Context,
	participantID string,
) (*Progress, error) {
	query := `
		SELECT
			COALESCE(MAX(h.streak_count), 0) AS current_streak,
			COALESCE(MAX(h.longest_streak), 0) AS longest_streak,
			COALESCE((
				SELECT COUNT(*)
				FROM completion_logs cl
				JOIN habit_challenge_links hl2 ON hl2.habit_id = cl.habit_id
				WHERE hl2.participant_id = $1 AND hl2.is_active = TRUE
			), 0) AS total_completions,
			MAX(h.last_completed) AS last_activity
		FROM habit_challenge_links hl
		JOIN habits h ON h.id = hl.habit_id
		WHERE hl.participant_id = $1 AND hl.is_active = TRUE`

	var progress Progress
	err := r.db.GetContext(ctx, &progress, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("recompute progress: %w", err)
	}

	return &progress, nil
}

const inviteColumns = `
	id, challenge_id, inviter_id, invitee_email, personal_message, token,
	status, expires_at, accepted_at, accepted_by_user_id, created_at`

func (r *repository) CreateInvite(ctx context.Context, inv *Invite) error {
	query := `
		INSERT INTO challenge_invites (
			id, challenge_id, inviter_id, invitee_email, personal_message,
			token, status, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		inv.ID, inv.ChallengeID, inv.InviterID, inv.InviteeEmail,
		inv.PersonalMessage, inv.Token, inv.Status, inv.ExpiresAt,
	).Scan(&inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("create invite: %w", err)
	}

	return nil
}

func (r *repository) GetInviteByToken(
	ctx context.Context,
	token string,
) (*Invite, error) {
	query := `
		SELECT` + inviteColumns + `
		FROM challenge_invites
		WHERE token = $1`

	var inv Invite
	err := r.db.GetContext(ctx, &inv, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invite: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}

	return &inv, nil
}

func (r *repository) PendingEmailInvite(
	ctx context.Context,
	challengeID, email string,
) (*Invite, error) {
	query := `
		SELECT` + inviteColumns + `
		FROM challenge_invites
		WHERE challenge_id = $1 AND invitee_email = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`

	var inv Invite
	err := r.db.GetContext(ctx, &inv, query, challengeID, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending invite: %w", err)
	}

	return &inv, nil
}

func (r *repository) PendingShareableLink(
	ctx context.Context,
	challengeID string,
	now time.Time,
) (*Invite, error) {
	query := `
		SELECT` + inviteColumns + `
		FROM challenge_invites
		WHERE challenge_id = $1 AND invitee_email IS NULL
		  AND status = 'pending' AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1`

	var inv Invite
	err := r.db.GetContext(ctx, &inv, query, challengeID, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending shareable link: %w", err)
	}

	return &inv, nil
}

func (r *repository) MarkInviteExpired(
	ctx context.Context,
	inviteID string,
) error {
	query := `UPDATE challenge_invites SET status = 'expired' WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, inviteID); err != nil {
		return fmt.Errorf("expire invite: %w", err)
	}

	return nil
}

func (r *repository) MarkInviteAccepted(
	ctx context.Context,
	inviteID, userID string,
	at time.Time,
) error {
	query := `
		UPDATE challenge_invites
		SET status = 'accepted', accepted_at = $2, accepted_by_user_id = $3
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, inviteID, at, userID); err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}

	return nil
}

func (r *repository) CreateLink(ctx context.Context, link *HabitLink) error {
	query := `
		INSERT INTO habit_challenge_links (
			id, habit_id, challenge_id, participant_id, is_active
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING linked_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		link.ID, link.HabitID, link.ChallengeID, link.ParticipantID,
		link.IsActive,
	).Scan(&link.LinkedAt)
	if err != nil {
		return fmt.Errorf("create habit link: %w", err)
	}

	return nil
}

const linkColumns = `
	id, habit_id, challenge_id, participant_id, is_active, linked_at,
	unlinked_at`

func (r *repository) ActiveLink(
	ctx context.Context,
	challengeID, participantID, habitID string,
) (*HabitLink, error) {
	query := `
		SELECT` + linkColumns + `
		FROM habit_challenge_links
		WHERE challenge_id = $1 AND participant_id = $2 AND habit_id = $3
		  AND is_active = TRUE`

	var link HabitLink
	err := r.db.GetContext(ctx, &link, query, challengeID, participantID, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get habit link: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit link: %w", err)
	}

	return &link, nil
}

func (r *repository) ActiveLinkedHabitIDs(
	ctx context.Context,
	challengeID, participantID string,
) ([]string, error) {
	query := `
		SELECT habit_id
		FROM habit_challenge_links
		WHERE challenge_id = $1 AND participant_id = $2 AND is_active = TRUE`

	var ids []string
	err := r.db.SelectContext(ctx, &ids, query, challengeID, participantID)
	if err != nil {
		return nil, fmt.Errorf("list linked habits: %w", err)
	}

	return ids, nil
}

func (r *repository) ActiveLinksForHabit(
	ctx context.Context,
	habitID string,
) ([]HabitLink, error) {
	query := `
		SELECT` + linkColumns + `
		FROM habit_challenge_links
		WHERE habit_id = $1 AND is_active = TRUE`

	var links []HabitLink
	if err := r.db.SelectContext(ctx, &links, query, habitID); err != nil {
		return nil, fmt.Errorf("list links for habit: %w", err)
	}

	return links, nil
}

func (r *repository) DeactivateLink(
	ctx context.Context,
	linkID string,
	unlinkedAt time.Time,
) error {
	query := `
		UPDATE habit_challenge_links
		SET is_active = FALSE, unlinked_at = $2
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, linkID, unlinkedAt); err != nil {
		return fmt.Errorf("deactivate link: %w", err)
	}

	return nil
}

func (r *repository) DeactivateParticipantLinks(
	ctx context.Context,
	participantID string,
	unlinkedAt time.Time,
) error {
	query := `
		UPDATE habit_challenge_links
		SET is_active = FALSE, unlinked_at = $2
		WHERE participant_id = $1 AND is_active = TRUE`

	_, err := r.db.ExecContext(ctx, query, participantID, unlinkedAt)
	if err != nil {
		return fmt.Errorf("deactivate participant links: %w", err)
	}

	return nil
}

func (r *repository) LogActivity(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO challenge_activities (
			id, challenge_id, user_id, activity_type, description
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		a.ID, a.ChallengeID, a.UserID, a.ActivityType, a.Description,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}

	return nil
}

func (r *repository) RecentActivity(
	ctx context.Context,
	challengeID string,
	limit int,
) ([]Activity, error) {
	query := `
		SELECT id, challenge_id, user_id, activity_type, description,
		       created_at
		FROM challenge_activities
		WHERE challenge_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var activities []Activity
	err := r.db.SelectContext(ctx, &activities, query, challengeID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	return activities, nil
}
