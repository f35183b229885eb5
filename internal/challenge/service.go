// AngelaMos | 2026
// service.go

package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/habit"
	"github.com/carterperez-dev/habitflow/internal/user"
)

// UserDirectory resolves accounts for premium checks, timezones and
// activity descriptions.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// HabitService is the slice of the habit engine needed for linking: habit
// creation honors the owner's limit, Get hides other users' habits.
type HabitService interface {
	Get(ctx context.Context, userID, habitID string) (*habit.Habit, error)
	Create(
		ctx context.Context,
		userID string,
		req habit.CreateHabitRequest,
	) (*habit.Habit, error)
}

type Service struct {
	db          *sqlx.DB
	repo        Repository
	users       UserDirectory
	habits      HabitService
	frontendURL string
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	users UserDirectory,
	habits HabitService,
	frontendURL string,
) *Service {
	return &Service{
		db:          db,
		repo:        repo,
		users:       users,
		habits:      habits,
		frontendURL: frontendURL,
	}
}

func (s *Service) MyChallenges(
	ctx context.Context,
	userID string,
) (*MyChallengesResponse, error) {
	created, err := s.repo.ListCreatedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	joined, err := s.repo.ListJoinedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &MyChallengesResponse{
		Created: make([]ChallengeResponse, 0, len(created)),
		Joined:  make([]ChallengeResponse, 0, len(joined)),
	}
	for i := range created {
		resp.Created = append(resp.Created, ToChallengeResponse(&created[i]))
	}
	for i := range joined {
		resp.Joined = append(resp.Joined, ToChallengeResponse(&joined[i]))
	}

	return resp, nil
}

func (s *Service) Detail(
	ctx context.Context,
	userID, challengeID string,
) (*DetailResponse, error) {
	challenge, err := s.getLive(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	participation, err := s.repo.ActiveParticipant(ctx, challengeID, userID)
	if err != nil && !core.IsNotFound(err) {
		return nil, err
	}
	if participation == nil && challenge.CreatorID != userID {
		return nil, fmt.Errorf("challenge detail: %w", core.ErrForbidden)
	}

	participants, err := s.repo.ListActiveParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	var linkedIDs []string
	if participation != nil {
		linkedIDs, err = s.repo.ActiveLinkedHabitIDs(
			ctx, challengeID, participation.ID,
		)
		if err != nil {
			return nil, err
		}
	}

	activities, err := s.repo.RecentActivity(
		ctx, challengeID, ActivityFeedLimit,
	)
	if err != nil {
		return nil, err
	}

	resp := &DetailResponse{
		Challenge:      ToChallengeResponse(challenge),
		Participants:   toParticipantResponses(participants),
		LinkedHabitIDs: linkedIDs,
		RecentActivity: make([]ActivityResponse, 0, len(activities)),
	}
	if resp.LinkedHabitIDs == nil {
		resp.LinkedHabitIDs = []string{}
	}
	for i := range activities {
		a := &activities[i]
		resp.RecentActivity = append(resp.RecentActivity, ActivityResponse{
			ActivityType: a.ActivityType,
			Description:  a.Description,
			CreatedAt:    a.CreatedAt,
		})
	}

	if challenge.ChallengeType == TypeCollaborative {
		viewer, err := s.users.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		today := viewer.LocalDate(time.Now())
		resp.CollaborativeStats = collaborativeStats(participants, today)
	}

	return resp, nil
}

// Create opens a challenge for premium accounts; the creator is enrolled
// as the first participant in the same transaction.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateChallengeRequest,
) (*Challenge, error) {
	creator, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !creator.IsPremiumActive() {
		return nil, fmt.Errorf(
			"create challenge: premium required: %w", core.ErrForbidden,
		)
	}

	challenge := &Challenge{
		ID:              uuid.New().String(),
		CreatorID:       userID,
		Name:            req.Name,
		Description:     req.Description,
		Icon:            req.Icon,
		ChallengeType:   req.ChallengeType,
		GoalType:        req.GoalType,
		GoalTarget:      req.GoalTarget,
		MaxParticipants: req.MaxParticipants,
		Status:          StatusActive,
		Visibility:      VisibilityInviteOnly,
		AllowInvites:    true,
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.CreateChallenge(ctx, challenge); err != nil {
			return err
		}

		participant := &Participant{
			ID:          uuid.New().String(),
			ChallengeID: challenge.ID,
			UserID:      userID,
			Role:        RoleCreator,
			Status:      ParticipantActive,
		}
		if err := repo.CreateParticipant(ctx, participant); err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challenge.ID,
			UserID:       userID,
			ActivityType: ActivityChallengeCreated,
			Description: fmt.Sprintf(
				"%s created the challenge %q", creator.Email, challenge.Name,
			),
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("challenge created",
		"challenge_id", challenge.ID,
		"creator_id", userID,
	)

	return challenge, nil
}

func (s *Service) Update(
	ctx context.Context,
	userID, challengeID string,
	req UpdateChallengeRequest,
) (*Challenge, error) {
	challenge, err := s.getOwnedLive(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		challenge.Name = *req.Name
	}
	if req.Description != nil {
		challenge.Description = *req.Description
	}
	if req.Icon != nil {
		challenge.Icon = *req.Icon
	}
	if req.ChallengeType != nil {
		challenge.ChallengeType = *req.ChallengeType
	}
	if req.GoalType != nil {
		challenge.GoalType = *req.GoalType
	}
	if req.GoalTarget != nil {
		challenge.GoalTarget = req.GoalTarget
	}
	if req.MaxParticipants != nil {
		challenge.MaxParticipants = req.MaxParticipants
	}

	actor, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.UpdateChallenge(ctx, challenge); err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challenge.ID,
			UserID:       userID,
			ActivityType: ActivityChallengeUpdated,
			Description: fmt.Sprintf(
				"%s updated the challenge settings", actor.Email,
			),
		})
	})
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

func (s *Service) Delete(ctx context.Context, userID, challengeID string) error {
	challenge, err := s.getOwnedLive(ctx, userID, challengeID)
	if err != nil {
		return err
	}

	actor, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.SoftDeleteChallenge(ctx, challenge.ID); err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challenge.ID,
			UserID:       userID,
			ActivityType: ActivityChallengeDeleted,
			Description: fmt.Sprintf(
				"%s deleted the challenge", actor.Email,
			),
		})
	})
	if err != nil {
		return err
	}

	slog.Info("challenge deleted",
		"challenge_id", challengeID,
		"creator_id", userID,
	)

	return nil
}

// Invite sends an email invite. Pending unexpired invites to the same
// address are not duplicated.
func (s *Service) Invite(
	ctx context.Context,
	userID, challengeID string,
	req InviteRequest,
) (*InviteResponse, error) {
	challenge, err := s.getLive(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.AllowInvites {
		return nil, fmt.Errorf(
			"invite: invitations disabled: %w", core.ErrForbidden,
		)
	}

	if _, err := s.repo.ActiveParticipant(ctx, challengeID, userID); err != nil {
		if core.IsNotFound(err) {
			return nil, fmt.Errorf(
				"invite: not a participant: %w", core.ErrForbidden,
			)
		}
		return nil, err
	}

	now := time.Now()

	existing, err := s.repo.PendingEmailInvite(ctx, challengeID, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Expired(now) {
		return nil, fmt.Errorf(
			"invite: already pending for %s: %w", req.Email, core.ErrConflict,
		)
	}

	token, err := core.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}

	inviter, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	invite := &Invite{
		ID:              uuid.New().String(),
		ChallengeID:     challengeID,
		InviterID:       userID,
		InviteeEmail:    &req.Email,
		PersonalMessage: req.Message,
		Token:           token,
		Status:          InvitePending,
		ExpiresAt:       now.Add(EmailInviteTTL),
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.CreateInvite(ctx, invite); err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challengeID,
			UserID:       userID,
			ActivityType: ActivityInviteSent,
			Description: fmt.Sprintf(
				"%s invited %s", inviter.Email, req.Email,
			),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.toInviteResponse(invite), nil
}

// ShareableLink returns the current unexpired shareable link, minting one
// with the longer expiry when none exists.
func (s *Service) ShareableLink(
	ctx context.Context,
	userID, challengeID string,
) (*InviteResponse, error) {
	challenge, err := s.getLive(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.AllowInvites {
		return nil, fmt.Errorf(
			"shareable link: invitations disabled: %w", core.ErrForbidden,
		)
	}

	if _, err := s.repo.ActiveParticipant(ctx, challengeID, userID); err != nil {
		if core.IsNotFound(err) {
			return nil, fmt.Errorf(
				"shareable link: not a participant: %w", core.ErrForbidden,
			)
		}
		return nil, err
	}

	now := time.Now()

	existing, err := s.repo.PendingShareableLink(ctx, challengeID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.toInviteResponse(existing), nil
	}

	token, err := core.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}

	invite := &Invite{
		ID:          uuid.New().String(),
		ChallengeID: challengeID,
		InviterID:   userID,
		Token:       token,
		Status:      InvitePending,
		ExpiresAt:   now.Add(ShareableLinkTTL),
	}

	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}

	return s.toInviteResponse(invite), nil
}

// AcceptInvite joins the challenge behind the token, reactivating a prior
// participation when the user had left.
func (s *Service) AcceptInvite(
	ctx context.Context,
	userID, token string,
) (*AcceptInviteResponse, error) {
	invite, err := s.repo.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if invite.Expired(now) {
		if invite.Status == InvitePending {
			//nolint:errcheck // lazy expiry marking is best effort
			_ = s.repo.MarkInviteExpired(ctx, invite.ID)
		}
		return nil, fmt.Errorf("accept invite: %w", core.ErrTokenExpired)
	}

	if invite.Status == InviteAccepted && invite.InviteeEmail != nil {
		return nil, fmt.Errorf(
			"accept invite: already used: %w", core.ErrConflict,
		)
	}

	challenge, err := s.getLive(ctx, invite.ChallengeID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetParticipant(ctx, challenge.ID, userID)
	if err != nil && !core.IsNotFound(err) {
		return nil, err
	}

	if existing != nil && existing.Status == ParticipantActive {
		return nil, fmt.Errorf(
			"accept invite: already a member: %w", core.ErrConflict,
		)
	}

	if challenge.MaxParticipants != nil {
		count, err := s.repo.CountActiveParticipants(ctx, challenge.ID)
		if err != nil {
			return nil, err
		}
		if count >= *challenge.MaxParticipants {
			return nil, fmt.Errorf(
				"accept invite: challenge full: %w", core.ErrForbidden,
			)
		}
	}

	joiner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rejoined := existing != nil

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if rejoined {
			if err := repo.Reactivate(ctx, existing.ID); err != nil {
				return err
			}
		} else {
			participant := &Participant{
				ID:          uuid.New().String(),
				ChallengeID: challenge.ID,
				UserID:      userID,
				Role:        RoleMember,
				Status:      ParticipantActive,
			}
			if err := repo.CreateParticipant(ctx, participant); err != nil {
				return err
			}
		}

		err := repo.MarkInviteAccepted(ctx, invite.ID, userID, now)
		if err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challenge.ID,
			UserID:       userID,
			ActivityType: ActivityUserJoined,
			Description: fmt.Sprintf(
				"%s joined the challenge", joiner.Email,
			),
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("challenge joined",
		"challenge_id", challenge.ID,
		"user_id", userID,
		"rejoined", rejoined,
	)

	return &AcceptInviteResponse{
		Challenge: ToChallengeResponse(challenge),
		Rejoined:  rejoined,
	}, nil
}

// LinkHabit attaches one of the caller's habits to the challenge, creating
// a fresh habit first when no habit ID is given.
func (s *Service) LinkHabit(
	ctx context.Context,
	userID, challengeID string,
	req LinkHabitRequest,
) (*habit.Habit, error) {
	challenge, err := s.getLive(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	participation, err := s.repo.ActiveParticipant(ctx, challengeID, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, fmt.Errorf(
				"link habit: join the challenge first: %w", core.ErrForbidden,
			)
		}
		return nil, err
	}

	var target *habit.Habit
	if req.HabitID == "" {
		if req.NewHabitName == "" {
			return nil, fmt.Errorf(
				"link habit: habit_id or new_habit_name required: %w",
				core.ErrInvalidInput,
			)
		}
		target, err = s.habits.Create(ctx, userID, habit.CreateHabitRequest{
			Name: req.NewHabitName,
			Description: fmt.Sprintf(
				"Tracking for challenge: %s", challenge.Name,
			),
		})
	} else {
		target, err = s.habits.Get(ctx, userID, req.HabitID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.ActiveLink(
		ctx, challengeID, participation.ID, target.ID,
	); err == nil {
		return nil, fmt.Errorf(
			"link habit: already linked: %w", core.ErrConflict,
		)
	} else if !core.IsNotFound(err) {
		return nil, err
	}

	actor, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		link := &HabitLink{
			ID:            uuid.New().String(),
			HabitID:       target.ID,
			ChallengeID:   challengeID,
			ParticipantID: participation.ID,
			IsActive:      true,
		}
		if err := repo.CreateLink(ctx, link); err != nil {
			return err
		}

		if err := s.refreshParticipant(ctx, repo, participation.ID); err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challengeID,
			UserID:       userID,
			ActivityType: ActivityHabitLinked,
			Description: fmt.Sprintf(
				"%s linked habit %q", actor.Email, target.Name,
			),
		})
	})
	if err != nil {
		return nil, err
	}

	return target, nil
}

func (s *Service) UnlinkHabit(
	ctx context.Context,
	userID, challengeID, habitID string,
) error {
	if _, err := s.getLive(ctx, challengeID); err != nil {
		return err
	}

	participation, err := s.repo.ActiveParticipant(ctx, challengeID, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return fmt.Errorf(
				"unlink habit: not a participant: %w", core.ErrForbidden,
			)
		}
		return err
	}

	link, err := s.repo.ActiveLink(ctx, challengeID, participation.ID, habitID)
	if err != nil {
		return err
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.DeactivateLink(ctx, link.ID, time.Now()); err != nil {
			return err
		}

		return s.refreshParticipant(ctx, repo, participation.ID)
	})
}

// Leave drops the caller out of the challenge and unlinks their habits.
// Creators cannot leave; they delete the challenge instead.
func (s *Service) Leave(ctx context.Context, userID, challengeID string) error {
	if _, err := s.getLive(ctx, challengeID); err != nil {
		return err
	}

	participation, err := s.repo.ActiveParticipant(ctx, challengeID, userID)
	if err != nil {
		return err
	}

	if participation.Role == RoleCreator {
		return fmt.Errorf(
			"leave challenge: creators cannot leave: %w", core.ErrForbidden,
		)
	}

	leaver, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.MarkLeft(ctx, participation.ID, now); err != nil {
			return err
		}

		err := repo.DeactivateParticipantLinks(ctx, participation.ID, now)
		if err != nil {
			return err
		}

		return repo.LogActivity(ctx, &Activity{
			ID:           uuid.New().String(),
			ChallengeID:  challengeID,
			UserID:       userID,
			ActivityType: ActivityUserLeft,
			Description: fmt.Sprintf(
				"%s left the challenge", leaver.Email,
			),
		})
	})
}

func (s *Service) Leaderboard(
	ctx context.Context,
	userID, challengeID string,
) (*LeaderboardResponse, error) {
	challenge, err := s.getLive(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	participation, err := s.repo.ActiveParticipant(ctx, challengeID, userID)
	if err != nil && !core.IsNotFound(err) {
		return nil, err
	}
	if participation == nil && challenge.CreatorID != userID {
		return nil, fmt.Errorf(
			"challenge leaderboard: %w", core.ErrForbidden,
		)
	}

	participants, err := s.repo.ListActiveParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	resp := &LeaderboardResponse{
		ChallengeID:   challengeID,
		ChallengeType: challenge.ChallengeType,
		Leaderboard:   make([]LeaderboardEntryResponse, 0, len(participants)),
	}
	for i := range participants {
		p := &participants[i]
		resp.Leaderboard = append(resp.Leaderboard, LeaderboardEntryResponse{
			Rank:             i + 1,
			UserID:           p.UserID,
			Name:             participantName(p),
			CurrentStreak:    p.CurrentStreak,
			LongestStreak:    p.LongestStreak,
			TotalCompletions: p.TotalCompletions,
			LastActivity:     p.LastActivity,
		})
	}

	return resp, nil
}

// HabitCompletionChanged fans a completion (or undo) out to every active
// link on the habit, recomputing the owning participants' cached progress.
// Runs inside the habit completion transaction.
func (s *Service) HabitCompletionChanged(
	ctx context.Context,
	db core.DBTX,
	userID, habitID string,
	date time.Time,
) error {
	repo := NewRepository(db)

	links, err := repo.ActiveLinksForHabit(ctx, habitID)
	if err != nil {
		return err
	}

	for i := range links {
		err := s.refreshParticipant(ctx, repo, links[i].ParticipantID)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) refreshParticipant(
	ctx context.Context,
	repo Repository,
	participantID string,
) error {
	progress, err := repo.RecomputeProgress(ctx, participantID)
	if err != nil {
		return err
	}

	return repo.UpdateProgress(ctx, participantID, progress)
}

// getLive hides soft-deleted challenges behind not-found.
func (s *Service) getLive(
	ctx context.Context,
	challengeID string,
) (*Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if challenge.DeletedAt != nil {
		return nil, fmt.Errorf("get challenge: %w", core.ErrNotFound)
	}

	return challenge, nil
}

func (s *Service) getOwnedLive(
	ctx context.Context,
	userID, challengeID string,
) (*Challenge, error) {
	challenge, err := s.getLive(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if challenge.CreatorID != userID {
		return nil, fmt.Errorf(
			"challenge: creator only: %w", core.ErrForbidden,
		)
	}

	return challenge, nil
}

func (s *Service) toInviteResponse(inv *Invite) *InviteResponse {
	return &InviteResponse{
		Token:     inv.Token,
		InviteURL: fmt.Sprintf("%s/challenges/invite/%s", s.frontendURL, inv.Token),
		ExpiresAt: inv.ExpiresAt,
	}
}

func toParticipantResponses(rows []ParticipantRow) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(rows))
	for i := range rows {
		p := &rows[i]
		out = append(out, ParticipantResponse{
			UserID:           p.UserID,
			Name:             participantName(p),
			Role:             p.Role,
			CurrentStreak:    p.CurrentStreak,
			LongestStreak:    p.LongestStreak,
			TotalCompletions: p.TotalCompletions,
			LastActivity:     p.LastActivity,
		})
	}
	return out
}

func participantName(p *ParticipantRow) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// collaborativeStats sums group progress; participation rate is the share
// of participants whose last activity is the viewer's current date.
func collaborativeStats(
	participants []ParticipantRow,
	today time.Time,
) *CollaborativeStats {
	stats := &CollaborativeStats{
		TotalParticipants: len(participants),
	}
	if len(participants) == 0 {
		return stats
	}

	for i := range participants {
		p := &participants[i]
		stats.TotalStreak += p.CurrentStreak
		stats.TotalCompletions += p.TotalCompletions
		if p.LastActivity != nil && sameDate(*p.LastActivity, today) {
			stats.ActiveToday++
		}
	}

	n := float64(len(participants))
	stats.AverageStreak = math.Round(float64(stats.TotalStreak)/n*10) / 10
	stats.ParticipationRate = math.Round(float64(stats.ActiveToday)/n*1000) / 10

	return stats
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
