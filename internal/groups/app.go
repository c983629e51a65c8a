package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/models"
)

// GroupsRepository defines what the app layer needs from the repository.
type GroupsRepository interface {
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	ListGroups(ctx context.Context) ([]models.Group, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateMembers(ctx context.Context, id string, members []models.Member) error
	SetTodayData(ctx context.Context, id string, data map[string]string) error
	SetTodayVotes(ctx context.Context, id string, votes map[string]string) error
	SetTodayComments(ctx context.Context, id string, comments map[string]models.CommentEntry) error
	SetActivityActive(ctx context.Context, id string, active bool) error
	SetReleaseResults(ctx context.Context, id string, released bool) error
}

// UserProfiles defines what the app layer needs from the users application:
// keeping each profile's group membership list in step with the group's
// member list.
type UserProfiles interface {
	AddGroup(ctx context.Context, userID, groupID string) error
	RemoveGroup(ctx context.Context, userID, groupID string) error
}

// App handles group business logic.
type App struct {
	repo  GroupsRepository
	users UserProfiles
}

// NewApp creates a new groups App.
func NewApp(repo GroupsRepository, users UserProfiles) *App {
	return &App{
		repo:  repo,
		users: users,
	}
}

// CreateGroup creates a group with the creator as its captain.
func (a *App) CreateGroup(ctx context.Context, name, creatorID, creatorName string) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("group name must not be empty")
	}
	if creatorID == "" {
		return nil, fmt.Errorf("creator id must not be empty")
	}

	group := &models.Group{
		ID:   uuid.New().String(),
		Name: strings.TrimSpace(name),
		Members: []models.Member{{
			UserID: creatorID,
			Name:   creatorName,
			Role:   models.MemberRoleCaptain,
		}},
	}

	created, err := a.repo.CreateGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	if err := a.users.AddGroup(ctx, creatorID, created.ID); err != nil {
		return nil, fmt.Errorf("failed to record group on creator profile: %w", err)
	}

	log.Info().Str("group_id", created.ID).Str("user_id", creatorID).Msg("created group")
	return created, nil
}

// GetGroup retrieves a group by id.
func (a *App) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return a.repo.GetGroup(ctx, id)
}

// GetGroups retrieves several groups by id, in order.
func (a *App) GetGroups(ctx context.Context, ids []string) ([]models.Group, error) {
	groups := make([]models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := a.repo.GetGroup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get group %s: %w", id, err)
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

// ListGroups returns all groups, for discovery.
func (a *App) ListGroups(ctx context.Context) ([]models.Group, error) {
	return a.repo.ListGroups(ctx)
}

// JoinGroup adds the user to the group as a regular member.
func (a *App) JoinGroup(ctx context.Context, groupID, userID, userName string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group.HasMember(userID) {
		return ErrAlreadyMember
	}

	members := append(group.Members, models.Member{
		UserID: userID,
		Name:   userName,
		Role:   models.MemberRoleMember,
	})
	if err := a.repo.UpdateMembers(ctx, groupID, members); err != nil {
		return fmt.Errorf("failed to update members: %w", err)
	}

	if err := a.users.AddGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("failed to record group on user profile: %w", err)
	}

	log.Info().Str("group_id", groupID).Str("user_id", userID).Msg("user joined group")
	return nil
}

// LeaveGroup removes the user from the group. When the last member leaves
// the group is deleted; when the captain leaves, the first remaining member
// is promoted.
func (a *App) LeaveGroup(ctx context.Context, groupID, userID string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	members := make([]models.Member, 0, len(group.Members))
	found := false
	for _, m := range group.Members {
		if m.UserID == userID {
			found = true
			continue
		}
		members = append(members, m)
	}
	if !found {
		return ErrNotMember
	}

	if len(members) == 0 {
		if err := a.repo.DeleteGroup(ctx, groupID); err != nil {
			return fmt.Errorf("failed to delete empty group: %w", err)
		}
		log.Info().Str("group_id", groupID).Msg("deleted group after last member left")
	} else {
		hasCaptain := false
		for _, m := range members {
			if m.Role == models.MemberRoleCaptain {
				hasCaptain = true
				break
			}
		}
		if !hasCaptain {
			members[0].Role = models.MemberRoleCaptain
			log.Info().Str("group_id", groupID).Str("user_id", members[0].UserID).
				Msg("promoted member to captain")
		}
		if err := a.repo.UpdateMembers(ctx, groupID, members); err != nil {
			return fmt.Errorf("failed to update members: %w", err)
		}
	}

	if err := a.users.RemoveGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("failed to remove group from user profile: %w", err)
	}

	log.Info().Str("group_id", groupID).Str("user_id", userID).Msg("user left group")
	return nil
}

// UpdateGroupName renames the group. Captain only.
func (a *App) UpdateGroupName(ctx context.Context, groupID, userID, newName string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	captain := group.Captain()
	if captain == nil || captain.UserID != userID {
		return ErrNotCaptain
	}

	if err := a.repo.UpdateName(ctx, groupID, newName); err != nil {
		return fmt.Errorf("failed to update group name: %w", err)
	}
	return nil
}

// AddPhotoToToday records the user's photo submission in the group's
// todaydata blob. Read-modify-write of the whole field; a concurrent
// submission from another client can be lost to a stale snapshot, which is
// an accepted property of the whole-field update model.
func (a *App) AddPhotoToToday(ctx context.Context, groupID, userID, photoID string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	data := copyStringMap(group.TodayData)
	data[userID] = photoID

	if err := a.repo.SetTodayData(ctx, groupID, data); err != nil {
		return fmt.Errorf("failed to record photo submission: %w", err)
	}
	return nil
}

// SubmitVote records the user's vote for today.
func (a *App) SubmitVote(ctx context.Context, groupID, userID, photoID string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	votes := copyStringMap(group.TodayVotes)
	votes[userID] = photoID

	if err := a.repo.SetTodayVotes(ctx, groupID, votes); err != nil {
		return fmt.Errorf("failed to submit vote: %w", err)
	}

	log.Info().Str("group_id", groupID).Str("user_id", userID).Msg("vote submitted")
	return nil
}

// SubmitCaption records the user's caption for their assigned photo. The
// caption is stored trimmed; a blank caption does not count as a completed
// submission.
func (a *App) SubmitCaption(ctx context.Context, groupID, userID, assignedPhotoID, caption string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	comments := copyComments(group.TodayComments)
	comments[userID] = models.CommentEntry{
		AssignedPhotoID: assignedPhotoID,
		Comment:         strings.TrimSpace(caption),
	}

	if err := a.repo.SetTodayComments(ctx, groupID, comments); err != nil {
		return fmt.Errorf("failed to submit caption: %w", err)
	}

	log.Info().Str("group_id", groupID).Str("user_id", userID).Msg("caption submitted")
	return nil
}

// SaveAssignments persists photo assignments for users who have no comment
// entry yet. Existing entries are never touched: an assignment is immutable
// once a caption is attached.
func (a *App) SaveAssignments(ctx context.Context, groupID string, assignments map[string]string) error {
	group, err := a.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}

	comments := copyComments(group.TodayComments)
	for userID, photoID := range assignments {
		if _, ok := comments[userID]; ok {
			continue
		}
		comments[userID] = models.CommentEntry{AssignedPhotoID: photoID}
	}

	if err := a.repo.SetTodayComments(ctx, groupID, comments); err != nil {
		return fmt.Errorf("failed to save assignments: %w", err)
	}

	log.Info().Str("group_id", groupID).Int("assignments", len(assignments)).
		Msg("saved photo assignments")
	return nil
}

// ActivateActivity flips the group's activity flag on.
func (a *App) ActivateActivity(ctx context.Context, groupID string) error {
	return a.repo.SetActivityActive(ctx, groupID, true)
}

// ReleaseResults flips the group's release flag on.
func (a *App) ReleaseResults(ctx context.Context, groupID string) error {
	return a.repo.SetReleaseResults(ctx, groupID, true)
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyComments(in map[string]models.CommentEntry) map[string]models.CommentEntry {
	out := make(map[string]models.CommentEntry, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
