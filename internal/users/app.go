package users

import (
	"context"
	"fmt"

	"github.com/weekdump/weekdump/internal/models"
)

// UsersRepository defines what the app layer needs from the repository.
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateGroups(ctx context.Context, userID string, groupIDs []string) error
}

// App handles user profile business logic.
type App struct {
	repo UsersRepository
}

// NewApp creates a new users App.
func NewApp(repo UsersRepository) *App {
	return &App{repo: repo}
}

// GetUser retrieves a user profile by id.
func (a *App) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return a.repo.GetUser(ctx, userID)
}

// CreateUser persists a new profile.
func (a *App) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		return nil, fmt.Errorf("user id must not be empty")
	}
	return a.repo.CreateUser(ctx, user)
}

// AddGroup records a group on the user's profile. Adding a group the
// profile already lists is a no-op.
func (a *App) AddGroup(ctx context.Context, userID, groupID string) error {
	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	for _, id := range user.Groups {
		if id == groupID {
			return nil
		}
	}

	if err := a.repo.UpdateGroups(ctx, userID, append(user.Groups, groupID)); err != nil {
		return fmt.Errorf("failed to add group to user: %w", err)
	}
	return nil
}

// RemoveGroup removes a group from the user's profile.
func (a *App) RemoveGroup(ctx context.Context, userID, groupID string) error {
	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	updated := make([]string, 0, len(user.Groups))
	for _, id := range user.Groups {
		if id != groupID {
			updated = append(updated, id)
		}
	}

	if err := a.repo.UpdateGroups(ctx, userID, updated); err != nil {
		return fmt.Errorf("failed to remove group from user: %w", err)
	}
	return nil
}
