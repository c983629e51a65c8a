package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/store"
)

// User profile document field names. The groups field is a comma-separated
// list of group ids, decoded to a slice at this boundary.
const (
	fieldName     = "name"
	fieldEmail    = "email"
	fieldUsername = "username"
	fieldGroups   = "groups"
)

// Repository implements user profile document access.
type Repository struct {
	docs store.DocumentStore
}

// NewRepository creates a new users repository.
func NewRepository(docs store.DocumentStore) *Repository {
	return &Repository{docs: docs}
}

// GetUser fetches a user profile. Profile documents use the user id as the
// document id.
func (r *Repository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := r.docs.GetDocument(ctx, store.CollectionUserData, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user data: %w", err)
	}
	return docToUser(userID, doc), nil
}

// CreateUser persists a new user profile.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	doc, err := r.docs.CreateDocument(ctx, store.CollectionUserData, user.ID, store.Document{
		fieldName:     user.Name,
		fieldEmail:    user.Email,
		fieldUsername: user.Username,
		fieldGroups:   encodeGroups(user.Groups),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user data: %w", err)
	}
	return docToUser(user.ID, doc), nil
}

// UpdateGroups replaces the profile's group membership list.
func (r *Repository) UpdateGroups(ctx context.Context, userID string, groupIDs []string) error {
	_, err := r.docs.UpdateDocument(ctx, store.CollectionUserData, userID, store.Document{
		fieldGroups: encodeGroups(groupIDs),
	})
	if err != nil {
		return fmt.Errorf("failed to update user groups: %w", err)
	}
	return nil
}

func docToUser(id string, doc store.Document) *models.User {
	return &models.User{
		ID:       id,
		Name:     doc.String(fieldName),
		Email:    doc.String(fieldEmail),
		Username: doc.String(fieldUsername),
		Groups:   decodeGroups(doc.String(fieldGroups)),
	}
}

func encodeGroups(groupIDs []string) string {
	return strings.Join(groupIDs, ",")
}

func decodeGroups(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
