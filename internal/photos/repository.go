package photos

import (
	"context"
	"fmt"
	"time"

	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/store"
)

const (
	fieldUserID  = "userid"
	fieldGroupID = "groupid"
)

// Repository implements photo document access.
type Repository struct {
	docs store.DocumentStore
}

// NewRepository creates a new photos repository.
func NewRepository(docs store.DocumentStore) *Repository {
	return &Repository{docs: docs}
}

// CreatePhoto records a photo document. The document id doubles as the
// storage file id.
func (r *Repository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	_, err := r.docs.CreateDocument(ctx, store.CollectionPhotoData, photo.ID, store.Document{
		fieldUserID:  photo.UserID,
		fieldGroupID: photo.GroupID,
	})
	if err != nil {
		return fmt.Errorf("failed to create photo document: %w", err)
	}
	return nil
}

// GroupPhotos lists photo documents belonging to a group.
func (r *Repository) GroupPhotos(ctx context.Context, groupID string) ([]models.Photo, error) {
	docs, err := r.docs.ListDocuments(ctx, store.CollectionPhotoData, store.Equal(fieldGroupID, groupID))
	if err != nil {
		return nil, fmt.Errorf("failed to list group photos: %w", err)
	}
	return docsToPhotos(docs), nil
}

// UserPhotos lists photo documents submitted by a user.
func (r *Repository) UserPhotos(ctx context.Context, userID string) ([]models.Photo, error) {
	docs, err := r.docs.ListDocuments(ctx, store.CollectionPhotoData, store.Equal(fieldUserID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list user photos: %w", err)
	}
	return docsToPhotos(docs), nil
}

func docsToPhotos(docs []store.Document) []models.Photo {
	photos := make([]models.Photo, 0, len(docs))
	for _, doc := range docs {
		createdAt, _ := time.Parse(time.RFC3339, doc.String("$createdAt"))
		photos = append(photos, models.Photo{
			ID:        doc.String("$id"),
			UserID:    doc.String(fieldUserID),
			GroupID:   doc.String(fieldGroupID),
			CreatedAt: createdAt,
		})
	}
	return photos
}
