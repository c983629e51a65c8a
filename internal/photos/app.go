package photos

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/store"
)

// Default preview dimensions for photo view URLs.
const (
	previewWidth  = 400
	previewHeight = 400
)

// PhotosRepository defines what the app layer needs from the repository.
type PhotosRepository interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GroupPhotos(ctx context.Context, groupID string) ([]models.Photo, error)
	UserPhotos(ctx context.Context, userID string) ([]models.Photo, error)
}

// GroupTodayData defines what the photo flow needs from the groups
// application.
type GroupTodayData interface {
	AddPhotoToToday(ctx context.Context, groupID, userID, photoID string) error
}

// App handles the photo submission flow and view-URL resolution.
type App struct {
	repo   PhotosRepository
	groups GroupTodayData
	files  store.FileStore

	// urlCache avoids re-deriving view URLs for photos already seen during
	// earlier polls.
	urlCacheMu sync.Mutex
	urlCache   map[string]string
}

// NewApp creates a new photos App.
func NewApp(repo PhotosRepository, groups GroupTodayData, files store.FileStore) *App {
	return &App{
		repo:     repo,
		groups:   groups,
		files:    files,
		urlCache: make(map[string]string),
	}
}

// SubmitPhoto records the user's daily photo for each listed group: one
// photo document per group, the file uploaded once under the first
// document's id, and each group's todaydata updated to point at it.
func (a *App) SubmitPhoto(ctx context.Context, userID string, groupIDs []string, data []byte) (string, error) {
	if len(groupIDs) == 0 {
		return "", fmt.Errorf("at least one group id is required")
	}

	photoID := ""
	for _, groupID := range groupIDs {
		docID := uuid.New().String()
		if err := a.repo.CreatePhoto(ctx, &models.Photo{
			ID:      docID,
			UserID:  userID,
			GroupID: groupID,
		}); err != nil {
			return "", err
		}

		if photoID == "" {
			photoID = docID
			name := fmt.Sprintf("photo_%s.jpg", docID)
			if err := a.files.UploadFile(ctx, store.BucketPhotos, docID, name, data); err != nil {
				return "", fmt.Errorf("failed to upload photo: %w", err)
			}
		}

		if err := a.groups.AddPhotoToToday(ctx, groupID, userID, photoID); err != nil {
			return "", err
		}
	}

	log.Info().Str("user_id", userID).Str("photo_id", photoID).
		Int("groups", len(groupIDs)).Msg("photo submitted")
	return photoID, nil
}

// PhotoURL resolves the view URL for a photo id, caching the result.
func (a *App) PhotoURL(photoID string) string {
	a.urlCacheMu.Lock()
	defer a.urlCacheMu.Unlock()

	if url, ok := a.urlCache[photoID]; ok {
		return url
	}
	url := a.files.FileViewURL(store.BucketPhotos, photoID, previewWidth, previewHeight)
	a.urlCache[photoID] = url
	return url
}

// TodayPhotos resolves the group's todaydata blob into displayable photos,
// in member order.
func (a *App) TodayPhotos(group *models.Group) []models.Photo {
	photos := make([]models.Photo, 0, len(group.TodayData))
	for _, userID := range group.Submitters() {
		photoID := group.TodayData[userID]
		photos = append(photos, models.Photo{
			ID:      photoID,
			UserID:  userID,
			GroupID: group.ID,
			URL:     a.PhotoURL(photoID),
		})
	}
	return photos
}

// GroupPhotos lists a group's photo documents with resolved URLs.
func (a *App) GroupPhotos(ctx context.Context, groupID string) ([]models.Photo, error) {
	photos, err := a.repo.GroupPhotos(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		photos[i].URL = a.PhotoURL(photos[i].ID)
	}
	return photos, nil
}

// UserPhotos lists a user's photo documents with resolved URLs.
func (a *App) UserPhotos(ctx context.Context, userID string) ([]models.Photo, error) {
	photos, err := a.repo.UserPhotos(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		photos[i].URL = a.PhotoURL(photos[i].ID)
	}
	return photos, nil
}
