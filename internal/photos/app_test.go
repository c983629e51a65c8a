package photos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/store"
	"github.com/weekdump/weekdump/internal/store/storetest"
)

// fakeTodayData records todaydata updates per group.
type fakeTodayData struct {
	byGroup map[string][]string
}

func (f *fakeTodayData) AddPhotoToToday(ctx context.Context, groupID, userID, photoID string) error {
	if f.byGroup == nil {
		f.byGroup = map[string][]string{}
	}
	f.byGroup[groupID] = append(f.byGroup[groupID], photoID)
	return nil
}

func newTestApp(t *testing.T) (*App, *storetest.Memory, *storetest.Files, *fakeTodayData) {
	t.Helper()
	mem := storetest.NewMemory()
	files := storetest.NewFiles()
	today := &fakeTodayData{}
	return NewApp(NewRepository(mem), today, files), mem, files, today
}

func TestSubmitPhoto_SingleGroup(t *testing.T) {
	app, mem, files, today := newTestApp(t)

	photoID, err := app.SubmitPhoto(context.Background(), "alice", []string{"g1"}, []byte("jpeg"))
	require.NoError(t, err)
	require.NotEmpty(t, photoID)

	doc, err := mem.GetDocument(context.Background(), store.CollectionPhotoData, photoID)
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.String("userid"))
	assert.Equal(t, "g1", doc.String("groupid"))

	assert.Equal(t, 1, files.UploadCount())
	assert.Equal(t, []string{photoID}, today.byGroup["g1"])
}

func TestSubmitPhoto_UploadsOnceAcrossGroups(t *testing.T) {
	app, mem, files, today := newTestApp(t)

	photoID, err := app.SubmitPhoto(context.Background(), "alice",
		[]string{"g1", "g2", "g3"}, []byte("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, 1, files.UploadCount(), "the file is uploaded once, not per group")

	docs, err := mem.ListDocuments(context.Background(), store.CollectionPhotoData)
	require.NoError(t, err)
	assert.Len(t, docs, 3, "one photo document per group")

	// Every group's todaydata points at the shared file id.
	for _, groupID := range []string{"g1", "g2", "g3"} {
		assert.Equal(t, []string{photoID}, today.byGroup[groupID])
	}
}

func TestSubmitPhoto_NoGroups(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	_, err := app.SubmitPhoto(context.Background(), "alice", nil, []byte("jpeg"))
	assert.Error(t, err)
}

func TestPhotoURL_Cached(t *testing.T) {
	countingFiles := &countingFileStore{Files: storetest.NewFiles()}
	app := NewApp(NewRepository(storetest.NewMemory()), &fakeTodayData{}, countingFiles)

	first := app.PhotoURL("photo-1")
	second := app.PhotoURL("photo-1")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, countingFiles.viewCalls, "repeat lookups are served from the cache")
}

// countingFileStore wraps the file store fake to count FileViewURL calls.
type countingFileStore struct {
	*storetest.Files
	viewCalls int
}

func (c *countingFileStore) FileViewURL(bucket, fileID string, width, height int) string {
	c.viewCalls++
	return c.Files.FileViewURL(bucket, fileID, width, height)
}

func TestTodayPhotos_MemberOrder(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	group := &models.Group{
		ID: "g1",
		Members: []models.Member{
			{UserID: "alice", Role: models.MemberRoleCaptain},
			{UserID: "bob", Role: models.MemberRoleMember},
			{UserID: "carol", Role: models.MemberRoleMember},
		},
		TodayData: map[string]string{
			"carol": "photo-c",
			"alice": "photo-a",
		},
	}

	photos := app.TodayPhotos(group)
	require.Len(t, photos, 2)
	assert.Equal(t, "photo-a", photos[0].ID, "photos follow member order, not map order")
	assert.Equal(t, "photo-c", photos[1].ID)
	assert.NotEmpty(t, photos[0].URL)
}

func TestGroupAndUserPhotos(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	_, err := app.SubmitPhoto(context.Background(), "alice", []string{"g1"}, []byte("a"))
	require.NoError(t, err)
	_, err = app.SubmitPhoto(context.Background(), "bob", []string{"g1"}, []byte("b"))
	require.NoError(t, err)
	_, err = app.SubmitPhoto(context.Background(), "alice", []string{"g2"}, []byte("c"))
	require.NoError(t, err)

	groupPhotos, err := app.GroupPhotos(context.Background(), "g1")
	require.NoError(t, err)
	assert.Len(t, groupPhotos, 2)
	for _, p := range groupPhotos {
		assert.Equal(t, "g1", p.GroupID)
		assert.NotEmpty(t, p.URL)
	}

	userPhotos, err := app.UserPhotos(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, userPhotos, 2)
	for _, p := range userPhotos {
		assert.Equal(t, "alice", p.UserID)
	}
}
