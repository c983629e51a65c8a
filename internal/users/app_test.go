package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/store"
	"github.com/weekdump/weekdump/internal/store/storetest"
)

func newTestApp(t *testing.T) (*App, *storetest.Memory) {
	t.Helper()
	mem := storetest.NewMemory()
	return NewApp(NewRepository(mem)), mem
}

func TestCreateAndGetUser(t *testing.T) {
	app, _ := newTestApp(t)

	created, err := app.CreateUser(context.Background(), &models.User{
		ID:       "alice",
		Name:     "Alice",
		Email:    "alice@example.com",
		Username: "alice_dumps",
		Groups:   []string{"g1", "g2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, created.Groups)

	got, err := app.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice_dumps", got.Username)
	assert.Equal(t, []string{"g1", "g2"}, got.Groups)
}

func TestCreateUser_RequiresID(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.CreateUser(context.Background(), &models.User{Name: "Nobody"})
	assert.Error(t, err)
}

func TestAddGroup(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := app.CreateUser(context.Background(), &models.User{ID: "alice"})
	require.NoError(t, err)

	require.NoError(t, app.AddGroup(context.Background(), "alice", "g1"))
	require.NoError(t, app.AddGroup(context.Background(), "alice", "g2"))

	got, err := app.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, got.Groups)
}

func TestAddGroup_AlreadyListedIsNoop(t *testing.T) {
	app, mem := newTestApp(t)
	_, err := app.CreateUser(context.Background(), &models.User{ID: "alice", Groups: []string{"g1"}})
	require.NoError(t, err)

	before := mem.Updates
	require.NoError(t, app.AddGroup(context.Background(), "alice", "g1"))
	assert.Equal(t, before, mem.Updates, "no write for a group already on the profile")
}

func TestRemoveGroup(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := app.CreateUser(context.Background(), &models.User{
		ID:     "alice",
		Groups: []string{"g1", "g2", "g3"},
	})
	require.NoError(t, err)

	require.NoError(t, app.RemoveGroup(context.Background(), "alice", "g2"))

	got, err := app.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g3"}, got.Groups)
}

func TestGetUser_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroupsFieldRoundTrip(t *testing.T) {
	mem := storetest.NewMemory()
	repo := NewRepository(mem)

	_, err := repo.CreateUser(context.Background(), &models.User{
		ID:     "alice",
		Groups: []string{"g1", "g2"},
	})
	require.NoError(t, err)

	doc, err := mem.GetDocument(context.Background(), store.CollectionUserData, "alice")
	require.NoError(t, err)
	assert.Equal(t, "g1,g2", doc.String("groups"), "group membership is stored comma-separated")

	got, err := repo.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, got.Groups)
}

func TestEmptyGroupsFieldDecodesToNil(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollectionUserData, "bob", store.Document{"name": "Bob", "groups": ""})

	got, err := NewRepository(mem).GetUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, got.Groups)
}
