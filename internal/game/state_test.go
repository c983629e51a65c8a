package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weekdump/weekdump/internal/models"
)

func TestDerivePhase_VotingWalkthrough(t *testing.T) {
	// A three-member group walking the full day-cycle, as seen by alice.
	group := testGroup("alice", "bob", "carol")

	assert.Equal(t, models.PhaseNewDayWaiting,
		DerivePhase(group, "alice", models.GameTypeVoting))

	group.ActivityActive = true
	assert.Equal(t, models.PhaseAwaitingOwnSubmission,
		DerivePhase(group, "alice", models.GameTypeVoting))

	group.TodayVotes["alice"] = "photo-b"
	assert.Equal(t, models.PhaseAwaitingOthers,
		DerivePhase(group, "alice", models.GameTypeVoting))

	group.TodayVotes["bob"] = "photo-a"
	group.TodayVotes["carol"] = "photo-a"
	assert.Equal(t, models.PhaseAwaitingOthers,
		DerivePhase(group, "alice", models.GameTypeVoting),
		"results stay hidden until the release flag is set")

	group.ReleaseResults = true
	assert.Equal(t, models.PhaseResultsVisible,
		DerivePhase(group, "alice", models.GameTypeVoting))
}

func TestDerivePhase_ActivityNotActive(t *testing.T) {
	group := testGroup("alice", "bob")
	group.TodayVotes["bob"] = "photo-a"

	// Votes exist so it is not a new day, but the activity flag is off.
	assert.Equal(t, models.PhaseActivityNotActive,
		DerivePhase(group, "alice", models.GameTypeVoting))
}

func TestDerivePhase_ReleaseFlagAloneInsufficient(t *testing.T) {
	group := testGroup("alice", "bob", "carol")
	group.ActivityActive = true
	group.ReleaseResults = true
	group.TodayVotes["alice"] = "photo-b"
	group.TodayVotes["bob"] = "photo-a"

	// The flag is set but carol has not voted; the completion double-check
	// keeps results hidden.
	assert.Equal(t, models.PhaseAwaitingOthers,
		DerivePhase(group, "alice", models.GameTypeVoting))
}

func TestDerivePhase_CaptionAssignmentDoesNotCount(t *testing.T) {
	group := testGroup("alice", "bob")
	group.ActivityActive = true
	group.ReleaseResults = true
	group.TodayComments["alice"] = models.CommentEntry{AssignedPhotoID: "photo-b", Comment: "nice raccoon"}
	group.TodayComments["bob"] = models.CommentEntry{AssignedPhotoID: "photo-a", Comment: "   "}

	// bob's entry is assignment-plus-whitespace, not a completed caption.
	assert.Equal(t, 1, CompletionCount(group, models.GameTypeCaption))
	assert.Equal(t, models.PhaseAwaitingOthers,
		DerivePhase(group, "alice", models.GameTypeCaption))

	group.TodayComments["bob"] = models.CommentEntry{AssignedPhotoID: "photo-a", Comment: "cursed"}
	assert.Equal(t, models.PhaseResultsVisible,
		DerivePhase(group, "alice", models.GameTypeCaption))
}

func TestDerivePhase_CaptionAwaitingOwnSubmission(t *testing.T) {
	group := testGroup("alice", "bob")
	group.ActivityActive = true
	group.TodayComments["alice"] = models.CommentEntry{AssignedPhotoID: "photo-b"}

	// An assignment without a caption leaves alice awaiting her own action.
	assert.Equal(t, models.PhaseAwaitingOwnSubmission,
		DerivePhase(group, "alice", models.GameTypeCaption))
}

func TestIsNewDay(t *testing.T) {
	group := testGroup("alice", "bob")
	assert.True(t, IsNewDay(group))

	group.TodayData["alice"] = "photo-a"
	assert.True(t, IsNewDay(group), "photo submissions alone do not end the new day")

	group.TodayVotes["alice"] = "photo-a"
	assert.False(t, IsNewDay(group))
}

func TestCompletionCount_IgnoresDepartedMembers(t *testing.T) {
	group := testGroup("alice", "bob")
	group.TodayVotes["alice"] = "photo-b"
	group.TodayVotes["ghost"] = "photo-a"

	assert.Equal(t, 1, CompletionCount(group, models.GameTypeVoting))
	assert.False(t, AllCompleted(group, models.GameTypeVoting))
}

func TestAllCompleted_EmptyGroup(t *testing.T) {
	group := testGroup()
	assert.False(t, AllCompleted(group, models.GameTypeVoting))
}

func TestDeriveActivityState(t *testing.T) {
	group := testGroup("alice", "bob")
	group.ActivityActive = true
	group.TodayVotes["alice"] = "photo-b"

	state := DeriveActivityState(group, "alice", models.GameTypeVoting)
	assert.Equal(t, models.GameActivityState{
		IsNewDay:        false,
		ActivityActive:  true,
		ResultsReleased: false,
		UserHasActed:    true,
	}, state)
}
