package game

import "github.com/weekdump/weekdump/internal/models"

// IsNewDay reports whether the group looks like it is at the start of a
// day-cycle: both the votes and comments blobs are empty. The day boundary
// is detected by emptiness, not by wall clock.
func IsNewDay(group *models.Group) bool {
	return len(group.TodayVotes) == 0 && len(group.TodayComments) == 0
}

// UserCompleted reports whether the user has finished their action for the
// given game type. For voting, any vote entry counts; for captioning, the
// entry must carry a non-blank caption (an assignment alone does not count).
func UserCompleted(group *models.Group, userID string, gameType models.GameType) bool {
	switch gameType {
	case models.GameTypeVoting:
		_, ok := group.TodayVotes[userID]
		return ok
	case models.GameTypeCaption:
		entry, ok := group.TodayComments[userID]
		return ok && entry.Completed()
	}
	return false
}

// CompletionCount counts members who have finished their action for the
// given game type. Only current members are counted, so a stale entry left
// by a departed member never inflates the count.
func CompletionCount(group *models.Group, gameType models.GameType) int {
	count := 0
	for _, m := range group.Members {
		if UserCompleted(group, m.UserID, gameType) {
			count++
		}
	}
	return count
}

// AllCompleted reports whether every member has finished their action.
// False for empty groups.
func AllCompleted(group *models.Group, gameType models.GameType) bool {
	if len(group.Members) == 0 {
		return false
	}
	return CompletionCount(group, gameType) == len(group.Members)
}

// DerivePhase derives the user's game phase from polled group state. It is
// evaluated fresh on every pass, never edge-triggered.
//
// The store's release flag alone never reveals results: it is necessary but
// not sufficient, and is double-checked against the actual completion count
// in case the flag was set prematurely or drifted out of sync with real
// submissions.
func DerivePhase(group *models.Group, userID string, gameType models.GameType) models.Phase {
	if !group.ActivityActive {
		if IsNewDay(group) {
			return models.PhaseNewDayWaiting
		}
		return models.PhaseActivityNotActive
	}

	if !UserCompleted(group, userID, gameType) {
		return models.PhaseAwaitingOwnSubmission
	}

	if group.ReleaseResults && AllCompleted(group, gameType) {
		return models.PhaseResultsVisible
	}
	return models.PhaseAwaitingOthers
}

// DeriveActivityState returns the raw state tuple behind DerivePhase, for
// hosts that want to render progress detail.
func DeriveActivityState(group *models.Group, userID string, gameType models.GameType) models.GameActivityState {
	return models.GameActivityState{
		IsNewDay:        IsNewDay(group),
		ActivityActive:  group.ActivityActive,
		ResultsReleased: group.ReleaseResults && AllCompleted(group, gameType),
		UserHasActed:    UserCompleted(group, userID, gameType),
	}
}
