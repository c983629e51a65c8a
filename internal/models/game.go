package models

import "strings"

// GameType defines which daily mini-game a group is playing.
type GameType string

const (
	GameTypeVoting  GameType = "voting"
	GameTypeCaption GameType = "comment"
)

// Phase defines the UI-relevant game phase for a single user, derived fresh
// from group state on every reconciliation pass.
type Phase string

const (
	PhaseNewDayWaiting         Phase = "NEW_DAY_WAITING"
	PhaseActivityNotActive     Phase = "ACTIVITY_NOT_ACTIVE"
	PhaseAwaitingOwnSubmission Phase = "AWAITING_OWN_SUBMISSION"
	PhaseAwaitingOthers        Phase = "AWAITING_OTHERS"
	PhaseResultsVisible        Phase = "RESULTS_VISIBLE"
)

// Terminal reports whether the phase ends the day-cycle for the user.
func (p Phase) Terminal() bool {
	return p == PhaseResultsVisible
}

// CommentEntry is one member's caption-game record: the photo assigned to
// them and, once submitted, their caption. An entry with an assignment but no
// caption means the member has not acted yet.
type CommentEntry struct {
	AssignedPhotoID string `json:"assignedPhotoId"`
	Comment         string `json:"comment,omitempty"`
}

// Completed reports whether the entry counts as a finished submission.
// An assignment alone does not count; the caption must be non-blank.
func (e CommentEntry) Completed() bool {
	return strings.TrimSpace(e.Comment) != ""
}

// GameActivityState is the raw tuple the phase derivation works from.
type GameActivityState struct {
	IsNewDay        bool
	ActivityActive  bool
	ResultsReleased bool
	UserHasActed    bool
}
