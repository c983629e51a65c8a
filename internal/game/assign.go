package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/models"
)

// AssignmentWriter defines what the assigner needs from the groups
// application to persist a computed assignment map.
type AssignmentWriter interface {
	SaveAssignments(ctx context.Context, groupID string, assignments map[string]string) error
}

// Assigner turns a day's photo submissions into the captioning game's
// assignment map: each submitter gets a photo authored by a different
// submitter, computed once per day-cycle and stable afterwards.
type Assigner struct {
	writer AssignmentWriter

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewAssigner creates an assigner persisting through writer.
func NewAssigner(writer AssignmentWriter) *Assigner {
	return &Assigner{
		writer: writer,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewAssignerWithRand creates an assigner with a caller-supplied random
// source, for tests that need reproducible shuffles.
func NewAssignerWithRand(writer AssignmentWriter, rng *rand.Rand) *Assigner {
	return &Assigner{writer: writer, rng: rng}
}

// AssignPhotos returns the submitter -> assigned-photo-id map for the
// captioning game.
//
// Until every member has submitted a photo, it returns only previously
// persisted non-empty assignments and computes nothing. Once a complete
// assignment exists for every submitter the call is an idempotent read.
// Otherwise it derives a fresh derangement over the submitters and persists
// the result; a failed persist is logged and the in-memory map returned
// anyway, since the store copy is unchanged and the next poll recomputes.
func (a *Assigner) AssignPhotos(ctx context.Context, group *models.Group) map[string]string {
	submitters := group.Submitters()

	if len(submitters) < group.MemberCount() || len(submitters) == 0 {
		log.Debug().Str("group_id", group.ID).
			Int("submitted", len(submitters)).Int("members", group.MemberCount()).
			Msg("waiting for all members to submit photos")
		return existingAssignments(group.TodayComments)
	}

	existing := existingAssignments(group.TodayComments)
	complete := true
	for _, userID := range submitters {
		if existing[userID] == "" {
			complete = false
			break
		}
	}
	if complete {
		return existing
	}

	a.rngMu.Lock()
	deranged := Derangement(a.rng, submitters)
	a.rngMu.Unlock()

	assignments := make(map[string]string, len(submitters))
	for i, userID := range submitters {
		authorID := deranged[i]
		if photoID, ok := group.TodayData[authorID]; ok {
			assignments[userID] = photoID
		}
	}

	if err := a.writer.SaveAssignments(ctx, group.ID, assignments); err != nil {
		// Proceed optimistically; the store copy is unchanged so the next
		// poll recomputes and retries the write.
		log.Error().Err(err).Str("group_id", group.ID).
			Msg("failed to persist photo assignments")
	}

	return assignments
}

// existingAssignments extracts the non-empty assigned photo ids from the
// comments blob.
func existingAssignments(comments map[string]models.CommentEntry) map[string]string {
	out := make(map[string]string)
	for userID, entry := range comments {
		if entry.AssignedPhotoID != "" {
			out[userID] = entry.AssignedPhotoID
		}
	}
	return out
}
