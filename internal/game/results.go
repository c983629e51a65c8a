package game

import (
	"sort"

	"github.com/weekdump/weekdump/internal/models"
)

// VoteResults tallies votes per photo and returns the photos sorted by vote
// count, winner first. Votes for photos no longer in the submission set are
// ignored. Ties keep member submission order.
func VoteResults(group *models.Group, photos []models.Photo) []models.VoteTally {
	counts := make(map[string]int, len(photos))
	for _, p := range photos {
		counts[p.ID] = 0
	}
	for _, photoID := range group.TodayVotes {
		if _, ok := counts[photoID]; ok {
			counts[photoID]++
		}
	}

	tallies := make([]models.VoteTally, 0, len(photos))
	for _, p := range photos {
		tallies = append(tallies, models.VoteTally{Photo: p, Votes: counts[p.ID]})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Votes > tallies[j].Votes
	})
	return tallies
}

// CaptionResults joins each submitted caption to the photo it was written
// for, in photo order. Assignment-only entries with no caption are skipped.
func CaptionResults(group *models.Group, photos []models.Photo) []models.CaptionReveal {
	byID := make(map[string]models.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}

	reveals := make([]models.CaptionReveal, 0, len(group.TodayComments))
	for _, p := range photos {
		for _, m := range group.Members {
			entry, ok := group.TodayComments[m.UserID]
			if !ok || !entry.Completed() || entry.AssignedPhotoID != p.ID {
				continue
			}
			reveals = append(reveals, models.CaptionReveal{
				Photo:       byID[entry.AssignedPhotoID],
				CaptionerID: m.UserID,
				Caption:     entry.Comment,
			})
		}
	}
	return reveals
}
