package models

import "time"

// Photo is a single member's daily photo submission. The photo document id
// doubles as the storage file id.
type Photo struct {
	ID        string
	UserID    string
	GroupID   string
	URL       string
	CreatedAt time.Time
}

// VoteTally is one photo's result in the voting game.
type VoteTally struct {
	Photo Photo
	Votes int
}

// CaptionReveal is one photo's result in the captioning game: the caption a
// member wrote for another member's photo.
type CaptionReveal struct {
	Photo       Photo
	CaptionerID string
	Caption     string
}
