package models

// MemberRole defines a member's role within a group.
type MemberRole string

const (
	MemberRoleCaptain MemberRole = "captain"
	MemberRoleMember  MemberRole = "member"
)

// Member is a single group member. Members are stored as a JSON-encoded
// array inside the group document's members field.
type Member struct {
	UserID string     `json:"userId"`
	Name   string     `json:"name"`
	Role   MemberRole `json:"role"`
}

// Group is the decoded form of a group document. The day-scoped fields
// (TodayData, TodayVotes, TodayComments) accumulate over one day-cycle and
// are reset together; their key sets are subsets of the member user ids.
type Group struct {
	ID      string
	Name    string
	Members []Member

	// TodayData maps member user id to the photo id submitted today.
	TodayData map[string]string
	// TodayVotes maps voter user id to the voted-for photo id.
	TodayVotes map[string]string
	// TodayComments maps member user id to their caption-game entry.
	TodayComments map[string]CommentEntry

	ActivityActive bool
	ReleaseResults bool

	GameID int
}

// MemberIDs returns the user ids of all members in member order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// MemberCount returns the number of members in the group.
func (g *Group) MemberCount() int {
	return len(g.Members)
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Captain returns the group's captain, or nil if none exists.
func (g *Group) Captain() *Member {
	for i := range g.Members {
		if g.Members[i].Role == MemberRoleCaptain {
			return &g.Members[i]
		}
	}
	return nil
}

// Submitters returns, in member order, the user ids of members who have a
// photo submission for today.
func (g *Group) Submitters() []string {
	ids := make([]string, 0, len(g.TodayData))
	for _, m := range g.Members {
		if _, ok := g.TodayData[m.UserID]; ok {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// AllPhotosSubmitted reports whether every member has submitted a photo for
// today. False for empty groups.
func (g *Group) AllPhotosSubmitted() bool {
	if len(g.Members) == 0 {
		return false
	}
	return len(g.Submitters()) == len(g.Members)
}
