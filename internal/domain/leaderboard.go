package domain

import "strings"

// SortOrder represents the sort direction for leaderboard rankings
type SortOrder string

const (
	SortOrderDesc SortOrder = "desc"
	SortOrderAsc  SortOrder = "asc"
	SortOrderNone SortOrder = "none"
)

// ParseSortOrder normalizes a user-supplied sort value; unknown values fall back to desc
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortOrderAsc:
		return SortOrderAsc
	case SortOrderNone:
		return SortOrderNone
	default:
		return SortOrderDesc
	}
}

// LeaderboardEntry is the public projection of a player used by list views
type LeaderboardEntry struct {
	ID        int    `json:"id,omitempty"`
	Player    string `json:"player"`
	Highscore int    `json:"highscore"`
}

// LeaderboardSnapshot is pushed to realtime subscribers after a change
type LeaderboardSnapshot struct {
	Entries      []LeaderboardEntry `json:"entries"`
	TotalPlayers int                `json:"total_players"`
}

// SubmitHighscore is a validated request to record a score.
// A zero Level means an overall highscore for a new record.
type SubmitHighscore struct {
	Name  string
	Score int
	Level int
}

// NewPlayer is a request to register a player. It doubles as the wire shape
// of registration messages on the Kafka topic.
type NewPlayer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
