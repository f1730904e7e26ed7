package domain

import "time"

type PollStatus string

const (
	StatusActive PollStatus = "Active"
	StatusEnded  PollStatus = "Ended"
	StatusClosed PollStatus = "Closed"
)

// PollSummary is one row of a creator's poll listing.
type PollSummary struct {
	PollID    string    `json:"poll_id"`
	Question  string    `json:"question"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsActive  bool      `json:"is_active"`
}

// Status derives the display status at the given instant.
// Closed overrides Ended overrides Active.
func (p PollSummary) Status(now time.Time) PollStatus {
	if !p.IsActive {
		return StatusClosed
	}
	if !p.EndTime.IsZero() && now.After(p.EndTime) {
		return StatusEnded
	}
	return StatusActive
}

// PollDetail is what a voter sees when accessing a poll. It is ephemeral:
// discarded once a vote is cast or the attempt fails.
type PollDetail struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	IsActive bool     `json:"is_active"`
}
