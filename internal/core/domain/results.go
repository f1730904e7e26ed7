package domain

import "time"

// ResultsPayload is the backend-computed tally for one poll. The client
// never tallies votes itself.
type ResultsPayload struct {
	Question    string         `json:"question"`
	Results     map[string]int `json:"results"`
	TotalVotes  int            `json:"total_votes"`
	TotalVoters int            `json:"total_voters,omitempty"`
	IsActive    bool           `json:"is_active"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
}
