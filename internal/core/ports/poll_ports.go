package ports

import (
	"context"
	"io"

	"github.com/pollbooth/pollbooth/internal/core/domain"
)

// VoterInputMethod selects how a poll's eligible-voter list is supplied.
type VoterInputMethod string

const (
	VotersManual VoterInputMethod = "manual"
	VotersCSV    VoterInputMethod = "csv"
)

type CreatePollInput struct {
	Question  string
	Options   string // comma-separated, backend splits
	StartTime string // ISO 8601
	EndTime   string // ISO 8601
	Method    VoterInputMethod
	// Exactly one of VotersText / VotersFile travels with the request,
	// keyed by Method. A nil VotersFile under VotersCSV is a client-side
	// validation error and produces no network call.
	VotersText     string
	VotersFile     io.Reader
	VotersFilename string
}

type CreatedPoll struct {
	PollID    string `json:"poll_id"`
	CreatorID string `json:"creator_id"`
}

// DashboardAction tags which creator action runs against a poll id +
// creator credential pair. The tag picks both the endpoint and how the
// response is handled (message vs results object).
type DashboardAction string

const (
	ActionClosePoll  DashboardAction = "close"
	ActionEndPoll    DashboardAction = "end"
	ActionGetResults DashboardAction = "results"
)

type DashboardActionInput struct {
	Action    DashboardAction
	PollID    string
	CreatorID string
}

type CreatorService interface {
	CreatePoll(ctx context.Context, input CreatePollInput) (*CreatedPoll, error)
	RunAction(ctx context.Context, input DashboardActionInput) (*domain.ResultsPayload, error)
	MyPolls(ctx context.Context) ([]domain.PollSummary, error)
	Analytics(ctx context.Context, pollID string) (*domain.ResultsPayload, error)
	ExportResults(ctx context.Context, pollID, destDir string) (string, error)
}

// PollAccess is the outcome of the voter's two-step access chain: an
// active poll yields Detail and a nil Results; an inactive poll yields
// the final Results from the follow-up fetch and a nil Detail.
type PollAccess struct {
	Detail  *domain.PollDetail
	Results *domain.ResultsPayload
}

type VoteInput struct {
	PollID    string
	Selection string
}

type VoterService interface {
	AccessPoll(ctx context.Context, pollID string) (*PollAccess, error)
	Vote(ctx context.Context, input VoteInput) (string, error)
	// CurrentDetail is the held ephemeral poll detail, nil once a vote has
	// been cast or the access attempt failed.
	CurrentDetail() *domain.PollDetail
}
