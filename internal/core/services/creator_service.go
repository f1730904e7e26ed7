package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
)

// CreatorService drives the creator screens: poll creation, the dashboard
// actions keyed by tag, the poll listing, analytics, and result export.
type CreatorService struct {
	gateway ports.Gateway
	nav     *Navigator
	session *domain.Session

	lastCreated *ports.CreatedPoll
}

func NewCreatorService(gateway ports.Gateway, nav *Navigator, session *domain.Session) *CreatorService {
	return &CreatorService{
		gateway: gateway,
		nav:     nav,
		session: session,
	}
}

// LastCreated holds the identifiers of the most recently created poll so
// the dashboard can prefill them.
func (s *CreatorService) LastCreated() *ports.CreatedPoll {
	return s.lastCreated
}

type createPollResponse struct {
	Message   string `json:"message"`
	PollID    string `json:"poll_id"`
	CreatorID string `json:"creator_id"`
}

// CreatePoll attaches exactly one voter-list source, picked by the input
// method: a manual free-text list travels as JSON, a CSV file as
// multipart. A missing source fails client-side with no network call.
func (s *CreatorService) CreatePoll(ctx context.Context, input ports.CreatePollInput) (*ports.CreatedPoll, error) {
	s.nav.SetMessage(domain.Message{})

	var resp createPollResponse
	var err error
	switch input.Method {
	case ports.VotersCSV:
		if input.VotersFile == nil {
			s.nav.SetMessage(domain.Failure("Please choose a voter CSV file."))
			return nil, domain.ErrMissingVoterFile
		}
		fields := map[string]string{
			"question":   input.Question,
			"options":    input.Options,
			"start_time": input.StartTime,
			"end_time":   input.EndTime,
			"username":   s.session.Username,
		}
		err = s.gateway.PostMultipart(ctx, "/create_poll", fields, "voters_file", input.VotersFilename, input.VotersFile, &resp)
	default:
		if strings.TrimSpace(input.VotersText) == "" {
			s.nav.SetMessage(domain.Failure("Please enter at least one eligible voter."))
			return nil, domain.ErrMissingVoters
		}
		body := map[string]string{
			"question":   input.Question,
			"options":    input.Options,
			"voters":     input.VotersText,
			"start_time": input.StartTime,
			"end_time":   input.EndTime,
			"username":   s.session.Username,
		}
		err = s.gateway.PostJSON(ctx, "/create_poll", body, &resp)
	}
	if err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Poll creation failed."))
		return nil, err
	}

	created := &ports.CreatedPoll{PollID: resp.PollID, CreatorID: resp.CreatorID}
	s.lastCreated = created
	if resp.Message != "" {
		s.nav.SetMessage(domain.Info(resp.Message))
	} else {
		s.nav.SetMessage(domain.Info("Poll created."))
	}
	return created, nil
}

// RunAction dispatches a dashboard action. The tag picks the endpoint and
// whether the response is a plain message or a results payload; only the
// results tag returns a non-nil payload.
func (s *CreatorService) RunAction(ctx context.Context, input ports.DashboardActionInput) (*domain.ResultsPayload, error) {
	s.nav.SetMessage(domain.Message{})
	gen := s.nav.Generation()

	switch input.Action {
	case ports.ActionClosePoll:
		var resp messageResponse
		body := map[string]string{"poll_id": input.PollID, "username": s.session.Username}
		if err := s.gateway.PostJSON(ctx, "/close_poll", body, &resp); err != nil {
			s.nav.SetMessage(domain.Feedback(err, "The poll could not be closed."))
			return nil, err
		}
		s.nav.SetMessage(domain.Info(resp.Message))
		return nil, nil

	case ports.ActionEndPoll:
		var resp messageResponse
		body := map[string]string{"poll_id": input.PollID, "creator_id": input.CreatorID}
		if err := s.gateway.PostJSON(ctx, "/end_poll", body, &resp); err != nil {
			s.nav.SetMessage(domain.Feedback(err, "The poll could not be ended."))
			return nil, err
		}
		s.nav.SetMessage(domain.Info(resp.Message))
		return nil, nil

	case ports.ActionGetResults:
		var results domain.ResultsPayload
		body := map[string]string{"poll_id": input.PollID, "creator_id": input.CreatorID}
		if err := s.gateway.PostJSON(ctx, "/results", body, &results); err != nil {
			s.nav.SetMessage(domain.Feedback(err, "Results could not be fetched."))
			return nil, err
		}
		if !s.nav.StillCurrent(gen) {
			return nil, domain.ErrStaleResponse
		}
		return &results, nil

	default:
		err := fmt.Errorf("unknown dashboard action %q", input.Action)
		s.nav.SetMessage(domain.Failure(err.Error()))
		return nil, err
	}
}

func (s *CreatorService) MyPolls(ctx context.Context) ([]domain.PollSummary, error) {
	gen := s.nav.Generation()

	var polls []domain.PollSummary
	if err := s.gateway.GetJSON(ctx, "/my_polls/"+s.session.Username, &polls); err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Your polls could not be listed."))
		return nil, err
	}
	if !s.nav.StillCurrent(gen) {
		return nil, domain.ErrStaleResponse
	}
	return polls, nil
}

func (s *CreatorService) Analytics(ctx context.Context, pollID string) (*domain.ResultsPayload, error) {
	gen := s.nav.Generation()

	var results domain.ResultsPayload
	if err := s.gateway.GetJSON(ctx, "/analytics/"+pollID, &results); err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Analytics could not be fetched."))
		return nil, err
	}
	if !s.nav.StillCurrent(gen) {
		return nil, domain.ErrStaleResponse
	}
	return &results, nil
}

// ExportResults downloads the backend's CSV export and writes it next to
// destDir without interpreting it.
func (s *CreatorService) ExportResults(ctx context.Context, pollID, destDir string) (string, error) {
	data, err := s.gateway.Download(ctx, "/export_results/"+pollID)
	if err != nil {
		s.nav.SetMessage(domain.Feedback(err, "The export could not be downloaded."))
		return "", err
	}

	path := filepath.Join(destDir, "results_"+pollID+".csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.nav.SetMessage(domain.Failure("The export could not be saved locally."))
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	s.nav.SetMessage(domain.Info("Results exported to " + path))
	return path, nil
}
