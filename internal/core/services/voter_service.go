package services

import (
	"context"

	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
)

// VoterService drives the voter screens: the two-step poll access chain
// and vote submission. It holds the ephemeral poll detail between the two.
type VoterService struct {
	gateway ports.Gateway
	nav     *Navigator
	session *domain.Session

	detail *domain.PollDetail
}

func NewVoterService(gateway ports.Gateway, nav *Navigator, session *domain.Session) *VoterService {
	return &VoterService{
		gateway: gateway,
		nav:     nav,
		session: session,
	}
}

func (s *VoterService) CurrentDetail() *domain.PollDetail {
	return s.detail
}

// AccessPoll fetches the poll status; an active poll yields the voting
// form, an inactive one triggers exactly one follow-up fetch of the final
// results. The voting form is never shown for an inactive poll.
func (s *VoterService) AccessPoll(ctx context.Context, pollID string) (*ports.PollAccess, error) {
	s.nav.SetMessage(domain.Message{})
	s.detail = nil
	gen := s.nav.Generation()

	var detail domain.PollDetail
	if err := s.gateway.GetJSON(ctx, "/poll_status/"+pollID, &detail); err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Could not fetch the poll."))
		return nil, err
	}
	if !s.nav.StillCurrent(gen) {
		return nil, domain.ErrStaleResponse
	}

	if detail.IsActive {
		s.detail = &detail
		return &ports.PollAccess{Detail: &detail}, nil
	}

	var results domain.ResultsPayload
	body := map[string]string{"poll_id": pollID}
	if err := s.gateway.PostJSON(ctx, "/results", body, &results); err != nil {
		s.nav.SetMessage(domain.Feedback(err, "The poll has ended, but its results could not be fetched."))
		return nil, err
	}
	if !s.nav.StillCurrent(gen) {
		return nil, domain.ErrStaleResponse
	}
	return &ports.PollAccess{Results: &results}, nil
}

type voteRequest struct {
	PollID    string `json:"poll_id"`
	VoterID   string `json:"voter_id"`
	Selection string `json:"selection"`
}

// Vote submits the selection. The held detail is discarded on both
// outcomes, so the option list cannot be resubmitted. The server's
// confirmation message is returned verbatim.
func (s *VoterService) Vote(ctx context.Context, input ports.VoteInput) (string, error) {
	s.nav.SetMessage(domain.Message{})
	if input.Selection == "" {
		s.nav.SetMessage(domain.Failure("Please select an option before voting."))
		return "", domain.ErrMissingSelection
	}

	var resp messageResponse
	err := s.gateway.PostJSON(ctx, "/vote", voteRequest{
		PollID:    input.PollID,
		VoterID:   s.session.Username,
		Selection: input.Selection,
	}, &resp)
	s.detail = nil
	if err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Your vote could not be recorded."))
		return "", err
	}

	s.nav.SetMessage(domain.Info(resp.Message))
	return resp.Message, nil
}
