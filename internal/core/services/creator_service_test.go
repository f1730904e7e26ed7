package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
)

func newCreatorFixture(gw *fakeGateway) (*CreatorService, *Navigator) {
	nav := NewNavigator()
	session := &domain.Session{Username: "alice", Role: domain.RoleCreator}
	return NewCreatorService(gw, nav, session), nav
}

func TestCreatePollCSVWithoutFileMakesNoCall(t *testing.T) {
	gw := &fakeGateway{}
	creator, nav := newCreatorFixture(gw)

	_, err := creator.CreatePoll(context.Background(), ports.CreatePollInput{
		Question: "Q",
		Options:  "a,b",
		Method:   ports.VotersCSV,
	})

	require.ErrorIs(t, err, domain.ErrMissingVoterFile)
	assert.Empty(t, gw.calls, "validation failure must not reach the network")
	assert.True(t, nav.Message().IsError)
}

func TestCreatePollManualWithEmptyListMakesNoCall(t *testing.T) {
	gw := &fakeGateway{}
	creator, _ := newCreatorFixture(gw)

	_, err := creator.CreatePoll(context.Background(), ports.CreatePollInput{
		Question:   "Q",
		Options:    "a,b",
		Method:     ports.VotersManual,
		VotersText: "   ",
	})

	require.ErrorIs(t, err, domain.ErrMissingVoters)
	assert.Empty(t, gw.calls)
}

func TestCreatePollManualSendsJSONWithVotersOnly(t *testing.T) {
	gw := &fakeGateway{handler: func(call gatewayCall, out any) error {
		resp := out.(*createPollResponse)
		resp.Message = "Poll created successfully."
		resp.PollID = "p1"
		resp.CreatorID = "c1"
		return nil
	}}
	creator, nav := newCreatorFixture(gw)

	created, err := creator.CreatePoll(context.Background(), ports.CreatePollInput{
		Question:   "Q",
		Options:    "a,b",
		Method:     ports.VotersManual,
		VotersText: "v1,v2",
	})

	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	call := gw.calls[0]
	assert.False(t, call.HasFile)
	body := call.Body.(map[string]string)
	assert.Equal(t, "v1,v2", body["voters"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, &ports.CreatedPoll{PollID: "p1", CreatorID: "c1"}, created)
	assert.Equal(t, created, creator.LastCreated())
	assert.Equal(t, "Poll created successfully.", nav.Message().Text)
}

func TestCreatePollCSVSendsMultipartWithoutVotersField(t *testing.T) {
	gw := &fakeGateway{handler: func(call gatewayCall, out any) error {
		resp := out.(*createPollResponse)
		resp.PollID = "p2"
		resp.CreatorID = "c2"
		return nil
	}}
	creator, _ := newCreatorFixture(gw)

	_, err := creator.CreatePoll(context.Background(), ports.CreatePollInput{
		Question:       "Q",
		Options:        "a,b",
		Method:         ports.VotersCSV,
		VotersFile:     strings.NewReader("v1\nv2\n"),
		VotersFilename: "voters.csv",
	})

	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	call := gw.calls[0]
	assert.True(t, call.HasFile)
	_, hasVoters := call.Fields["voters"]
	assert.False(t, hasVoters, "only one voter-list source may travel")
}

func TestRunActionPicksEndpointByTag(t *testing.T) {
	tests := []struct {
		action   ports.DashboardAction
		wantPath string
	}{
		{ports.ActionClosePoll, "/close_poll"},
		{ports.ActionEndPoll, "/end_poll"},
		{ports.ActionGetResults, "/results"},
	}
	for _, tt := range tests {
		gw := &fakeGateway{handler: func(call gatewayCall, out any) error {
			if resp, ok := out.(*messageResponse); ok {
				resp.Message = "done"
			}
			if results, ok := out.(*domain.ResultsPayload); ok {
				results.TotalVotes = 1
			}
			return nil
		}}
		creator, _ := newCreatorFixture(gw)

		results, err := creator.RunAction(context.Background(), ports.DashboardActionInput{
			Action:    tt.action,
			PollID:    "p1",
			CreatorID: "c1",
		})

		require.NoError(t, err)
		require.Len(t, gw.calls, 1)
		assert.Equal(t, tt.wantPath, gw.calls[0].Path)
		if tt.action == ports.ActionGetResults {
			assert.NotNil(t, results)
		} else {
			assert.Nil(t, results)
		}
	}
}

func TestRunActionUnknownTag(t *testing.T) {
	gw := &fakeGateway{}
	creator, _ := newCreatorFixture(gw)

	_, err := creator.RunAction(context.Background(), ports.DashboardActionInput{Action: "explode"})

	require.Error(t, err)
	assert.Empty(t, gw.calls)
}

func TestMyPollsUsesSessionUsername(t *testing.T) {
	gw := &fakeGateway{handler: func(call gatewayCall, out any) error {
		polls := out.(*[]domain.PollSummary)
		*polls = []domain.PollSummary{{PollID: "p1", Question: "Q", IsActive: true}}
		return nil
	}}
	creator, _ := newCreatorFixture(gw)

	polls, err := creator.MyPolls(context.Background())

	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, "/my_polls/alice", gw.calls[0].Path)
}

func TestAnalyticsDiscardsStaleResponse(t *testing.T) {
	var nav *Navigator
	gw := &fakeGateway{handler: func(call gatewayCall, out any) error {
		nav.NavigateTo(domain.ViewCreatorDashboard, "")
		results := out.(*domain.ResultsPayload)
		results.TotalVotes = 7
		return nil
	}}
	creator, fixtureNav := newCreatorFixture(gw)
	nav = fixtureNav

	_, err := creator.Analytics(context.Background(), "p1")

	require.ErrorIs(t, err, domain.ErrStaleResponse)
}

func TestExportResultsWritesFile(t *testing.T) {
	gw := &fakeGateway{handler: func(call gatewayCall, out any) error {
		data := out.(*[]byte)
		*data = []byte("option,votes\n\"a\",1\n")
		return nil
	}}
	creator, nav := newCreatorFixture(gw)
	dir := t.TempDir()

	path, err := creator.ExportResults(context.Background(), "p1", dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results_p1.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "option,votes")
	assert.False(t, nav.Message().IsError)
}
