package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	gatewayhttp "github.com/pollbooth/pollbooth/internal/adapters/gateway/http"
	storagefile "github.com/pollbooth/pollbooth/internal/adapters/storage/file"
	"github.com/pollbooth/pollbooth/internal/config"
	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
	"github.com/pollbooth/pollbooth/internal/core/render"
	"github.com/pollbooth/pollbooth/internal/core/services"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	session := &domain.Session{}
	nav := services.NewNavigator()
	gateway := gatewayhttp.NewGateway(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	store := storagefile.NewSessionStore(cfg.SessionFile)

	a := &app{
		cfg:     cfg,
		nav:     nav,
		session: session,
		auth:    services.NewAuthService(gateway, store, nav, session),
		creator: services.NewCreatorService(gateway, nav, session),
		voter:   services.NewVoterService(gateway, nav, session),
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}

	a.auth.Restore()
	a.run()
}

type app struct {
	cfg     config.Config
	nav     *services.Navigator
	session *domain.Session
	auth    *services.AuthService
	creator *services.CreatorService
	voter   *services.VoterService
	in      *bufio.Scanner
	out     io.Writer
}

func (a *app) run() {
	for {
		a.showMessage()
		switch a.nav.State().Current {
		case domain.ViewHome:
			if done := a.homeView(); done {
				return
			}
		case domain.ViewLogin:
			a.loginView()
		case domain.ViewSignup:
			a.signupView()
		case domain.ViewCreatorDashboard:
			a.creatorDashboardView()
		case domain.ViewCreatePoll:
			a.createPollView()
		case domain.ViewAnalytics:
			a.analyticsView()
		case domain.ViewVoterDashboard:
			a.voterDashboardView()
		}
	}
}

// goTo is the single place user-driven navigation passes through; the
// role's allowed view set is checked here, not in the navigator.
func (a *app) goTo(view domain.View, context string) {
	if !services.CanNavigate(a.session.Role, view) {
		a.nav.SetMessage(domain.Failure("That screen is not available for your role."))
		return
	}
	a.nav.NavigateTo(view, context)
}

// leaveFor navigates away after a controller call while keeping the
// controller's feedback, which NavigateTo would otherwise clear before
// the run loop gets to render it.
func (a *app) leaveFor(view domain.View) {
	msg := a.nav.Message()
	a.goTo(view, "")
	if !msg.Empty() {
		a.nav.SetMessage(msg)
	}
}

func (a *app) showMessage() {
	msg := a.nav.Message()
	if msg.Empty() {
		return
	}
	if msg.IsError {
		fmt.Fprintf(a.out, "\n[error] %s\n", msg.Text)
	} else {
		fmt.Fprintf(a.out, "\n%s\n", msg.Text)
	}
	a.nav.SetMessage(domain.Message{})
}

func (a *app) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) homeView() bool {
	fmt.Fprintln(a.out, "\n== pollbooth ==")
	fmt.Fprintln(a.out, "1) log in\n2) sign up\nq) quit")
	switch a.prompt("choice") {
	case "1":
		a.goTo(domain.ViewLogin, "")
	case "2":
		a.goTo(domain.ViewSignup, "")
	case "q":
		return true
	}
	return false
}

func (a *app) loginView() {
	fmt.Fprintln(a.out, "\n== log in ==")
	creds := ports.Credentials{
		Username: a.prompt("username"),
		Password: a.prompt("password"),
	}
	if creds.Username == "" {
		a.nav.NavigateTo(domain.ViewHome, "")
		return
	}
	_ = a.auth.Login(context.Background(), creds)
}

func (a *app) signupView() {
	fmt.Fprintln(a.out, "\n== sign up ==")
	input := ports.SignupInput{
		Credentials: ports.Credentials{
			Username: a.prompt("username"),
			Password: a.prompt("password"),
		},
		Role: domain.Role(a.prompt("role (creator/voter)")),
	}
	if !input.Role.Valid() {
		a.nav.SetMessage(domain.Failure("Role must be creator or voter."))
		return
	}
	_ = a.auth.Signup(context.Background(), input)
}

func (a *app) creatorDashboardView() {
	fmt.Fprintf(a.out, "\n== creator dashboard (%s) ==\n", a.session.Username)
	fmt.Fprintln(a.out, "1) create a poll\n2) my polls\n3) close/end a poll\n4) poll results\n5) analytics\n6) export results\n7) log out")
	switch a.prompt("choice") {
	case "1":
		a.goTo(domain.ViewCreatePoll, "")
	case "2":
		a.listMyPolls()
	case "3":
		a.runPollAction()
	case "4":
		a.showPollResults()
	case "5":
		a.goTo(domain.ViewAnalytics, a.prompt("poll id"))
	case "6":
		pollID := a.prompt("poll id")
		_, _ = a.creator.ExportResults(context.Background(), pollID, a.cfg.ExportDir)
	case "7":
		a.auth.Logout()
	}
}

func (a *app) listMyPolls() {
	polls, err := a.creator.MyPolls(context.Background())
	if err != nil {
		return
	}
	if len(polls) == 0 {
		fmt.Fprintln(a.out, "no polls yet")
		return
	}
	now := time.Now()
	for _, p := range polls {
		fmt.Fprintf(a.out, "%s  [%s]  %s\n", p.PollID, p.Status(now), p.Question)
	}
}

func (a *app) runPollAction() {
	input := ports.DashboardActionInput{PollID: a.prompt("poll id")}
	switch a.prompt("action (close/end)") {
	case "end":
		input.Action = ports.ActionEndPoll
		input.CreatorID = a.prompt("creator id")
	default:
		input.Action = ports.ActionClosePoll
	}
	_, _ = a.creator.RunAction(context.Background(), input)
}

func (a *app) showPollResults() {
	input := ports.DashboardActionInput{
		Action:    ports.ActionGetResults,
		PollID:    a.prompt("poll id"),
		CreatorID: a.prompt("creator id"),
	}
	results, err := a.creator.RunAction(context.Background(), input)
	if err != nil || results == nil {
		return
	}
	a.renderResults(results)
}

func (a *app) createPollView() {
	fmt.Fprintln(a.out, "\n== create a poll ==")
	input := ports.CreatePollInput{
		Question:  a.prompt("question"),
		Options:   a.prompt("options (comma-separated)"),
		StartTime: a.prompt("start time (RFC3339, blank for now)"),
		EndTime:   a.prompt("end time (RFC3339, blank for none)"),
	}
	switch a.prompt("voter input (manual/csv)") {
	case "csv":
		input.Method = ports.VotersCSV
		path := a.prompt("voter CSV path")
		if path != "" {
			f, err := os.Open(path)
			if err != nil {
				a.nav.SetMessage(domain.Failure("Could not open the voter file."))
				return
			}
			defer f.Close()
			input.VotersFile = f
			input.VotersFilename = path
		}
	default:
		input.Method = ports.VotersManual
		input.VotersText = a.prompt("voters (comma-separated)")
	}

	created, err := a.creator.CreatePoll(context.Background(), input)
	if err != nil {
		return
	}
	fmt.Fprintf(a.out, "poll id:    %s\ncreator id: %s (keep this secret)\n", created.PollID, created.CreatorID)
	a.leaveFor(domain.ViewCreatorDashboard)
}

func (a *app) analyticsView() {
	pollID := a.nav.State().Context
	if pollID == "" {
		a.goTo(domain.ViewCreatorDashboard, "")
		return
	}
	results, err := a.creator.Analytics(context.Background(), pollID)
	if err == nil {
		fmt.Fprintf(a.out, "\n== analytics: %s ==\n", results.Question)
		if results.TotalVoters > 0 {
			turnout := render.Percent(results.TotalVotes, results.TotalVoters)
			fmt.Fprintf(a.out, "turnout: %d of %d eligible (%.1f%%)\n", results.TotalVotes, results.TotalVoters, turnout)
		}
		a.renderResults(results)
	}
	a.leaveFor(domain.ViewCreatorDashboard)
}

func (a *app) voterDashboardView() {
	fmt.Fprintf(a.out, "\n== voter dashboard (%s) ==\n", a.session.Username)
	fmt.Fprintln(a.out, "1) access a poll\n2) log out")
	switch a.prompt("choice") {
	case "1":
		a.accessPoll()
	case "2":
		a.auth.Logout()
	}
}

func (a *app) accessPoll() {
	pollID := a.prompt("poll id")
	access, err := a.voter.AccessPoll(context.Background(), pollID)
	if err != nil {
		return
	}

	if access.Results != nil {
		fmt.Fprintln(a.out, "this poll has ended; final results:")
		a.renderResults(access.Results)
		return
	}

	detail := access.Detail
	fmt.Fprintf(a.out, "\n%s\n", detail.Question)
	for i, opt := range detail.Options {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, opt)
	}
	choice := a.prompt("selection (number, blank to cancel)")
	selection := ""
	for i, opt := range detail.Options {
		if choice == fmt.Sprintf("%d", i+1) {
			selection = opt
		}
	}
	_, _ = a.voter.Vote(context.Background(), ports.VoteInput{PollID: pollID, Selection: selection})
}

func (a *app) renderResults(results *domain.ResultsPayload) {
	bars := render.Bars(results.Results, results.TotalVotes)
	for _, b := range bars {
		width := int(b.Percent / 2)
		fmt.Fprintf(a.out, "%-20s %3d  %5.1f%%  %s\n", b.Label, b.Votes, b.Percent, strings.Repeat("#", width))
	}
	fmt.Fprintf(a.out, "total votes: %d\n", results.TotalVotes)
}
