// Package stubserver is a local, in-memory stand-in for the remote
// polling backend. It speaks the full wire API with the reference
// semantics (dashless ids, eligibility sets, ledger-backed tallies, the
// exact error strings) so the client can be developed and integration
// tested without the real service.
package stubserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	store  *store
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Server {
	return &Server{
		store:  newStore(),
		logger: logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/signup", s.signup)
	r.Post("/login", s.login)
	r.Post("/create_poll", s.createPoll)
	r.Post("/vote", s.vote)
	r.Post("/results", s.results)
	r.Post("/end_poll", s.endPoll)
	r.Post("/close_poll", s.closePoll)
	r.Get("/poll_status/{pollID}", s.pollStatus)
	r.Get("/my_polls/{username}", s.myPolls)
	r.Get("/analytics/{pollID}", s.analytics)
	r.Get("/export_results/{pollID}", s.exportResults)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}
	if req.Role != "creator" && req.Role != "voter" {
		writeError(w, http.StatusBadRequest, "Role must be creator or voter.")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.accounts[req.Username]; exists {
		writeError(w, http.StatusConflict, "Username is already taken.")
		return
	}
	s.store.accounts[req.Username] = account{
		Username:     req.Username,
		PasswordHash: hashPassword(req.Password),
		Role:         req.Role,
	}
	s.logger.Info().Str("username", req.Username).Str("role", req.Role).Msg("account created")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signup successful. Please log in."})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	acct, ok := s.store.accounts[req.Username]
	if !ok || acct.PasswordHash != hashPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{"username": acct.Username, "role": acct.Role},
	})
}

func (s *Server) createPoll(w http.ResponseWriter, r *http.Request) {
	var question, options, voters, startRaw, endRaw, username string
	var votersFromFile []string
	hasFile := false

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "Missing values")
			return
		}
		question = r.FormValue("question")
		options = r.FormValue("options")
		voters = r.FormValue("voters")
		startRaw = r.FormValue("start_time")
		endRaw = r.FormValue("end_time")
		username = r.FormValue("username")

		file, _, err := r.FormFile("voters_file")
		if err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(file)
			if readErr != nil {
				writeError(w, http.StatusBadRequest, "The voter file could not be read.")
				return
			}
			votersFromFile = splitList(string(data))
			hasFile = true
		}
	} else {
		var req struct {
			Question  string `json:"question"`
			Options   string `json:"options"`
			Voters    string `json:"voters"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
			Username  string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing values")
			return
		}
		question, options, voters = req.Question, req.Options, req.Voters
		startRaw, endRaw, username = req.StartTime, req.EndTime, req.Username
	}

	if question == "" || options == "" {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}
	// Exactly one voter-list source. The client enforces this too; the
	// stub makes it a server-side invariant as well.
	if hasFile && strings.TrimSpace(voters) != "" {
		writeError(w, http.StatusBadRequest, "Provide either a voter list or a voter file, not both.")
		return
	}
	voterList := votersFromFile
	if !hasFile {
		voterList = splitList(voters)
	}
	if len(voterList) == 0 {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}

	var startTime, endTime time.Time
	var err error
	if startRaw != "" {
		if startTime, err = time.Parse(time.RFC3339, startRaw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start or end time.")
			return
		}
	}
	if endRaw != "" {
		if endTime, err = time.Parse(time.RFC3339, endRaw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start or end time.")
			return
		}
	}

	p := &poll{
		ID:             newID(),
		Question:       question,
		Options:        splitList(options),
		EligibleVoters: make(map[string]struct{}, len(voterList)),
		CreatorID:      newID(),
		CreatorName:    username,
		Active:         true,
		StartTime:      startTime,
		EndTime:        endTime,
	}
	for _, v := range voterList {
		p.EligibleVoters[v] = struct{}{}
	}

	s.store.mu.Lock()
	s.store.polls[p.ID] = p
	s.store.mu.Unlock()

	s.logger.Info().Str("poll_id", p.ID).Int("voters", len(p.EligibleVoters)).Msg("poll created")
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":    "Poll created successfully.",
		"poll_id":    p.ID,
		"creator_id": p.CreatorID,
	})
}

// effectiveActive folds the validity window into the manual flag: a poll
// past its end time no longer accepts votes even if never closed.
func effectiveActive(p *poll, now time.Time) bool {
	if !p.Active {
		return false
	}
	if !p.EndTime.IsZero() && now.After(p.EndTime) {
		return false
	}
	return true
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PollID    string `json:"poll_id"`
		VoterID   string `json:"voter_id"`
		Selection string `json:"selection"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}
	if req.PollID == "" || req.VoterID == "" || req.Selection == "" {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.polls[req.PollID]
	if !ok {
		writeError(w, http.StatusNotFound, "Poll not found.")
		return
	}
	now := time.Now()
	if !effectiveActive(p, now) {
		writeError(w, http.StatusForbidden, "This poll has ended.")
		return
	}
	if !p.StartTime.IsZero() && now.Before(p.StartTime) {
		writeError(w, http.StatusForbidden, "This poll has not started yet.")
		return
	}
	if _, eligible := p.EligibleVoters[req.VoterID]; !eligible {
		writeError(w, http.StatusForbidden, "You are not eligible to vote in this poll.")
		return
	}
	valid := false
	for _, opt := range p.Options {
		if opt == req.Selection {
			valid = true
			break
		}
	}
	if !valid {
		writeError(w, http.StatusBadRequest, "Invalid selection.")
		return
	}
	if s.store.ledger.hasVoted(req.PollID, req.VoterID) {
		writeError(w, http.StatusForbidden, "You have already voted in this poll.")
		return
	}

	s.store.ledger.addTransaction(transaction{
		VoterID:   req.VoterID,
		PollID:    req.PollID,
		Selection: req.Selection,
	})
	mined := s.store.ledger.mine()
	s.logger.Info().Str("poll_id", req.PollID).Int("block", mined.Index).Msg("vote recorded")

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Your vote has been successfully cast and recorded on the blockchain.",
	})
}

func (s *Server) results(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PollID    string `json:"poll_id"`
		CreatorID string `json:"creator_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PollID == "" {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.polls[req.PollID]
	if !ok {
		writeError(w, http.StatusNotFound, "Poll not found.")
		return
	}
	active := effectiveActive(p, time.Now())
	if active && req.CreatorID != p.CreatorID {
		writeError(w, http.StatusForbidden, "Results are not public yet. The poll is still active.")
		return
	}

	results, total := s.store.ledger.tally(p.ID, p.Options)
	writeJSON(w, http.StatusOK, map[string]any{
		"question":    p.Question,
		"results":     results,
		"total_votes": total,
		"is_active":   active,
	})
}

func (s *Server) endOrClose(w http.ResponseWriter, pollID string, authorize func(*poll) bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.polls[pollID]
	if !ok {
		writeError(w, http.StatusNotFound, "Poll not found.")
		return
	}
	if !authorize(p) {
		writeError(w, http.StatusForbidden, "Invalid creator ID. You do not have permission to end this poll.")
		return
	}
	p.Active = false
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Poll %s has been closed.", pollID),
	})
}

func (s *Server) endPoll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PollID    string `json:"poll_id"`
		CreatorID string `json:"creator_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PollID == "" || req.CreatorID == "" {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}
	s.endOrClose(w, req.PollID, func(p *poll) bool { return p.CreatorID == req.CreatorID })
}

func (s *Server) closePoll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PollID   string `json:"poll_id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PollID == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Missing values")
		return
	}
	s.endOrClose(w, req.PollID, func(p *poll) bool { return p.CreatorName == req.Username })
}

func (s *Server) pollStatus(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.polls[pollID]
	if !ok {
		writeError(w, http.StatusNotFound, "Poll not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question":  p.Question,
		"options":   p.Options,
		"is_active": effectiveActive(p, time.Now()),
	})
}

type pollSummaryResponse struct {
	PollID    string     `json:"poll_id"`
	Question  string     `json:"question"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	IsActive  bool       `json:"is_active"`
}

func (s *Server) myPolls(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	summaries := []pollSummaryResponse{}
	for _, p := range s.store.polls {
		if p.CreatorName != username {
			continue
		}
		summary := pollSummaryResponse{
			PollID:   p.ID,
			Question: p.Question,
			IsActive: p.Active,
		}
		if !p.StartTime.IsZero() {
			t := p.StartTime
			summary.StartTime = &t
		}
		if !p.EndTime.IsZero() {
			t := p.EndTime
			summary.EndTime = &t
		}
		summaries = append(summaries, summary)
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.polls[pollID]
	if !ok {
		writeError(w, http.StatusNotFound, "Poll not found.")
		return
	}

	results, total := s.store.ledger.tally(p.ID, p.Options)
	resp := map[string]any{
		"question":     p.Question,
		"results":      results,
		"total_votes":  total,
		"total_voters": len(p.EligibleVoters),
		"is_active":    effectiveActive(p, time.Now()),
	}
	if !p.StartTime.IsZero() {
		resp["start_time"] = p.StartTime
	}
	if !p.EndTime.IsZero() {
		resp["end_time"] = p.EndTime
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) exportResults(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.polls[pollID]
	if !ok {
		writeError(w, http.StatusNotFound, "Poll not found.")
		return
	}

	results, _ := s.store.ledger.tally(p.ID, p.Options)
	var sb strings.Builder
	sb.WriteString("option,votes\n")
	for _, opt := range p.Options {
		sb.WriteString(fmt.Sprintf("%q,%d\n", opt, results[opt]))
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=results_%s.csv", pollID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}
