package services

import (
	"context"
	"errors"

	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
)

// AuthService owns the session lifecycle. The session itself is an
// explicit injected value shared with the other services; the store is
// only touched at the load/save boundary.
type AuthService struct {
	gateway ports.Gateway
	store   ports.SessionStore
	nav     *Navigator
	session *domain.Session
}

func NewAuthService(gateway ports.Gateway, store ports.SessionStore, nav *Navigator, session *domain.Session) *AuthService {
	return &AuthService{
		gateway: gateway,
		store:   store,
		nav:     nav,
		session: session,
	}
}

// Restore reads the persisted slot once at startup. A well-formed session
// lands on its role dashboard; anything else leaves the user anonymous on
// home. A malformed slot is cleared so it cannot poison the next start.
func (s *AuthService) Restore() {
	session, err := s.store.Load()
	if err != nil {
		if errors.Is(err, domain.ErrMalformedSession) {
			_ = s.store.Clear()
		}
		*s.session = domain.Session{}
		s.nav.NavigateTo(domain.ViewHome, "")
		return
	}
	*s.session = session
	s.nav.NavigateTo(session.Dashboard(), "")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User domain.Session `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) error {
	var resp loginResponse
	err := s.gateway.PostJSON(ctx, "/login", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, &resp)
	if err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Login failed. Please try again."))
		return err
	}
	if !resp.User.Present() {
		err := errors.New("login response carried no usable user")
		s.nav.SetMessage(domain.Feedback(err, "Login failed. Please try again."))
		return err
	}

	*s.session = resp.User
	saveErr := s.store.Save(resp.User)
	s.nav.NavigateTo(resp.User.Dashboard(), "")
	if saveErr != nil {
		// Logged in for this run only; the slot write failed.
		s.nav.SetMessage(domain.Failure("Logged in, but the session could not be persisted."))
	}
	return nil
}

type signupRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signup registers the account and routes to the login screen; it never
// authenticates by itself.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) error {
	var resp messageResponse
	err := s.gateway.PostJSON(ctx, "/signup", signupRequest{
		Username: input.Username,
		Password: input.Password,
		Role:     input.Role,
	}, &resp)
	if err != nil {
		s.nav.SetMessage(domain.Feedback(err, "Signup failed. Please try again."))
		return err
	}

	s.nav.NavigateTo(domain.ViewLogin, "")
	if resp.Message != "" {
		s.nav.SetMessage(domain.Info(resp.Message))
	} else {
		s.nav.SetMessage(domain.Info("Signup successful. Please log in."))
	}
	return nil
}

func (s *AuthService) Logout() {
	_ = s.store.Clear()
	*s.session = domain.Session{}
	s.nav.NavigateTo(domain.ViewHome, "")
}
