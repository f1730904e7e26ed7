package ports

import (
	"context"

	"github.com/pollbooth/pollbooth/internal/core/domain"
)

// SessionStore is the single persisted client slot holding the serialized
// session. Load returns domain.ErrNoSession when the slot is empty and
// domain.ErrMalformedSession when it cannot be decoded.
type SessionStore interface {
	Load() (domain.Session, error)
	Save(domain.Session) error
	Clear() error
}

type Credentials struct {
	Username string
	Password string
}

type SignupInput struct {
	Credentials
	Role domain.Role
}

type AuthService interface {
	// Restore populates the session from the store at startup and picks the
	// initial view. It never fails hard: a missing or malformed slot leaves
	// the session anonymous on the home view.
	Restore()
	Login(ctx context.Context, creds Credentials) error
	Signup(ctx context.Context, input SignupInput) error
	Logout()
}
