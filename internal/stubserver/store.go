package stubserver

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type poll struct {
	ID             string
	Question       string
	Options        []string
	EligibleVoters map[string]struct{}
	CreatorID      string
	CreatorName    string
	Active         bool
	StartTime      time.Time
	EndTime        time.Time
}

type account struct {
	Username     string
	PasswordHash string
	Role         string
}

// store holds everything the stub knows, guarded by one mutex. Nothing
// survives a restart.
type store struct {
	mu       sync.Mutex
	polls    map[string]*poll
	accounts map[string]account
	ledger   *ledger
}

func newStore() *store {
	return &store{
		polls:    make(map[string]*poll),
		accounts: make(map[string]account),
		ledger:   newLedger(),
	}
}

// newID mirrors the reference backend's dashless UUIDs.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// splitList turns a comma- or newline-separated voter/option list into
// trimmed non-empty entries.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
