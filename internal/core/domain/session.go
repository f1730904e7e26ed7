package domain

type Role string

const (
	RoleCreator Role = "creator"
	RoleVoter   Role = "voter"
)

func (r Role) Valid() bool {
	return r == RoleCreator || r == RoleVoter
}

// Session is the logged-in identity. A zero Session means anonymous.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (s Session) Present() bool {
	return s.Username != "" && s.Role.Valid()
}

// Dashboard is the view a freshly restored or logged-in session lands on.
func (s Session) Dashboard() View {
	if s.Role == RoleCreator {
		return ViewCreatorDashboard
	}
	return ViewVoterDashboard
}
