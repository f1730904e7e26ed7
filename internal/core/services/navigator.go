package services

import (
	"github.com/pollbooth/pollbooth/internal/core/domain"
)

// Navigator owns the view state. Navigation always succeeds while the app
// runs; there is no terminal state. Role checks are not done here, the
// composition root asks CanNavigate before dispatching.
type Navigator struct {
	state   domain.ViewState
	message domain.Message
	gen     uint64
}

func NewNavigator() *Navigator {
	return &Navigator{state: domain.ViewState{Current: domain.ViewHome}}
}

// NavigateTo switches the screen, clears the transient message, and bumps
// the generation so responses still in flight for the previous screen are
// discarded when they land.
func (n *Navigator) NavigateTo(view domain.View, context string) {
	n.state = domain.ViewState{Current: view, Context: context}
	n.message = domain.Message{}
	n.gen++
}

func (n *Navigator) State() domain.ViewState {
	return n.state
}

func (n *Navigator) Message() domain.Message {
	return n.message
}

func (n *Navigator) SetMessage(m domain.Message) {
	n.message = m
}

// Generation identifies the current navigation epoch. A controller takes
// the value before issuing a request and checks StillCurrent when the
// response lands; a mismatch means the user navigated away meanwhile.
func (n *Navigator) Generation() uint64 {
	return n.gen
}

func (n *Navigator) StillCurrent(gen uint64) bool {
	return n.gen == gen
}

var anonymousViews = []domain.View{domain.ViewHome, domain.ViewLogin, domain.ViewSignup}
var creatorViews = []domain.View{domain.ViewCreatorDashboard, domain.ViewCreatePoll, domain.ViewAnalytics, domain.ViewHome}
var voterViews = []domain.View{domain.ViewVoterDashboard, domain.ViewHome}

// AllowedViews is the per-role view set of the Anonymous/Creator/Voter
// state machine, checked once at the composition root.
func AllowedViews(role domain.Role) []domain.View {
	switch role {
	case domain.RoleCreator:
		return creatorViews
	case domain.RoleVoter:
		return voterViews
	default:
		return anonymousViews
	}
}

func CanNavigate(role domain.Role, view domain.View) bool {
	for _, v := range AllowedViews(role) {
		if v == view {
			return true
		}
	}
	return false
}
