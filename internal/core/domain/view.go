package domain

type View string

const (
	ViewHome             View = "home"
	ViewLogin            View = "login"
	ViewSignup           View = "signup"
	ViewCreatorDashboard View = "creatorDashboard"
	ViewCreatePoll       View = "createPoll"
	ViewAnalytics        View = "analytics"
	ViewVoterDashboard   View = "voterDashboard"
)

// ViewState is the current screen plus an optional context identifier.
// Context is meaningful only for views that need one (analytics carries
// the poll id being inspected); other views ignore it.
type ViewState struct {
	Current View
	Context string
}

// Message is transient user feedback. It is overwritten on every action
// and cleared on navigation.
type Message struct {
	Text    string
	IsError bool
}

func (m Message) Empty() bool {
	return m.Text == ""
}

func Info(text string) Message {
	return Message{Text: text}
}

func Failure(text string) Message {
	return Message{Text: text, IsError: true}
}
