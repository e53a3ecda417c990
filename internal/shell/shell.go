package shell

import (
	"errors"

	"selfcc/care-app/internal/session"
)

var (
	ErrGenerating   = errors.New("a new plan is being generated")
	ErrNotNavigable = errors.New("view cannot be selected from navigation")
	ErrNoSession    = errors.New("no exercise session is active")
	ErrNoOverlay    = errors.New("overlay is not showing")
)

// Overlay is the transient "generating" screen. While it is up it hides
// whatever view is selected and blocks navigation.
type Overlay struct {
	Message string `json:"message"`
}

// Shell is the navigation state of one user: the selected view, the overlay and
// an optional notice for the dashboard. Not safe for concurrent use.
type Shell struct {
	view    View
	overlay *Overlay
	notice  string
}

// New returns a shell showing the dashboard.
func New() *Shell {
	return &Shell{view: DashboardView{}}
}

// View returns the selected view. While generating the overlay takes precedence;
// see Generating.
func (s *Shell) View() View { return s.view }

// Generating returns the overlay, or nil when none is up.
func (s *Shell) Generating() *Overlay {
	if s.overlay == nil {
		return nil
	}
	o := *s.overlay
	return &o
}

// Notice returns the message left by the last dismissal, if any.
func (s *Shell) Notice() string { return s.notice }

// Navigate selects one of the navigation screens. Leaving an active session this
// way abandons it.
func (s *Shell) Navigate(kind ViewKind) error {
	if s.overlay != nil {
		return ErrGenerating
	}
	v, err := navigable(kind)
	if err != nil {
		return err
	}
	s.view = v
	s.notice = ""
	return nil
}

// StartSession shows the session screen for flow.
func (s *Shell) StartSession(flow *session.Flow) error {
	if s.overlay != nil {
		return ErrGenerating
	}
	s.view = SessionView{Flow: flow}
	s.notice = ""
	return nil
}

// Session returns the active flow, if the session screen is selected.
func (s *Shell) Session() (*session.Flow, error) {
	sv, ok := s.view.(SessionView)
	if !ok || sv.Flow == nil {
		return nil, ErrNoSession
	}
	return sv.Flow, nil
}

// CancelSession cancels the active flow and returns to the plan screen.
func (s *Shell) CancelSession() error {
	if s.overlay != nil {
		return ErrGenerating
	}
	flow, err := s.Session()
	if err != nil {
		return err
	}
	if err := flow.Cancel(); err != nil {
		return err
	}
	s.view = PlanView{}
	return nil
}

// BeginGenerating raises the overlay. Only one may be up at a time, which is what
// keeps a second adaptation from starting.
func (s *Shell) BeginGenerating(message string) error {
	if s.overlay != nil {
		return ErrGenerating
	}
	s.overlay = &Overlay{Message: message}
	return nil
}

// UpdateOverlay replaces the overlay text.
func (s *Shell) UpdateOverlay(message string) error {
	if s.overlay == nil {
		return ErrNoOverlay
	}
	s.overlay.Message = message
	return nil
}

// Dismiss drops the overlay and lands on the dashboard with an optional notice.
func (s *Shell) Dismiss(notice string) {
	s.overlay = nil
	s.view = DashboardView{}
	s.notice = notice
}
