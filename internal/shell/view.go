// Package shell owns which screen a user is looking at.
package shell

import (
	"fmt"

	"selfcc/care-app/internal/session"
)

// ViewKind names a screen on the wire.
type ViewKind string

const (
	KindDashboard ViewKind = "dashboard"
	KindPlan      ViewKind = "plan"
	KindBuddies   ViewKind = "buddies"
	KindProgress  ViewKind = "progress"
	KindSession   ViewKind = "exercise-view"
)

// View is one of the five top-level screens. The set is closed: only the
// variants in this package implement it.
type View interface {
	Kind() ViewKind
	isView()
}

type DashboardView struct{}
type PlanView struct{}
type BuddiesView struct{}
type ProgressView struct{}

// SessionView is the active exercise session.
type SessionView struct {
	Flow *session.Flow
}

func (DashboardView) Kind() ViewKind { return KindDashboard }
func (PlanView) Kind() ViewKind      { return KindPlan }
func (BuddiesView) Kind() ViewKind   { return KindBuddies }
func (ProgressView) Kind() ViewKind  { return KindProgress }
func (SessionView) Kind() ViewKind   { return KindSession }

func (DashboardView) isView() {}
func (PlanView) isView()      {}
func (BuddiesView) isView()   {}
func (ProgressView) isView()  {}
func (SessionView) isView()   {}

// NavItem is an entry of the bottom navigation bar.
type NavItem struct {
	View  ViewKind `json:"view"`
	Label string   `json:"label"`
}

var navItems = []NavItem{
	{View: KindDashboard, Label: "Dashboard"},
	{View: KindPlan, Label: "My Care Plan"},
	{View: KindBuddies, Label: "Buddies"},
	{View: KindProgress, Label: "Progress"},
}

// NavItems lists the screens reachable from the navigation bar.
func NavItems() []NavItem {
	out := make([]NavItem, len(navItems))
	copy(out, navItems)
	return out
}

// navigable builds the view for a navigation target. The session screen is not
// a navigation target; it is entered by starting a session.
func navigable(kind ViewKind) (View, error) {
	switch kind {
	case KindDashboard:
		return DashboardView{}, nil
	case KindPlan:
		return PlanView{}, nil
	case KindBuddies:
		return BuddiesView{}, nil
	case KindProgress:
		return ProgressView{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotNavigable, kind)
	}
}
