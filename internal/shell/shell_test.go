package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/session"
)

func newFlow(t *testing.T) *session.Flow {
	t.Helper()
	f, err := session.New([]domain.Exercise{{ID: "1", Reps: 10}, {ID: "2", Reps: 8}}, session.ModeVideo)
	require.NoError(t, err)
	return f
}

func TestNew_StartsOnDashboard(t *testing.T) {
	s := New()
	assert.Equal(t, KindDashboard, s.View().Kind())
	assert.Nil(t, s.Generating())
}

func TestNavigate_AllNavItems(t *testing.T) {
	s := New()
	for _, item := range NavItems() {
		require.NoError(t, s.Navigate(item.View))
		assert.Equal(t, item.View, s.View().Kind())
	}
}

func TestNavigate_SessionIsNotATarget(t *testing.T) {
	s := New()
	err := s.Navigate(KindSession)
	assert.ErrorIs(t, err, ErrNotNavigable)
	assert.ErrorIs(t, s.Navigate("settings"), ErrNotNavigable)
	assert.Equal(t, KindDashboard, s.View().Kind())
}

func TestViewVariants(t *testing.T) {
	views := []View{DashboardView{}, PlanView{}, BuddiesView{}, ProgressView{}, SessionView{}}
	kinds := map[ViewKind]bool{}
	for _, v := range views {
		kinds[v.Kind()] = true
	}
	assert.Len(t, kinds, 5)
}

func TestStartAndCancelSession(t *testing.T) {
	s := New()
	flow := newFlow(t)

	require.NoError(t, s.StartSession(flow))
	assert.Equal(t, KindSession, s.View().Kind())
	got, err := s.Session()
	require.NoError(t, err)
	assert.Same(t, flow, got)

	require.NoError(t, s.CancelSession())
	assert.Equal(t, KindPlan, s.View().Kind())
	assert.Equal(t, session.StateCancelled, flow.State())
	_, err = s.Session()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCancelSession_NotDuringFeedback(t *testing.T) {
	s := New()
	flow := newFlow(t)
	require.NoError(t, s.StartSession(flow))
	require.NoError(t, flow.Next())
	require.NoError(t, flow.Next())

	assert.ErrorIs(t, s.CancelSession(), session.ErrNotPlaying)
	assert.Equal(t, KindSession, s.View().Kind())
}

func TestOverlay_PreemptsNavigation(t *testing.T) {
	s := New()
	require.NoError(t, s.StartSession(newFlow(t)))
	require.NoError(t, s.BeginGenerating("Reviewing your performance..."))

	assert.ErrorIs(t, s.Navigate(KindPlan), ErrGenerating)
	assert.ErrorIs(t, s.StartSession(newFlow(t)), ErrGenerating)
	assert.ErrorIs(t, s.CancelSession(), ErrGenerating)
	assert.ErrorIs(t, s.BeginGenerating("again"), ErrGenerating)

	require.NoError(t, s.UpdateOverlay("Success! Your new plan is ready."))
	require.NotNil(t, s.Generating())
	assert.Equal(t, "Success! Your new plan is ready.", s.Generating().Message)

	s.Dismiss("")
	assert.Nil(t, s.Generating())
	assert.Equal(t, KindDashboard, s.View().Kind())
	assert.NoError(t, s.Navigate(KindPlan))
}

func TestUpdateOverlay_RequiresOverlay(t *testing.T) {
	assert.ErrorIs(t, New().UpdateOverlay("x"), ErrNoOverlay)
}

func TestDismiss_NoticeClearedOnNavigate(t *testing.T) {
	s := New()
	require.NoError(t, s.BeginGenerating("x"))
	s.Dismiss("We couldn't save your new plan.")
	assert.Equal(t, "We couldn't save your new plan.", s.Notice())

	require.NoError(t, s.Navigate(KindBuddies))
	assert.Empty(t, s.Notice())
}

func TestGenerating_ReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.BeginGenerating("a"))
	o := s.Generating()
	o.Message = "b"
	assert.Equal(t, "a", s.Generating().Message)
}
