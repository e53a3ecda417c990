package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"selfcc/care-app/internal/adaptation"
	"selfcc/care-app/internal/catalog"
	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/repository"
	"selfcc/care-app/internal/session"
	"selfcc/care-app/internal/shell"
	"selfcc/care-app/internal/storage"
)

// Overlay messages shown while a new plan is produced.
const (
	MsgReviewing = "Reviewing your performance..."
	MsgAdapting  = "Adapting your routines with Gemini AI..."
	MsgSuccess   = "Success! Your new plan is ready."
)

// NoticeAdaptationFailed is left on the dashboard when the new plan could not be kept.
const NoticeAdaptationFailed = "We couldn't save your new plan. Your previous plan is still active."

// DefaultOverlayDismiss is how long the success message stays up.
const DefaultOverlayDismiss = 2 * time.Second

var (
	ErrNoActiveSession = shell.ErrNoSession
	ErrGenerating      = shell.ErrGenerating
	ErrInvalidDelta    = errors.New("breaks delta must be 1 or -1")
	ErrServiceClosed   = errors.New("care service is shutting down")
)

// PlanAdapter produces the next exercise list. It always returns a usable
// result; failures are absorbed into the local fallback.
type PlanAdapter interface {
	Adapt(ctx context.Context, exercises []domain.Exercise, fb domain.SessionFeedback) adaptation.Result
}

// --- Payloads ---

// AppSnapshot is what the client needs to render its frame.
type AppSnapshot struct {
	View       shell.ViewKind  `json:"view"`
	Generating *shell.Overlay  `json:"generating,omitempty"`
	Notice     string          `json:"notice,omitempty"`
	Nav        []shell.NavItem `json:"nav"`
	WeekNumber int             `json:"weekNumber"`
}

// ExerciseStep is the exercise on screen plus its demo clip, if any.
type ExerciseStep struct {
	domain.Exercise
	VideoURL string `json:"videoUrl,omitempty"`
}

// SessionSnapshot describes the active session.
type SessionSnapshot struct {
	State     session.State          `json:"state"`
	Mode      session.Mode           `json:"mode"`
	Index     int                    `json:"index"`
	Total     int                    `json:"total"`
	IsLast    bool                   `json:"isLast"`
	Current   *ExerciseStep          `json:"current,omitempty"`
	Feedback  domain.SessionFeedback `json:"feedback"`
	CanSubmit bool                   `json:"canSubmit"`
}

// Encouragement is the buddy message shown on the dashboard.
type Encouragement struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// Dashboard is the home screen payload.
type Dashboard struct {
	UserName          string         `json:"userName"`
	WeekNumber        int            `json:"weekNumber"`
	ExerciseCount     int            `json:"exerciseCount"`
	CompletionPercent int            `json:"completionPercent"`
	Rationale         string         `json:"rationale,omitempty"`
	Encouragement     *Encouragement `json:"encouragement,omitempty"`
	Notice            string         `json:"notice,omitempty"`
}

// FeedbackPatch carries the form fields a client changed. Nil fields are left alone.
type FeedbackPatch struct {
	Color      *domain.FeedbackColor
	PainLevel  *int
	EaseRating *int
	Comments   *string
}

// CareService drives one user's way through plan, session, feedback and adaptation.
type CareService interface {
	Snapshot(ctx context.Context, userID primitive.ObjectID) (*AppSnapshot, error)
	Navigate(ctx context.Context, userID primitive.ObjectID, kind shell.ViewKind) (*AppSnapshot, error)
	Dashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error)
	Plan(ctx context.Context, userID primitive.ObjectID) (*domain.CarePlan, error)
	PlanHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.CarePlan, error)
	Buddies(ctx context.Context) []domain.Buddy
	Progress(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgressEntry, error)

	StartSession(ctx context.Context, userID primitive.ObjectID, mode session.Mode) (*SessionSnapshot, error)
	Session(ctx context.Context, userID primitive.ObjectID) (*SessionSnapshot, error)
	NextExercise(ctx context.Context, userID primitive.ObjectID) (*SessionSnapshot, error)
	CancelSession(ctx context.Context, userID primitive.ObjectID) (*AppSnapshot, error)
	UpdateFeedback(ctx context.Context, userID primitive.ObjectID, patch FeedbackPatch) (*SessionSnapshot, error)
	AdjustBreaks(ctx context.Context, userID primitive.ObjectID, delta int) (*SessionSnapshot, error)
	SubmitFeedback(ctx context.Context, userID primitive.ObjectID) (*AppSnapshot, error)

	// Close waits for in-flight adaptations. Pending overlays are dismissed at once.
	Close()
}

// CareOptions holds the optional collaborators of a care service.
type CareOptions struct {
	Media          storage.MediaStore // nil disables demo video links
	OverlayDismiss time.Duration      // Zero means DefaultOverlayDismiss
	Logger         *zap.Logger
	Now            func() time.Time
	NewPlanID      func() string
}

// userState is everything the server remembers about one user between requests.
type userState struct {
	mu    sync.Mutex
	shell *shell.Shell
	plan  *domain.CarePlan
}

type careService struct {
	plans   repository.CarePlanRepository
	users   repository.UserRepository
	catalog *catalog.Catalog
	adapter PlanAdapter
	media   storage.MediaStore
	logger  *zap.Logger

	overlayDismiss time.Duration
	now            func() time.Time
	newPlanID      func() string

	mu     sync.Mutex
	states map[primitive.ObjectID]*userState

	// lifecycle is held shared by SubmitFeedback and exclusively by Close, so
	// no adaptation is added to wg once Close has begun waiting.
	lifecycle sync.RWMutex
	closed    bool
	closing   chan struct{}
	wg        sync.WaitGroup
}

// NewCareService creates a new instance of careService.
func NewCareService(plans repository.CarePlanRepository, users repository.UserRepository, cat *catalog.Catalog, adapter PlanAdapter, opts CareOptions) CareService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewPlanID == nil {
		opts.NewPlanID = newPlanID
	}
	if opts.OverlayDismiss == 0 {
		opts.OverlayDismiss = DefaultOverlayDismiss
	}
	return &careService{
		plans:          plans,
		users:          users,
		catalog:        cat,
		adapter:        adapter,
		media:          opts.Media,
		logger:         opts.Logger,
		overlayDismiss: opts.OverlayDismiss,
		now:            opts.Now,
		newPlanID:      opts.NewPlanID,
		states:         make(map[primitive.ObjectID]*userState),
		closing:        make(chan struct{}),
	}
}

func newPlanID() string {
	return "plan-" + uuid.NewString()
}

// state returns the user's state with its lock held. The caller must unlock.
func (s *careService) state(ctx context.Context, userID primitive.ObjectID) (*userState, error) {
	s.mu.Lock()
	st, ok := s.states[userID]
	if !ok {
		st = &userState{shell: shell.New()}
		s.states[userID] = st
	}
	s.mu.Unlock()

	st.mu.Lock()
	if st.plan == nil {
		plan, err := s.loadPlan(ctx, userID)
		if err != nil {
			st.mu.Unlock()
			return nil, err
		}
		st.plan = plan
	}
	return st, nil
}

// loadPlan fetches the latest plan, seeding week one for a new user.
func (s *careService) loadPlan(ctx context.Context, userID primitive.ObjectID) (*domain.CarePlan, error) {
	plan, err := s.plans.GetLatest(ctx, userID)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading care plan: %w", err)
	}

	seed := domain.CarePlan{
		ID:         s.newPlanID(),
		WeekNumber: 1,
		Exercises:  s.catalog.Exercises(),
		Status:     domain.PlanPending,
		CreatedAt:  s.now(),
	}
	if _, err := s.plans.Create(ctx, userID, seed); err != nil {
		return nil, fmt.Errorf("seeding care plan: %w", err)
	}
	s.logger.Info("Seeded initial care plan", zap.String("user_id", userID.Hex()), zap.String("plan_id", seed.ID))
	return &seed, nil
}

func (st *userState) snapshot() *AppSnapshot {
	return &AppSnapshot{
		View:       st.shell.View().Kind(),
		Generating: st.shell.Generating(),
		Notice:     st.shell.Notice(),
		Nav:        shell.NavItems(),
		WeekNumber: st.plan.WeekNumber,
	}
}

// Snapshot returns the user's frame: selected view, overlay and notice.
func (s *careService) Snapshot(ctx context.Context, userID primitive.ObjectID) (*AppSnapshot, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return st.snapshot(), nil
}

// Navigate selects a navigation screen.
func (s *careService) Navigate(ctx context.Context, userID primitive.ObjectID, kind shell.ViewKind) (*AppSnapshot, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if err := st.shell.Navigate(kind); err != nil {
		return nil, err
	}
	return st.snapshot(), nil
}

// Dashboard assembles the home screen.
func (s *careService) Dashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	progress, err := s.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	dash := &Dashboard{
		UserName:      user.Name,
		WeekNumber:    st.plan.WeekNumber,
		ExerciseCount: len(st.plan.Exercises),
		Rationale:     st.plan.Rationale,
		Notice:        st.shell.Notice(),
	}
	if len(progress) > 0 {
		dash.CompletionPercent = progress[0].Percent
	}
	for _, b := range s.catalog.BuddyList() {
		if b.Status == domain.BuddyOnline && b.LastMessage != "" {
			dash.Encouragement = &Encouragement{From: b.Name, Message: b.LastMessage}
			break
		}
	}
	return dash, nil
}

// Plan returns the current plan.
func (s *careService) Plan(ctx context.Context, userID primitive.ObjectID) (*domain.CarePlan, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	plan := st.plan.WithStatus(st.plan.Status)
	return &plan, nil
}

// PlanHistory lists every plan the user was given, newest first. All but the
// current one are reported as completed.
func (s *careService) PlanHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.CarePlan, error) {
	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing care plans: %w", err)
	}
	for i := 1; i < len(plans); i++ {
		plans[i] = plans[i].WithStatus(domain.PlanCompleted)
	}
	return plans, nil
}

// Buddies returns the buddy list.
func (s *careService) Buddies(_ context.Context) []domain.Buddy {
	return s.catalog.BuddyList()
}

// Progress derives one entry per rated session from the plan history, newest first.
func (s *careService) Progress(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing care plans: %w", err)
	}
	entries := make([]domain.ProgressEntry, 0, len(plans))
	for _, p := range plans {
		if p.Feedback == nil {
			continue
		}
		// The feedback on a plan was given for the week before it.
		entries = append(entries, domain.NewProgressEntry(p.WeekNumber-1, p.CreatedAt, *p.Feedback))
	}
	return entries, nil
}

// --- Session ---

// StartSession opens a session over the current plan's exercises.
func (s *careService) StartSession(ctx context.Context, userID primitive.ObjectID, mode session.Mode) (*SessionSnapshot, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if st.shell.Generating() != nil {
		return nil, ErrGenerating
	}
	flow, err := session.New(st.plan.Exercises, mode)
	if err != nil {
		return nil, err
	}
	if err := st.shell.StartSession(flow); err != nil {
		return nil, err
	}
	s.logger.Debug("Session started",
		zap.String("user_id", userID.Hex()),
		zap.String("plan_id", st.plan.ID),
		zap.String("mode", string(mode)),
	)
	return s.sessionSnapshot(ctx, flow), nil
}

// Session returns the active session.
func (s *careService) Session(ctx context.Context, userID primitive.ObjectID) (*SessionSnapshot, error) {
	return s.withFlow(ctx, userID, func(*session.Flow) error { return nil })
}

// NextExercise advances the session, entering feedback after the last exercise.
func (s *careService) NextExercise(ctx context.Context, userID primitive.ObjectID) (*SessionSnapshot, error) {
	return s.withFlow(ctx, userID, (*session.Flow).Next)
}

// CancelSession abandons the session and shows the plan.
func (s *careService) CancelSession(ctx context.Context, userID primitive.ObjectID) (*AppSnapshot, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if err := st.shell.CancelSession(); err != nil {
		return nil, err
	}
	return st.snapshot(), nil
}

// UpdateFeedback applies the changed form fields. Nothing is applied if any
// field is rejected.
func (s *careService) UpdateFeedback(ctx context.Context, userID primitive.ObjectID, patch FeedbackPatch) (*SessionSnapshot, error) {
	return s.withFlow(ctx, userID, func(flow *session.Flow) error {
		if err := validatePatch(patch); err != nil {
			return err
		}
		if patch.Color != nil {
			if err := flow.SelectColor(*patch.Color); err != nil {
				return err
			}
		}
		if patch.PainLevel != nil {
			if err := flow.SetPain(*patch.PainLevel); err != nil {
				return err
			}
		}
		if patch.EaseRating != nil {
			if err := flow.SetEase(*patch.EaseRating); err != nil {
				return err
			}
		}
		if patch.Comments != nil {
			if err := flow.SetComments(*patch.Comments); err != nil {
				return err
			}
		}
		return nil
	})
}

func validatePatch(p FeedbackPatch) error {
	if p.Color != nil {
		if _, err := domain.ParseFeedbackColor(string(*p.Color)); err != nil {
			return err
		}
	}
	for _, v := range []*int{p.PainLevel, p.EaseRating} {
		if v != nil && (*v < domain.MinRating || *v > domain.MaxRating) {
			return session.ErrRatingOutOfBounds
		}
	}
	return nil
}

// AdjustBreaks counts a break up or down.
func (s *careService) AdjustBreaks(ctx context.Context, userID primitive.ObjectID, delta int) (*SessionSnapshot, error) {
	return s.withFlow(ctx, userID, func(flow *session.Flow) error {
		switch delta {
		case 1:
			return flow.IncrementBreaks()
		case -1:
			return flow.DecrementBreaks()
		default:
			return ErrInvalidDelta
		}
	})
}

// withFlow runs fn against the active session under the user's lock.
func (s *careService) withFlow(ctx context.Context, userID primitive.ObjectID, fn func(*session.Flow) error) (*SessionSnapshot, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	flow, err := st.shell.Session()
	if err != nil {
		return nil, err
	}
	if err := fn(flow); err != nil {
		return nil, err
	}
	return s.sessionSnapshot(ctx, flow), nil
}

func (s *careService) sessionSnapshot(ctx context.Context, flow *session.Flow) *SessionSnapshot {
	snap := &SessionSnapshot{
		State:     flow.State(),
		Mode:      flow.Mode(),
		Index:     flow.Index(),
		Total:     flow.Total(),
		IsLast:    flow.IsLast(),
		Feedback:  flow.Draft(),
		CanSubmit: flow.CanSubmit(),
	}
	if ex, ok := flow.Current(); ok {
		step := &ExerciseStep{Exercise: ex}
		if flow.Mode() == session.ModeVideo && s.media != nil {
			url, err := s.media.GeneratePresignedDownloadURL(ctx, storage.DemoVideoKey(ex.ID), storage.DefaultPresignedURLExpiry)
			if err != nil {
				s.logger.Warn("Failed to presign demo video", zap.String("exercise_id", ex.ID), zap.Error(err))
			} else {
				step.VideoURL = url
			}
		}
		snap.Current = step
	}
	return snap
}

// --- Adaptation ---

// SubmitFeedback hands the session's feedback to the adapter and raises the
// overlay. The new plan is published in the background; poll Snapshot to see
// the overlay clear.
func (s *careService) SubmitFeedback(ctx context.Context, userID primitive.ObjectID) (*AppSnapshot, error) {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.closed {
		return nil, ErrServiceClosed
	}

	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if st.shell.Generating() != nil {
		return nil, ErrGenerating
	}
	flow, err := st.shell.Session()
	if err != nil {
		return nil, err
	}
	fb, err := flow.Submit()
	if err != nil {
		return nil, err
	}

	if err := st.shell.BeginGenerating(MsgReviewing); err != nil {
		return nil, err
	}
	// Nothing happens between the two messages; both are kept for the client's sake.
	_ = st.shell.UpdateOverlay(MsgAdapting)

	current := st.plan.WithStatus(st.plan.Status)
	s.logger.Info("Feedback submitted",
		zap.String("user_id", userID.Hex()),
		zap.String("plan_id", current.ID),
		zap.String("color", string(fb.Color)),
		zap.Int("pain", fb.PainLevel),
		zap.Int("ease", fb.EaseRating),
		zap.Int("breaks", fb.BreaksTaken),
	)

	s.wg.Add(1)
	go s.adapt(userID, st, current, fb)

	return st.snapshot(), nil
}

// adapt runs one adaptation cycle and publishes its outcome on st. The request
// context is not used: the cycle outlives the HTTP call that started it.
func (s *careService) adapt(userID primitive.ObjectID, st *userState, current domain.CarePlan, fb domain.SessionFeedback) {
	defer s.wg.Done()
	ctx := context.Background()

	res := s.adapter.Adapt(ctx, current.Exercises, fb)
	next := current.Next(s.newPlanID(), res.Exercises, fb, res.Rationale, s.now())

	log := s.logger.With(zap.String("user_id", userID.Hex()), zap.String("plan_id", next.ID))
	if _, err := s.plans.Create(ctx, userID, next); err != nil {
		log.Error("Failed to save adapted plan", zap.Error(err))
		st.mu.Lock()
		st.shell.Dismiss(NoticeAdaptationFailed)
		st.mu.Unlock()
		return
	}
	log.Info("Care plan adapted",
		zap.Int("week", next.WeekNumber),
		zap.String("source", string(res.Source)),
		zap.Int("exercises", len(next.Exercises)),
	)

	st.mu.Lock()
	st.plan = &next
	_ = st.shell.UpdateOverlay(MsgSuccess)
	st.mu.Unlock()

	timer := time.NewTimer(s.overlayDismiss)
	select {
	case <-timer.C:
	case <-s.closing:
		timer.Stop()
	}

	st.mu.Lock()
	st.shell.Dismiss("")
	st.mu.Unlock()
}

// Close stops accepting submissions and waits for running adaptations.
func (s *careService) Close() {
	s.lifecycle.Lock()
	if !s.closed {
		s.closed = true
		close(s.closing)
	}
	s.lifecycle.Unlock()
	s.wg.Wait()
}
