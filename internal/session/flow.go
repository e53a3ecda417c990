// Package session steps a user through a plan's exercises and collects the
// rating that closes the session.
package session

import (
	"errors"
	"fmt"

	"selfcc/care-app/internal/domain"
)

// State of a Flow.
type State string

const (
	StatePlaying   State = "playing"
	StateFeedback  State = "feedback"
	StateSubmitted State = "submitted" // Terminal: feedback handed to the caller
	StateCancelled State = "cancelled" // Terminal: no feedback produced
)

// Mode is how exercises are demonstrated.
type Mode string

const (
	ModeDiagram Mode = "diagram"
	ModeVideo   Mode = "video"
)

// ParseMode validates a wire value. An empty value means video.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDiagram, ModeVideo:
		return m, nil
	case "":
		return ModeVideo, nil
	default:
		return "", fmt.Errorf("unknown session mode %q", s)
	}
}

// Defaults for a fresh feedback form.
const (
	defaultPain = 0
	defaultEase = 5
)

var (
	ErrNoExercises       = errors.New("session needs at least one exercise")
	ErrNotPlaying        = errors.New("session is not playing")
	ErrNotCollecting     = errors.New("session is not collecting feedback")
	ErrColorRequired     = errors.New("a feedback color must be chosen before submitting")
	ErrAlreadySubmitted  = errors.New("feedback was already submitted")
	ErrRatingOutOfBounds = errors.New("rating must be between 0 and 10")
)

// Flow is the state machine behind one exercise session. It is not safe for
// concurrent use; callers serialize access.
type Flow struct {
	exercises []domain.Exercise
	mode      Mode
	state     State
	index     int

	color    domain.FeedbackColor // Empty until chosen
	pain     int
	ease     int
	breaks   int
	comments string
}

// New starts a session in the playing state at the first exercise.
func New(exercises []domain.Exercise, mode Mode) (*Flow, error) {
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}
	return &Flow{
		exercises: domain.CloneExercises(exercises),
		mode:      mode,
		state:     StatePlaying,
		pain:      defaultPain,
		ease:      defaultEase,
	}, nil
}

func (f *Flow) State() State { return f.state }
func (f *Flow) Mode() Mode   { return f.mode }
func (f *Flow) Index() int   { return f.index }
func (f *Flow) Total() int   { return len(f.exercises) }

// Exercises returns a copy of the session's exercises.
func (f *Flow) Exercises() []domain.Exercise {
	return domain.CloneExercises(f.exercises)
}

// Current returns the exercise being performed. ok is false outside playing.
func (f *Flow) Current() (ex domain.Exercise, ok bool) {
	if f.state != StatePlaying {
		return domain.Exercise{}, false
	}
	return f.exercises[f.index], true
}

// IsLast reports whether the current exercise is the final one.
func (f *Flow) IsLast() bool {
	return f.index == len(f.exercises)-1
}

// Next advances to the following exercise, or to feedback collection after the
// last one. The index never reaches Total().
func (f *Flow) Next() error {
	if f.state != StatePlaying {
		return ErrNotPlaying
	}
	if f.index < len(f.exercises)-1 {
		f.index++
		return nil
	}
	f.state = StateFeedback
	return nil
}

// Cancel abandons the session. Only allowed while playing.
func (f *Flow) Cancel() error {
	if f.state != StatePlaying {
		return ErrNotPlaying
	}
	f.state = StateCancelled
	return nil
}

func (f *Flow) collecting() error {
	switch f.state {
	case StateFeedback:
		return nil
	case StateSubmitted:
		return ErrAlreadySubmitted
	default:
		return ErrNotCollecting
	}
}

// SelectColor records the qualitative rating.
func (f *Flow) SelectColor(c domain.FeedbackColor) error {
	if err := f.collecting(); err != nil {
		return err
	}
	f.color = c
	return nil
}

// SetPain records the pain level.
func (f *Flow) SetPain(level int) error {
	if err := f.collecting(); err != nil {
		return err
	}
	if level < domain.MinRating || level > domain.MaxRating {
		return ErrRatingOutOfBounds
	}
	f.pain = level
	return nil
}

// SetEase records the ease rating.
func (f *Flow) SetEase(rating int) error {
	if err := f.collecting(); err != nil {
		return err
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return ErrRatingOutOfBounds
	}
	f.ease = rating
	return nil
}

// SetComments records optional free text.
func (f *Flow) SetComments(text string) error {
	if err := f.collecting(); err != nil {
		return err
	}
	f.comments = text
	return nil
}

// IncrementBreaks adds one break. There is no upper bound.
func (f *Flow) IncrementBreaks() error {
	if err := f.collecting(); err != nil {
		return err
	}
	f.breaks++
	return nil
}

// DecrementBreaks removes one break, stopping at zero.
func (f *Flow) DecrementBreaks() error {
	if err := f.collecting(); err != nil {
		return err
	}
	f.breaks = max(0, f.breaks-1)
	return nil
}

// CanSubmit is true once a color has been chosen in the feedback state.
func (f *Flow) CanSubmit() bool {
	return f.state == StateFeedback && f.color != ""
}

// Draft returns the feedback collected so far. Color may be empty.
func (f *Flow) Draft() domain.SessionFeedback {
	return domain.SessionFeedback{
		Color:       f.color,
		PainLevel:   f.pain,
		EaseRating:  f.ease,
		BreaksTaken: f.breaks,
		Comments:    f.comments,
	}
}

// Submit finalizes the session and returns its feedback.
func (f *Flow) Submit() (domain.SessionFeedback, error) {
	if err := f.collecting(); err != nil {
		return domain.SessionFeedback{}, err
	}
	if f.color == "" {
		return domain.SessionFeedback{}, ErrColorRequired
	}
	f.state = StateSubmitted
	return f.Draft(), nil
}
