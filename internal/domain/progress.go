package domain

import "time"

// ProgressEntry summarizes one completed session for the progress screen.
type ProgressEntry struct {
	Week    int           `json:"week"`
	Date    time.Time     `json:"date"`
	Day     string        `json:"day"` // e.g. "Mon Feb 8"
	Percent int           `json:"percent"`
	Label   string        `json:"label"`
	Color   FeedbackColor `json:"color"`
}

// breakPenalty is the completion deducted per break, capped at maxBreakPenalty.
const (
	breakPenalty    = 10
	maxBreakPenalty = 50
)

// NewProgressEntry derives a progress entry from the feedback that closed week.
func NewProgressEntry(week int, at time.Time, fb SessionFeedback) ProgressEntry {
	penalty := fb.BreaksTaken * breakPenalty
	if penalty > maxBreakPenalty {
		penalty = maxBreakPenalty
	}
	return ProgressEntry{
		Week:    week,
		Date:    at,
		Day:     at.Format("Mon Jan 2"),
		Percent: 100 - penalty,
		Label:   progressLabel(fb.Color),
		Color:   fb.Color,
	}
}

func progressLabel(c FeedbackColor) string {
	switch c {
	case FeedbackGreen:
		return "Perfect Day!"
	case FeedbackYellow:
		return "Steady Progress"
	default:
		return "Great Effort"
	}
}
