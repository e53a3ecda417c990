package domain

import "fmt"

// FeedbackColor is the qualitative traffic-light rating picked after a session.
type FeedbackColor string

const (
	FeedbackRed    FeedbackColor = "RED"    // Very difficult or painful
	FeedbackYellow FeedbackColor = "YELLOW" // Manageable
	FeedbackGreen  FeedbackColor = "GREEN"  // Easy, felt good
)

// Rating bounds shared by pain and ease sliders.
const (
	MinRating = 0
	MaxRating = 10
)

// ParseFeedbackColor validates a wire value.
func ParseFeedbackColor(s string) (FeedbackColor, error) {
	switch c := FeedbackColor(s); c {
	case FeedbackRed, FeedbackYellow, FeedbackGreen:
		return c, nil
	default:
		return "", fmt.Errorf("unknown feedback color %q", s)
	}
}

// SessionFeedback is produced exactly once per completed session and is never
// mutated afterwards.
type SessionFeedback struct {
	Color       FeedbackColor `bson:"color" json:"color"`
	PainLevel   int           `bson:"painLevel" json:"painLevel"`
	EaseRating  int           `bson:"easeRating" json:"easeRating"`
	BreaksTaken int           `bson:"breaksTaken" json:"breaksTaken"`
	Comments    string        `bson:"comments,omitempty" json:"comments,omitempty"`
}
