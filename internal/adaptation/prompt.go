package adaptation

import (
	"encoding/json"
	"fmt"
	"strings"

	"selfcc/care-app/internal/domain"
)

// BuildPrompt renders the instruction sent to the model. The adjustment thresholds
// are advice to the model only; nothing checks that the reply follows them.
func BuildPrompt(exercises []domain.Exercise, fb domain.SessionFeedback) string {
	current, err := json.Marshal(exercises)
	if err != nil {
		// domain.Exercise only holds strings and ints.
		current = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("Analyze the user's exercise feedback and generate an ADAPTED plan for the next session.\n\n")
	b.WriteString("CURRENT PLAN:\n")
	b.Write(current)
	b.WriteString("\n\nUSER FEEDBACK:\n")
	fmt.Fprintf(&b, "- Status Color: %s (RED means very difficult/painful, GREEN means easy/good)\n", fb.Color)
	fmt.Fprintf(&b, "- Pain Level: %d/10\n", fb.PainLevel)
	fmt.Fprintf(&b, "- Ease Rating: %d/10\n", fb.EaseRating)
	fmt.Fprintf(&b, "- Breaks Taken: %d\n", fb.BreaksTaken)
	if c := strings.TrimSpace(fb.Comments); c != "" {
		fmt.Fprintf(&b, "- Comments: %q\n", c)
	}
	b.WriteString("\nGOAL:\n")
	b.WriteString("- If feedback is RED or Pain > 6 or Ease < 4, significantly reduce reps/sets or swap for easier exercises.\n")
	b.WriteString("- If feedback is YELLOW or moderate pain, slightly reduce volume.\n")
	b.WriteString("- If feedback is GREEN and Ease > 8, slightly increase reps or maintain.\n\n")
	b.WriteString("Return a new list of exercises with modified reps/sets. ")
	b.WriteString("Maintain the exercise icons as simple emoji characters like '🧘', '💪', '🏃'.\n")
	return b.String()
}
