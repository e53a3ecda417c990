// internal/domain/exercise.go
package domain

// Exercise is a single movement in a care plan. Plans hold exercises by value;
// two plans never share an Exercise.
type Exercise struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Reps        int    `bson:"reps" json:"reps"`
	Sets        int    `bson:"sets" json:"sets"`
	Icon        string `bson:"icon" json:"icon"` // Emoji glyph, opaque to the server
	Description string `bson:"description" json:"description"`
}

// CloneExercises returns a copy of the slice so callers can't alias plan contents.
func CloneExercises(exercises []Exercise) []Exercise {
	if exercises == nil {
		return nil
	}
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	return out
}
