// internal/domain/care_plan.go
package domain

import "time"

// PlanStatus tracks whether the plan's session has been done.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanCompleted PlanStatus = "completed"
)

// CarePlan is one week of exercises. A new CarePlan is built for every adaptation
// cycle; existing values are never modified in place.
type CarePlan struct {
	ID         string           `bson:"planId" json:"id"`
	WeekNumber int              `bson:"weekNumber" json:"weekNumber"`
	Exercises  []Exercise       `bson:"exercises" json:"exercises"`
	Status     PlanStatus       `bson:"status" json:"status"`
	Feedback   *SessionFeedback `bson:"feedback,omitempty" json:"feedback,omitempty"` // From the session that produced this plan
	Rationale  string           `bson:"rationale,omitempty" json:"rationale,omitempty"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
}

// WithStatus returns a copy of the plan carrying the given status.
func (p CarePlan) WithStatus(status PlanStatus) CarePlan {
	p.Exercises = CloneExercises(p.Exercises)
	p.Status = status
	return p
}

// Next builds the plan that follows p once a session has been rated.
func (p CarePlan) Next(id string, exercises []Exercise, feedback SessionFeedback, rationale string, now time.Time) CarePlan {
	fb := feedback
	return CarePlan{
		ID:         id,
		WeekNumber: p.WeekNumber + 1,
		Exercises:  CloneExercises(exercises),
		Status:     PlanPending,
		Feedback:   &fb,
		Rationale:  rationale,
		CreatedAt:  now,
	}
}
