package adaptation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"selfcc/care-app/internal/domain"
)

// FallbackRationale explains a plan produced without the model.
const FallbackRationale = "Failed to connect to AI. Applying safety reduction automatically."

// fallbackRepReduction and minReps define the local safety rule.
const (
	fallbackRepReduction = 2
	minReps              = 1
)

// Source tells where a Result came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a replacement exercise list plus the reasoning behind it.
type Result struct {
	Exercises []domain.Exercise `json:"exercises"`
	Rationale string            `json:"rationale"`
	Source    Source            `json:"-"`
}

// Requester turns a plan and its session feedback into the next exercise list.
type Requester struct {
	generator Generator
	logger    *zap.Logger
}

// NewRequester creates a requester on top of gen.
func NewRequester(gen Generator, logger *zap.Logger) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{generator: gen, logger: logger}
}

// Request performs one outbound call and returns the parsed reply as-is. Ranges
// and list length are not checked. Every failure wraps ErrAdaptationFailed.
func (r *Requester) Request(ctx context.Context, exercises []domain.Exercise, fb domain.SessionFeedback) (Result, error) {
	raw, err := r.generator.GenerateJSON(ctx, BuildPrompt(exercises, fb), ResponseSchema())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrAdaptationFailed, err)
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, fmt.Errorf("%w: %w", ErrAdaptationFailed, ErrEmptyResponse)
	}

	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, fmt.Errorf("%w: malformed reply: %v", ErrAdaptationFailed, err)
	}
	res.Source = SourceModel
	return res, nil
}

// Start issues Request as an asynchronous task.
func (r *Requester) Start(ctx context.Context, exercises []domain.Exercise, fb domain.SessionFeedback) *Task {
	exercises = domain.CloneExercises(exercises)
	return Go(ctx, func(ctx context.Context) (Result, error) {
		return r.Request(ctx, exercises, fb)
	})
}

// Adapt waits for the model and substitutes the fallback plan when the task is
// rejected. It always yields a Result.
func (r *Requester) Adapt(ctx context.Context, exercises []domain.Exercise, fb domain.SessionFeedback) Result {
	res, err := r.Start(ctx, exercises, fb).Wait()
	if err != nil {
		r.logger.Warn("adaptive plan request failed, applying fallback",
			zap.Error(err),
			zap.Int("exercises", len(exercises)),
			zap.String("color", string(fb.Color)),
		)
		return Fallback(exercises)
	}
	r.logger.Info("adaptive plan generated",
		zap.Int("exercises", len(res.Exercises)),
		zap.String("color", string(fb.Color)),
	)
	return res
}

// Fallback cuts every exercise by two reps, never below one. It ignores the
// feedback entirely.
func Fallback(exercises []domain.Exercise) Result {
	out := make([]domain.Exercise, len(exercises))
	for i, ex := range exercises {
		ex.Reps = max(minReps, ex.Reps-fallbackRepReduction)
		out[i] = ex
	}
	return Result{Exercises: out, Rationale: FallbackRationale, Source: SourceFallback}
}
