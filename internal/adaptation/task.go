package adaptation

import "context"

// Task is an in-flight adaptation request. It settles exactly once, either
// resolved with a Result or rejected with an error.
type Task struct {
	done   chan struct{}
	result Result
	err    error
}

// Go runs fn on its own goroutine and returns the task tracking it.
func Go(ctx context.Context, fn func(context.Context) (Result, error)) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = fn(ctx)
	}()
	return t
}

// Done is closed once the task has settled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task settles.
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}
