package wizard

import "context"

// Action is what happened to a field during a run.
type Action string

const (
	// ActionShown means the field's prompter was started.
	ActionShown Action = "shown"
	// ActionSkipped means the field was passed over without prompting.
	ActionSkipped Action = "skipped"
	// ActionAnswered means the field's prompter resolved and its value was stored.
	ActionAnswered Action = "answered"
	// ActionRewound means the user went back to the field; its previous value was restored.
	ActionRewound Action = "rewound"
)

// SkipReason explains an ActionSkipped event.
type SkipReason string

const (
	SkipHidden        SkipReason = "hidden"
	SkipNotApplicable SkipReason = "not_applicable"
)

// Event describes one field transition.
type Event struct {
	Action Action
	Path   string
	// Index is the field's position in the form.
	Index int
	// Step is the 1-based position among shown fields, zero for skips.
	Step int
	// Reason is set for ActionSkipped.
	Reason SkipReason
	// Value is the answer for ActionAnswered and the restored value, if any,
	// for ActionRewound.
	Value any
}

// Hook observes a run. Hooks are called synchronously from the engine loop
// and must not block.
type Hook interface {
	OnEvent(ctx context.Context, event Event)
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event)

func (f HookFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// Recorder is a Hook that keeps every event, for tests and debugging.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnEvent(_ context.Context, event Event) {
	r.Events = append(r.Events, event)
}

// Paths returns the paths of the recorded events with the given action, in order.
func (r *Recorder) Paths(action Action) []string {
	var paths []string

	for _, e := range r.Events {
		if e.Action == action {
			paths = append(paths, e.Path)
		}
	}

	return paths
}
