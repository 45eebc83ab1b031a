package prompter

import "context"

// Host renders questions. Implementations live outside this package (a
// terminal UI, a promptui session, a scripted test double).
//
// Both methods must return promptly once ctx is done.
type Host interface {
	// Pick shows a list of choices and waits for the user to choose one.
	//
	// Choices arrive in batches on req.Items; the channel is closed once all
	// of them have been delivered, and until then the host should show a
	// loading indicator. Selection.Index refers to the concatenation of every
	// batch received so far.
	Pick(ctx context.Context, req PickRequest) (Selection, error)

	// Input asks for free-form text.
	Input(ctx context.Context, req InputRequest) (Entry, error)
}

// Choice is one entry in a pick list.
type Choice struct {
	Label       string
	Description string
	Detail      string

	// Picked marks the choice matching the previous answer, if any.
	Picked bool
}

// PickRequest describes a choice question.
type PickRequest struct {
	Title       string
	Placeholder string

	// Step and TotalSteps are zero when the prompter is used outside a wizard.
	Step       int
	TotalSteps int

	Items <-chan []Choice
}

// Selection is the host's answer to a PickRequest.
type Selection struct {
	Index     int
	Cancelled bool
}

// InputRequest describes a free-text question.
type InputRequest struct {
	Title       string
	Prompt      string
	Placeholder string

	// Value is the initial text of the input box.
	Value string

	Step       int
	TotalSteps int

	// Password asks the host to mask what is typed.
	Password bool

	// Validate reports why a candidate value is unacceptable, or nil.
	Validate func(string) error
}

// Entry is the host's answer to an InputRequest.
type Entry struct {
	Value     string
	Cancelled bool
}
