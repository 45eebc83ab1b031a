package visualizer

// Options configures the diagram.
type Options struct {
	// ShowDependencies draws a dotted edge from each field to the fields
	// that declared a dependency on it.
	ShowDependencies bool

	// ShowDescriptions adds field descriptions under the path.
	ShowDescriptions bool

	// Direction controls diagram flow: "TD" (top-down) or "LR" (left-right)
	Direction string

	// HighlightPath highlights fields, e.g. the ones a particular run showed.
	HighlightPath []string
}

// DefaultOptions returns the options GenerateMermaid uses.
func DefaultOptions() Options {
	return Options{
		ShowDependencies: true,
		ShowDescriptions: true,
		Direction:        "TD",
	}
}

func (o Options) WithShowDependencies(show bool) Options {
	o.ShowDependencies = show

	return o
}

func (o Options) WithShowDescriptions(show bool) Options {
	o.ShowDescriptions = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets fields to highlight.
func (o Options) WithHighlightPath(paths []string) Options {
	o.HighlightPath = paths

	return o
}
