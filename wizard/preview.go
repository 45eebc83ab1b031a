package wizard

// VisibleFields returns, in form order, the paths whose predicate holds and
// whose binder produces a prompter for snap. Nothing is prompted: bound
// prompters are disposed straight away. Evaluation failures are returned as
// *EvaluationError, exactly as a run would report them.
//
// Unlike a run, every field is judged against the same snapshot; answers are
// not applied in between.
func VisibleFields(form *Form, snap Snapshot) ([]string, error) {
	form.mu.Lock()
	fields := append([]*field(nil), form.fields...)
	form.mu.Unlock()

	var visible []string

	for _, fld := range fields {
		shown, err := isVisible(fld, snap)
		if err != nil {
			return nil, err
		}

		if shown {
			visible = append(visible, fld.path)
		}
	}

	return visible, nil
}

func isVisible(fld *field, snap Snapshot) (bool, error) {
	if fld.config.showWhen != nil {
		ok, err := evaluate(fld, StageShowWhen, func() (bool, error) {
			return fld.config.showWhen(snap)
		})
		if err != nil || !ok {
			return false, err
		}
	}

	bound, err := evaluate(fld, StageBind, func() (step, error) {
		return fld.bind(snap)
	})
	if err != nil || bound == nil {
		return false, err
	}

	return true, bound.dispose()
}
