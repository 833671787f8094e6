package shared

// PostAction reports the outcome of a follow-up step that runs after the
// primary write has committed. A failed post-action never undoes the
// primary write.
type PostAction struct {
	Action    string `json:"action"`
	Attempted bool   `json:"attempted"`
	Err       error  `json:"-"`
}

// Succeeded reports whether the action ran without error
func (p PostAction) Succeeded() bool {
	return p.Attempted && p.Err == nil
}

// Failed reports whether the action ran and returned an error
func (p PostAction) Failed() bool {
	return p.Attempted && p.Err != nil
}

// ErrorMessage returns the failure text or an empty string
func (p PostAction) ErrorMessage() string {
	if p.Err == nil {
		return ""
	}
	return p.Err.Error()
}

// SkippedAction returns a post-action that did not need to run
func SkippedAction(action string) PostAction {
	return PostAction{Action: action}
}

// AttemptedAction returns a post-action that ran with the given result
func AttemptedAction(action string, err error) PostAction {
	return PostAction{Action: action, Attempted: true, Err: err}
}
