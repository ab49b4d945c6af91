package podcast

import "blogcast/runner"

// State is what the user-facing surface shows for a request
type State string

const (
	StateRejected State = "rejected"
	StateSuccess  State = "success"
	StateError    State = "error"
)

// Status messages shown to the user
const (
	MsgSuccess  = "✅ Podcast generated successfully!"
	MsgRejected = "⚠️ Please enter a valid URL"
	errorPrefix = "❌ Error: "
)

// Outcome reduces an error from Generate to one of the three UI states and a status line
func Outcome(err error) (State, string) {
	switch {
	case err == nil:
		return StateSuccess, MsgSuccess
	case runner.IsValidation(err):
		return StateRejected, MsgRejected
	default:
		return StateError, errorPrefix + err.Error()
	}
}
