package session

import (
	"errors"
	"fmt"

	"github.com/eduos-project/proctor-backend/internal/model"
)

// ErrControllerStopped is returned when a command is posted after the
// controller's event loop has exited.
var ErrControllerStopped = errors.New("session controller stopped")

// AuthError reports a credential mismatch on Start. It never changes session
// state and does not count as an integrity violation.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// StateError reports a command arriving while the session is not in a state
// that accepts it. Caller misuse; the session is left untouched.
type StateError struct {
	State   model.SessionState
	Command string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("command %q not accepted in state %s", e.Command, e.State)
}
