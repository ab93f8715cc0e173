package betting

import (
	"errors"
	"fmt"
)

// UserError is an error that is safe to report back to the requesting user
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrNotYourTurn is an error when the caller is not the current actor
var ErrNotYourTurn = UserError("it is not your turn")

// ErrInsufficientFunds is an error when the caller cannot cover the requested amount
var ErrInsufficientFunds = UserError("insufficient funds")

// ErrRoundOver is an error when an action is attempted after the round completed
var ErrRoundOver = UserError("betting round is over")

// IllegalActionError is an error when the requested action is not in the legal set
type IllegalActionError struct {
	Type   Type
	Reason string
}

func (e IllegalActionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Type, e.Reason)
}

func newIllegalAction(t Type, format string, a ...interface{}) IllegalActionError {
	return IllegalActionError{
		Type:   t,
		Reason: fmt.Sprintf(format, a...),
	}
}

// IsIllegalAction returns true if the error is an IllegalActionError
func IsIllegalAction(err error) bool {
	var iae IllegalActionError
	return errors.As(err, &iae)
}
