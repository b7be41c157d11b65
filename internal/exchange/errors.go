package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved means a currency token could not be mapped to a partner code
	ErrUnresolved = errors.New("currency not recognized")
	// ErrMalformedInput means the current step needs different free text, e.g. two currencies
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnexpectedInput means the input kind does not fit the current step
	ErrUnexpectedInput = errors.New("unexpected input for current step")
	// ErrNoConversation means there is no exchange in progress for the conversation
	ErrNoConversation = errors.New("no exchange in progress")
)

// UnresolvedError describes which token failed to resolve and why
type UnresolvedError struct {
	Token  string
	Method Method
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s %q (%s): %s", ErrUnresolved, e.Token, e.Method, e.Reason)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}
