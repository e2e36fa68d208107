package command

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDomain     = errors.New("unknown command")
	ErrUnknownSubOp      = errors.New("unknown command operation")
	ErrArity             = errors.New("wrong number of command arguments")
	ErrUnterminatedQuote = errors.New("unterminated quoted argument")
	ErrBadNumber         = errors.New("invalid number")
	ErrTupleLength       = errors.New("wrong number of tuple components")
)

// DispatchError reports a token that could not be turned into an effect.
type DispatchError struct {
	Token string
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("failed to dispatch %q: %v", e.Token, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
