package playback

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoaded       = errors.New("no script loaded")
	ErrNoPendingChoice = errors.New("no choice is pending")
	ErrUnknownChoice   = errors.New("choice is not registered")
	ErrUnknownEntity   = errors.New("entity does not exist")
	ErrUnknownLabel    = errors.New("unknown label")
	ErrJumpCycle       = errors.New("jump cycle never reaches a line or choice")
)

// ScriptError aborts playback. Label and Page locate the command page that
// failed; effects issued before the failing token stay applied.
type ScriptError struct {
	Label string
	Page  int
	Token string
	Err   error
}

func (e *ScriptError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("script error in subscene %q page %d: %v", e.Label, e.Page, e.Err)
	}
	return fmt.Sprintf("script error in subscene %q page %d at %q: %v", e.Label, e.Page, e.Token, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// PresentationError is a failure reported by the Surface.
type PresentationError struct {
	Op  string
	Err error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("presentation %s failed: %v", e.Op, e.Err)
}

func (e *PresentationError) Unwrap() error {
	return e.Err
}
