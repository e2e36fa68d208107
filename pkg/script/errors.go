package script

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyScript       = errors.New("script has no pages to play")
	ErrEmptyLabel        = errors.New("subscene label is empty")
	ErrDuplicateLabel    = errors.New("duplicate subscene label")
	ErrMalformedDialogue = errors.New("malformed dialogue page")
	ErrEmptyCommandBlock = errors.New("command page has no commands")
	ErrUnknownLabel      = errors.New("unknown label")
)

// ParseError reports a load-time problem with a script. Page is -1 when the
// problem is not tied to a single page.
type ParseError struct {
	Label string
	Page  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Label != "" {
		fmt.Fprintf(&b, " in subscene %q", e.Label)
	}
	if e.Page >= 0 {
		fmt.Fprintf(&b, " page %d", e.Page)
	}
	if e.Token != "" {
		fmt.Fprintf(&b, " at %q", e.Token)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
