package script

import (
	"fmt"

	"github.com/jwebster45206/novel-script/pkg/command"
)

// validate checks every command token up front so authoring errors surface
// before anything is shown: known command, valid arity, and jump/choice
// targets that name an existing subscene.
func validate(s *Script) error {
	for _, label := range s.order {
		for i, page := range s.subscenes[label].Pages {
			for _, tok := range page.Commands {
				if err := validateToken(s, tok); err != nil {
					return &ParseError{Label: label, Page: i, Token: tok.Raw, Err: err}
				}
			}
		}
	}
	return nil
}

func validateToken(s *Script, tok command.Token) error {
	cmd, err := command.Parse(tok)
	if err != nil {
		return err
	}

	target, ok, err := cmd.Label()
	if err != nil {
		return err
	}
	if ok {
		if _, exists := s.subscenes[target]; !exists {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, target)
		}
	}
	return nil
}

// Warning is a non-fatal authoring problem found by Lint.
type Warning struct {
	Label   string
	Page    int
	Token   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("subscene %q page %d %q: %s", w.Label, w.Page, w.Token, w.Message)
}

// Lint reports command targets that contain more than one domain keyword.
// They load fine but only the highest-priority domain is applied.
func Lint(s *Script) []Warning {
	var out []Warning
	for _, label := range s.order {
		for i, page := range s.subscenes[label].Pages {
			for _, tok := range page.Commands {
				domains := command.Domains(tok.Target)
				if len(domains) < 2 {
					continue
				}
				out = append(out, Warning{
					Label:   label,
					Page:    i,
					Token:   tok.Raw,
					Message: fmt.Sprintf("target matches %v; only %s is applied", domains, domains[0]),
				})
			}
		}
	}
	return out
}
