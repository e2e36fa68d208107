package script

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/novel-script/pkg/command"
	"golang.org/x/text/unicode/norm"
)

// Reserved separators. None of them can be escaped.
const (
	SubSceneSep = '#'
	PageSep     = '&'
	BodyStart   = '「'
	BodyEnd     = '」'
)

// Parse tokenizes raw script text and validates it. Text before the first
// subscene separator forms an unlabeled entry subscene.
func Parse(raw string) (*Script, error) {
	raw = norm.NFC.String(raw)

	s := &Script{subscenes: make(map[string]*SubScene)}
	for i, block := range strings.Split(raw, string(SubSceneSep)) {
		if strings.TrimSpace(block) == "" {
			continue
		}

		pieces := strings.Split(block, string(PageSep))
		label := ""
		if i > 0 {
			label = strings.TrimSpace(pieces[0])
			pieces = pieces[1:]
			if label == "" {
				return nil, &ParseError{Page: -1, Token: strings.TrimSpace(block), Err: ErrEmptyLabel}
			}
		}
		if _, dup := s.subscenes[label]; dup {
			return nil, &ParseError{Label: label, Page: -1, Err: ErrDuplicateLabel}
		}

		sub, err := parseSubScene(label, pieces)
		if err != nil {
			return nil, err
		}
		s.subscenes[label] = sub
		s.order = append(s.order, label)
	}

	if len(s.order) == 0 || len(s.subscenes[s.order[0]].Pages) == 0 {
		return nil, &ParseError{Page: -1, Err: ErrEmptyScript}
	}

	if err := validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func parseSubScene(label string, pieces []string) (*SubScene, error) {
	sub := &SubScene{Label: label}
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		page, err := parsePage(piece)
		if err != nil {
			return nil, &ParseError{Label: label, Page: len(sub.Pages), Token: piece, Err: err}
		}
		sub.Pages = append(sub.Pages, page)
	}
	return sub, nil
}

func parsePage(text string) (Page, error) {
	if text[0] == command.Marker {
		return parseCommands(text[1:])
	}

	start := strings.IndexRune(text, BodyStart)
	if start < 0 {
		return Page{}, fmt.Errorf("%w: missing %q", ErrMalformedDialogue, BodyStart)
	}
	bodyFrom := start + len(string(BodyStart))
	end := strings.LastIndex(text, string(BodyEnd))
	if end < bodyFrom {
		return Page{}, fmt.Errorf("%w: missing %q", ErrMalformedDialogue, BodyEnd)
	}

	return Page{Line: &DialogueLine{
		Speaker: strings.TrimSpace(text[:start]),
		Body:    text[bodyFrom:end],
	}}, nil
}

func parseCommands(text string) (Page, error) {
	var tokens []command.Token
	for _, piece := range strings.Split(text, string(command.Marker)) {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		tokens = append(tokens, command.ParseToken(piece))
	}
	if len(tokens) == 0 {
		return Page{}, ErrEmptyCommandBlock
	}
	return Page{Commands: tokens}, nil
}
