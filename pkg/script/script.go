package script

import (
	"reflect"

	"github.com/jwebster45206/novel-script/pkg/command"
)

// PageKind distinguishes spoken lines from command batches.
type PageKind int

const (
	PageDialogue PageKind = iota + 1
	PageCommands
)

func (k PageKind) String() string {
	switch k {
	case PageDialogue:
		return "dialogue"
	case PageCommands:
		return "commands"
	default:
		return "unknown"
	}
}

// DialogueLine is a spoken page. An empty Speaker hides the nameplate.
type DialogueLine struct {
	Speaker string
	Body    string
}

// Page is exactly one of a dialogue line or a command block.
type Page struct {
	Line     *DialogueLine
	Commands []command.Token
}

func (p Page) Kind() PageKind {
	if p.Line != nil {
		return PageDialogue
	}
	return PageCommands
}

// SubScene is a labeled, jumpable queue of pages.
type SubScene struct {
	Label string
	Pages []Page
}

// Script is a parsed, validated script. It is never modified after Parse.
type Script struct {
	subscenes map[string]*SubScene
	order     []string
}

// SubScene looks up a subscene by label.
func (s *Script) SubScene(label string) (*SubScene, bool) {
	sub, ok := s.subscenes[label]
	return sub, ok
}

// EntryLabel is the label of the first parsed subscene, where playback
// starts. It is "" when the script begins with unlabeled pages.
func (s *Script) EntryLabel() string {
	return s.order[0]
}

// Labels returns subscene labels in the order they were parsed.
func (s *Script) Labels() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// PageCount is the total number of pages across all subscenes.
func (s *Script) PageCount() int {
	n := 0
	for _, sub := range s.subscenes {
		n += len(sub.Pages)
	}
	return n
}

// Equal reports whether two scripts have the same structure.
func (s *Script) Equal(other *Script) bool {
	if s == nil || other == nil {
		return s == other
	}
	return reflect.DeepEqual(s.order, other.order) &&
		reflect.DeepEqual(s.subscenes, other.subscenes)
}
