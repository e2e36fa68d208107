package command

import (
	"fmt"
	"strings"
)

const (
	Marker   = '!' // starts a command page and separates its tokens
	ArgSep   = '='
	opPrefix = "_"
)

// Domain is the family of presentation state a command acts on.
type Domain string

const (
	DomainBackground Domain = "background"
	DomainCharaImage Domain = "charaimg"
	DomainJump       Domain = "jump"
	DomainSelect     Domain = "select"
	DomainNone       Domain = ""
)

// domainPriority is the order targets are matched in. A target containing
// more than one keyword resolves to the first one listed here.
var domainPriority = []Domain{
	DomainBackground,
	DomainCharaImage,
	DomainJump,
	DomainSelect,
}

// SubOp is the operation applied within a domain.
type SubOp string

const (
	OpSprite   SubOp = "sprite"
	OpColor    SubOp = "color"
	OpSize     SubOp = "size"
	OpPosition SubOp = "position"
	OpRotation SubOp = "rotation"
	OpActive   SubOp = "active"
	OpDelete   SubOp = "delete"
	OpText     SubOp = "text"
	OpTo       SubOp = "to"
)

// subOpAliases maps every accepted spelling to its canonical SubOp.
var subOpAliases = map[string]SubOp{
	"sprite":   OpSprite,
	"color":    OpColor,
	"size":     OpSize,
	"pos":      OpPosition,
	"position": OpPosition,
	"rotate":   OpRotation,
	"rotation": OpRotation,
	"active":   OpActive,
	"delete":   OpDelete,
	"text":     OpText,
	"to":       OpTo,
}

var imageOps = []SubOp{OpSprite, OpColor, OpSize, OpPosition, OpRotation, OpActive}

var allowedOps = map[Domain][]SubOp{
	DomainBackground: imageOps,
	DomainCharaImage: append(append([]SubOp{}, imageOps...), OpDelete),
	DomainJump:       {OpTo},
	DomainSelect:     append(append([]SubOp{}, imageOps...), OpDelete, OpText),
}

// Token is a single `target=arg[=arg]` instruction from a command page.
// Args keep their surrounding quotes; they are unwrapped at dispatch.
type Token struct {
	Raw    string
	Target string
	Args   []string
}

func (t Token) String() string {
	return t.Raw
}

// ParseToken splits one command piece on the argument separator. The
// entity-first spelling `select="opt1"_text="Go"` is rewritten to the
// canonical `select_text="opt1"="Go"`.
func ParseToken(raw string) Token {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, string(ArgSep))
	tok := Token{
		Raw:    raw,
		Target: strings.ReplaceAll(parts[0], " ", ""),
		Args:   parts[1:],
	}

	if len(tok.Args) == 2 {
		name := strings.TrimSpace(tok.Args[0])
		if last := strings.LastIndexByte(name, '"'); last > 0 && last < len(name)-1 {
			suffix := strings.TrimSpace(name[last+1:])
			if strings.HasPrefix(suffix, opPrefix) {
				tok.Target += suffix
				tok.Args[0] = name[:last+1]
			}
		}
	}
	return tok
}

// Classify resolves a target to its domain and sub-operation. Domains are
// matched by containment in priority order: background, charaimg, jump,
// select. The sub-operation is the last `_` segment of what remains.
func Classify(target string) (Domain, SubOp, error) {
	target = strings.ReplaceAll(target, " ", "")
	for _, d := range domainPriority {
		idx := strings.Index(target, string(d))
		if idx < 0 {
			continue
		}
		rest := target[:idx] + target[idx+len(d):]
		if cut := strings.LastIndex(rest, opPrefix); cut >= 0 {
			rest = rest[cut+len(opPrefix):]
		}
		op, ok := subOpAliases[rest]
		if !ok {
			return d, "", fmt.Errorf("%w: %q in %q", ErrUnknownSubOp, rest, target)
		}
		if !domainAllows(d, op) {
			return d, op, fmt.Errorf("%w: %s does not support %s", ErrUnknownSubOp, d, op)
		}
		return d, op, nil
	}
	return DomainNone, "", fmt.Errorf("%w: %q", ErrUnknownDomain, target)
}

// Domains returns every domain keyword contained in target, in priority
// order. More than one result means the target is ambiguous.
func Domains(target string) []Domain {
	var out []Domain
	for _, d := range domainPriority {
		if strings.Contains(target, string(d)) {
			out = append(out, d)
		}
	}
	return out
}

func domainAllows(d Domain, op SubOp) bool {
	for _, o := range allowedOps[d] {
		if o == op {
			return true
		}
	}
	return false
}

// Arity is the number of `=`-separated arguments a domain/op pair takes.
func Arity(d Domain, op SubOp) int {
	switch d {
	case DomainCharaImage, DomainSelect:
		if op == OpDelete {
			return 1
		}
		return 2
	default:
		return 1
	}
}

// Command is a classified token whose arguments have not been evaluated.
type Command struct {
	Token  Token
	Domain Domain
	Op     SubOp
	Name   string // quoted entity name for charaimg/select, empty otherwise
	Arg    string // quoted payload, empty for delete
}

// Parse classifies tok and checks its arity.
func Parse(tok Token) (Command, error) {
	d, op, err := Classify(tok.Target)
	if err != nil {
		return Command{}, err
	}

	want := Arity(d, op)
	if len(tok.Args) != want {
		return Command{}, fmt.Errorf("%w: %s_%s takes %d argument(s), got %d",
			ErrArity, d, op, want, len(tok.Args))
	}

	cmd := Command{Token: tok, Domain: d, Op: op}
	switch {
	case want == 2:
		cmd.Name, cmd.Arg = tok.Args[0], tok.Args[1]
	case d == DomainCharaImage || d == DomainSelect:
		cmd.Name = tok.Args[0]
	default:
		cmd.Arg = tok.Args[0]
	}
	return cmd, nil
}

// Label returns the subscene a command refers to, if any: the jump target,
// or the choice name for a registering choice command.
func (c Command) Label() (string, bool, error) {
	var raw string
	switch {
	case c.Domain == DomainJump:
		raw = c.Arg
	case c.Domain == DomainSelect && c.Op != OpDelete:
		raw = c.Name
	default:
		return "", false, nil
	}
	label, err := Unquote(raw)
	if err != nil {
		return "", true, err
	}
	return label, true, nil
}
