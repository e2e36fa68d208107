package playback

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/novel-script/pkg/command"
	"github.com/jwebster45206/novel-script/pkg/script"
)

// DefaultRevealDelay is the time between revealed characters.
const DefaultRevealDelay = 200 * time.Millisecond

// State is the playback state of a Player.
type State int

const (
	StateIdle State = iota
	StateAwaitingAdvance
	StateRevealing
	StateRevealed
	StateAwaitingChoice
	StateFinished
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAdvance:
		return "awaiting_advance"
	case StateRevealing:
		return "revealing"
	case StateRevealed:
		return "revealed"
	case StateAwaitingChoice:
		return "awaiting_choice"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Cursor is the active subscene and the index of its next page.
type Cursor struct {
	Label string
	Next  int
}

// Player drives one playback session at a time against a Surface. It is
// pulled by the host: Tick for reveal cadence, Advance and SelectChoice for
// player input. A Player is not safe for concurrent use.
type Player struct {
	surface Surface
	logger  *slog.Logger
	delay   time.Duration

	script  *script.Script
	session uuid.UUID
	state   State
	cursor  Cursor
	sub     *script.SubScene

	speaker string
	visible []rune
	pending []rune
	elapsed time.Duration

	images  *Registry
	choices *Registry
	err     error
}

type Option func(*Player)

// WithRevealDelay sets the per-character delay. Zero or less reveals each
// line on the first tick.
func WithRevealDelay(d time.Duration) Option {
	return func(p *Player) { p.delay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

func New(surface Surface, opts ...Option) *Player {
	p := &Player{
		surface: surface,
		logger:  slog.Default(),
		delay:   DefaultRevealDelay,
		images:  NewRegistry(),
		choices: NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load starts a new session at the entry subscene and shows its first page.
// A line still being revealed from a previous session is abandoned and
// entities that session created are disposed first.
func (p *Player) Load(s *script.Script) error {
	if s == nil {
		return ErrNotLoaded
	}

	// Nothing from the previous session may keep running, even when
	// disposing it fails.
	p.state = StateIdle
	p.pending = nil
	p.elapsed = 0
	if err := p.dispose(); err != nil {
		return fmt.Errorf("failed to dispose previous session: %w", err)
	}

	entry := s.EntryLabel()
	sub, ok := s.SubScene(entry)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, entry)
	}

	p.script = s
	p.session = uuid.New()
	if sa, ok := p.surface.(SessionAware); ok {
		sa.BeginSession(p.session)
	}
	p.cursor = Cursor{Label: entry}
	p.sub = sub
	p.speaker = ""
	p.visible = nil
	p.err = nil

	p.logger.Info("Script loaded",
		"session_id", p.session,
		"entry", entry,
		"subscenes", len(s.Labels()),
		"pages", s.PageCount())

	return p.advancePage()
}

// Advance handles a click. While a line is revealing it completes the line
// at once; once revealed it moves to the next page. It does nothing while a
// choice is pending or after playback has ended.
func (p *Player) Advance() error {
	switch p.state {
	case StateIdle:
		return ErrNotLoaded
	case StateRevealing:
		p.fastForward()
		return nil
	case StateRevealed:
		return p.advancePage()
	default:
		return nil
	}
}

// Tick reveals characters for the elapsed time at the configured delay.
func (p *Player) Tick(elapsed time.Duration) {
	if p.state != StateRevealing {
		return
	}
	if p.delay <= 0 {
		p.fastForward()
		return
	}

	p.elapsed += elapsed
	for p.state == StateRevealing && p.elapsed >= p.delay {
		p.elapsed -= p.delay
		p.revealOne()
	}
}

// SelectChoice resolves a pending choice: all choices are cleared, playback
// jumps to the subscene named by the choice and continues from there.
func (p *Player) SelectChoice(label string) error {
	if p.state != StateAwaitingChoice {
		return ErrNoPendingChoice
	}
	if _, ok := p.choices.Lookup(label); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChoice, label)
	}

	at := Cursor{Label: p.cursor.Label, Next: p.cursor.Next - 1}
	if err := p.clearChoices(); err != nil {
		return p.abort(at, "", err)
	}
	if err := p.jump(label); err != nil {
		return p.abort(at, "", err)
	}

	p.logger.Debug("Choice selected", "session_id", p.session, "label", label)
	return p.advancePage()
}

// advancePage consumes pages until a line is shown, a choice is pending or
// the queue runs out. Command pages run every token in order.
func (p *Player) advancePage() error {
	p.state = StateAwaitingAdvance

	// Jumps are unconditional, so revisiting a page without stopping can
	// only loop forever.
	visited := make(map[Cursor]bool)
	for {
		if p.cursor.Next >= len(p.sub.Pages) {
			p.finish()
			return nil
		}

		at := p.cursor
		if visited[at] {
			return p.abort(at, "", ErrJumpCycle)
		}
		visited[at] = true

		page := p.sub.Pages[at.Next]
		p.cursor.Next++

		if page.Kind() == script.PageDialogue {
			p.startLine(page.Line)
			return nil
		}

		for _, tok := range page.Commands {
			if err := p.execute(tok); err != nil {
				return p.abort(at, tok.Raw, err)
			}
		}

		if p.choices.Len() > 0 {
			p.state = StateAwaitingChoice
			p.logger.Debug("Awaiting choice",
				"session_id", p.session,
				"choices", p.choices.Names())
			return nil
		}
	}
}

func (p *Player) execute(tok command.Token) error {
	eff, err := command.Dispatch(tok)
	if err != nil {
		return err
	}

	switch e := eff.(type) {
	case command.SetBackground:
		v, err := p.resolve(e.Value)
		if err != nil {
			return err
		}
		return present("set background", p.surface.SetBackground(e.Op, v))

	case command.SetCharacterImage:
		if e.Op == command.OpDelete {
			h, ok := p.images.Lookup(e.Name)
			if !ok {
				return fmt.Errorf("%w: character image %q", ErrUnknownEntity, e.Name)
			}
			if err := p.surface.RemoveCharacterImage(e.Name, h); err != nil {
				return present("remove character image", err)
			}
			p.images.Remove(e.Name)
			return nil
		}
		v, err := p.resolve(e.Value)
		if err != nil {
			return err
		}
		h, _ := p.images.Lookup(e.Name)
		h, err = p.surface.SetCharacterImage(e.Name, h, e.Op, v)
		if err != nil {
			return present("set character image", err)
		}
		p.images.Put(e.Name, h)
		return nil

	case command.Jump:
		return p.jump(e.Label)

	case command.RegisterChoice:
		if e.Op == command.OpDelete {
			h, ok := p.choices.Lookup(e.Name)
			if !ok {
				return fmt.Errorf("%w: choice %q", ErrUnknownEntity, e.Name)
			}
			if err := p.surface.RemoveChoice(e.Name, h); err != nil {
				return present("remove choice", err)
			}
			p.choices.Remove(e.Name)
			return nil
		}
		v, err := p.resolve(e.Value)
		if err != nil {
			return err
		}
		h, _ := p.choices.Lookup(e.Name)
		h, err = p.surface.RegisterChoice(e.Name, h, e.Op, v)
		if err != nil {
			return present("register choice", err)
		}
		p.choices.Put(e.Name, h)
		return nil
	}
	return fmt.Errorf("unhandled effect %T", eff)
}

// resolve loads sprite assets through the surface.
func (p *Player) resolve(v command.Value) (command.Value, error) {
	if v.Kind != command.KindSprite {
		return v, nil
	}
	h, err := p.surface.LoadSprite(v.Text)
	if err != nil {
		return v, present("load sprite "+v.Text, err)
	}
	v.Asset = h
	return v, nil
}

// jump replaces the page queue with the target subscene. Whatever remained
// of the old queue is dropped.
func (p *Player) jump(label string) error {
	sub, ok := p.script.SubScene(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	p.logger.Debug("Jump",
		"session_id", p.session,
		"from", p.cursor.Label,
		"to", label,
		"abandoned_pages", len(p.sub.Pages)-p.cursor.Next)
	p.cursor = Cursor{Label: label}
	p.sub = sub
	return nil
}

func (p *Player) startLine(line *script.DialogueLine) {
	p.state = StateRevealing
	p.speaker = line.Speaker
	p.visible = p.visible[:0]
	p.pending = []rune(line.Body)
	p.elapsed = 0

	p.surface.SetSpeaker(line.Speaker)
	p.surface.SetBodyText("")
	p.surface.ShowMoreAffordance(false)

	if len(p.pending) == 0 {
		p.completeLine()
		return
	}
	p.revealOne()
}

func (p *Player) revealOne() {
	if len(p.pending) == 0 {
		p.completeLine()
		return
	}
	r := p.pending[0]
	p.pending = p.pending[1:]
	p.visible = append(p.visible, r)
	p.surface.AppendBodyCharacter(r)
	if len(p.pending) == 0 {
		p.completeLine()
	}
}

func (p *Player) fastForward() {
	for p.state == StateRevealing {
		p.revealOne()
	}
}

func (p *Player) completeLine() {
	p.state = StateRevealed
	p.pending = nil
	p.elapsed = 0
	p.surface.ShowMoreAffordance(true)
}

func (p *Player) finish() {
	p.state = StateFinished
	p.logger.Info("Script finished", "session_id", p.session, "label", p.cursor.Label)
	p.surface.ScriptFinished()
}

func (p *Player) abort(at Cursor, token string, err error) error {
	p.state = StateAborted
	p.pending = nil
	p.err = &ScriptError{Label: at.Label, Page: at.Next, Token: token, Err: err}
	p.logger.Error("Playback aborted",
		"session_id", p.session,
		"label", at.Label,
		"page", at.Next,
		"token", token,
		"error", err)
	return p.err
}

func (p *Player) clearChoices() error {
	if p.choices.Len() == 0 {
		return nil
	}
	if err := p.surface.ClearChoices(); err != nil {
		return present("clear choices", err)
	}
	p.choices.Reset()
	return nil
}

// dispose removes everything the current session put on the surface.
func (p *Player) dispose() error {
	for _, name := range p.images.Names() {
		h, _ := p.images.Lookup(name)
		if err := p.surface.RemoveCharacterImage(name, h); err != nil {
			return present("remove character image", err)
		}
		p.images.Remove(name)
	}
	return p.clearChoices()
}

func present(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PresentationError{Op: op, Err: err}
}

func (p *Player) State() State { return p.state }
func (p *Player) Cursor() Cursor { return p.cursor }
func (p *Player) Speaker() string { return p.speaker }
func (p *Player) VisibleText() string { return string(p.visible) }
func (p *Player) SessionID() uuid.UUID { return p.session }
func (p *Player) PendingChoices() []string { return p.choices.Names() }
func (p *Player) CharacterImages() []string { return p.images.Names() }

// Err is the error that aborted playback, if any.
func (p *Player) Err() error { return p.err }
