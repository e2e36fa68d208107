package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/novel-script/pkg/command"
	"github.com/jwebster45206/novel-script/pkg/playback"
)

// sprite is a loaded image. In the terminal an image is its name plus
// optional ASCII art read from SpritesDir/<name>.txt.
type sprite struct {
	name string
	art  string
}

// entity is anything the script places on stage: the background, a
// character image or a choice.
type entity struct {
	name     string
	sprite   *sprite
	color    *color.RGBA
	size     command.Vec3
	position command.Vec3
	rotation command.Vec3
	active   bool
	text     string
}

func newEntity(name string) *entity {
	return &entity{name: name, active: true, size: command.Vec3{X: 1, Y: 1, Z: 1}}
}

func (e *entity) apply(op command.SubOp, v command.Value) error {
	switch op {
	case command.OpSprite:
		s, ok := v.Asset.(*sprite)
		if !ok {
			return fmt.Errorf("sprite %q was not loaded", v.Text)
		}
		e.sprite = s
	case command.OpColor:
		c := v.Color
		e.color = &c
	case command.OpSize:
		e.size = v.Vec
	case command.OpPosition:
		e.position = v.Vec
	case command.OpRotation:
		e.rotation = v.Vec
	case command.OpActive:
		e.active = v.Bool
	case command.OpText:
		e.text = v.Text
	default:
		return fmt.Errorf("unsupported operation %s", op)
	}
	return nil
}

// label is what a choice shows: its text, or its name when no text is set.
func (e *entity) label() string {
	if e.text != "" {
		return e.text
	}
	return e.name
}

// stage is the terminal Surface. It only records what should be shown;
// ConsoleUI renders it.
type stage struct {
	spritesDir string
	logger     *slog.Logger

	background *entity
	characters []*entity
	choices    []*entity

	speaker  string
	body     strings.Builder
	more     bool
	finished bool
}

var (
	_ playback.Surface      = (*stage)(nil)
	_ playback.SessionAware = (*stage)(nil)
)

func newStage(spritesDir string, logger *slog.Logger) *stage {
	return &stage{
		spritesDir: spritesDir,
		logger:     logger,
		background: newEntity(""),
	}
}

func (s *stage) LoadSprite(name string) (playback.Handle, error) {
	sp := &sprite{name: name}
	if s.spritesDir == "" {
		return sp, nil
	}

	data, err := os.ReadFile(filepath.Join(s.spritesDir, name+".txt"))
	switch {
	case err == nil:
		sp.art = strings.TrimRight(string(data), "\n")
	case os.IsNotExist(err):
		s.logger.Debug("No art for sprite", "sprite", name)
	default:
		return nil, fmt.Errorf("failed to read sprite %s: %w", name, err)
	}
	return sp, nil
}

func (s *stage) SetBackground(op command.SubOp, v command.Value) error {
	return s.background.apply(op, v)
}

func (s *stage) SetCharacterImage(name string, h playback.Handle, op command.SubOp, v command.Value) (playback.Handle, error) {
	e, err := s.lookup(&s.characters, name, h)
	if err != nil {
		return nil, err
	}
	return e, e.apply(op, v)
}

func (s *stage) RemoveCharacterImage(name string, h playback.Handle) error {
	return s.remove(&s.characters, h)
}

func (s *stage) SetSpeaker(name string) {
	s.speaker = name
}

func (s *stage) SetBodyText(text string) {
	s.body.Reset()
	s.body.WriteString(text)
}

func (s *stage) AppendBodyCharacter(r rune) {
	s.body.WriteRune(r)
}

func (s *stage) ShowMoreAffordance(show bool) {
	s.more = show
}

func (s *stage) RegisterChoice(name string, h playback.Handle, op command.SubOp, v command.Value) (playback.Handle, error) {
	e, err := s.lookup(&s.choices, name, h)
	if err != nil {
		return nil, err
	}
	return e, e.apply(op, v)
}

func (s *stage) RemoveChoice(name string, h playback.Handle) error {
	return s.remove(&s.choices, h)
}

func (s *stage) ClearChoices() error {
	s.choices = nil
	return nil
}

func (s *stage) ScriptFinished() {
	s.finished = true
}

// lookup returns the entity behind h, creating it when h is nil.
func (s *stage) lookup(list *[]*entity, name string, h playback.Handle) (*entity, error) {
	if h == nil {
		e := newEntity(name)
		*list = append(*list, e)
		return e, nil
	}
	e, ok := h.(*entity)
	if !ok {
		return nil, fmt.Errorf("foreign handle %T for %q", h, name)
	}
	return e, nil
}

func (s *stage) remove(list *[]*entity, h playback.Handle) error {
	for i, e := range *list {
		if e == h {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handle %v is not on stage", h)
}

// visibleCharacters are the active characters ordered left to right.
func (s *stage) visibleCharacters() []*entity {
	var out []*entity
	for _, e := range s.characters {
		if e.active {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].position.X < out[j].position.X })
	return out
}

// visibleChoices are the active choices ordered top to bottom.
func (s *stage) visibleChoices() []*entity {
	var out []*entity
	for _, e := range s.choices {
		if e.active {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].position.Y > out[j].position.Y })
	return out
}

// BeginSession clears what the player does not dispose itself: the
// background, the dialogue box and the end banner. Character images and
// choices of the previous session are already gone by now.
func (s *stage) BeginSession(uuid.UUID) {
	s.reset()
}

func (s *stage) reset() {
	s.background = newEntity("")
	s.characters = nil
	s.choices = nil
	s.speaker = ""
	s.body.Reset()
	s.more = false
	s.finished = false
}
