package playback

import (
	"github.com/google/uuid"
	"github.com/jwebster45206/novel-script/pkg/command"
)

// Handle is an opaque reference to something the surface created. The
// player never looks inside it.
type Handle any

// Surface is implemented by the host that actually presents a script.
// Every request is fire-and-forget: the player does not wait for visual
// completion before moving on.
//
// A nil Handle passed to SetCharacterImage or RegisterChoice asks the
// surface to create the entity; the returned handle is remembered and
// passed back on later calls for the same name.
type Surface interface {
	LoadSprite(name string) (Handle, error)

	SetBackground(op command.SubOp, v command.Value) error
	SetCharacterImage(name string, h Handle, op command.SubOp, v command.Value) (Handle, error)
	RemoveCharacterImage(name string, h Handle) error

	SetSpeaker(name string) // "" hides the nameplate
	SetBodyText(text string)
	AppendBodyCharacter(r rune)
	ShowMoreAffordance(show bool)

	RegisterChoice(name string, h Handle, op command.SubOp, v command.Value) (Handle, error)
	RemoveChoice(name string, h Handle) error
	ClearChoices() error

	// ScriptFinished is called once when the last page has been consumed.
	ScriptFinished()
}

// SessionAware surfaces are told the ID of each new session before any of
// its requests arrive.
type SessionAware interface {
	BeginSession(id uuid.UUID)
}
