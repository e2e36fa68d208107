package command

import (
	"fmt"
	"image/color"
)

// ValueKind says which field of a Value is meaningful.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindSprite
	KindColor
	KindVec3
	KindBool
	KindText
)

// Vec3 is a size, position or rotation triple.
type Vec3 struct {
	X, Y, Z float64
}

// Value is the evaluated payload of a command.
type Value struct {
	Kind  ValueKind
	Text  string // sprite name or choice text
	Color color.RGBA
	Vec   Vec3
	Bool  bool

	// Asset is the surface's handle for a sprite. Dispatch leaves it nil;
	// the player fills it in after LoadSprite succeeds.
	Asset any
}

func (v Value) String() string {
	switch v.Kind {
	case KindSprite, KindText:
		return v.Text
	case KindColor:
		return fmt.Sprintf("rgba(%d,%d,%d,%d)", v.Color.R, v.Color.G, v.Color.B, v.Color.A)
	case KindVec3:
		return fmt.Sprintf("(%g,%g,%g)", v.Vec.X, v.Vec.Y, v.Vec.Z)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}

// Effect is a typed request produced from one command token.
type Effect interface {
	effect()
}

type SetBackground struct {
	Op    SubOp
	Value Value
}

type SetCharacterImage struct {
	Name  string
	Op    SubOp
	Value Value
}

type Jump struct {
	Label string
}

type RegisterChoice struct {
	Name  string
	Op    SubOp
	Value Value
}

func (SetBackground) effect()     {}
func (SetCharacterImage) effect() {}
func (Jump) effect()              {}
func (RegisterChoice) effect()    {}
