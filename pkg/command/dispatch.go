package command

import "fmt"

// Dispatch turns one token into an Effect. The result is one of
// SetBackground, SetCharacterImage, Jump or RegisterChoice. Errors are
// always *DispatchError.
func Dispatch(tok Token) (Effect, error) {
	cmd, err := Parse(tok)
	if err != nil {
		return nil, &DispatchError{Token: tok.Raw, Err: err}
	}

	eff, err := cmd.effect()
	if err != nil {
		return nil, &DispatchError{Token: tok.Raw, Err: err}
	}
	return eff, nil
}

func (c Command) effect() (Effect, error) {
	var name string
	if c.Name != "" {
		n, err := Unquote(c.Name)
		if err != nil {
			return nil, fmt.Errorf("entity name: %w", err)
		}
		name = n
	}

	switch c.Domain {
	case DomainJump:
		label, err := Unquote(c.Arg)
		if err != nil {
			return nil, err
		}
		return Jump{Label: label}, nil

	case DomainBackground:
		v, err := c.value()
		if err != nil {
			return nil, err
		}
		return SetBackground{Op: c.Op, Value: v}, nil

	case DomainCharaImage:
		v, err := c.value()
		if err != nil {
			return nil, err
		}
		return SetCharacterImage{Name: name, Op: c.Op, Value: v}, nil

	case DomainSelect:
		v, err := c.value()
		if err != nil {
			return nil, err
		}
		return RegisterChoice{Name: name, Op: c.Op, Value: v}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, c.Domain)
}

// value evaluates the payload argument according to the sub-operation.
func (c Command) value() (Value, error) {
	if c.Op == OpDelete {
		return Value{}, nil
	}

	raw, err := Unquote(c.Arg)
	if err != nil {
		return Value{}, err
	}

	switch c.Op {
	case OpSprite:
		return Value{Kind: KindSprite, Text: raw}, nil
	case OpColor:
		col, err := ParseColor(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindColor, Color: col}, nil
	case OpSize, OpPosition, OpRotation:
		vec, err := ParseVec3(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindVec3, Vec: vec}, nil
	case OpActive:
		return Value{Kind: KindBool, Bool: ParseBool(raw)}, nil
	case OpText:
		return Value{Kind: KindText, Text: raw}, nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnknownSubOp, c.Op)
}
