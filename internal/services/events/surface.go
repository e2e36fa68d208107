package events

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/novel-script/pkg/command"
	"github.com/jwebster45206/novel-script/pkg/playback"
)

// BroadcastSurface forwards every request to the wrapped surface and, once
// it succeeds, mirrors it as an event on the session channel. Publishing is
// best effort: a failed publish is logged and playback carries on.
type BroadcastSurface struct {
	inner       playback.Surface
	broadcaster *Broadcaster
	logger      *slog.Logger
	ctx         context.Context
	session     uuid.UUID
}

var (
	_ playback.Surface      = (*BroadcastSurface)(nil)
	_ playback.SessionAware = (*BroadcastSurface)(nil)
)

// NewBroadcastSurface wraps inner. ctx bounds every publish.
func NewBroadcastSurface(ctx context.Context, inner playback.Surface, b *Broadcaster, logger *slog.Logger) *BroadcastSurface {
	return &BroadcastSurface{
		inner:       inner,
		broadcaster: b,
		logger:      logger,
		ctx:         ctx,
	}
}

func (s *BroadcastSurface) BeginSession(id uuid.UUID) {
	s.session = id
	if sa, ok := s.inner.(playback.SessionAware); ok {
		sa.BeginSession(id)
	}
	s.publish(EventTypeSessionStarted, nil)
}

// Session is the session events are currently published to.
func (s *BroadcastSurface) Session() uuid.UUID {
	return s.session
}

func (s *BroadcastSurface) publish(t EventType, data map[string]any) {
	if s.session == uuid.Nil {
		return
	}
	if err := s.broadcaster.Publish(s.ctx, s.session, t, data); err != nil {
		s.logger.Warn("Dropped playback event", "event_type", t, "session_id", s.session, "error", err)
	}
}

func (s *BroadcastSurface) LoadSprite(name string) (playback.Handle, error) {
	return s.inner.LoadSprite(name)
}

func (s *BroadcastSurface) SetBackground(op command.SubOp, v command.Value) error {
	if err := s.inner.SetBackground(op, v); err != nil {
		return err
	}
	s.publish(EventTypeBackgroundChanged, map[string]any{"op": op, "value": v.String()})
	return nil
}

func (s *BroadcastSurface) SetCharacterImage(name string, h playback.Handle, op command.SubOp, v command.Value) (playback.Handle, error) {
	h, err := s.inner.SetCharacterImage(name, h, op, v)
	if err != nil {
		return nil, err
	}
	s.publish(EventTypeCharacterChanged, map[string]any{"name": name, "op": op, "value": v.String()})
	return h, nil
}

func (s *BroadcastSurface) RemoveCharacterImage(name string, h playback.Handle) error {
	if err := s.inner.RemoveCharacterImage(name, h); err != nil {
		return err
	}
	s.publish(EventTypeCharacterRemoved, map[string]any{"name": name})
	return nil
}

func (s *BroadcastSurface) SetSpeaker(name string) {
	s.inner.SetSpeaker(name)
	s.publish(EventTypeSpeakerChanged, map[string]any{"speaker": name})
}

func (s *BroadcastSurface) SetBodyText(text string) {
	s.inner.SetBodyText(text)
	s.publish(EventTypeBodyReset, map[string]any{"text": text})
}

func (s *BroadcastSurface) AppendBodyCharacter(r rune) {
	s.inner.AppendBodyCharacter(r)
	s.publish(EventTypeBodyAppended, map[string]any{"char": string(r)})
}

func (s *BroadcastSurface) ShowMoreAffordance(show bool) {
	s.inner.ShowMoreAffordance(show)
	s.publish(EventTypeMoreAffordance, map[string]any{"show": show})
}

func (s *BroadcastSurface) RegisterChoice(name string, h playback.Handle, op command.SubOp, v command.Value) (playback.Handle, error) {
	h, err := s.inner.RegisterChoice(name, h, op, v)
	if err != nil {
		return nil, err
	}
	s.publish(EventTypeChoiceChanged, map[string]any{"name": name, "op": op, "value": v.String()})
	return h, nil
}

func (s *BroadcastSurface) RemoveChoice(name string, h playback.Handle) error {
	if err := s.inner.RemoveChoice(name, h); err != nil {
		return err
	}
	s.publish(EventTypeChoiceRemoved, map[string]any{"name": name})
	return nil
}

func (s *BroadcastSurface) ClearChoices() error {
	if err := s.inner.ClearChoices(); err != nil {
		return err
	}
	s.publish(EventTypeChoicesCleared, nil)
	return nil
}

func (s *BroadcastSurface) ScriptFinished() {
	s.inner.ScriptFinished()
	s.publish(EventTypeScriptFinished, nil)
}
