package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeSessionStarted    EventType = "session.started"
	EventTypeBackgroundChanged EventType = "background.changed"
	EventTypeCharacterChanged  EventType = "character.changed"
	EventTypeCharacterRemoved  EventType = "character.removed"
	EventTypeSpeakerChanged    EventType = "line.speaker"
	EventTypeBodyReset         EventType = "line.text"
	EventTypeBodyAppended      EventType = "line.char"
	EventTypeMoreAffordance    EventType = "line.more"
	EventTypeChoiceChanged     EventType = "choice.changed"
	EventTypeChoiceRemoved     EventType = "choice.removed"
	EventTypeChoicesCleared    EventType = "choice.cleared"
	EventTypeScriptFinished    EventType = "script.finished"
)

// Event is one surface request as seen by remote observers.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel is the Redis Pub/Sub channel for one playback session.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish sends an event to the session channel.
func (b *Broadcaster) Publish(ctx context.Context, sessionID uuid.UUID, eventType EventType, data map[string]any) error {
	event := Event{
		Type:      eventType,
		SessionID: sessionID.String(),
		Data:      data,
	}
	channel := Channel(sessionID)

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", eventType)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", eventType)

	return nil
}
