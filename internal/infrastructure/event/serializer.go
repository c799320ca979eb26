package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/notification"
)

// Stream message fields
const (
	fieldID         = "id"
	fieldType       = "type"
	fieldOccurredAt = "occurred_at"
	fieldPayload    = "payload"
)

// StreamMessage is a decoded notification read back from the stream
type StreamMessage struct {
	notification.Envelope
	Payload json.RawMessage
}

// encode flattens a notification into stream fields. The full notification
// is kept as JSON in the payload field.
func encode(env notification.Envelope, n any) (map[string]any, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s notification: %w", env.Type, err)
	}
	return map[string]any{
		fieldID:         env.ID.String(),
		fieldType:       env.Type,
		fieldOccurredAt: env.OccurredAt.Format(time.RFC3339Nano),
		fieldPayload:    string(payload),
	}, nil
}

// Decode parses the fields of one stream entry
func Decode(values map[string]any) (*StreamMessage, error) {
	str := func(key string) (string, error) {
		v, ok := values[key].(string)
		if !ok {
			return "", fmt.Errorf("stream message has no %s field", key)
		}
		return v, nil
	}

	rawID, err := str(fieldID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification id %q: %w", rawID, err)
	}
	typ, err := str(fieldType)
	if err != nil {
		return nil, err
	}
	rawAt, err := str(fieldOccurredAt)
	if err != nil {
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, rawAt)
	if err != nil {
		return nil, fmt.Errorf("invalid occurred_at %q: %w", rawAt, err)
	}
	payload, err := str(fieldPayload)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(payload)) {
		return nil, fmt.Errorf("notification %s payload is not valid JSON", id)
	}

	return &StreamMessage{
		Envelope: notification.Envelope{ID: id, Type: typ, OccurredAt: at},
		Payload:  json.RawMessage(payload),
	}, nil
}
