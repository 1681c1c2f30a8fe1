package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataVersion is the message metadata key holding the payload schema version.
const MetadataVersion = "event_version"

// NewJSONMessage encodes payload as a message tagged with its schema version.
func NewJSONMessage(payload any, version int) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataVersion, strconv.Itoa(version))
	return msg, nil
}

// Version returns the schema version of msg, or 0 when it carries none.
func Version(msg *message.Message) int {
	v, err := strconv.Atoi(msg.Metadata.Get(MetadataVersion))
	if err != nil {
		return 0
	}
	return v
}

// DecodeJSON unmarshals the payload of msg into T.
func DecodeJSON[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode message %s: %w", msg.UUID, err)
	}
	return v, nil
}

// PublishTx writes payload to topic inside tx, so the event is committed or
// rolled back together with the state change that produced it.
func (q *EventBus) PublishTx(tx *sql.Tx, topic string, payload any, version int) error {
	msg, err := NewJSONMessage(payload, version)
	if err != nil {
		return err
	}
	pub, err := q.NewTxPublisher(tx)
	if err != nil {
		return err
	}
	if err := pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}
