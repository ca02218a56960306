package protocol

import (
	"encoding/json"
	"fmt"
)

// Encode marshals a message to its wire JSON form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.Type, err)
	}
	return data, nil
}

// Decode unmarshals a wire frame into a Message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("protocol: decode: %w", err)
	}
	return m, nil
}

// ErrorMessage builds an ERROR frame.
func ErrorMessage(timestampMs int64, reason string) Message {
	return Message{Type: TypeError, TimestampMs: timestampMs, Error: reason}
}

func intPtr(v int) *int { return &v }

// NewSubmitPlace builds a SUBMIT_MOVE frame for a placement.
func NewSubmitPlace(timestampMs int64, x, y int) Message {
	return Message{Type: TypeSubmitMove, TimestampMs: timestampMs, X: intPtr(x), Y: intPtr(y)}
}

// NewSubmitPass builds a SUBMIT_MOVE frame for a pass.
func NewSubmitPass(timestampMs int64) Message {
	return Message{Type: TypeSubmitMove, TimestampMs: timestampMs, Pass: true}
}
