package ws

import (
	"encoding/json"
	"fmt"
)

// Frame is the wire envelope in both directions: {"type": ..., "data": ...}.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type errorPayload struct {
	Type  string `json:"type,omitempty"`
	Error string `json:"error"`
}

func encodeFrame(event string, payload any) ([]byte, error) {
	b, err := json.Marshal(outFrame{Type: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return b, nil
}

// Decode unmarshals the frame's data into v.
func (f Frame) Decode(v any) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%s frame has no data", f.Type)
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("decode %s frame: %w", f.Type, err)
	}
	return nil
}
