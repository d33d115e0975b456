package communication

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Encode serializes v into a self-describing gob payload.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a payload produced by Encode.
func Decode[T any](payload []byte) (T, error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode payload: %w", err)
	}
	return v, nil
}

// EncodeFrame prefixes the payload with its tag.
func EncodeFrame(tag Tag, payload []byte) []byte {
	frame := make([]byte, 1+len(payload))
	frame[0] = byte(tag)
	copy(frame[1:], payload)
	return frame
}

// DecodeFrame splits a frame into its tag and payload.
func DecodeFrame(frame []byte) (Tag, []byte, error) {
	if len(frame) == 0 {
		return 0, nil, fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}
	tag := Tag(frame[0])
	if !tag.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown %s", ErrMalformedFrame, tag)
	}
	return tag, frame[1:], nil
}
