package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

// ErrMalformed wraps every decode failure
var ErrMalformed = errors.New("malformed message")

var handle = &codec.MsgpackHandle{}

// Encode returns the binary form of a message.
// The encoding is a msgpack map keyed by field name, so it is deterministic for a given message.
func Encode(m GameMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var b []byte
	if err := codec.NewEncoderBytes(&b, handle).Encode(m); err != nil {
		return nil, fmt.Errorf("could not encode %s: %w", m.Kind, err)
	}

	return b, nil
}

// Decode parses a message produced by Encode. The payload must hold exactly one message.
func Decode(data []byte) (GameMessage, error) {
	if len(data) == 0 {
		return GameMessage{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	var m GameMessage
	r := bytes.NewReader(data)
	if err := codec.NewDecoder(r, handle).Decode(&m); err != nil {
		return GameMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if r.Len() > 0 {
		return GameMessage{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.Len())
	}

	if err := m.Validate(); err != nil {
		return GameMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(m.Cards) == 0 {
		m.Cards = nil
	}

	return m, nil
}
