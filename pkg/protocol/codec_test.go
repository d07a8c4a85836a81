package protocol

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	messages := []GameMessage{
		DrawCard("Red 5"),
		DrawCard("Wild Draw 4"),
		PlayCard("Blue Reverse"),
		ClearHand(),
		ClearDiscardPile(),
		CanPlayCards(),
		CanPlayCards("Red 5", "Wild"),
		CanPlayCards("Red 5", "Red 5", "Green Draw 2"),
	}

	for _, m := range messages {
		t.Run(m.String(), func(t *testing.T) {
			data, err := Encode(m)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	m := CanPlayCards("Red 5", "Wild")

	b1, err := Encode(m)
	require.NoError(t, err)
	b2, err := Encode(m)
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
}

func TestEncode_Invalid(t *testing.T) {
	a := assert.New(t)

	_, err := Encode(GameMessage{})
	a.ErrorIs(err, ErrUnknownKind)

	_, err = Encode(GameMessage{Kind: 99})
	a.ErrorIs(err, ErrUnknownKind)

	_, err = Encode(DrawCard(""))
	a.ErrorIs(err, ErrMissingCard)
}

func TestDecode_Malformed(t *testing.T) {
	a := assert.New(t)

	_, err := Decode(nil)
	a.True(errors.Is(err, ErrMalformed))

	// 0xc1 is never used in msgpack
	_, err = Decode([]byte{0xc1})
	a.True(errors.Is(err, ErrMalformed))

	// a well formed record with an unknown kind
	var b []byte
	require.NoError(t, codec.NewEncoderBytes(&b, &codec.MsgpackHandle{}).Encode(map[string]interface{}{"kind": 42}))
	_, err = Decode(b)
	a.True(errors.Is(err, ErrMalformed))
	a.Contains(err.Error(), "unknown message kind")
}

func TestDecode_TrailingBytes(t *testing.T) {
	a := assert.New(t)

	b, err := Encode(DrawCard("Red 5"))
	require.NoError(t, err)

	_, err = Decode(append(b, 0x00))
	a.ErrorIs(err, ErrMalformed)
	a.Contains(err.Error(), "1 trailing bytes")

	// two messages in one payload
	_, err = Decode(append(append([]byte{}, b...), b...))
	a.ErrorIs(err, ErrMalformed)

	m, err := Decode(b)
	a.NoError(err)
	a.Equal(DrawCard("Red 5"), m)
}

func TestCanPlayCards_Copies(t *testing.T) {
	cards := []string{"Red 1", "Red 2"}
	m := CanPlayCards(cards...)
	cards[0] = "changed"

	assert.Equal(t, []string{"Red 1", "Red 2"}, m.Cards)
}

func TestGameMessage_String(t *testing.T) {
	a := assert.New(t)
	a.Equal(`DrawCard("Red 5")`, DrawCard("Red 5").String())
	a.Equal("ClearHand", ClearHand().String())
	a.Equal("CanPlayCards([Red 5, Wild])", CanPlayCards("Red 5", "Wild").String())
	a.Equal("Kind(42)", GameMessage{Kind: 42}.String())
}
