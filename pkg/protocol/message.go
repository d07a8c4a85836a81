package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a message kind is not one of the known variants
var ErrUnknownKind = errors.New("unknown message kind")

// ErrMissingCard is returned when a DrawCard or PlayCard message has no card name
var ErrMissingCard = errors.New("message requires a card name")

// Kind identifies a GameMessage variant
type Kind uint8

// message kinds
// zero is reserved so an empty record never decodes into a valid message
const (
	KindDrawCard Kind = iota + 1
	KindPlayCard
	KindClearHand
	KindClearDiscardPile
	KindCanPlayCards
)

func (k Kind) String() string {
	switch k {
	case KindDrawCard:
		return "DrawCard"
	case KindPlayCard:
		return "PlayCard"
	case KindClearHand:
		return "ClearHand"
	case KindClearDiscardPile:
		return "ClearDiscardPile"
	case KindCanPlayCards:
		return "CanPlayCards"
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// GameMessage is a message exchanged between the server and its clients
//
//	DrawCard(card)      server -> client: the card was dealt to the client
//	PlayCard(card)      client -> server: the client wants to play the card
//	ClearHand           server -> client: the client should empty its hand
//	ClearDiscardPile    server -> client: the discard pile should be cleared
//	CanPlayCards(cards) server -> client: the cards the client may play
type GameMessage struct {
	Kind  Kind     `codec:"kind"`
	Card  string   `codec:"card,omitempty"`
	Cards []string `codec:"cards,omitempty"`
}

// DrawCard returns a DrawCard message
func DrawCard(card string) GameMessage {
	return GameMessage{Kind: KindDrawCard, Card: card}
}

// PlayCard returns a PlayCard message
func PlayCard(card string) GameMessage {
	return GameMessage{Kind: KindPlayCard, Card: card}
}

// ClearHand returns a ClearHand message
func ClearHand() GameMessage {
	return GameMessage{Kind: KindClearHand}
}

// ClearDiscardPile returns a ClearDiscardPile message
func ClearDiscardPile() GameMessage {
	return GameMessage{Kind: KindClearDiscardPile}
}

// CanPlayCards returns a CanPlayCards message
func CanPlayCards(cards ...string) GameMessage {
	m := GameMessage{Kind: KindCanPlayCards}
	if len(cards) > 0 {
		m.Cards = append([]string(nil), cards...)
	}

	return m
}

// Validate checks that the message is a well formed variant
func (m GameMessage) Validate() error {
	switch m.Kind {
	case KindDrawCard, KindPlayCard:
		if m.Card == "" {
			return fmt.Errorf("%s: %w", m.Kind, ErrMissingCard)
		}
	case KindClearHand, KindClearDiscardPile, KindCanPlayCards:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(m.Kind))
	}

	return nil
}

func (m GameMessage) String() string {
	switch m.Kind {
	case KindDrawCard, KindPlayCard:
		return fmt.Sprintf("%s(%q)", m.Kind, m.Card)
	case KindCanPlayCards:
		return fmt.Sprintf("%s([%s])", m.Kind, strings.Join(m.Cards, ", "))
	}

	return m.Kind.String()
}
