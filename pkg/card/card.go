package card

import (
	"errors"
	"fmt"
)

// ErrConflictingModifiers is returned when a card carries action modifiers that cannot be combined
var ErrConflictingModifiers = errors.New("conflicting action modifiers")

// Color represents a card color
// The zero value means the card has no color (wilds)
type Color int

// color constants
const (
	NoColor Color = iota
	Red
	Yellow
	Green
	Blue
)

// Colors is every playable color in deck order
var Colors = [4]Color{Red, Yellow, Green, Blue}

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case NoColor:
		return ""
	}

	return fmt.Sprintf("Color(%d)", int(c))
}

// NoRank is the rank of cards without a number
const NoRank = -1

// Card is an individual card
// Name is the wire identity of the card. Two cards with the same name are indistinguishable to clients.
type Card struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
	Rank  int    `json:"rank"`

	// action modifiers
	Skip    int  `json:"skip,omitempty"`
	Draw    int  `json:"draw,omitempty"`
	Reverse bool `json:"reverse,omitempty"`
	Wild    bool `json:"wild,omitempty"`

	// DelayDraw marks cards whose effect is applied by the play phase, not at deal time
	DelayDraw bool `json:"delayDraw,omitempty"`
}

func (c Card) String() string {
	return c.Name
}

// HasColor returns true if the card has a color
func (c Card) HasColor() bool {
	return c.Color != NoColor
}

// HasRank returns true if the card is a number card
func (c Card) HasRank() bool {
	return c.Rank != NoRank
}

// IsAction returns true if the card carries any action modifier
func (c Card) IsAction() bool {
	return c.Skip > 0 || c.Draw > 0 || c.Reverse || c.Wild
}

// Validate checks that the action modifiers are mutually exclusive.
// The only allowed combination is Wild with Draw(4).
func (c Card) Validate() error {
	modifiers := 0
	if c.Skip > 0 {
		modifiers++
	}
	if c.Draw > 0 {
		modifiers++
	}
	if c.Reverse {
		modifiers++
	}
	if c.Wild {
		modifiers++
	}

	if modifiers > 1 && !(modifiers == 2 && c.Wild && c.Draw == 4) {
		return fmt.Errorf("%s: %w", c.Name, ErrConflictingModifiers)
	}

	if c.HasRank() && (c.Rank < 0 || c.Rank > 9) {
		return fmt.Errorf("%s: rank %d out of range", c.Name, c.Rank)
	}

	if c.HasRank() && c.IsAction() {
		return fmt.Errorf("%s: number card cannot carry an action: %w", c.Name, ErrConflictingModifiers)
	}

	return nil
}

// NewNumber returns a number card
func NewNumber(color Color, rank int) Card {
	return Card{
		Name:  fmt.Sprintf("%s %d", color, rank),
		Color: color,
		Rank:  rank,
	}
}

// NewSkip returns a skip card
func NewSkip(color Color) Card {
	return Card{
		Name:      fmt.Sprintf("%s Skip", color),
		Color:     color,
		Rank:      NoRank,
		Skip:      1,
		DelayDraw: true,
	}
}

// NewDrawTwo returns a draw 2 card
func NewDrawTwo(color Color) Card {
	return Card{
		Name:      fmt.Sprintf("%s Draw 2", color),
		Color:     color,
		Rank:      NoRank,
		Draw:      2,
		DelayDraw: true,
	}
}

// NewReverse returns a reverse card
func NewReverse(color Color) Card {
	return Card{
		Name:      fmt.Sprintf("%s Reverse", color),
		Color:     color,
		Rank:      NoRank,
		Reverse:   true,
		DelayDraw: true,
	}
}

// NewWild returns a wild card
func NewWild() Card {
	return Card{
		Name:      "Wild",
		Rank:      NoRank,
		Wild:      true,
		DelayDraw: true,
	}
}

// NewWildDrawFour returns a wild draw 4 card
func NewWildDrawFour() Card {
	return Card{
		Name:      "Wild Draw 4",
		Rank:      NoRank,
		Wild:      true,
		Draw:      4,
		DelayDraw: true,
	}
}
