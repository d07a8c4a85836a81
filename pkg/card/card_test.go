package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("Red", Red.String())
	a.Equal("Yellow", Yellow.String())
	a.Equal("Green", Green.String())
	a.Equal("Blue", Blue.String())
	a.Equal("", NoColor.String())
	a.Equal("Color(9)", Color(9).String())
}

func TestCard_Constructors(t *testing.T) {
	a := assert.New(t)

	c := NewNumber(Blue, 7)
	a.Equal("Blue 7", c.Name)
	a.True(c.HasColor())
	a.True(c.HasRank())
	a.False(c.IsAction())
	a.False(c.DelayDraw)

	a.Equal(Card{Name: "Red Skip", Color: Red, Rank: NoRank, Skip: 1, DelayDraw: true}, NewSkip(Red))
	a.Equal(Card{Name: "Green Draw 2", Color: Green, Rank: NoRank, Draw: 2, DelayDraw: true}, NewDrawTwo(Green))
	a.Equal(Card{Name: "Yellow Reverse", Color: Yellow, Rank: NoRank, Reverse: true, DelayDraw: true}, NewReverse(Yellow))

	w := NewWild()
	a.Equal("Wild", w.Name)
	a.False(w.HasColor())
	a.False(w.HasRank())
	a.True(w.IsAction())

	w4 := NewWildDrawFour()
	a.Equal("Wild Draw 4", w4.Name)
	a.True(w4.Wild)
	a.Equal(4, w4.Draw)
}

func TestCard_Validate(t *testing.T) {
	a := assert.New(t)

	for _, c := range BuildDeck() {
		a.NoError(c.Validate(), c.Name)
	}

	err := Card{Name: "bad", Rank: NoRank, Skip: 1, Reverse: true}.Validate()
	a.ErrorIs(err, ErrConflictingModifiers)

	err = Card{Name: "wild draw 2", Rank: NoRank, Wild: true, Draw: 2}.Validate()
	a.ErrorIs(err, ErrConflictingModifiers)

	err = Card{Name: "Red 5 Skip", Color: Red, Rank: 5, Skip: 1}.Validate()
	a.ErrorIs(err, ErrConflictingModifiers)

	a.EqualError(Card{Name: "Red 12", Color: Red, Rank: 12}.Validate(), "Red 12: rank 12 out of range")
}
