package card

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"sort"
)

// composition constants
const (
	Packs        = 2
	WildsPerKind = 4

	// DeckSize is the number of cards produced by BuildDeck
	// 4 colors × (1 zero + 2 × 9 numbers) + 4 colors × 2 × 3 actions + 2 × 4 wilds
	DeckSize = len(Colors)*(1+Packs*9) + len(Colors)*Packs*3 + 2*WildsPerKind
)

// BuildDeck returns a freshly built, unshuffled deck.
// The result is deterministic: every call returns equal cards in the same order.
func BuildDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for pack := 0; pack < Packs; pack++ {
		for _, color := range Colors {
			for rank := 0; rank <= 9; rank++ {
				// only the first pack carries a zero
				if rank == 0 && pack > 0 {
					continue
				}

				cards = append(cards, NewNumber(color, rank))
			}

			cards = append(cards, NewSkip(color), NewDrawTwo(color), NewReverse(color))
		}
	}

	for i := 0; i < WildsPerKind; i++ {
		cards = append(cards, NewWild(), NewWildDrawFour())
	}

	return cards
}

var catalog = func() map[string]Card {
	m := make(map[string]Card)
	for _, c := range BuildDeck() {
		m[c.Name] = c
	}

	return m
}()

// Lookup returns the card attributes for a wire name
func Lookup(name string) (Card, bool) {
	c, ok := catalog[name]
	return c, ok
}

// Names returns the names of the cards, in order
func Names(cards []Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}

	return names
}

// Counts returns how many copies of each name are in cards
func Counts(cards []Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.Name]++
	}

	return counts
}

// HashCode returns a SHA1 hash code of the card names, in order.
func HashCode(cards []Card) string {
	hash := sha1.New() // nolint:gosec
	for _, c := range cards {
		_, _ = hash.Write([]byte(c.Name))
	}

	return hex.EncodeToString(hash.Sum(nil)[:])
}

// MultisetHashCode returns a hash code that ignores order
func MultisetHashCode(cards []Card) string {
	names := Names(cards)
	sort.Strings(names)

	hash := sha1.New() // nolint:gosec
	for _, name := range names {
		_, _ = hash.Write([]byte(name))
		_, _ = hash.Write([]byte{0})
	}

	return hex.EncodeToString(hash.Sum(nil)[:])
}
