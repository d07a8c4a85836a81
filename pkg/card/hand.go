package card

import (
	"math"
	"sort"
)

// Hand represents a collection of cards
type Hand []Card

func (h Hand) Len() int {
	return len(h)
}

func (h Hand) Less(i, j int) bool {
	if h[i].Color != h[j].Color {
		return h[i].Color < h[j].Color
	}

	if h[i].Rank != h[j].Rank {
		return h[i].Rank < h[j].Rank
	}

	return h[i].Name < h[j].Name
}

func (h Hand) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card Card) {
	*h = append(*h, card)
}

// HasCard returns true if the hand contains a card with the given name
func (h Hand) HasCard(name string) bool {
	for _, c := range h {
		if c.Name == name {
			return true
		}
	}

	return false
}

// Discard will discard cards with the given name
// If max is provided and > 0, then limit to max discards (a hand may hold duplicates)
func (h *Hand) Discard(name string, max ...int) int {
	count := 0
	m := math.MaxInt32
	if len(max) == 1 && max[0] > 0 {
		m = max[0]
	}

	newHand := make(Hand, 0, len(*h))
	for _, c := range *h {
		if c.Name == name && count < m {
			count++
		} else {
			newHand = append(newHand, c)
		}
	}

	*h = newHand
	return count
}

// Clear empties the hand
func (h *Hand) Clear() {
	*h = nil
}

// Names returns the sorted names of the cards in the hand
func (h Hand) Names() []string {
	names := Names(h)
	sort.Strings(names)
	return names
}
