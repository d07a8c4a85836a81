// Package world is the server's entity arena.
// Cards, players and the deck are donburi entities; every card carries an Owner component
// naming the container that holds it.
package world

import (
	"errors"
	"fmt"
	"sort"

	"runo-server/internal/rng"
	"runo-server/pkg/card"

	"github.com/yohamta/donburi"
)

// ErrDeckExists is returned when a second deck is spawned
var ErrDeckExists = errors.New("deck already exists")

// ErrNoDeck is returned when the deck is needed but was never spawned
var ErrNoDeck = errors.New("no deck")

// ErrEndOfDeck is returned when drawing from an empty deck
var ErrEndOfDeck = errors.New("end of deck")

// ErrPlayerExists is returned when a player id is registered twice
var ErrPlayerExists = errors.New("player already exists")

// ErrUnknownPlayer is returned for ids that were never registered
var ErrUnknownPlayer = errors.New("unknown player")

// PlayerID identifies a player
type PlayerID uint64

// ContainerKind is where a card currently lives
type ContainerKind uint8

// container kinds
const (
	InNone ContainerKind = iota
	InDeck
	InHand
)

// Container is the owner of a card. Player is only meaningful for InHand.
type Container struct {
	Kind   ContainerKind
	Player PlayerID
}

// String returns a readable container
func (c Container) String() string {
	switch c.Kind {
	case InDeck:
		return "deck"
	case InHand:
		return fmt.Sprintf("player %d", c.Player)
	}

	return "none"
}

// PlayerData is the player record
type PlayerData struct {
	ID PlayerID

	// Hand holds card entities in the order they were received
	Hand []donburi.Entity
}

// DeckData is the deck record. The top of the deck is the last entry.
type DeckData struct {
	Order []donburi.Entity
}

// component types
var (
	Card   = donburi.NewComponentType[card.Card]()
	Owner  = donburi.NewComponentType[Container]()
	Player = donburi.NewComponentType[PlayerData]()
	Deck   = donburi.NewComponentType[DeckData]()
)

// Counts is the number of live entities per record type
type Counts struct {
	Players int `json:"players"`
	Cards   int `json:"cards"`
	Decks   int `json:"decks"`
}

// World wraps a donburi world with the game's record types
type World struct {
	world   donburi.World
	deck    donburi.Entity
	hasDeck bool
	players map[PlayerID]donburi.Entity
}

// New returns an empty world
func New() *World {
	return &World{
		world:   donburi.NewWorld(),
		players: make(map[PlayerID]donburi.Entity),
	}
}

// SpawnDeck creates the empty deck container
func (w *World) SpawnDeck() error {
	if w.hasDeck {
		return ErrDeckExists
	}

	w.deck = w.world.Create(Deck)
	w.hasDeck = true
	return nil
}

func (w *World) deckData() (*DeckData, error) {
	if !w.hasDeck || !w.world.Valid(w.deck) {
		return nil, ErrNoDeck
	}

	return Deck.Get(w.world.Entry(w.deck)), nil
}

// PopulateDeck spawns one card entity per card and places them in the deck in order
func (w *World) PopulateDeck(cards []card.Card) error {
	deck, err := w.deckData()
	if err != nil {
		return err
	}

	for _, c := range cards {
		entity := w.world.Create(Card, Owner)
		entry := w.world.Entry(entity)
		Card.SetValue(entry, c)
		Owner.SetValue(entry, Container{Kind: InDeck})
		deck.Order = append(deck.Order, entity)
	}

	return nil
}

// ShuffleDeck permutes the deck
func (w *World) ShuffleDeck(g rng.Generator) error {
	deck, err := w.deckData()
	if err != nil {
		return err
	}

	rng.Shuffle(g, deck.Order)
	return nil
}

// DeckSize returns the number of cards left in the deck
func (w *World) DeckSize() (int, error) {
	deck, err := w.deckData()
	if err != nil {
		return 0, err
	}

	return len(deck.Order), nil
}

// DeckCards returns the cards in the deck, bottom first
func (w *World) DeckCards() ([]card.Card, error) {
	deck, err := w.deckData()
	if err != nil {
		return nil, err
	}

	return w.cards(deck.Order), nil
}

// SpawnPlayer registers a player with an empty hand
func (w *World) SpawnPlayer(id PlayerID) error {
	if _, found := w.players[id]; found {
		return fmt.Errorf("%w: %d", ErrPlayerExists, id)
	}

	entity := w.world.Create(Player)
	Player.SetValue(w.world.Entry(entity), PlayerData{ID: id})
	w.players[id] = entity
	return nil
}

// HasPlayer returns true if the id is registered
func (w *World) HasPlayer(id PlayerID) bool {
	_, found := w.players[id]
	return found
}

// Players returns the registered player ids in ascending order
func (w *World) Players() []PlayerID {
	ids := make([]PlayerID, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	return ids
}

func (w *World) playerData(id PlayerID) (*PlayerData, error) {
	entity, found := w.players[id]
	if !found || !w.world.Valid(entity) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}

	return Player.Get(w.world.Entry(entity)), nil
}

// Draw moves the top card of the deck into the player's hand
func (w *World) Draw(id PlayerID) (card.Card, error) {
	deck, err := w.deckData()
	if err != nil {
		return card.Card{}, err
	}

	player, err := w.playerData(id)
	if err != nil {
		return card.Card{}, err
	}

	n := len(deck.Order)
	if n == 0 {
		return card.Card{}, ErrEndOfDeck
	}

	entity := deck.Order[n-1]
	deck.Order = deck.Order[:n-1]

	entry := w.world.Entry(entity)
	Owner.SetValue(entry, Container{Kind: InHand, Player: id})
	player.Hand = append(player.Hand, entity)

	return *Card.Get(entry), nil
}

// Hand returns the player's cards in the order they were drawn
func (w *World) Hand(id PlayerID) ([]card.Card, error) {
	player, err := w.playerData(id)
	if err != nil {
		return nil, err
	}

	return w.cards(player.Hand), nil
}

// HandSizes returns the number of cards held per player
func (w *World) HandSizes() map[PlayerID]int {
	sizes := make(map[PlayerID]int, len(w.players))
	for id := range w.players {
		if player, err := w.playerData(id); err == nil {
			sizes[id] = len(player.Hand)
		}
	}

	return sizes
}

// OwnerOf returns the container of every card entity keyed by entity
func (w *World) OwnerOf() map[donburi.Entity]Container {
	owners := make(map[donburi.Entity]Container)
	Owner.Each(w.world, func(entry *donburi.Entry) {
		owners[entry.Entity()] = *Owner.Get(entry)
	})

	return owners
}

// Counts returns the number of live player, card and deck entities
func (w *World) Counts() Counts {
	var counts Counts
	Player.Each(w.world, func(*donburi.Entry) {
		counts.Players++
	})

	Card.Each(w.world, func(*donburi.Entry) {
		counts.Cards++
	})

	Deck.Each(w.world, func(*donburi.Entry) {
		counts.Decks++
	})

	return counts
}

// Clear despawns every player, card and deck entity
func (w *World) Clear() {
	var entities []donburi.Entity
	collect := func(entry *donburi.Entry) {
		entities = append(entities, entry.Entity())
	}

	Player.Each(w.world, collect)
	Card.Each(w.world, collect)
	Deck.Each(w.world, collect)

	for _, entity := range entities {
		if w.world.Valid(entity) {
			w.world.Remove(entity)
		}
	}

	w.hasDeck = false
	w.players = make(map[PlayerID]donburi.Entity)
}

func (w *World) cards(entities []donburi.Entity) []card.Card {
	cards := make([]card.Card, 0, len(entities))
	for _, entity := range entities {
		cards = append(cards, *Card.Get(w.world.Entry(entity)))
	}

	return cards
}
