package session

import (
	"errors"

	"runo-server/internal/rng"
	"runo-server/pkg/card"
	"runo-server/pkg/relay"
	"runo-server/pkg/transport"
	"runo-server/pkg/world"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Roster lists the connected clients
type Roster interface {
	ClientIDs() []transport.ClientID
}

// Options are the session limits
type Options struct {
	// PlayerCapacity is the most players registered per session
	PlayerCapacity int

	// MinPlayers is how many connected clients start a session
	MinPlayers int

	// HandSize is how many cards each player is dealt
	HandSize int
}

// DefaultOptions returns four players, one to start, seven cards each
func DefaultOptions() Options {
	return Options{
		PlayerCapacity: 4,
		MinPlayers:     1,
		HandSize:       7,
	}
}

// Validate ensures the options can run a session
func (o Options) Validate() error {
	if o.PlayerCapacity < 1 {
		return errors.New("player capacity must be at least 1")
	}

	if o.MinPlayers < 1 || o.MinPlayers > o.PlayerCapacity {
		return errors.New("min players must be between 1 and the player capacity")
	}

	if o.HandSize < 1 {
		return errors.New("hand size must be at least 1")
	}

	return nil
}

// Context is the state shared by every phase of a session
type Context struct {
	// ID changes every time the session resets
	ID uuid.UUID

	World   *world.World
	Outbox  *relay.Outbox
	Inbox   *relay.Inbox
	Roster  Roster
	RNG     rng.Generator
	Options Options
	Logger  logrus.FieldLogger

	// BuildDeck returns the cards a new deck is populated with
	BuildDeck func() []card.Card
}

// NewContext returns a context with an empty world and queues
func NewContext(roster Roster, g rng.Generator, opts Options, logger logrus.FieldLogger) *Context {
	return &Context{
		World:     world.New(),
		Outbox:    &relay.Outbox{},
		Inbox:     &relay.Inbox{},
		Roster:    roster,
		RNG:       g,
		Options:   opts,
		Logger:    logger,
		BuildDeck: card.BuildDeck,
	}
}
