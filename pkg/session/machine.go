// Package session is the server-authoritative phase controller.
//
// A Machine moves through AwaitingStart, Starting, Dealing and Playing using a fixed transition
// table. Entry actions for Starting and Dealing finish within the tick that enters them, so a
// session that has enough players reaches Playing in a single Tick.
package session

import (
	"errors"
	"fmt"

	"runo-server/pkg/protocol"
	"runo-server/pkg/transport"
	"runo-server/pkg/world"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPlayerDisconnected is the fault raised when a registered player leaves mid-session
var ErrPlayerDisconnected = errors.New("player disconnected")

// ErrNotEnoughPlayers is the fault raised when a session starts short of MinPlayers
var ErrNotEnoughPlayers = errors.New("not enough players")

// FaultError is a logical failure that reset the session
type FaultError struct {
	State State
	Err   error
}

func (f *FaultError) Error() string {
	return fmt.Sprintf("session fault in %s: %v", f.State, f.Err)
}

// Unwrap returns the underlying error
func (f *FaultError) Unwrap() error {
	return f.Err
}

// TransitionFunc observes state changes
type TransitionFunc func(from, to State, event Event)

// Machine drives a session
type Machine struct {
	ctx          *Context
	state        State
	rules        PlayRules
	onTransition TransitionFunc

	// candidates are the clients counted when EnoughPlayers fired
	candidates []transport.ClientID
}

// New returns a machine that has entered AwaitingStart.
// A nil rules uses DefaultRules.
func New(ctx *Context, rules PlayRules) (*Machine, error) {
	if err := ctx.Options.Validate(); err != nil {
		return nil, err
	}

	if rules == nil {
		rules = DefaultRules{}
	}

	m := &Machine{
		ctx:   ctx,
		state: AwaitingStart,
		rules: rules,
	}

	m.Reset()
	return m, nil
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Context returns the session context
func (m *Machine) Context() *Context {
	return m.ctx
}

// OnTransition registers fn to be called after every state change
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.onTransition = fn
}

// Tick advances the machine. It returns true if the session changed.
// A returned *FaultError means the session was reset to AwaitingStart.
func (m *Machine) Tick() (bool, error) {
	var event Event
	switch m.state {
	case AwaitingStart:
		for _, in := range m.ctx.Inbox.Drain() {
			m.ctx.Logger.WithFields(logrus.Fields{
				"client": in.From,
				"kind":   in.Message.Kind,
			}).Debug("ignoring message while awaiting start")
		}

		ids := m.ctx.Roster.ClientIDs()
		if len(ids) < m.ctx.Options.MinPlayers {
			return false, nil
		}

		m.candidates = append([]transport.ClientID(nil), ids...)

		event = EnoughPlayers
	case Playing:
		changed, err := m.rules.Play(m.ctx, m.ctx.Inbox.Drain())
		if err != nil {
			return true, m.fault(err)
		}

		return changed, nil
	default:
		return false, fmt.Errorf("%w: machine stopped in %s", ErrInvalidTransition, m.state)
	}

	for event != noEvent {
		if err := m.transition(event); err != nil {
			return true, err
		}

		next, err := m.enter()
		if err != nil {
			return true, m.fault(err)
		}

		event = next
	}

	return true, nil
}

// PlayerDisconnected faults the session if id is a registered player
func (m *Machine) PlayerDisconnected(id transport.ClientID) error {
	if m.state == AwaitingStart || !m.ctx.World.HasPlayer(world.PlayerID(id)) {
		return nil
	}

	return m.fault(fmt.Errorf("%w: %d", ErrPlayerDisconnected, id))
}

// Reset runs the AwaitingStart entry actions: the world is cleared, a new session id is assigned
// and every client is told to clear its hand
func (m *Machine) Reset() {
	m.ctx.ID = uuid.New()
	m.ctx.World.Clear()
	m.ctx.Outbox.Broadcast(protocol.ClearHand())

	m.logger().Info("awaiting start")
}

func (m *Machine) logger() logrus.FieldLogger {
	return m.ctx.Logger.WithFields(logrus.Fields{
		"session": m.ctx.ID,
		"state":   m.state,
	})
}

func (m *Machine) transition(event Event) error {
	next, err := Next(m.state, event)
	if err != nil {
		return err
	}

	from := m.state
	m.state = next

	m.logger().WithFields(logrus.Fields{
		"from":  from,
		"event": event,
	}).Info("session transition")

	if m.onTransition != nil {
		m.onTransition(from, next, event)
	}

	return nil
}

func (m *Machine) fault(err error) error {
	fe := &FaultError{State: m.state, Err: err}
	m.logger().WithError(err).Error("session fault, resetting")

	if terr := m.transition(Fault); terr != nil {
		// AwaitingStart has no Fault transition
		return fe
	}

	m.Reset()
	return fe
}

// enter runs the entry action of the current state and returns the event it produced
func (m *Machine) enter() (Event, error) {
	switch m.state {
	case AwaitingStart:
		m.Reset()
		return noEvent, nil
	case Starting:
		return m.start()
	case Dealing:
		return m.deal()
	case Playing:
		return noEvent, nil
	}

	return noEvent, fmt.Errorf("%w: no entry action for %s", ErrInvalidTransition, m.state)
}

func (m *Machine) start() (Event, error) {
	ids := m.candidates
	m.candidates = nil
	if len(ids) < m.ctx.Options.MinPlayers {
		return noEvent, fmt.Errorf("%w: %d of %d players", ErrNotEnoughPlayers, len(ids), m.ctx.Options.MinPlayers)
	}

	capacity := m.ctx.Options.PlayerCapacity
	if len(ids) > capacity {
		m.logger().WithField("observers", ids[capacity:]).Info("session is full, extra clients will observe")
		ids = ids[:capacity]
	}

	for _, id := range ids {
		if err := m.ctx.World.SpawnPlayer(world.PlayerID(id)); err != nil {
			return noEvent, err
		}

		m.logger().WithField("player", id).Info("registered player")
	}

	if err := m.ctx.World.SpawnDeck(); err != nil {
		return noEvent, err
	}

	if err := m.ctx.World.PopulateDeck(m.ctx.BuildDeck()); err != nil {
		return noEvent, err
	}

	return DeckPopulated, nil
}

func (m *Machine) deal() (Event, error) {
	w := m.ctx.World
	if err := w.ShuffleDeck(m.ctx.RNG); err != nil {
		return noEvent, err
	}

	players := w.Players()
	size, err := w.DeckSize()
	if err != nil {
		return noEvent, err
	}

	need := len(players) * m.ctx.Options.HandSize
	if size < need {
		return noEvent, fmt.Errorf("%w: dealing needs %d cards, deck has %d", world.ErrEndOfDeck, need, size)
	}

	for round := 0; round < m.ctx.Options.HandSize; round++ {
		for _, player := range players {
			c, err := w.Draw(player)
			if err != nil {
				return noEvent, err
			}

			m.ctx.Outbox.Send(transport.ClientID(player), protocol.DrawCard(c.Name))
			m.logger().WithFields(logrus.Fields{
				"player": player,
				"card":   c.Name,
			}).Debug("dealt card")
		}
	}

	return Dealt, nil
}
