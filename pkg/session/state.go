package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event has no transition from the current state
var ErrInvalidTransition = errors.New("invalid transition")

// State is the phase of a session
type State int

// session states
const (
	AwaitingStart State = iota
	Starting
	Dealing
	Playing
)

func (s State) String() string {
	switch s {
	case AwaitingStart:
		return "AwaitingStart"
	case Starting:
		return "Starting"
	case Dealing:
		return "Dealing"
	case Playing:
		return "Playing"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText returns the state name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event moves the machine between states
type Event int

// session events
const (
	noEvent Event = iota
	EnoughPlayers
	DeckPopulated
	Dealt
	Fault
)

func (e Event) String() string {
	switch e {
	case EnoughPlayers:
		return "EnoughPlayers"
	case DeckPopulated:
		return "DeckPopulated"
	case Dealt:
		return "Dealt"
	case Fault:
		return "Fault"
	}

	return fmt.Sprintf("Event(%d)", int(e))
}

type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]State{
	{AwaitingStart, EnoughPlayers}: Starting,
	{Starting, DeckPopulated}:      Dealing,
	{Dealing, Dealt}:               Playing,
	{Starting, Fault}:              AwaitingStart,
	{Dealing, Fault}:               AwaitingStart,
	{Playing, Fault}:               AwaitingStart,
}

// Next returns the state reached from s on event e
func Next(s State, e Event) (State, error) {
	next, found := transitions[transitionKey{s, e}]
	if !found {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
	}

	return next, nil
}
