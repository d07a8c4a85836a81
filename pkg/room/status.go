package room

import (
	"runo-server/pkg/session"
	"runo-server/pkg/transport"
	"runo-server/pkg/world"
)

// PlayerStatus is a registered player and the number of cards held
type PlayerStatus struct {
	ID       world.PlayerID `json:"id" yaml:"id"`
	HandSize int            `json:"handSize" yaml:"handSize"`
}

// Status is a point-in-time view of the session
type Status struct {
	SessionID string               `json:"sessionId" yaml:"sessionId"`
	State     session.State        `json:"state" yaml:"state"`
	Players   []PlayerStatus       `json:"players" yaml:"players"`
	Observers []transport.ClientID `json:"observers" yaml:"observers"`
	DeckSize  int                  `json:"deckSize" yaml:"deckSize"`
	Tick      uint64               `json:"tick" yaml:"tick"`
}

func newStatus(machine *session.Machine, connected []transport.ClientID, tick uint64) Status {
	ctx := machine.Context()
	w := ctx.World

	status := Status{
		SessionID: ctx.ID.String(),
		State:     machine.State(),
		Players:   []PlayerStatus{},
		Observers: []transport.ClientID{},
		Tick:      tick,
	}

	sizes := w.HandSizes()
	for _, id := range w.Players() {
		status.Players = append(status.Players, PlayerStatus{ID: id, HandSize: sizes[id]})
	}

	for _, id := range connected {
		if !w.HasPlayer(world.PlayerID(id)) {
			status.Observers = append(status.Observers, id)
		}
	}

	if size, err := w.DeckSize(); err == nil {
		status.DeckSize = size
	}

	return status
}
