package session

import (
	"runo-server/pkg/card"
	"runo-server/pkg/protocol"
	"runo-server/pkg/relay"
	"runo-server/pkg/world"

	"github.com/sirupsen/logrus"
)

// PlayRules is the turn logic that runs while the session is Playing
type PlayRules interface {
	// Play is called once per tick with the messages received since the last tick, oldest first.
	// Return true if state changed. An error faults the session.
	Play(ctx *Context, inbound []relay.Inbound) (bool, error)
}

// DefaultRules answers each played card with the cards the sender can play
type DefaultRules struct{}

// Play implements PlayRules
func (DefaultRules) Play(ctx *Context, inbound []relay.Inbound) (bool, error) {
	changed := false
	for _, in := range inbound {
		log := ctx.Logger.WithFields(logrus.Fields{
			"client": in.From,
			"kind":   in.Message.Kind,
		})

		player := world.PlayerID(in.From)
		if !ctx.World.HasPlayer(player) {
			log.Warn("ignoring message from a client that is not playing")
			continue
		}

		if in.Message.Kind != protocol.KindPlayCard {
			log.Warn("unexpected message from client")
			continue
		}

		held, err := ctx.World.Hand(player)
		if err != nil {
			return changed, err
		}

		hand := card.Hand(held)
		if !hand.HasCard(in.Message.Card) {
			log.WithField("card", in.Message.Card).Warn("player does not hold card")
		}

		ctx.Outbox.Send(in.From, protocol.CanPlayCards(hand.Names()...))
		changed = true
	}

	return changed, nil
}
