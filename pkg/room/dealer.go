package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"runo-server/internal/rng"
	"runo-server/pkg/relay"
	"runo-server/pkg/session"
	"runo-server/pkg/transport"

	"github.com/sirupsen/logrus"
)

// Dealer owns the session and drives it from the transport once per tick
type Dealer struct {
	server   transport.Server
	machine  *session.Machine
	tickRate int
	ticks    uint64
	logger   logrus.FieldLogger

	lock   sync.RWMutex
	status Status
}

// NewDealer creates a dealer with a fresh session
func NewDealer(server transport.Server, opts session.Options, g rng.Generator, tickRate int, logger logrus.FieldLogger) (*Dealer, error) {
	if tickRate < 1 {
		return nil, errors.New("tick rate must be at least 1")
	}

	machine, err := session.New(session.NewContext(server, g, opts, logger), nil)
	if err != nil {
		return nil, err
	}

	d := &Dealer{
		server:   server,
		machine:  machine,
		tickRate: tickRate,
		logger:   logger,
	}

	d.publish()
	return d, nil
}

// Machine returns the session state machine
// NOTE: must only be used from the goroutine calling Tick
func (d *Dealer) Machine() *session.Machine {
	return d.machine
}

// Tick runs one frame: connection events, inbound messages, the state machine, then outbound
// messages. A session fault is returned after the frame completes.
func (d *Dealer) Tick() (bool, error) {
	ctx := d.machine.Context()
	var fault error

	changed := false
	for _, event := range d.server.Events() {
		log := d.logger.WithField("client", event.ClientID)
		switch event.Kind {
		case transport.ClientConnected:
			log.Info("client connected")
		case transport.ClientDisconnected:
			if event.Reason != nil {
				log = log.WithError(event.Reason)
			}

			log.Info("client disconnected")
			if err := d.machine.PlayerDisconnected(event.ClientID); err != nil {
				changed = true
				if fault == nil {
					fault = err
				}
			}
		}
	}

	relay.Pull(d.server, ctx.Inbox, d.logger)

	// a session reset by a disconnect restarts on the next frame
	if fault == nil {
		updated, err := d.machine.Tick()
		if updated {
			changed = true
		}

		fault = err
	}

	ctx.Outbox.Flush(d.server, d.logger)

	d.ticks++
	d.publish()

	return changed, fault
}

// Run ticks at the configured rate until ctx is done.
// Session faults reset the session and do not stop the loop.
func (d *Dealer) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(d.tickRate))
	defer ticker.Stop()

	d.logger.WithField("tickRate", d.tickRate).Info("dealer run loop started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dealer run loop stopped")
			return nil
		case <-ticker.C:
			if _, err := d.Tick(); err != nil {
				var fe *session.FaultError
				if !errors.As(err, &fe) {
					return err
				}
			}
		}
	}
}

// Status returns the latest published status
func (d *Dealer) Status() Status {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return d.status
}

func (d *Dealer) publish() {
	status := newStatus(d.machine, d.server.ClientIDs(), d.ticks)

	d.lock.Lock()
	d.status = status
	d.lock.Unlock()
}
