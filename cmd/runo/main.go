package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"runo-server/internal/config"
	"runo-server/internal/rng"
	"runo-server/internal/util"
	"runo-server/pkg/client"
	"runo-server/pkg/room"
	"runo-server/pkg/session"
	"runo-server/pkg/transport"
	"runo-server/pkg/transport/memory"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var ticks = flag.Int("ticks", 3, "how many frames to run before printing the table")

func main() {
	flag.Parse()

	cfg := config.Instance()
	if err := util.ConfigureLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.WithError(err).Fatal("could not configure logger")
	}

	server := memory.NewServer()
	opts := session.Options{
		PlayerCapacity: cfg.Session.PlayerCapacity,
		MinPlayers:     cfg.Session.MinPlayers,
		HandSize:       cfg.Session.HandSize,
	}

	dealer, err := room.NewDealer(server, opts, rng.New(cfg.Session.Seed), cfg.Session.TickRate, logrus.StandardLogger())
	if err != nil {
		logrus.WithError(err).Fatal("could not create dealer")
	}

	// local players are numbered from zero
	players := make([]*client.Client, 0, opts.PlayerCapacity)
	for i := 0; i < opts.PlayerCapacity; i++ {
		id := transport.ClientID(i)
		if err := server.Connect(id); err != nil {
			logrus.WithError(err).Fatal("could not seat local player")
		}

		players = append(players, client.New(server.Client(id), logrus.StandardLogger()))
	}

	for i := 0; i < *ticks; i++ {
		if _, err := dealer.Tick(); err != nil {
			logrus.WithError(err).Error("session fault")
		}

		for _, p := range players {
			if _, err := p.Tick(); err != nil {
				logrus.WithError(err).Fatal("local player lost connection")
			}
		}
	}

	if err := yaml.NewEncoder(os.Stdout).Encode(dealer.Status()); err != nil {
		logrus.WithError(err).Fatal("could not print status")
	}

	for _, p := range players {
		fmt.Printf("player %d: %s\n", p.ID(), strings.Join(p.View().Hand, ", "))
	}
}
