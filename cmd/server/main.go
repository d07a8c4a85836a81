package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runo-server/internal/config"
	"runo-server/internal/mux"
	"runo-server/internal/rng"
	"runo-server/internal/util"
	"runo-server/pkg/room"
	"runo-server/pkg/session"
	"runo-server/pkg/transport"
	"runo-server/pkg/transport/kcp"
	"runo-server/pkg/transport/ws"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the game listen address, overrides server.addr")

func main() {
	flag.Parse()

	cfg := config.Instance()
	if err := util.ConfigureLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.WithError(err).Fatal("could not configure logger")
	}

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	// fail fast
	server, err := listen(cfg.Server, listenAddr)
	if err != nil {
		logrus.WithError(err).WithField("addr", listenAddr).Fatal("could not bind game transport")
	}

	opts := session.Options{
		PlayerCapacity: cfg.Session.PlayerCapacity,
		MinPlayers:     cfg.Session.MinPlayers,
		HandSize:       cfg.Session.HandSize,
	}

	dealer, err := room.NewDealer(server, opts, rng.New(cfg.Session.Seed), cfg.Session.TickRate, logrus.StandardLogger())
	if err != nil {
		logrus.WithError(err).Fatal("could not create dealer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.StatusAddr != "" {
		c := cors.New(cors.Options{
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
			AllowedMethods: []string{http.MethodGet},
		})

		srv := &http.Server{
			Addr:         cfg.Server.StatusAddr,
			Handler:      loggingHandler(cfg.Log, c.Handler(mux.NewMux(Version, dealer))),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		}

		go func() {
			logrus.WithField("addr", srv.Addr).Info("status listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Fatal("status server failed")
			}
		}()

		defer srv.Close()
	}

	if err := dealer.Run(ctx); err != nil {
		logrus.WithError(err).Error("dealer stopped")
	}

	if err := server.Close(); err != nil {
		logrus.WithError(err).Warn("could not close game transport")
	}
}

func listen(cfg config.Server, addr string) (transport.Server, error) {
	hubConfig := transport.HubConfig{
		ProtocolID: cfg.ProtocolID,
		MaxClients: cfg.MaxClients,
	}

	logger := logrus.WithField("transport", cfg.Transport)
	switch cfg.Transport {
	case config.TransportWS:
		server, err := ws.Listen(addr, hubConfig, logger)
		if err != nil {
			return nil, err
		}

		logger.WithField("addr", server.Addr()).Info("listening")
		return server, nil
	default:
		server, err := kcp.Listen(addr, hubConfig, logger)
		if err != nil {
			return nil, err
		}

		logger.WithField("addr", server.Addr()).Info("listening")
		return server, nil
	}
}

func loggingHandler(cfg config.Log, next http.Handler) http.Handler {
	if cfg.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}
