package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"runo-server/internal/config"
	"runo-server/internal/util"
	"runo-server/pkg/client"
	"runo-server/pkg/transport"
	"runo-server/pkg/transport/kcp"
	"runo-server/pkg/transport/ws"

	"github.com/sirupsen/logrus"
)

var addr = flag.String("addr", "", "the server address, overrides client.serverAddr")
var id = flag.Uint64("id", 0, "the client id, defaults to the current time in milliseconds")

func main() {
	flag.Parse()

	cfg := config.Instance()
	if err := util.ConfigureLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.WithError(err).Fatal("could not configure logger")
	}

	serverAddr := cfg.Client.ServerAddr
	if *addr != "" {
		serverAddr = *addr
	}

	hello := transport.NewHello(cfg.Server.ProtocolID)
	if *id > 0 {
		hello.ClientID = transport.ClientID(*id)
	}

	conn, err := dial(cfg.Client.Transport, serverAddr, hello)
	if err != nil {
		logrus.WithError(err).WithField("addr", serverAddr).Fatal("could not connect to server")
	}
	defer conn.Close()

	c := client.New(conn, logrus.StandardLogger())
	logrus.WithField("client", c.ID()).Info("connected")

	lines := make(chan string)
	go readLines(lines)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Session.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			changed, err := c.Tick()
			if err != nil {
				logrus.WithError(err).Fatal("lost connection to server")
			}

			if changed {
				printView(c.View())
			}
		case line, ok := <-lines:
			if !ok {
				return
			}

			if !command(c, line) {
				return
			}
		}
	}
}

func dial(name, addr string, hello transport.Hello) (transport.Client, error) {
	logger := logrus.WithField("transport", name)
	if name == config.TransportWS {
		return ws.Dial(addr, hello, transport.DefaultHandshakeTimeout, logger)
	}

	return kcp.Dial(addr, hello, transport.DefaultHandshakeTimeout, logger)
}

func readLines(lines chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- strings.TrimSpace(scanner.Text())
	}

	close(lines)
}

// command runs one line of input and returns false to quit
func command(c *client.Client, line string) bool {
	switch {
	case line == "":
	case line == "quit":
		return false
	case line == "hand":
		printView(c.View())
	case strings.HasPrefix(line, "play "):
		if err := c.Play(strings.TrimSpace(strings.TrimPrefix(line, "play "))); err != nil {
			fmt.Println(err)
		}
	default:
		fmt.Println(`commands: "play <card>", "hand", "quit"`)
	}

	return true
}

func printView(view client.View) {
	fmt.Printf("hand:     %s\n", strings.Join(view.Hand, ", "))
	if len(view.Playable) > 0 {
		fmt.Printf("playable: %s\n", strings.Join(view.Playable, ", "))
	}
}
