package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"runo-server/internal/util"
	"runo-server/pkg/card"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// transport names
const (
	TransportUDP = "udp"
	TransportWS  = "ws"
)

// Server configures the authoritative server process
type Server struct {
	Addr       string `yaml:"addr" envconfig:"addr"`
	Transport  string `yaml:"transport" envconfig:"transport"`
	MaxClients int    `yaml:"maxClients" envconfig:"max_clients"`
	ProtocolID uint64 `yaml:"protocolId" envconfig:"protocol_id"`

	// StatusAddr is where the HTTP status surface listens, empty disables it
	StatusAddr string `yaml:"statusAddr" envconfig:"status_addr"`
}

// Session configures the game
type Session struct {
	PlayerCapacity int `yaml:"playerCapacity" envconfig:"player_capacity"`
	MinPlayers     int `yaml:"minPlayers" envconfig:"min_players"`
	HandSize       int `yaml:"handSize" envconfig:"hand_size"`
	TickRate       int `yaml:"tickRate" envconfig:"tick_rate"`

	// Seed makes shuffles reproducible when > 0
	Seed int64 `yaml:"seed" envconfig:"seed"`
}

// Client configures the client process
type Client struct {
	ServerAddr string `yaml:"serverAddr" envconfig:"server_addr"`
	Transport  string `yaml:"transport" envconfig:"transport"`
}

// Log configures logging
type Log struct {
	Level             string `yaml:"level" envconfig:"level"`
	Format            string `yaml:"format" envconfig:"format"`
	DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
}

// Config provides configuration for the server and client
type Config struct {
	loaded  bool
	Server  Server  `yaml:"server"`
	Session Session `yaml:"session"`
	Client  Client  `yaml:"client"`
	Log     Log     `yaml:"log"`
}

// ValidationError lists every invalid setting
type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(v.Problems, "; ")
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Addr:       "127.0.0.1:5000",
			Transport:  TransportUDP,
			MaxClients: 64,
			StatusAddr: "127.0.0.1:5080",
		},
		Session: Session{
			PlayerCapacity: 4,
			MinPlayers:     1,
			HandSize:       7,
			TickRate:       60,
		},
		Client: Client{
			ServerAddr: "127.0.0.1:5000",
			Transport:  TransportUDP,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// Defaults are overridden by the YAML file, which is overridden by RUNO_* environment variables.
// A missing file is not an error.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("RUNO_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if file != nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return fmt.Errorf("could not parse %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process("runo", &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}

// Validate checks that the settings can run a session
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !validTransport(c.Server.Transport) {
		add("unknown server transport %q", c.Server.Transport)
	}

	if !validTransport(c.Client.Transport) {
		add("unknown client transport %q", c.Client.Transport)
	}

	if c.Server.MaxClients < 1 {
		add("server.maxClients must be at least 1")
	}

	s := c.Session
	if s.PlayerCapacity < 1 {
		add("session.playerCapacity must be at least 1")
	}

	if s.MinPlayers < 1 || s.MinPlayers > s.PlayerCapacity {
		add("session.minPlayers must be between 1 and session.playerCapacity")
	}

	if s.HandSize < 1 {
		add("session.handSize must be at least 1")
	}

	if s.PlayerCapacity*s.HandSize > card.DeckSize {
		add("session.playerCapacity * session.handSize must not exceed %d cards", card.DeckSize)
	}

	if s.TickRate < 1 {
		add("session.tickRate must be at least 1")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	return nil
}

func validTransport(name string) bool {
	return name == TransportUDP || name == TransportWS
}
