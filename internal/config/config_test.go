package config

import (
	"os"
	"testing"

	"runo-server/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("RUNO_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("RUNO_SESSION_HAND_SIZE", "6")
	defer clear2()

	a := assert.New(t)
	cfg := Instance()
	a.Equal("0.0.0.0:6000", cfg.Server.Addr)
	a.Equal(TransportWS, cfg.Server.Transport)
	a.Equal(uint64(7), cfg.Server.ProtocolID)
	a.Equal(64, cfg.Server.MaxClients)
	a.Equal(3, cfg.Session.PlayerCapacity)
	a.Equal(6, cfg.Session.HandSize)
	a.Equal(int64(99), cfg.Session.Seed)
	a.Equal(60, cfg.Session.TickRate)
	a.Equal("json", cfg.Log.Format)

	// ensure that it's only loaded once
	_ = os.Setenv("RUNO_SESSION_HAND_SIZE", "4")
	// ensure we aren't using a pointer
	cfg.Session.HandSize = 1
	cfg = Instance()
	a.Equal(6, cfg.Session.HandSize)
	_ = os.Setenv("RUNO_SESSION_HAND_SIZE", "6")
}

func TestDefaults(t *testing.T) {
	defer util.SetEnv("RUNO_CONFIG_FILE", "testdata/missing.yaml")()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()

	expected := DefaultConfig()
	expected.loaded = true
	a.Equal(expected, cfg)
}

func TestLoad_Invalid(t *testing.T) {
	defer util.SetEnv("RUNO_CONFIG_FILE", "testdata/missing.yaml")()
	defer util.SetEnv("RUNO_SESSION_PLAYER_CAPACITY", "20")()

	err := Load()
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidate(t *testing.T) {
	a := assert.New(t)
	a.NoError(DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Server.Transport = "tcp"
	cfg.Server.MaxClients = 0
	cfg.Session.PlayerCapacity = 16
	cfg.Session.MinPlayers = 0
	cfg.Session.TickRate = 0

	err := cfg.Validate()
	var ve *ValidationError
	if a.ErrorAs(err, &ve) {
		a.Len(ve.Problems, 5)
		a.Contains(err.Error(), "unknown server transport \"tcp\"")
	}

	cfg = DefaultConfig()
	cfg.Session.HandSize = 0
	a.Error(cfg.Validate())
}
