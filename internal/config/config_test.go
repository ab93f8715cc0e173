package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := setEnv("CARDROOM_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := setEnv("CARDROOM_BETTING_RAISE_CAP", "5")
	defer clear2()

	a := assert.New(t)
	config.loaded = false
	cfg := Instance()
	a.Equal(25, cfg.Betting.MinBet)
	a.Equal(5, cfg.Betting.RaiseCap)
	a.Equal("localhost:6379", cfg.Redis.Addr)

	// ensure that it's only loaded once
	_ = os.Setenv("CARDROOM_BETTING_RAISE_CAP", "7")
	// ensure we aren't using a pointer
	cfg.Betting.RaiseCap = -1
	cfg = Instance()
	a.Equal(5, cfg.Betting.RaiseCap)
}

func TestDefaults(t *testing.T) {
	clear := setEnv("CARDROOM_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, 10, cfg.Betting.MinBet)
	assert.Equal(t, 3, cfg.Betting.RaiseCap)
	assert.Equal(t, "./sql", cfg.MigrationsPath)
}

func setEnv(key, val string) func() {
	orig := os.Getenv(key)
	_ = os.Setenv(key, val)
	return func() {
		if orig == "" {
			_ = os.Unsetenv(key)
		} else {
			_ = os.Setenv(key, orig)
		}
	}
}
