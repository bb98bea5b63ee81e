package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("PROMO_TOKEN_SECRET", "s3cret")

	cfg, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:80", cfg.Addr)
	assert.Equal(t, "promo.sqlite", cfg.DBUrl)
	assert.Equal(t, 120*time.Second, cfg.TokenTTL)
	assert.Equal(t, 2, cfg.NotifyWorkers)
	assert.Equal(t, "http://localhost:80", cfg.Url())
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PROMO_TOKEN_SECRET", "s3cret")
	t.Setenv("PROMO_PORT", "9000")

	cfg, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-port", "8080", "-db-url", "x.sqlite", "-notify-url", "http://hook", "-debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "x.sqlite", cfg.DBUrl)
	assert.Equal(t, "http://hook", cfg.NotifyURL)
	assert.True(t, cfg.Debug)
}

func TestParseRequiresTokenSecret(t *testing.T) {
	t.Setenv("PROMO_TOKEN_SECRET", "")

	_, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.EqualError(t, err, "missing parameter -token-secret")
}

func TestParseRejectsZeroWorkers(t *testing.T) {
	_, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-token-secret", "x", "-notify-workers", "0",
	})
	assert.Error(t, err)
}
