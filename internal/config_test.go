package internal

import (
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_FromEnviron(t *testing.T) {
	req := require.New(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BADGER_FILEPATH", "/tmp/market")
	t.Setenv("BLUGE_FILEPATH", "/tmp/market-index")
	t.Setenv("JWT_SECRET", "a-secret")
	t.Setenv("CENSORED_WORDS", "scam, venmo,,  ")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal(StoreBadger, config.StoreDriver)
	req.Equal(2000, config.MaxContentLength)
	req.Equal([]string{"scam", "venmo"}, config.Words())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{StoreDriver: StoreBadger, BadgerFilepath: "/tmp/db", MaxContentLength: 10, NotificationBufferSize: 1}

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"Badger without path", func(c *Config) { c.BadgerFilepath = "" }},
		{"MySQL without dsn", func(c *Config) { c.StoreDriver = StoreMySQL }},
		{"Unknown driver", func(c *Config) { c.StoreDriver = "postgres" }},
		{"Zero content length", func(c *Config) { c.MaxContentLength = 0 }},
		{"Zero buffer", func(c *Config) { c.NotificationBufferSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.modify(&config)
			require.Error(t, config.Validate())
		})
	}
	require.NoError(t, valid.Validate())
}

func TestCharacterRune(t *testing.T) {
	r, err := CharacterRune("#")
	require.NoError(t, err)
	require.Equal(t, '#', r)

	_, err = CharacterRune("##")
	require.Error(t, err)
}
