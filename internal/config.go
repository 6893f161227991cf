package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	StoreBadger = "badger"
	StoreMySQL  = "mysql"
)

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	StoreDriver       string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH"`
	MySQLDSN          string        `env:"MYSQL_DSN"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,default=2000"`

	NotificationBufferSize    int           `env:"NOTIFICATION_BUFFER_SIZE,default=1024"`
	NotificationWebhookURL    string        `env:"NOTIFICATION_WEBHOOK_URL"`
	NotificationTriggerSecret string        `env:"NOTIFICATION_TRIGGER_SECRET"`
	NotificationTimeout       time.Duration `env:"NOTIFICATION_TIMEOUT,default=5s"`
	NotificationRatePerSecond float64       `env:"NOTIFICATION_RATE_PER_SECOND,default=20"`
	MetricInterval            time.Duration `env:"METRIC_INTERVAL,default=10s"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=1s"`
}

// Validate checks the cross-field constraints go-env cannot express.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreBadger:
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required with STORE_DRIVER=%s", StoreBadger)
		}
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required with STORE_DRIVER=%s", StoreMySQL)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", c.MaxContentLength)
	}
	if c.NotificationBufferSize <= 0 {
		return fmt.Errorf("NOTIFICATION_BUFFER_SIZE must be positive, got %d", c.NotificationBufferSize)
	}
	return nil
}

// Words splits CENSORED_WORDS on commas, ignoring blanks.
func (c Config) Words() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
