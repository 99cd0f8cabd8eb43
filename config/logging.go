package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger
func (c *Config) SetupLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
