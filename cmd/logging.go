package cmd

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the level and format to the global logrus logger
func ConfigureLogging(level, format string) {
	log.SetOutput(os.Stdout)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
