package util

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ConfigureLogger sets the level and format of the standard logger.
// format is "text" or "json"; an empty level leaves the level unchanged.
func ConfigureLogger(level, format string) error {
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}

		logrus.SetLevel(lvl)
	}

	switch format {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	return nil
}
