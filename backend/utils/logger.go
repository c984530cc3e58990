package utils

import (
	"log"
	"os"
)

// LoggerConfig controls the logger output stream and verbosity.
type LoggerConfig struct {
	Output  *os.File
	Verbose bool
}

// InitLogger builds the application logger used by services and middleware.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	flags := log.LstdFlags | log.LUTC
	if cfg.Verbose {
		flags |= log.Lshortfile
	}

	return log.New(cfg.Output, "[EduLabs] ", flags)
}
