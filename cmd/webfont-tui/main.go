package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/jrnewell/goog-webfont-dl/internal/config"
	"github.com/jrnewell/goog-webfont-dl/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	configFlag := flag.String("config", "", "Path to settings file (YAML)")
	flag.Parse()

	settings, err := config.LoadSettings(*configFlag)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, only the file logger may write
	settings.Logging.ConsoleLogger.Level = config.LevelNone
	log, err := settings.Logging.Prepare("webfont-tui")
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, log.Sync())
	}()

	return tui.Run(settings, log)
}
