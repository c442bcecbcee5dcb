// Command auction-console is a terminal admin console for the auction
// marketplace: a live seller-profile review table and a notification
// feed, kept current over a push connection.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/auction-console/internal/app"
	"github.com/nhle/auction-console/internal/credential"
	"github.com/nhle/auction-console/internal/logging"
	"github.com/nhle/auction-console/internal/model"
	"github.com/nhle/auction-console/internal/readstate"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	statePath := flag.String("state", model.DefaultStatePath(), "path to read-state database")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *statePath, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "auction-console: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, statePath string, debug bool) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log, closeLog := logging.Setup(level)
	defer closeLog()

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	token := os.Getenv("AUCTION_CONSOLE_TOKEN")
	if token == "" {
		token, err = credential.Get(credential.APITokenKey)
		if err != nil {
			// No stored token means first run; the setup form collects it.
			log.Debug().Err(err).Msg("no API token in keyring")
			token = ""
		}
	}

	cache := openCache(statePath, log)

	program := tea.NewProgram(
		app.New(cfg, configPath, token, cache, log),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openCache opens the persistent read-state store, degrading to an
// in-memory one when the database cannot be opened. Losing the cache
// only costs sticky-read across restarts, never the session.
func openCache(path string, log zerolog.Logger) readstate.Store {
	cache, err := readstate.NewSQLiteStore(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).
			Msg("read-state database unavailable, using in-memory store")
		return readstate.NewMemoryStore()
	}
	return cache
}
