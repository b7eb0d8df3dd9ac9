package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casectl/internal/config"
	"casectl/internal/console"
	"casectl/internal/logging"
	"casectl/internal/render"
	"casectl/internal/session"
	"casectl/internal/store"
)

// cfg is the effective configuration, resolved once per invocation in the
// root command's PersistentPreRunE.
var cfg *config.Config

// loadConfig resolves the layered config and applies flag overrides.
func loadConfig(_ *cobra.Command) error {
	c, err := config.Resolve(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.baseURL != "" {
		c.BaseURL = rootFlags.baseURL
	}
	if rootFlags.apiKeyFile != "" {
		c.APIKeyFile = rootFlags.apiKeyFile
	}
	if rootFlags.dbPath != "" {
		c.DBPath = rootFlags.dbPath
	}
	if rootFlags.timeout > 0 {
		c.TimeoutSeconds = rootFlags.timeout
	}
	if rootFlags.logLevel != "" {
		c.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.LogFormat = rootFlags.logFormat
	}
	cfg = c
	return nil
}

// newClient builds the console client from the effective config.
func newClient() (*console.Client, error) {
	opts := []console.Option{
		console.WithLogger(logging.New("console")),
		console.WithTimeout(cfg.Timeout()),
	}
	if cfg.APIKeyFile != "" {
		key, err := console.ReadAPIKey(cfg.APIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read API key: %w", err)
		}
		opts = append(opts, console.WithAPIKey(key))
	}
	return console.New(cfg.BaseURL, opts...)
}

// openTracker opens the session store. Callers must invoke the returned
// closer.
func openTracker() (*session.Tracker, func(), error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return session.NewTracker(st), func() { _ = st.Close() }, nil
}

// tableMode picks ASCII or Markdown table rendering.
func tableMode() render.Mode {
	if rootFlags.markdown {
		return render.Markdown
	}
	return render.ASCII
}
