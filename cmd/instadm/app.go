package main

import (
	"fmt"
	"os"

	"instadm/pkg/auth"
	"instadm/pkg/config"
	"instadm/pkg/logger"
	"instadm/pkg/session"
	"instadm/pkg/store"
)

// fatal prints a message to stderr and exits.
func fatal(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

// loadConfig loads the layered configuration and initializes logging.
func loadConfig(flags map[string]interface{}) *config.Config {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fatal("failed to load configuration", err)
	}

	if err := logger.Initialize(&logger.Config{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	}); err != nil {
		fatal("failed to initialize logging", err)
	}
	return cfg
}

// resolveCredentials returns the stored credentials selected by the
// --account flag, falling back to the default account.
func resolveCredentials() *auth.Credentials {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("failed to initialize credential manager", err)
	}

	var creds *auth.Credentials
	if accountName != "" {
		creds, err = manager.Retrieve(accountName)
		if err != nil {
			fatal(fmt.Sprintf("account %q not found, run 'instadm login' first", accountName), nil)
		}
	} else {
		creds, err = manager.RetrieveDefault()
		if err != nil {
			fmt.Fprintln(os.Stderr, "No Instagram credentials found.")
			fmt.Fprintln(os.Stderr, "\nTo store credentials securely, run:")
			fmt.Fprintln(os.Stderr, "  instadm login")
			fmt.Fprintln(os.Stderr, "\nFor backward compatibility, you can also set environment variables:")
			fmt.Fprintln(os.Stderr, "  export INSTADM_USERNAME=your_username")
			fmt.Fprintln(os.Stderr, "  export INSTADM_PASSWORD=your_password")
			os.Exit(1)
		}
	}
	return creds
}

// newSessionManager builds a session manager persisting artifacts under the
// configured data directory.
func newSessionManager(cfg *config.Config, creds *auth.Credentials) *session.Manager {
	return session.NewManager(*creds, cfg.Storage.DataDirectory, logger.GetLogger())
}

// openStore opens the contact database at the configured path.
func openStore(cfg *config.Config) *store.SQLiteStore {
	s, err := store.Open(cfg.Storage.DatabasePath, logger.GetLogger())
	if err != nil {
		fatal("failed to open contact database", err)
	}
	return s
}
