package cli

import (
	"fmt"
	"log/slog"
	"os"

	"leveller/internal/model"
	"leveller/internal/store"
	"leveller/internal/vault"
)

// Env is the composition root shared by all commands: configuration,
// logger and the opened persistence stack. Built once per invocation,
// passed by reference - no ambient globals.
type Env struct {
	Config   Config
	Logger   *slog.Logger
	Records  store.Records
	KV       *store.KV
	Vault    *vault.Vault
	Degraded bool // records is in-memory; state is lost on exit
}

// OpenEnv loads configuration and opens the persistence stack.
// A store that cannot be opened degrades to the in-memory twin rather
// than failing: the application still runs, state is simply lost on
// exit, and the condition is logged once.
func OpenEnv(opts *RootOptions) (*Env, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	collections := make([]string, 0, len(model.Collections()))
	for _, c := range model.Collections() {
		collections = append(collections, string(c))
	}

	env := &Env{Config: cfg, Logger: logger}
	records, err := store.Open(cfg.DBPath(), collections)
	if err != nil {
		logger.Warn("store unavailable, running in memory; state will not survive restart",
			"path", cfg.DBPath(), "error", err)
		records = nil
		env.Degraded = true
	}
	if records == nil {
		env.Records = store.NewMemory(collections)
	} else {
		env.Records = records
	}

	env.KV = store.OpenKV(cfg.KVPath(), logger)
	env.Vault = vault.New(env.Records, env.KV)
	return env, nil
}

// Close releases the persistence stack.
func (e *Env) Close() {
	if err := e.Records.Close(); err != nil {
		e.Logger.Warn("store close failed", "error", err)
	}
}

// Warn prints a one-line user-visible notice. Persistence failures are
// surfaced this way; in-memory state stays authoritative.
func (e *Env) Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
