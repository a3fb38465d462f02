// Package app wires configuration, records, the command parser and the shell together.
package app

import (
	"fmt"
	"io"
	"sync"

	"claycmd/internal/commands"
	"claycmd/internal/config"
	"claycmd/internal/logger"
	"claycmd/internal/records"
	"claycmd/internal/shell"
	"claycmd/pkg/cmdparse"
)

// App is a fully wired claycmd instance.
type App struct {
	Config *config.Config
	Parser *cmdparse.CommandParser
	Shell  *shell.Shell

	mu      sync.RWMutex
	records *cmdparse.OrderedScope
}

// New loads the records, registers the application commands allowed by the configured
// permission and creates a shell writing to out.
func New(cfg *config.Config, out io.Writer) (*App, error) {
	a := &App{Config: cfg, records: cmdparse.NewOrderedScope()}
	if _, err := a.Reload(); err != nil {
		return nil, err
	}

	a.Parser = cmdparse.New(
		cmdparse.WithMaxExecutions(cfg.MaxExecutions),
		cmdparse.WithRenderMode(cfg.RenderMode),
	)
	n, err := commands.Register(a.Parser, cfg.Permission, commands.Deps{
		Records: a.Records,
		Reload:  a.Reload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	logger.Debug("Commands registered", "considered", n, "available", len(a.Parser.Commands()), "permission", cfg.Permission)

	a.Shell, err = shell.New(a.Parser, shell.Options{
		Out: out,
		Kwargs: map[string]any{
			"user":       cfg.User,
			"permission": cfg.Permission,
		},
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Records returns the current record scope.
func (a *App) Records() (cmdparse.Scope, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records, nil
}

// Reload re-reads the configured records file. Without a file the scope stays empty.
func (a *App) Reload() (int, error) {
	if a.Config.Records == "" {
		return 0, nil
	}
	scope, err := records.Load(a.Config.Records)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	a.records = scope
	a.mu.Unlock()

	if scope.Len() == 0 {
		logger.Warn("Records file has no records", "file", a.Config.Records)
	}
	logger.Debug("Records loaded", "file", a.Config.Records, "count", scope.Len())
	return scope.Len(), nil
}
