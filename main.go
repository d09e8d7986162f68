// ragchat - A terminal interface for document Q&A over a RAG backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/rag"
	"github.com/jeranaias/ragchat-tui/internal/store"
	"github.com/jeranaias/ragchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.ragchat/config.toml)")
		serverURL   = flag.String("server", "", "RAG backend URL (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ragchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *serverURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, serverURL string) error {
	path := configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}

	client := newClient(cfg)
	st := store.New(client, settingsFromConfig(cfg))
	m := chat.New(st, cfg, Version)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	// Config edits reach the running program as ConfigReloadedMsg.
	watcher, werr := config.NewWatcher(path, func(c *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: c})
	})
	if werr == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run ragchat: %w", err)
	}
	return nil
}

// newClient builds the backend client from config, attaching a token source
// only when an access token is present.
func newClient(cfg *config.Config) *rag.Client {
	clientCfg := &rag.ClientConfig{
		BaseURL:          cfg.Server.BaseURL,
		Timeout:          time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		MaxRetries:       cfg.Server.MaxRetries,
		QueriesPerSecond: cfg.Server.QueriesPerSecond,
	}

	var tokens *rag.TokenSource
	if cfg.Auth.AccessToken != "" {
		tokens = rag.NewTokenSource(cfg.Server.BaseURL, rag.TokenPair{
			AccessToken:  cfg.Auth.AccessToken,
			RefreshToken: cfg.Auth.RefreshToken,
		})
	}

	return rag.NewClient(clientCfg, tokens)
}

// settingsFromConfig maps the chat section of the config onto the store's
// initial conversation settings.
func settingsFromConfig(cfg *config.Config) store.Settings {
	return store.Settings{
		SearchType:       cfg.SearchType(),
		MaxResults:       cfg.Chat.MaxResults,
		Temperature:      cfg.Chat.Temperature,
		IncludeCitations: cfg.Chat.IncludeCitations,
		Streaming:        cfg.Chat.Streaming,
	}
}
