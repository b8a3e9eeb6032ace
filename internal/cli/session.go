// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/guideweave-tui/internal/assets"
	"github.com/jeranaias/guideweave-tui/internal/client"
	"github.com/jeranaias/guideweave-tui/internal/config"
	"github.com/jeranaias/guideweave-tui/internal/dispatch"
	"github.com/jeranaias/guideweave-tui/internal/logging"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/storage"
)

// logTarget selects where a session logs.
type logTarget int

const (
	logToFile logTarget = iota
	logToConsole
)

// session wires one conversation: store, transport, controller, journal.
type session struct {
	cfg      *config.Config
	store    *model.Store
	client   *client.Client
	resolver *assets.Resolver
	ctrl     *dispatch.Controller
	journal  *storage.Journal
	log      *logging.Logger
}

// openSession builds a session from the loaded config. A journal that cannot
// be opened is logged and skipped.
func (a *App) openSession(target logTarget) (*session, error) {
	cfg := a.cfg
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	var log *logging.Logger
	switch target {
	case logToFile:
		l, err := logging.NewFile(cfg, a.debug)
		if err != nil {
			fmt.Fprintf(a.Err, "warning: %v\n", err)
			l = logging.Nop()
		}
		log = l
	default:
		log = logging.NewConsole(a.Err, cfg, a.debug)
	}

	s := &session{
		cfg:   cfg,
		store: model.NewStore(),
		client: client.New(cfg.Backend.BaseURL,
			client.WithTimeout(cfg.Timeout()),
			client.WithMode(cfg.Backend.Mode)),
		resolver: assets.NewResolver(cfg.Backend.BaseURL, cfg.Backend.StaticRoute),
		log:      log,
	}

	opts := dispatch.Options{Timeout: cfg.Timeout(), Logger: &log.Logger}
	if cfg.Journal.Enabled {
		j, err := storage.Open(cfg.Journal.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Journal.Path).Msg("exchange journal unavailable")
		} else {
			s.journal = j
			opts.Recorder = j
		}
	}
	s.ctrl = dispatch.New(s.store, s.client, opts)

	log.Debug().
		Str("base_url", cfg.Backend.BaseURL).
		Str("mode", cfg.Backend.Mode).
		Bool("journal", s.journal != nil).
		Msg("session opened")
	return s, nil
}

// Close releases the journal and the log file.
func (s *session) Close() error {
	var firstErr error
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.log.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
