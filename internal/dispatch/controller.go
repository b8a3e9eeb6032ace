// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch turns a submitted query into a backend request and
// reconciles the answer into the conversation store.
package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/storage"
)

// DefaultTimeout bounds one dispatch when the options set none.
const DefaultTimeout = 60 * time.Second

// Transport posts a query and returns the raw 2xx response body.
type Transport interface {
	Chat(ctx context.Context, query string) ([]byte, error)
}

// Recorder persists completed exchanges.
type Recorder interface {
	Record(ctx context.Context, ex storage.Exchange) error
}

// Ticket identifies one outstanding dispatch.
type Ticket struct {
	ID      uint64
	Query   string
	Started time.Time
}

// Result is the outcome of executing a ticket.
type Result struct {
	Ticket   Ticket
	Body     []byte
	Content  model.Content
	Err      error
	Duration time.Duration
}

// Failed reports whether the dispatch ended in a connection failure.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Options configures a Controller.
type Options struct {
	// Timeout bounds Execute. Zero means DefaultTimeout.
	Timeout time.Duration

	// Recorder, if set, receives every completed exchange.
	Recorder Recorder

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller serializes dispatches against one store.
//
// Begin and Complete mutate the store and must run on the caller's event
// loop. Execute only performs the request and may run anywhere.
type Controller struct {
	store     *model.Store
	transport Transport
	recorder  Recorder
	timeout   time.Duration
	log       zerolog.Logger

	mu          sync.Mutex
	lastTicket  uint64
	outstanding uint64 // 0 when idle
}

// New creates a controller for store using transport.
func New(store *model.Store, transport Transport, opts Options) *Controller {
	c := &Controller{
		store:     store,
		transport: transport,
		recorder:  opts.Recorder,
		timeout:   opts.Timeout,
		log:       zerolog.Nop(),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "dispatch").Logger()
	}
	return c
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *model.Store {
	return c.store
}

// Pending reports whether a dispatch is outstanding.
func (c *Controller) Pending() bool {
	return c.store.Pending()
}

// Begin validates raw and, if accepted, appends the user message and marks
// the store pending. The query is trimmed and NFC-normalized. It returns false for blank input and while another
// dispatch is outstanding; neither case changes any state.
func (c *Controller) Begin(raw string) (Ticket, bool) {
	query := norm.NFC.String(strings.TrimSpace(raw))
	if query == "" {
		return Ticket{}, false
	}

	c.mu.Lock()
	if c.outstanding != 0 || c.store.Pending() {
		c.mu.Unlock()
		c.log.Debug().Msg("submission ignored while a dispatch is pending")
		return Ticket{}, false
	}
	c.lastTicket++
	t := Ticket{ID: c.lastTicket, Query: query, Started: time.Now()}
	c.outstanding = t.ID
	c.mu.Unlock()

	c.store.AppendUser(query)
	c.store.SetPending(true)

	c.log.Debug().Uint64("ticket", t.ID).Int("query_len", len(query)).Msg("dispatch started")
	return t, true
}

// Execute performs the request for t. It never touches the store.
func (c *Controller) Execute(ctx context.Context, t Ticket) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.transport.Chat(ctx, t.Query)
	r := Result{Ticket: t, Err: err, Duration: time.Since(t.Started)}
	if err == nil {
		r.Body = body
		r.Content = model.DecodeContent(body)
	}
	return r
}

// Complete reconciles r into the store. Results for a ticket other than the
// outstanding one are dropped and false is returned. A failed result is
// recorded as the connection-failure payload. Pending is cleared in every
// accepted case.
func (c *Controller) Complete(r Result) bool {
	c.mu.Lock()
	if r.Ticket.ID == 0 || r.Ticket.ID != c.outstanding {
		c.mu.Unlock()
		c.log.Warn().Uint64("ticket", r.Ticket.ID).Msg("dropping stale dispatch result")
		return false
	}
	c.outstanding = 0
	c.mu.Unlock()

	if r.Err != nil {
		c.log.Warn().Err(r.Err).Uint64("ticket", r.Ticket.ID).
			Dur("duration", r.Duration).Msg("dispatch failed")
		c.store.AppendBotPayload(model.NewConnectionFailure())
	} else {
		msg := c.store.AppendBot(r.Content)
		c.log.Debug().Uint64("ticket", r.Ticket.ID).
			Dur("duration", r.Duration).Int("bytes", len(r.Body)).
			Str("answer", msg.Preview(60)).Msg("dispatch completed")
	}
	c.store.SetPending(false)

	c.record(r)
	return true
}

// Send runs Begin, Execute and Complete in sequence on the calling goroutine.
func (c *Controller) Send(ctx context.Context, raw string) bool {
	t, ok := c.Begin(raw)
	if !ok {
		return false
	}
	return c.Complete(c.Execute(ctx, t))
}

func (c *Controller) record(r Result) {
	if c.recorder == nil {
		return
	}

	response := string(r.Body)
	if r.Err != nil {
		data, _ := json.Marshal(model.NewConnectionFailure())
		response = string(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.recorder.Record(ctx, storage.Exchange{
		Query:     r.Ticket.Query,
		Response:  response,
		Failed:    r.Err != nil,
		Duration:  r.Duration,
		CreatedAt: r.Ticket.Started,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to record exchange")
	}
}
