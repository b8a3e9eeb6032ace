// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"slices"
	"sync"
	"time"
)

// WelcomeInstruction is the text of the step the store is seeded with.
const WelcomeInstruction = "Hi, I'm GuideWeave. Describe the equipment and the problem, " +
	"and I'll walk you through the repair step by step with references from the manuals."

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies the kind of store mutation.
type EventKind int

const (
	// EventAppend is emitted after a message is appended.
	EventAppend EventKind = iota
	// EventPending is emitted after the pending flag changes.
	EventPending
)

// Event describes one store mutation. Message is set for EventAppend.
type Event struct {
	Kind    EventKind
	Message Message
	Pending bool
}

// =============================================================================
// STORE TYPE
// =============================================================================

// Store owns the ordered message history and the in-flight flag.
//
// History is append-only. Observers registered with Subscribe are called
// synchronously after each mutation, in mutation order, outside the lock.
type Store struct {
	mu        sync.RWMutex
	messages  []Message
	pending   bool
	nextID    int64
	version   uint64
	observers map[int]func(Event)
	nextObs   int
	notifyMu  sync.Mutex
}

// NewStore creates a store seeded with the welcome message.
func NewStore() *Store {
	s := NewEmptyStore()
	s.AppendBotPayload(WelcomePayload())
	return s
}

// NewEmptyStore creates a store with no messages.
func NewEmptyStore() *Store {
	return &Store{
		messages:  make([]Message, 0, 16),
		observers: make(map[int]func(Event)),
	}
}

// WelcomePayload returns the synthetic first bot message.
func WelcomePayload() *Payload {
	return &Payload{
		Status:    StatusSuccess,
		TaskTitle: "Welcome",
		Steps: []Step{
			{Step: "1", Instruction: WelcomeInstruction},
		},
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AppendUser appends a user message with the given text.
// Validation is the caller's job.
func (s *Store) AppendUser(text string) Message {
	return s.append(RoleUser, TextContent(text))
}

// AppendBot appends a bot message with the given content.
func (s *Store) AppendBot(content Content) Message {
	return s.append(RoleBot, content)
}

// AppendBotPayload appends a bot message carrying a payload.
func (s *Store) AppendBotPayload(p *Payload) Message {
	return s.append(RoleBot, PayloadContent(p))
}

// AppendBotText appends a bot message carrying plain text.
func (s *Store) AppendBotText(text string) Message {
	return s.append(RoleBot, TextContent(text))
}

// SetPending sets the in-flight flag. Setting the current value again is
// not a mutation and notifies no one.
func (s *Store) SetPending(pending bool) {
	s.mu.Lock()
	if s.pending == pending {
		s.mu.Unlock()
		return
	}
	s.pending = pending
	s.version++
	s.mu.Unlock()

	s.notify(Event{Kind: EventPending, Pending: pending})
}

func (s *Store) append(role Role, content Content) Message {
	s.mu.Lock()
	s.nextID++
	msg := Message{
		ID:        s.nextID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)
	s.version++
	pending := s.pending
	s.mu.Unlock()

	s.notify(Event{Kind: EventAppend, Message: msg, Pending: pending})
	return msg
}

// =============================================================================
// OBSERVATION
// =============================================================================

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription. Observers must not mutate the store.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify delivers ev to every observer. Deliveries never interleave.
func (s *Store) notify(ev Event) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// Messages returns a snapshot of the history in insertion order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message, or false if the store is empty.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// LastBot returns the most recent bot message.
func (s *Store) LastBot() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleBot {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// Pending reports whether a dispatch is outstanding.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Version returns a counter that increases on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
