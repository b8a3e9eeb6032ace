// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal provides concurrency tests for the shared guideweave
// state.
//
// Run with: go test -race ./internal/...
//
// These tests verify thread safety of:
// - The conversation store (snapshots, observers, pending flag)
// - The dispatch controller (one outstanding query at a time)
// - The exchange journal (concurrent writers and readers)
package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/guideweave-tui/internal/dispatch"
	"github.com/jeranaias/guideweave-tui/internal/model"
	"github.com/jeranaias/guideweave-tui/internal/storage"
)

const (
	raceConcurrency = 100
	raceIterations  = 50
	raceTimeout     = 30 * time.Second
)

// waitOrFail waits for wg or fails the test after raceTimeout.
func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(raceTimeout):
		t.Fatal("timed out waiting for goroutines")
	}
}

// =============================================================================
// STORE
// =============================================================================

func TestConcurrency_StoreSnapshotsDuringAppends(t *testing.T) {
	store := model.NewEmptyStore()

	var delivered atomic.Int64
	unsubscribe := store.Subscribe(func(ev model.Event) {
		if ev.Kind == model.EventAppend {
			delivered.Add(1)
		}
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	errChan := make(chan error, raceConcurrency)

	for i := 0; i < raceConcurrency/2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				store.AppendUser(fmt.Sprintf("q-%d-%d", id, j))
			}
		}(i)
	}

	for i := 0; i < raceConcurrency/2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastVersion uint64
			for j := 0; j < raceIterations; j++ {
				v := store.Version()
				if v < lastVersion {
					errChan <- fmt.Errorf("version went backwards: %d < %d", v, lastVersion)
					return
				}
				lastVersion = v

				msgs := store.Messages()
				for k := 1; k < len(msgs); k++ {
					if msgs[k].ID <= msgs[k-1].ID {
						errChan <- fmt.Errorf("snapshot out of order at %d", k)
						return
					}
				}
				_ = store.Len()
				_, _ = store.Last()
			}
		}()
	}

	waitOrFail(t, &wg)
	close(errChan)
	for err := range errChan {
		t.Error(err)
	}

	total := (raceConcurrency / 2) * raceIterations
	assert.Equal(t, total, store.Len())
	assert.Equal(t, int64(total), delivered.Load())
}

func TestConcurrency_SubscribeWhileAppending(t *testing.T) {
	store := model.NewStore()

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				store.AppendBotText("tick")
				store.SetPending(!store.Pending())
			}
		}
	}()

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations/10; j++ {
				unsubscribe := store.Subscribe(func(model.Event) {})
				unsubscribe()
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	cancel()
	waitOrFail(t, &wg)
	assert.Greater(t, store.Len(), 1)
}

// =============================================================================
// DISPATCH
// =============================================================================

// slowTransport answers after a delay and counts calls in flight.
type slowTransport struct {
	delay       time.Duration
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (s *slowTransport) Chat(ctx context.Context, query string) ([]byte, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		cur := s.maxInFlight.Load()
		if n <= cur || s.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	s.calls.Add(1)

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []byte(`{"status":"success","task_title":"` + query + `","steps":[]}`), nil
}

func TestConcurrency_ControllerAdmitsOneDispatch(t *testing.T) {
	store := model.NewStore()
	transport := &slowTransport{delay: 5 * time.Millisecond}
	ctrl := dispatch.New(store, transport, dispatch.Options{Timeout: raceTimeout})

	var wg sync.WaitGroup
	var accepted atomic.Int32

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < raceIterations/10; j++ {
				if ctrl.Send(context.Background(), fmt.Sprintf("q-%d-%d", id, j)) {
					accepted.Add(1)
				}
			}
		}(i)
	}

	waitOrFail(t, &wg)

	require.Positive(t, accepted.Load())
	assert.Equal(t, int32(1), transport.maxInFlight.Load(), "dispatches must not overlap")
	assert.Equal(t, accepted.Load(), transport.calls.Load())
	assert.False(t, ctrl.Pending())

	// Every accepted query is followed directly by its answer.
	msgs := store.Messages()
	assert.Equal(t, 1+2*int(accepted.Load()), len(msgs))
	for k := 1; k+1 < len(msgs); k += 2 {
		require.True(t, msgs[k].IsUser(), "message %d", k)
		require.True(t, msgs[k+1].IsBot(), "message %d", k+1)
		assert.Equal(t, msgs[k].Content.Text, msgs[k+1].Content.Payload.TaskTitle)
	}
}

func TestConcurrency_StaleCompletionsDropped(t *testing.T) {
	store := model.NewStore()
	ctrl := dispatch.New(store, &slowTransport{}, dispatch.Options{})

	ticket, ok := ctrl.Begin("real")
	require.True(t, ok)

	var wg sync.WaitGroup
	var applied atomic.Int32
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			stale := dispatch.Result{Ticket: dispatch.Ticket{ID: ticket.ID + uint64(id) + 1}}
			if ctrl.Complete(stale) {
				applied.Add(1)
			}
		}(i)
	}
	waitOrFail(t, &wg)

	assert.Zero(t, applied.Load())
	assert.True(t, ctrl.Pending())
	assert.True(t, ctrl.Complete(ctrl.Execute(context.Background(), ticket)))
	assert.Equal(t, 3, store.Len())
}

// =============================================================================
// JOURNAL
// =============================================================================

func TestConcurrency_JournalWritersAndReaders(t *testing.T) {
	journal, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	ctx := context.Background()
	writers := raceConcurrency / 10
	perWriter := raceIterations / 5

	var wg sync.WaitGroup
	errChan := make(chan error, writers*perWriter+writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				err := journal.Record(ctx, storage.Exchange{
					Query:    fmt.Sprintf("q-%d-%d", id, j),
					Response: `{"status":"success","steps":[]}`,
					Duration: time.Millisecond,
				})
				if err != nil {
					errChan <- err
				}
			}
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if _, err := journal.Recent(ctx, 5); err != nil {
					errChan <- err
					return
				}
			}
		}()
	}

	waitOrFail(t, &wg)
	close(errChan)
	for err := range errChan {
		t.Error(err)
	}

	n, err := journal.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, n)
}
