package store

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N int `json:"n"`
}

func TestTransactionCreatesDocument(t *testing.T) {
	s := New(nil)

	err := Update(s, "counters/a", func(cur *counter) (*counter, error) {
		require.Nil(t, cur)
		return &counter{N: 1}, nil
	})
	require.NoError(t, err)

	got, ok, err := Read[counter](s, "counters/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.N)
}

func TestAbortLeavesValueUnchanged(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("counters/a", counter{N: 5}))

	err := Update(s, "counters/a", func(cur *counter) (*counter, error) {
		return nil, ErrAborted
	})
	require.ErrorIs(t, err, ErrAborted)

	got, ok, err := Read[counter](s, "counters/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, got.N)
}

// Concurrent read-modify-write increments must not lose updates. This is the
// property every mutation in the game layer depends on.
func TestConcurrentTransactionsLoseNoUpdates(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("counters/a", counter{}))

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := Update(s, "counters/a", func(cur *counter) (*counter, error) {
					cur.N++
					return cur, nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, ok, err := Read[counter](s, "counters/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, workers*perWorker, got.N)
}

func TestDescendantWriteConflictsWithAncestorTransaction(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("lobbies/x", counter{N: 1}))

	// A write below lobbies/x lands between the ancestor transaction's read
	// and commit; the transaction must observe it as a conflict and retry.
	attempts := 0
	err := s.Transaction("lobbies/x", func(cur json.RawMessage) (json.RawMessage, error) {
		attempts++
		if attempts == 1 {
			require.NoError(t, s.Set("lobbies/x/child", counter{N: 9}))
		}
		return json.Marshal(counter{N: 2})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestSubscribeDeliversInitialAndSubsequentValues(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("lobbies/x", counter{N: 1}))

	events := make(chan Event, 16)
	unsub := s.Subscribe("lobbies/x", func(ev Event) { events <- ev })
	defer unsub()

	first := <-events
	assert.Equal(t, "lobbies/x", first.Path)
	var got counter
	require.NoError(t, json.Unmarshal(first.Data, &got))
	assert.Equal(t, 1, got.N)

	require.NoError(t, s.Set("lobbies/x/round1", counter{N: 7}))
	second := <-events
	assert.Equal(t, "lobbies/x/round1", second.Path)

	// Writes outside the subtree stay invisible.
	require.NoError(t, s.Set("lobbies/y", counter{N: 3}))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event for %s", ev.Path)
	default:
	}
}

// A subscriber that stalls long enough to overflow its buffer must still
// observe the newest committed value once it resumes; only intermediate
// values may be lost. Reactive triggers rely on this to never miss the
// final write of a burst.
func TestSlowSubscriberStillSeesLatestWrite(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("counters/a", counter{N: 0}))

	release := make(chan struct{})
	var mu sync.Mutex
	var last counter

	unsub := s.Subscribe("counters/a", func(ev Event) {
		<-release
		if ev.Data == nil {
			return
		}
		var c counter
		if err := json.Unmarshal(ev.Data, &c); err == nil {
			mu.Lock()
			last = c
			mu.Unlock()
		}
	})
	defer unsub()

	// Far more writes than the subscriber buffer holds.
	const writes = eventBufferSize + 100
	for i := 1; i <= writes; i++ {
		require.NoError(t, s.Set("counters/a", counter{N: i}))
	}
	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last.N == writes
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDeleteRemovesSubtree(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("lobbies/x", counter{N: 1}))
	require.NoError(t, s.Set("lobbies/x/round1", counter{N: 2}))

	s.Delete("lobbies/x")

	_, ok := s.Get("lobbies/x")
	assert.False(t, ok)
	_, ok = s.Get("lobbies/x/round1")
	assert.False(t, ok)
	assert.Empty(t, s.List("lobbies/x"))
}

func TestSetReplacesSubtree(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("lobbies/x", counter{N: 1}))
	require.NoError(t, s.Set("lobbies/x/round1", counter{N: 2}))

	require.NoError(t, s.Set("lobbies/x", counter{N: 5}))

	_, ok := s.Get("lobbies/x/round1")
	assert.False(t, ok, "children should not survive a parent overwrite")
}
