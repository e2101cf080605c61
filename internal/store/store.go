package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrAborted is returned from an update function to leave the stored value
// unchanged. Transaction passes it through to the caller without writing.
var ErrAborted = errors.New("store: transaction aborted")

// ErrContention is returned when a transaction keeps losing the version race
// and exhausts its retry budget.
var ErrContention = errors.New("store: too much contention")

const (
	maxTxRetries = 32

	// Size of each subscriber's event buffer
	eventBufferSize = 256
)

// Event describes a committed write. Data is nil when the document at Path
// was deleted.
type Event struct {
	Path string
	Data json.RawMessage
}

// UpdateFunc computes the next value of a document from its current value.
// current is nil when no document exists at the path. Returning ErrAborted
// (or any other error) commits nothing.
type UpdateFunc func(current json.RawMessage) (json.RawMessage, error)

type subscription struct {
	prefix string
	ch     chan Event
	done   chan struct{}
}

// Store is an in-memory hierarchical document store. Documents are JSON
// values addressed by slash-separated paths. Every mutation is serialized
// through an optimistic-concurrency protocol: transactions snapshot a
// document's version, compute the new value outside the lock, and
// compare-and-swap on commit, retrying on conflict. A write at a path
// conflicts with concurrent transactions at that path and at every ancestor
// path, and is fanned out to subscribers of the path and its ancestors.
type Store struct {
	mu       sync.Mutex
	docs     map[string]json.RawMessage
	versions map[string]uint64
	subs     map[uint64]*subscription
	nextSub  uint64
	logger   *slog.Logger
}

// New creates an empty store. logger may be nil.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		docs:     make(map[string]json.RawMessage),
		versions: make(map[string]uint64),
		subs:     make(map[uint64]*subscription),
		logger:   logger,
	}
}

// Get returns the document stored at exactly path.
func (s *Store) Get(path string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[path]
	return data, ok
}

// List returns the paths of all documents at or below prefix, sorted.
func (s *Store) List(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	for p := range s.docs {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Set unconditionally overwrites the document at path, removing any
// documents stored below it. Only safe for initializing a fresh sub-tree;
// shared records must go through Transaction.
func (s *Store) Set(path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", path, err)
	}

	s.mu.Lock()
	s.removeSubtreeLocked(path)
	s.docs[path] = data
	s.bumpLocked(path)
	s.publishLocked(Event{Path: path, Data: data})
	s.mu.Unlock()
	return nil
}

// Delete removes the document at path and all documents below it.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	if _, ok := s.docs[path]; ok {
		delete(s.docs, path)
		s.bumpLocked(path)
		s.publishLocked(Event{Path: path})
	}
	s.removeSubtreeLocked(path)
	s.mu.Unlock()
}

// Transaction atomically applies fn to the document at path. The read-fn-
// commit cycle retries whenever a conflicting write lands between the read
// and the commit, so fn must be a pure function of its input: it may run
// any number of times. fn's error, ErrAborted included, is returned verbatim
// with nothing written.
func (s *Store) Transaction(path string, fn UpdateFunc) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		s.mu.Lock()
		current := s.docs[path]
		version := s.versions[path]
		s.mu.Unlock()

		next, err := fn(current)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.versions[path] != version {
			s.mu.Unlock()
			continue
		}
		s.docs[path] = next
		s.bumpLocked(path)
		s.publishLocked(Event{Path: path, Data: next})
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w at %s", ErrContention, path)
}

// Subscribe registers fn for the document at path and everything below it.
// fn fires once immediately with the current value at path (nil if absent)
// and once per existing descendant document, then on every subsequent write.
// Callbacks run on a dedicated goroutine per subscription; slow consumers
// drop events rather than block writers.
func (s *Store) Subscribe(path string, fn func(Event)) (unsubscribe func()) {
	sub := &subscription{
		prefix: path,
		ch:     make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub

	sub.ch <- Event{Path: path, Data: s.docs[path]}
	for _, p := range s.descendantsLocked(path) {
		sub.ch <- Event{Path: p, Data: s.docs[p]}
	}
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case ev := <-sub.ch:
				fn(ev)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.done)
		})
	}
}

// bumpLocked invalidates path and every ancestor so that transactions at any
// enclosing record observe descendant writes as conflicts.
func (s *Store) bumpLocked(path string) {
	for p := path; p != ""; p = parent(p) {
		s.versions[p]++
	}
}

func (s *Store) removeSubtreeLocked(path string) {
	prefix := path + "/"
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) {
			delete(s.docs, p)
			s.versions[p]++
			s.publishLocked(Event{Path: p})
		}
	}
}

func (s *Store) descendantsLocked(path string) []string {
	prefix := path + "/"
	var paths []string
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

func (s *Store) publishLocked(ev Event) {
	for _, sub := range s.subs {
		if !covers(sub.prefix, ev.Path) {
			continue
		}
		select {
		case sub.ch <- ev:
			continue
		default:
		}

		// Slow consumer: evict the oldest queued event to make room. Each
		// event carries the full document, so a subscriber that falls
		// behind still converges on the latest state; it only misses
		// intermediate values.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ev:
		default:
		}
		s.logger.Warn("subscriber buffer full, oldest event dropped",
			"path", ev.Path, "prefix", sub.prefix)
	}
}

// covers reports whether a write at path should reach a subscriber at
// prefix: the write is at the prefix itself or anywhere below it.
func covers(prefix, path string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func parent(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Update applies a typed read-modify-write to the document at path. cur is
// nil when the document is absent. Returning (nil, nil) from fn deletes
// nothing and writes nothing; use ErrAborted for clarity instead.
func Update[T any](s *Store, path string, fn func(cur *T) (*T, error)) error {
	return s.Transaction(path, func(raw json.RawMessage) (json.RawMessage, error) {
		var cur *T
		if raw != nil {
			cur = new(T)
			if err := json.Unmarshal(raw, cur); err != nil {
				return nil, fmt.Errorf("store: unmarshal %s: %w", path, err)
			}
		}
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, ErrAborted
		}
		return json.Marshal(next)
	})
}

// Read unmarshals the document at path into a T. ok is false when absent.
func Read[T any](s *Store, path string) (v T, ok bool, err error) {
	raw, found := s.Get(path)
	if !found {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("store: unmarshal %s: %w", path, err)
	}
	return v, true, nil
}
