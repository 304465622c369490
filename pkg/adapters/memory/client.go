// Package memory implements ports.Client against an in-process map.
//
// Writes are staged per session and applied atomically on Commit, mirroring
// the semantics of the Redis adapter without any external dependency. Useful
// for tests and local development.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/txscope/pkg/domain"
	"github.com/aretw0/txscope/pkg/ports"
	"github.com/google/uuid"
)

// Client implements ports.Client in memory. Safe for concurrent use.
type Client struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewClient creates an empty in-memory client.
func NewClient() *Client {
	return &Client{
		data: make(map[string]string),
	}
}

// StartSession opens a new session. It never fails; the store is always
// reachable in-process.
func (c *Client) StartSession(ctx context.Context, opts domain.SessionOptions) (ports.Session, error) {
	return &Session{
		id:     uuid.NewString(),
		client: c,
		opts:   opts,
	}, nil
}

// Snapshot returns a copy of the committed data. Intended for tests.
func (c *Client) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

func (c *Client) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, ok := c.data[key]
	return val, ok
}

// apply writes a staged set atomically. A nil value marks a delete.
func (c *Client) apply(staged map[string]*string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, val := range staged {
		if val == nil {
			delete(c.data, key)
			continue
		}
		c.data[key] = *val
	}
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateActive
	stateSettled
	stateEnded
)

// Session implements ports.Session with staged writes.
type Session struct {
	id     string
	client *Client
	opts   domain.SessionOptions

	mu     sync.Mutex
	state  sessionState
	staged map[string]*string
}

var _ ports.Session = (*Session)(nil)

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Begin starts a transaction.
func (s *Session) Begin(ctx context.Context, opts domain.TxOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateEnded {
		return domain.ErrSessionEnded
	}
	if s.state == stateActive {
		return &domain.StorageError{Op: "begin", Err: errors.New("transaction already active")}
	}
	s.state = stateActive
	s.staged = make(map[string]*string)
	return nil
}

// Get reads a key, observing writes staged in this transaction.
func (s *Session) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateEnded {
		return "", domain.ErrSessionEnded
	}
	if val, staged := s.staged[key]; staged {
		if val == nil {
			return "", domain.ErrKeyNotFound
		}
		return *val, nil
	}
	val, ok := s.client.get(key)
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return val, nil
}

// Set stages a write.
func (s *Session) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	s.staged[key] = &value
	return nil
}

// Delete stages a removal.
func (s *Session) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	s.staged[key] = nil
	return nil
}

// Commit applies all staged writes atomically.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.terminable(); err != nil {
		return err
	}
	s.client.apply(s.staged)
	s.staged = nil
	s.state = stateSettled
	return nil
}

// Abort discards all staged writes.
func (s *Session) Abort(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.terminable(); err != nil {
		return err
	}
	s.staged = nil
	s.state = stateSettled
	return nil
}

// End releases the session.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateEnded {
		return domain.ErrSessionEnded
	}
	s.staged = nil
	s.state = stateEnded
	return nil
}

func (s *Session) writable() error {
	if s.state == stateEnded {
		return domain.ErrSessionEnded
	}
	if s.state != stateActive {
		return domain.ErrNoTransaction
	}
	if s.opts.ReadOnly() {
		return domain.ErrReadOnlySession
	}
	return nil
}

func (s *Session) terminable() error {
	if s.state == stateEnded {
		return domain.ErrSessionEnded
	}
	if s.state != stateActive {
		return domain.ErrNoTransaction
	}
	return nil
}
