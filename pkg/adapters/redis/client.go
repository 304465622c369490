// Package redis implements ports.Client using Redis.
//
// A session stages its writes locally and flushes them through a TxPipeline
// on Commit, so all writes of a request land in a single MULTI/EXEC block.
// Read preference and journaling have no Redis equivalent and are ignored;
// acknowledgment and operation timeouts are honored.
package redis

import (
	"context"
	"sync"

	"github.com/aretw0/txscope/pkg/domain"
	"github.com/aretw0/txscope/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Client implements ports.Client using Redis.
type Client struct {
	client *backend.Client
	prefix string
}

// Option configures the Client.
type Option func(*Client)

// WithPrefix sets the key prefix for all session data.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// New creates a new Redis client with options.
func New(address, password string, db int, opts ...Option) *Client {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Client from an existing go-redis client.
func NewFromClient(client *backend.Client, opts ...Option) *Client {
	c := &Client{
		client: client,
		prefix: "txscope:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession opens a new session. Connectivity is verified here so that an
// unreachable store surfaces during the coordinator's open phase, not midway
// through the handler.
func (c *Client) StartSession(ctx context.Context, opts domain.SessionOptions) (ports.Session, error) {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return nil, &domain.StorageError{Op: "start session", Err: err}
	}
	return &Session{
		id:     uuid.NewString(),
		client: c.client,
		prefix: c.prefix,
		opts:   opts,
	}, nil
}

// Close closes the underlying redis client.
func (c *Client) Close() error {
	return c.client.Close()
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateActive
	stateSettled
	stateEnded
)

// Session implements ports.Session. Writes are staged in memory and executed
// in one MULTI/EXEC block on Commit.
type Session struct {
	id     string
	client *backend.Client
	prefix string
	opts   domain.SessionOptions

	mu     sync.Mutex
	state  sessionState
	tx     domain.TxOptions
	staged map[string]*string // nil value marks a delete
}

var _ ports.Session = (*Session)(nil)

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) key(k string) string {
	return s.prefix + k
}

// opContext bounds a single store operation by the session's MaxOpTime.
func (s *Session) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.MaxOpTime <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.MaxOpTime)
}

// Begin starts a transaction on the session.
func (s *Session) Begin(ctx context.Context, opts domain.TxOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateEnded {
		return domain.ErrSessionEnded
	}
	if s.state == stateActive {
		return &domain.StorageError{Op: "begin", Err: errAlreadyActive}
	}
	s.tx = opts
	s.staged = make(map[string]*string)
	s.state = stateActive
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

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	val, err := s.client.Get(opCtx, s.key(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return "", domain.ErrKeyNotFound
		}
		return "", &domain.StorageError{Op: "get " + key, Err: err}
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

// Commit flushes all staged writes in a single MULTI/EXEC block. The commit
// is bounded by the transaction's MaxCommitTime.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.terminable(); err != nil {
		return err
	}

	if len(s.staged) > 0 {
		commitCtx := ctx
		cancel := func() {}
		if s.tx.MaxCommitTime > 0 {
			commitCtx, cancel = context.WithTimeout(ctx, s.tx.MaxCommitTime)
		}
		defer cancel()

		pipe := s.client.TxPipeline()
		for key, val := range s.staged {
			if val == nil {
				pipe.Del(commitCtx, s.key(key))
				continue
			}
			pipe.Set(commitCtx, s.key(key), *val, 0)
		}
		if _, err := pipe.Exec(commitCtx); err != nil {
			return &domain.StorageError{Op: "commit", Err: err}
		}
	}

	s.staged = nil
	s.state = stateSettled
	return nil
}

// Abort discards all staged writes. Nothing was sent to Redis yet, so this
// never touches the store.
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
