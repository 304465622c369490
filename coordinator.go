package txscope

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/txscope/internal/logging"
	"github.com/aretw0/txscope/pkg/domain"
	"github.com/aretw0/txscope/pkg/ports"
)

// Coordinator wraps the execution of a single request's handler with the
// session lifecycle: open all configured sessions, attach them to the request
// context, run the handler once, then commit-or-abort and end every session.
//
// A Coordinator is immutable after New and safe to share across concurrent
// requests; each Run builds fresh instances.
type Coordinator struct {
	client    ports.Client
	templates []Template
	bypass    bool
	logger    *slog.Logger
	metrics   Metrics
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithTemplates selects multi-session mode: the given templates are used
// verbatim. Without this option a single template named "default" with the
// default preset is synthesized per request.
func WithTemplates(templates ...Template) Option {
	return func(c *Coordinator) {
		c.templates = templates
	}
}

// WithBypass skips opening any real sessions when enabled. The scope is still
// attached so lookups succeed and return nil, letting handlers run without a
// live data store. Wire this to the process environment signal, e.g.
// TXSCOPE_BYPASS (see internal/config).
func WithBypass(enabled bool) Option {
	return func(c *Coordinator) {
		c.bypass = enabled
	}
}

// WithLogger configures a logger for settlement failures and degraded paths.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics configures a lifecycle metrics sink.
func WithMetrics(metrics Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// New creates a Coordinator. Templates with duplicate or empty names are
// rejected here, before any session could be opened.
func New(client ports.Client, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		client:  client,
		logger:  logging.NewNop(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[string]struct{}, len(c.templates))
	for _, tpl := range c.templates {
		if tpl.Name == "" {
			return nil, fmt.Errorf("session template name must not be empty")
		}
		if _, dup := seen[tpl.Name]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateTemplate, tpl.Name)
		}
		seen[tpl.Name] = struct{}{}
	}

	return c, nil
}

// Run executes fn within the request's transaction scope.
//
// The open phase fully completes before fn is invoked, and fn completes
// before any commit-or-abort decision. Commit (or abort) attempts across
// sessions settle concurrently and independently; end attempts start only
// after all of them settled. Settlement failures are logged, never raised.
//
// When fn fails, every session is aborted and ended and the translated
// handler error is returned. When the backing store is unavailable, fn still
// runs with no open sessions and, if it succeeds, the caller is signaled with
// an error wrapping domain.ErrTxAcquire.
func (c *Coordinator) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	scope := &Scope{}

	var acquireErr error
	if !c.bypass {
		templates := c.templates
		if len(templates) == 0 {
			templates = []Template{NewTemplate(DefaultSessionName)}
		}
		scope.instances = make([]*Instance, 0, len(templates))
		for _, tpl := range templates {
			scope.instances = append(scope.instances, newInstance(tpl))
		}
		acquireErr = c.open(ctx, scope.instances)
	}

	ctx = NewContext(ctx, scope)

	started := time.Now()
	err := fn(ctx)
	c.metrics.HandlerObserved(time.Since(started), err != nil)

	if err != nil {
		c.settle(ctx, scope.instances, "abort", ports.Session.Abort, c.metrics.AbortSettled)
		c.settle(ctx, scope.instances, "end", ports.Session.End, c.metrics.EndSettled)
		return Translate(err)
	}

	c.settle(ctx, scope.instances, "commit", ports.Session.Commit, c.metrics.CommitSettled)
	c.settle(ctx, scope.instances, "end", ports.Session.End, c.metrics.EndSettled)

	// Degraded path: the handler ran without sessions because the store was
	// unavailable. The caller learns about it here rather than via a crash.
	return acquireErr
}

// open starts a session and begins a transaction for every instance. A
// failing instance is left unbound and does not stop the others; the last
// failure is reported wrapped in domain.ErrTxAcquire.
func (c *Coordinator) open(ctx context.Context, instances []*Instance) error {
	if c.client == nil {
		c.logger.Warn("no data store client configured, running handler without sessions")
		return fmt.Errorf("%w: no data store client configured", domain.ErrTxAcquire)
	}

	var acquireErr error
	for _, inst := range instances {
		sess, err := c.client.StartSession(ctx, inst.Options)
		if err != nil {
			c.logger.Warn("failed to open session", "session", inst.Name, "err", err)
			acquireErr = fmt.Errorf("%w: open session %q: %w", domain.ErrTxAcquire, inst.Name, err)
			continue
		}
		if err := sess.Begin(ctx, inst.Options.TxOptions()); err != nil {
			c.logger.Warn("failed to begin transaction", "session", inst.Name, "err", err)
			if endErr := sess.End(ctx); endErr != nil {
				c.logger.Warn("failed to end session", "session", inst.Name, "err", endErr)
			}
			acquireErr = fmt.Errorf("%w: begin transaction %q: %w", domain.ErrTxAcquire, inst.Name, err)
			continue
		}
		inst.bind(sess)
		c.metrics.SessionOpened(inst.Name)
	}
	return acquireErr
}

// settle fans the operation out over all bound instances and joins them
// regardless of individual outcome. Failures are routed to the log, not to
// the caller: cleanup of one session must never block or fail its siblings.
func (c *Coordinator) settle(ctx context.Context, instances []*Instance, op string, call func(ports.Session, context.Context) error, observe func(name string, err error)) {
	var wg sync.WaitGroup
	for _, inst := range instances {
		sess := inst.Session()
		if sess == nil {
			continue
		}
		wg.Add(1)
		go func(inst *Instance, sess ports.Session) {
			defer wg.Done()
			err := call(sess, ctx)
			if err != nil {
				c.logger.Warn("session "+op+" failed",
					"session", inst.Name,
					"session_id", sess.ID(),
					"err", err,
				)
			}
			observe(inst.Name, err)
		}(inst, sess)
	}
	wg.Wait()
}
