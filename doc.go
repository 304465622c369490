/*
Package txscope coordinates named transactional sessions over the lifetime of
a single inbound request.

The Coordinator opens one or more named sessions against a backing store
before handler code runs, exposes them to the handler through the request
context, and performs commit-or-rollback followed by cleanup after the handler
returns. All sessions for a request are committed together on success, rolled
back together on failure, and always ended, on every exit path. Handler code
looks up sessions by name without knowing how or when they were created.

# Architecture

txscope follows a Hexagonal Architecture: the coordinator depends only on the
Client and Session ports defined in pkg/ports, with adapters for Redis
(pkg/adapters/redis) and in-memory use (pkg/adapters/memory). The HTTP
integration in pkg/adapters/http wraps chi handlers with the coordinator.

# Usage

	client := memory.NewClient()
	coord, err := txscope.New(client,
		txscope.WithTemplates(
			txscope.NewTemplate("default"),
			txscope.NewTemplate("analytics", txscope.WithSessionOptions(domain.ReadOnlySessionOptions())),
		),
	)
	if err != nil {
		log.Fatal(err)
	}

	err = coord.Run(ctx, func(ctx context.Context) error {
		sess, err := txscope.Default(ctx)
		if err != nil {
			return err
		}
		return sess.Set(ctx, "greeting", "hello")
	})

On success every session is committed, then ended. If the handler returns an
error every session is aborted, then ended, and the error is re-raised after
classification by Translate. Commit, abort and end failures are logged and
never propagate; only handler failures cross the coordinator boundary.

# Bypass mode

With WithBypass(true) the coordinator opens no sessions at all but still
attaches the request scope, so lookups succeed and return nil. This lets
handlers run against no live data store, e.g. in tests.
*/
package txscope
