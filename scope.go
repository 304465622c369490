package txscope

import (
	"context"

	"github.com/aretw0/txscope/pkg/domain"
	"github.com/aretw0/txscope/pkg/ports"
)

// Scope is the request-scoped transaction state populated by the coordinator
// before the handler runs. It is read-only after population and owned
// exclusively by one request.
type Scope struct {
	instances []*Instance
}

// Session returns the handle for the named instance, or nil when no instance
// has that name. In bypass mode the instance list is empty and every lookup
// returns nil.
func (s *Scope) Session(name string) ports.Session {
	for _, inst := range s.instances {
		if inst.Name == name {
			return inst.Session()
		}
	}
	return nil
}

// Names returns the instance names in configuration order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.instances))
	for _, inst := range s.instances {
		names = append(names, inst.Name)
	}
	return names
}

type scopeKey struct{}

// NewContext attaches the scope to the context. Called by the coordinator;
// exported for tests and custom pipeline integrations.
func NewContext(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// FromContext returns the scope attached by the coordinator, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*Scope)
	return scope, ok
}

// Session looks up a named session on the request context. It returns nil
// without error for unknown names and in bypass mode. It fails with a misuse
// AppError wrapping domain.ErrNotApplied when the coordinator never ran for
// this request, since that is a wiring error worth surfacing loudly.
func Session(ctx context.Context, name string) (ports.Session, error) {
	scope, ok := FromContext(ctx)
	if !ok {
		return nil, domain.Misuse(domain.ErrNotApplied.Error(), domain.ErrNotApplied)
	}
	return scope.Session(name), nil
}

// Default looks up the session named "default".
func Default(ctx context.Context) (ports.Session, error) {
	return Session(ctx, DefaultSessionName)
}
