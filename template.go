package txscope

import "github.com/aretw0/txscope/pkg/domain"

// DefaultSessionName is the name used when a coordinator is configured
// without explicit templates, and the name Default looks up.
const DefaultSessionName = "default"

// Template is an immutable named configuration describing how a session
// should be opened. Equality within a request scope is by name.
type Template struct {
	Name    string
	Options domain.SessionOptions
}

// TemplateOption configures a Template.
type TemplateOption func(*Template)

// WithSessionOptions overrides the default read-write preset.
func WithSessionOptions(opts domain.SessionOptions) TemplateOption {
	return func(t *Template) {
		t.Options = opts
	}
}

// NewTemplate creates a named template. Without options the default
// read-write preset is used.
func NewTemplate(name string, opts ...TemplateOption) Template {
	t := Template{
		Name:    name,
		Options: domain.DefaultSessionOptions(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
