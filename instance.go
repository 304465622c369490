package txscope

import "github.com/aretw0/txscope/pkg/ports"

// Instance is a Template bound at runtime to a live session handle. The
// handle is set exactly once by the coordinator during the open phase and is
// nil before binding; downstream code treats nil as "no active transaction".
// Instances are never reused across requests.
type Instance struct {
	Template

	session ports.Session
}

func newInstance(t Template) *Instance {
	return &Instance{Template: t}
}

// bind attaches the live handle. The first binding wins; the coordinator is
// the only caller.
func (i *Instance) bind(s ports.Session) {
	if i.session != nil {
		return
	}
	i.session = s
}

// Session returns the bound handle, or nil when the instance was never bound.
func (i *Instance) Session() ports.Session {
	return i.session
}
