package txscope

import "time"

// Metrics receives coordinator lifecycle observations. Implementations must
// be safe for concurrent use; the commit/abort/end callbacks fire from the
// settlement fan-out. pkg/observability provides a Prometheus implementation.
type Metrics interface {
	SessionOpened(name string)
	CommitSettled(name string, err error)
	AbortSettled(name string, err error)
	EndSettled(name string, err error)
	HandlerObserved(d time.Duration, failed bool)
}

type nopMetrics struct{}

func (nopMetrics) SessionOpened(string)                {}
func (nopMetrics) CommitSettled(string, error)         {}
func (nopMetrics) AbortSettled(string, error)          {}
func (nopMetrics) EndSettled(string, error)            {}
func (nopMetrics) HandlerObserved(time.Duration, bool) {}
