package syncer

import (
	"fmt"
	"log/slog"
)

// RolledBackError reports a remote write that failed after the local change
// was undone.
type RolledBackError struct {
	Op  string
	Err error
}

func (e *RolledBackError) Error() string {
	return fmt.Sprintf("%s: rolled back: %v", e.Op, e.Err)
}

func (e *RolledBackError) Unwrap() error { return e.Err }

// RefetchedError reports a failed write whose collection was reloaded from
// the remote store. RefetchErr is set when the reload failed too and the
// last confirmed local copy was restored instead.
type RefetchedError struct {
	Op         string
	Err        error
	RefetchErr error
}

func (e *RefetchedError) Error() string {
	if e.RefetchErr != nil {
		return fmt.Sprintf("%s: %v (refetch failed: %v)", e.Op, e.Err, e.RefetchErr)
	}
	return fmt.Sprintf("%s: %v (refetched)", e.Op, e.Err)
}

func (e *RefetchedError) Unwrap() error { return e.Err }

// Notice is a user-visible message about a failed operation.
type Notice struct {
	Op      string
	Message string
	Err     error
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to logger at warn level.
func LogNotifier(logger *slog.Logger) Notifier {
	return NotifierFunc(func(n Notice) {
		logger.Warn(n.Message, "op", n.Op, "error", n.Err)
	})
}
