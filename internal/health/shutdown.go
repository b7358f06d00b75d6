package health

import "sync/atomic"

// ready gates the readiness probe during graceful shutdown. The server marks
// itself not ready before draining so load balancers stop routing new work.
var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness gate.
func SetReady(v bool) {
	ready.Store(v)
}

// Ready reports the current readiness gate state.
func Ready() bool {
	return ready.Load()
}
