package runtime

import (
	"runtime"
	"time"
)

// backoff is a small spin-then-yield-then-sleep helper, the nearest Go
// equivalent to crossbeam's Backoff: cheap busy-spins first, then
// Gosched yields, then short sleeps, so a worker waiting on a node to
// become Ready doesn't either pin a core uselessly or pay a condvar's
// wakeup latency.
type backoff struct {
	step int
}

const (
	backoffSpinLimit  = 6
	backoffYieldLimit = 10
)

func newBackoff() *backoff { return &backoff{} }

// snooze advances one step of the backoff, spinning, yielding, or
// sleeping depending on how long it's been waiting.
func (b *backoff) snooze() {
	switch {
	case b.step <= backoffSpinLimit:
		for i := 0; i < 1<<uint(b.step); i++ {
			// busy-spin: a PAUSE-equivalent is not exposed in Go, so this
			// is a plain empty loop.
		}
	case b.step <= backoffYieldLimit:
		runtime.Gosched()
	default:
		time.Sleep(time.Microsecond * 50)
	}
	b.step++
}

// reset returns the backoff to its initial spinning state.
func (b *backoff) reset() { b.step = 0 }
