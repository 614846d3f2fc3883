//go:build debug

package mcts

import (
	"log"
	"sync/atomic"
)

// liveHandles counts outstanding Node-owned environment handles: one per
// Node created (NewRoot, addChild; ReuseChild creates none), released
// exactly once by Node.Close. Only compiled into debug builds (-tags
// debug); a non-debug build pays nothing for it.
var liveHandles int64

func trackHandleAcquired() {
	atomic.AddInt64(&liveHandles, 1)
}

func trackHandleReleased() {
	atomic.AddInt64(&liveHandles, -1)
}

// CheckResourceLeaks logs, but does not fail, any environment handle an
// actor's MCTS engine never closed by the time it shuts down. Call once
// per actor goroutine after its last tree has been closed.
func CheckResourceLeaks() {
	if n := atomic.LoadInt64(&liveHandles); n != 0 {
		log.Printf("mcts: %d environment handle(s) leaked at shutdown", n)
	}
}
