//go:build !debug

package mcts

func trackHandleAcquired() {}

func trackHandleReleased() {}

// CheckResourceLeaks is a no-op outside debug builds (-tags debug).
func CheckResourceLeaks() {}
