// Package host declares the capability surface of the hosting game client
// that the scripts in this module consume. The host owns rendering, the
// object model and all networking; scripts only ever call through these
// interfaces. Implementations live in the client; hosttest provides an
// in-memory fake for tests.
package host

import "time"

// Host is the full surface handed to a script when it starts.
type Host interface {
	// SysMsg prints a short message to the player's system console.
	SysMsg(msg string, hue int)
	// Pause yields to the host for at least d. Cooperative; callbacks are
	// not delivered while paused.
	Pause(d time.Duration)
	// ProcessCallbacks delivers any pending host callbacks (button clicks,
	// disposal notices, death events) on the calling goroutine.
	ProcessCallbacks()
	// StopRequested reports whether the host asked the script to stop.
	StopRequested() bool

	UI
	World
	Events
}

// Events exposes host event subscriptions.
type Events interface {
	// OnPlayerDeath registers fn to run when the player dies. The returned
	// cancel removes the subscription.
	OnPlayerDeath(fn func()) (cancel func())
}
