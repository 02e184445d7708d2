// Package game implements the Skat rules engine that the server's tick loop
// drives, together with its timing configuration, state checkpoints and
// round result records.
package game

import (
	"skat.com/server/protocol"
)

// Table is the server side the rules engine talks to. All methods are only
// called while the engine is invoked from the tick loop or a join/leave
// notification, that is with the server state lock held.
type Table interface {
	// Distribute sends e to every active seat, masking a copy per recipient
	// when mask is not nil.
	Distribute(e protocol.Event, mask protocol.MaskFunc)
	// SendEvent sends e to one seat only.
	SendEvent(e protocol.Event, seat int)
	// ForgetReleased drops players retained for reconnect.
	ForgetReleased()
	// RecordResult hands a finished round to the result recorder.
	RecordResult(r RoundResult)
}
