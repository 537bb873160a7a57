package transient

import "time"

// All entry and lock timestamps are millisecond ticks on a 64-bit monotonic
// clock anchored at process start. time.Since uses the runtime's monotonic
// reading, so wall-clock adjustments cannot move ticks backwards.
var clockStart = time.Now()

// nowTick returns the current monotonic millisecond tick.
func nowTick() int64 {
	return time.Since(clockStart).Milliseconds()
}
