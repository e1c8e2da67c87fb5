package effect

import "time"

// Millis is a monotonic millisecond timestamp. It wraps at 32 bits roughly
// every 49.7 days; elapsed-time checks must use unsigned subtraction
// (now - prev), which stays correct across the wrap.
type Millis uint32

var epoch = time.Now()

// Now returns the current timestamp, measured from process start.
// Callers needing deterministic tests pass their own stepped timestamps
// to Update instead.
func Now() Millis {
	return Millis(time.Since(epoch).Milliseconds())
}
