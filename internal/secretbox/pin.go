package secretbox

import "log/slog"

// Pin locks b into physical memory so it is never written to swap. The
// returned release zeroes b and then unlocks it; call it exactly once.
//
// Locking is best-effort. When the process is over its RLIMIT_MEMLOCK the
// failure is logged at debug level and b is still zeroed on release.
func Pin(b []byte) (release func()) {
	if len(b) == 0 {
		return func() {}
	}
	locked := true
	if err := lockMemory(b); err != nil {
		slog.Debug("mlock failed", "bytes", len(b), "error", err)
		locked = false
	}
	return func() {
		Zero(b)
		if locked {
			unlockMemory(b)
		}
	}
}
