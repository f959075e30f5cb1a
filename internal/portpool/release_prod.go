//go:build !debug

package portpool

// onDoubleRelease is a no-op in release builds: spec §4.1 asks for the
// fatal assertion only in debug, never a crash for an operator running the
// production binary.
func onDoubleRelease(port int) {}
