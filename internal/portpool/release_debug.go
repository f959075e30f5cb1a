//go:build debug

package portpool

import "fmt"

// onDoubleRelease is a fatal assertion in debug builds: releasing a port
// that was never reserved (or already released) is a programmer error and
// must not be silently tolerated while developing against the pool.
func onDoubleRelease(port int) {
	panic(fmt.Sprintf("portpool: release of port %d that is not reserved", port))
}
