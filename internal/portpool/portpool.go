// Package portpool implements the bounded SRT listener port reservation set
// described by spec §4.1. It is the only mutable shared state in the core.
package portpool

import (
	"errors"
	"sync"
)

// ErrExhausted is returned by Reserve when every configured port is in use.
var ErrExhausted = errors.New("portpool: exhausted")

// Pool is a bounded set of integer ports with mutually exclusive reservation
// and release, as required by spec §4.1/§5. A single mutex guards the
// in-use set; no RPC or blocking call is ever made while it is held.
type Pool struct {
	mu    sync.Mutex
	ports map[int]struct{} // configured universe P
	inUse map[int]struct{} // U subset of P
}

// New builds a Pool over the given configured ports. Duplicate ports in the
// input are collapsed; an empty set is valid but Reserve always fails.
func New(ports []int) *Pool {
	p := &Pool{
		ports: make(map[int]struct{}, len(ports)),
		inUse: make(map[int]struct{}, len(ports)),
	}
	for _, port := range ports {
		p.ports[port] = struct{}{}
	}
	return p
}

// Reserve picks an arbitrary free port, marks it in-use, and returns it.
// No ordering or fairness is guaranteed beyond the serialization the mutex
// already provides.
func (p *Pool) Reserve() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for port := range p.ports {
		if _, used := p.inUse[port]; !used {
			p.inUse[port] = struct{}{}
			return port, nil
		}
	}
	return 0, ErrExhausted
}

// Release returns a previously reserved port to the free set. Releasing a
// port that is not currently in use is a programmer error: debug builds
// (-tags debug) panic, release builds no-op, matching onDoubleRelease.
func (p *Pool) Release(port int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, used := p.inUse[port]; !used {
		onDoubleRelease(port)
		return
	}
	delete(p.inUse, port)
}

// InUse reports the current in-use set size, for metrics and tests.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse)
}

// Capacity reports the configured universe size.
func (p *Pool) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ports)
}
