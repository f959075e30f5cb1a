// Package credentials mints single-use SRT passphrase credentials bounded
// by a configured timeout, per spec §4.2.
package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/radio-aktywne/datarecords/internal/clock"
)

// Credentials binds a single SRT listener session to a token and its expiry.
type Credentials struct {
	Token     string
	ExpiresAt time.Time // UTC
}

// tokenBytes is 128 bits of entropy, hex-encoded to 32 characters.
const tokenBytes = 16

// Minter mints Credentials bound to a fixed timeout.
type Minter struct {
	Clock   clock.Clock
	Timeout time.Duration
}

// NewMinter builds a Minter. A negative timeout is a configuration error
// the caller should have already rejected; Mint does not re-validate it.
func NewMinter(c clock.Clock, timeout time.Duration) *Minter {
	return &Minter{Clock: c, Timeout: timeout}
}

// Mint produces a fresh, unguessable token and its expiry. Every call reads
// from a CSPRNG; tokens are never reused across mints.
func (m *Minter) Mint() (Credentials, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return Credentials{}, fmt.Errorf("credentials: generate token: %w", err)
	}

	return Credentials{
		Token:     hex.EncodeToString(buf),
		ExpiresAt: m.Clock.NowUTC().Add(m.Timeout),
	}, nil
}
