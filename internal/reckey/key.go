// Package reckey implements the object-store key coding shared by the
// Recorder (writer) and RecordsCatalog (reader), grounded on
// gecko/services/records/service.py's _make_key/_parse_key and
// emirecords/services/recording/runner.py's _build_s3_path.
package reckey

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radio-aktywne/datarecords/internal/clock"
)

// Make builds the object key for event/start. format is optional; when
// non-empty it is appended as a file extension (as the recording pipeline
// does when it first writes the object).
func Make(event uuid.UUID, start time.Time, format string) string {
	name := clock.Stringify(start)
	if format != "" {
		name = fmt.Sprintf("%s.%s", name, format)
	}
	return fmt.Sprintf("%s/%s", event, name)
}

// Parse splits a key back into its event and start components, ignoring
// any format extension on the name. The first "/" always separates the
// event prefix from the name, matching the teacher's split-at-first-slash
// behaviour (event UUIDs never contain "/").
func Parse(key string) (uuid.UUID, time.Time, error) {
	idx := strings.IndexByte(key, '/')
	if idx < 0 {
		return uuid.UUID{}, time.Time{}, fmt.Errorf("reckey: malformed key %q: no separator", key)
	}

	prefix, name := key[:idx], key[idx+1:]

	event, err := uuid.Parse(prefix)
	if err != nil {
		return uuid.UUID{}, time.Time{}, fmt.Errorf("reckey: malformed event prefix %q: %w", prefix, err)
	}

	name = strings.TrimSuffix(name, extensionOf(name))

	start, err := clock.Parse(name)
	if err != nil {
		return uuid.UUID{}, time.Time{}, fmt.Errorf("reckey: malformed name %q: %w", name, err)
	}

	return event, start, nil
}

// Prefix returns the list prefix for an event (spec §4.4's _make_prefix).
func Prefix(event uuid.UUID) string {
	return event.String() + "/"
}

// extensionOf returns ".ext" if name has one beyond the naive ISO-8601
// layout's own digits, else "". The naive layout itself has no dots, so any
// "." present marks the start of a format suffix.
func extensionOf(name string) string {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[idx:]
	}
	return ""
}
