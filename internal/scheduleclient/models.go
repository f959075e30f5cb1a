package scheduleclient

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the event variety tag. Only Live is recordable (spec §3).
type EventType string

const (
	EventTypeLive      EventType = "live"
	EventTypePrerecorded EventType = "prerecorded"
)

// Event is owned by the remote schedule service.
type Event struct {
	ID       uuid.UUID
	Type     EventType
	Timezone string // IANA zone name
}

// Instance is one scheduled occurrence of an Event, identified by its local
// naive start datetime (no location attached; interpret via Event.Timezone).
type Instance struct {
	Start time.Time
}

// Schedule is an Event paired with the instances a list query found for it.
type Schedule struct {
	Event     Event
	Instances []Instance
}
