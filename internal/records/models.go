package records

import (
	"time"

	"github.com/google/uuid"
)

// Order controls list() sort direction, mirroring gecko's ListOrder enum.
type Order string

const (
	OrderAscending  Order = "ascending"
	OrderDescending Order = "descending"
)

// Record is one catalog entry: an event/start pair backed by an object
// store key. Key retains the on-disk name (including any format
// extension) so callers never need to guess the stored format back.
type Record struct {
	Event uuid.UUID
	Start time.Time
	Key   string
}

// ListRequest parameters, matching gecko's ListRequest model.
type ListRequest struct {
	Event  uuid.UUID
	After  *time.Time
	Before *time.Time
	Order  *Order
	Limit  *int
	Offset *int
}

// ListResponse mirrors gecko's ListResponse: count is the total after
// filtering but before pagination.
type ListResponse struct {
	Count   int
	Limit   *int
	Offset  *int
	Records []Record
}
