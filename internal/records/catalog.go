// Package records implements the records catalog: list/download/head/
// upload/delete over the object store, gated by the schedule service's
// event/instance existence checks, grounded on
// gecko/services/records/service.py's RecordsService.
package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/radio-aktywne/datarecords/internal/clock"
	xglog "github.com/radio-aktywne/datarecords/internal/log"
	"github.com/radio-aktywne/datarecords/internal/metrics"
	"github.com/radio-aktywne/datarecords/internal/objectstore"
	"github.com/radio-aktywne/datarecords/internal/reckey"
	"github.com/radio-aktywne/datarecords/internal/scheduleclient"
)

// ScheduleClient is the subset of scheduleclient.Client the catalog needs
// for its event/instance gates.
type ScheduleClient interface {
	Get(ctx context.Context, id uuid.UUID) (scheduleclient.Event, error)
	List(ctx context.Context, start, end time.Time, eventID uuid.UUID) ([]scheduleclient.Schedule, error)
}

// Store is the subset of *objectstore.Client the catalog needs.
type Store interface {
	List(ctx context.Context, prefix string) ([]objectstore.Object, error)
	Head(ctx context.Context, key string) (objectstore.Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (io.ReadCloser, objectstore.Object, error)
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Catalog implements list/download/head/upload/delete over recorded
// events, per spec §4.4.
type Catalog struct {
	Schedule ScheduleClient
	Store    Store

	log zerolog.Logger
}

// New builds a Catalog.
func New(schedule ScheduleClient, store Store) *Catalog {
	return &Catalog{Schedule: schedule, Store: store, log: xglog.WithComponent("records")}
}

// getLiveEvent resolves id to its Event, translating a schedule-service
// 404 into ErrEventNotFound and rejecting anything that isn't a live event
// (gecko's _get_event).
func (c *Catalog) getLiveEvent(ctx context.Context, id uuid.UUID) (scheduleclient.Event, error) {
	event, err := c.Schedule.Get(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleclient.ErrEventNotFound) {
			return scheduleclient.Event{}, ErrEventNotFound
		}
		return scheduleclient.Event{}, fmt.Errorf("records: get event: %w", err)
	}
	if event.Type != scheduleclient.EventTypeLive {
		return scheduleclient.Event{}, ErrBadEventType
	}
	return event, nil
}

// getInstance verifies that start is an actual scheduled instance of
// event, by listing the event-local day containing it (converted to a UTC
// window via the event's timezone) and matching exactly, per gecko's
// _get_instance.
func (c *Catalog) getInstance(ctx context.Context, id uuid.UUID, start time.Time) (scheduleclient.Event, error) {
	event, err := c.getLiveEvent(ctx, id)
	if err != nil {
		return scheduleclient.Event{}, err
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	utcStart, err := clock.ToUTC(dayStart, event.Timezone)
	if err != nil {
		return scheduleclient.Event{}, fmt.Errorf("records: resolve timezone %q: %w", event.Timezone, err)
	}
	utcEnd := utcStart.Add(24 * time.Hour)

	schedules, err := c.Schedule.List(ctx, utcStart, utcEnd, id)
	if err != nil {
		return scheduleclient.Event{}, fmt.Errorf("records: list schedule: %w", err)
	}

	for _, schedule := range schedules {
		if schedule.Event.ID != id {
			continue
		}
		for _, inst := range schedule.Instances {
			if inst.Start.Equal(start) {
				return event, nil
			}
		}
	}

	return scheduleclient.Event{}, ErrInstanceNotFound
}

// resolveKey finds the actual on-disk key for event/start by listing the
// event's prefix, since the stored name may carry a format extension the
// caller never supplied (spec §4.4).
func (c *Catalog) resolveKey(ctx context.Context, event uuid.UUID, start time.Time) (string, error) {
	objs, err := c.Store.List(ctx, reckey.Prefix(event))
	if err != nil {
		return "", fmt.Errorf("records: list objects: %w", err)
	}
	for _, obj := range objs {
		_, objStart, err := reckey.Parse(obj.Key)
		if err != nil {
			continue
		}
		if objStart.Equal(start) {
			return obj.Key, nil
		}
	}
	return "", ErrInstanceNotFound
}

// List returns every record for req.Event, filtered by after/before,
// counted, sorted, then paginated in that exact order (gecko's list()).
func (c *Catalog) List(ctx context.Context, req ListRequest) (ListResponse, error) {
	if _, err := c.getLiveEvent(ctx, req.Event); err != nil {
		metrics.IncRecordsOp("list", outcomeFor(err))
		return ListResponse{}, err
	}

	objs, err := c.Store.List(ctx, reckey.Prefix(req.Event))
	if err != nil {
		metrics.IncRecordsOp("list", "store_error")
		return ListResponse{}, fmt.Errorf("records: list objects: %w", err)
	}

	records := make([]Record, 0, len(objs))
	for _, obj := range objs {
		event, start, err := reckey.Parse(obj.Key)
		if err != nil {
			c.log.Warn().Err(err).Str("key", obj.Key).Msg("dropping malformed catalog key")
			continue
		}
		records = append(records, Record{Event: event, Start: start, Key: obj.Key})
	}

	records = filterRecords(records, req.After, req.Before)

	if req.Order != nil {
		order := *req.Order
		sort.Slice(records, func(i, j int) bool {
			if order == OrderDescending {
				return records[i].Start.After(records[j].Start)
			}
			return records[i].Start.Before(records[j].Start)
		})
	}

	count := len(records)
	records = paginate(records, req.Limit, req.Offset)

	metrics.IncRecordsOp("list", "ok")
	return ListResponse{Count: count, Limit: req.Limit, Offset: req.Offset, Records: records}, nil
}

func filterRecords(records []Record, after, before *time.Time) []Record {
	out := records[:0:0]
	for _, r := range records {
		if after != nil && !r.Start.After(*after) {
			continue
		}
		if before != nil && !r.Start.Before(*before) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func paginate(records []Record, limit, offset *int) []Record {
	if offset != nil {
		o := *offset
		if o > len(records) {
			o = len(records)
		}
		records = records[o:]
	}
	if limit != nil {
		l := *limit
		if l < 0 {
			l = 0
		}
		if l < len(records) {
			records = records[:l]
		}
	}
	return records
}

// Download streams a record's content. Returns ErrInstanceNotFound if
// event/start don't match a scheduled instance.
func (c *Catalog) Download(ctx context.Context, event uuid.UUID, start time.Time) (io.ReadCloser, objectstore.Object, error) {
	if _, err := c.getInstance(ctx, event, start); err != nil {
		metrics.IncRecordsOp("download", outcomeFor(err))
		return nil, objectstore.Object{}, err
	}

	key, err := c.resolveKey(ctx, event, start)
	if err != nil {
		metrics.IncRecordsOp("download", outcomeFor(err))
		return nil, objectstore.Object{}, err
	}

	body, obj, err := c.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			metrics.IncRecordsOp("download", "not_found")
			return nil, objectstore.Object{}, ErrInstanceNotFound
		}
		metrics.IncRecordsOp("download", "store_error")
		return nil, objectstore.Object{}, fmt.Errorf("records: get object: %w", err)
	}

	metrics.IncRecordsOp("download", "ok")
	return body, obj, nil
}

// Head returns a record's metadata without fetching its body.
func (c *Catalog) Head(ctx context.Context, event uuid.UUID, start time.Time) (objectstore.Object, error) {
	if _, err := c.getInstance(ctx, event, start); err != nil {
		metrics.IncRecordsOp("head", outcomeFor(err))
		return objectstore.Object{}, err
	}

	key, err := c.resolveKey(ctx, event, start)
	if err != nil {
		metrics.IncRecordsOp("head", outcomeFor(err))
		return objectstore.Object{}, err
	}

	obj, err := c.Store.Head(ctx, key)
	if err != nil {
		metrics.IncRecordsOp("head", "store_error")
		return objectstore.Object{}, fmt.Errorf("records: head object: %w", err)
	}

	metrics.IncRecordsOp("head", "ok")
	return obj, nil
}

// Upload stores new content for event/start under the given format, after
// checking the instance is scheduled and the key isn't already occupied
// (head-before-put; spec §4.4's conflict rule, an Open Question the
// original left to the implementer).
func (c *Catalog) Upload(ctx context.Context, event uuid.UUID, start time.Time, format string, content io.Reader, contentType string) error {
	if _, err := c.getInstance(ctx, event, start); err != nil {
		metrics.IncRecordsOp("upload", outcomeFor(err))
		return err
	}

	key := reckey.Make(event, start, format)

	exists, err := c.Store.Exists(ctx, key)
	if err != nil {
		metrics.IncRecordsOp("upload", "store_error")
		return fmt.Errorf("records: check existing object: %w", err)
	}
	if exists {
		metrics.IncRecordsOp("upload", "conflict")
		return ErrAlreadyExists
	}

	if err := c.Store.Put(ctx, key, content, contentType); err != nil {
		metrics.IncRecordsOp("upload", "store_error")
		return fmt.Errorf("records: put object: %w", err)
	}

	metrics.IncRecordsOp("upload", "ok")
	return nil
}

// Delete removes a record's stored object.
func (c *Catalog) Delete(ctx context.Context, event uuid.UUID, start time.Time) error {
	if _, err := c.getInstance(ctx, event, start); err != nil {
		metrics.IncRecordsOp("delete", outcomeFor(err))
		return err
	}

	key, err := c.resolveKey(ctx, event, start)
	if err != nil {
		metrics.IncRecordsOp("delete", outcomeFor(err))
		return err
	}

	if err := c.Store.Delete(ctx, key); err != nil {
		metrics.IncRecordsOp("delete", "store_error")
		return fmt.Errorf("records: delete object: %w", err)
	}

	metrics.IncRecordsOp("delete", "ok")
	return nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, ErrBadEventType):
		return "bad_event_type"
	case errors.Is(err, ErrInstanceNotFound):
		return "instance_not_found"
	default:
		return "error"
	}
}
