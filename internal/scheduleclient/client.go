// Package scheduleclient is the HTTP client consumed by the Recorder and
// RecordsCatalog to query the remote "emishows" schedule service (spec
// §4.3), grounded on internal/openwebif/client.go's retry/backoff/rate-limit
// shape.
package scheduleclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	xglog "github.com/radio-aktywne/datarecords/internal/log"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datarecords_scheduleclient_request_duration_seconds",
		Help:    "Duration of schedule-service HTTP requests per attempt",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 8),
	}, []string{"operation", "status"})

	requestRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datarecords_scheduleclient_request_retries_total",
		Help: "Number of schedule-service request retries performed",
	}, []string{"operation"})
)

// Options configures Client behaviour.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration

	RateLimit rate.Limit // requests/sec to the schedule service
	RateBurst int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 200 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 2 * time.Second
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 20
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 40
	}
	return o
}

// Client talks to the remote schedule service over HTTP+JSON.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     zerolog.Logger
	opts    Options
	limiter *rate.Limiter
}

// New builds a Client against the given base URL (scheme://host:port/path).
func New(base *url.URL, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: opts.Timeout},
		log:     xglog.WithComponent("scheduleclient").With().Str("base", base.String()).Logger(),
		opts:    opts,
		limiter: rate.NewLimiter(opts.RateLimit, opts.RateBurst),
	}
}

type eventDTO struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Timezone string `json:"timezone"`
}

type instanceDTO struct {
	Start string `json:"start"`
}

type scheduleDTO struct {
	Event     eventDTO      `json:"event"`
	Instances []instanceDTO `json:"instances"`
}

type listResponseDTO struct {
	Schedules []scheduleDTO `json:"schedules"`
}

// Get looks up a single event by id. Returns ErrEventNotFound if the
// service answers 404.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	u := c.base.JoinPath("events", id.String())

	var dto eventDTO
	if err := c.doJSON(ctx, "get_event", u, &dto); err != nil {
		return Event{}, err
	}
	return eventFromDTO(dto)
}

// List returns every schedule whose event matches the given id and has at
// least one instance in [start, end], per spec §4.3.
func (c *Client) List(ctx context.Context, start, end time.Time, eventID uuid.UUID) ([]Schedule, error) {
	u := c.base.JoinPath("schedules")
	q := u.Query()
	q.Set("start", start.Format("2006-01-02T15:04:05"))
	q.Set("end", end.Format("2006-01-02T15:04:05"))
	q.Set("where_id", eventID.String())
	u.RawQuery = q.Encode()

	var dto listResponseDTO
	if err := c.doJSON(ctx, "list_schedules", u, &dto); err != nil {
		return nil, err
	}

	schedules := make([]Schedule, 0, len(dto.Schedules))
	for _, s := range dto.Schedules {
		sched, err := scheduleFromDTO(s)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed schedule entry")
			continue
		}
		schedules = append(schedules, sched)
	}
	return schedules, nil
}

func eventFromDTO(dto eventDTO) (Event, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return Event{}, fmt.Errorf("scheduleclient: malformed event id %q: %w", dto.ID, err)
	}
	return Event{ID: id, Type: EventType(dto.Type), Timezone: dto.Timezone}, nil
}

func scheduleFromDTO(dto scheduleDTO) (Schedule, error) {
	event, err := eventFromDTO(dto.Event)
	if err != nil {
		return Schedule{}, err
	}

	instances := make([]Instance, 0, len(dto.Instances))
	for _, i := range dto.Instances {
		start, err := time.ParseInLocation("2006-01-02T15:04:05", i.Start, time.UTC)
		if err != nil {
			return Schedule{}, fmt.Errorf("scheduleclient: malformed instance start %q: %w", i.Start, err)
		}
		instances = append(instances, Instance{Start: start})
	}

	return Schedule{Event: event, Instances: instances}, nil
}

// doJSON performs a GET with retry/backoff and decodes a JSON body into out.
// A 404 response is translated to ErrEventNotFound; any other failure
// (including retries exhausted) is wrapped in ErrUnavailable.
func (c *Client) doJSON(ctx context.Context, operation string, u *url.URL, out any) error {
	backoff := c.opts.Backoff

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			requestRetries.WithLabelValues(operation).Inc()
			select {
			case <-ctx.Done():
				return &Error{Sentinel: ErrUnavailable, Operation: operation, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.opts.MaxBackoff {
				backoff = c.opts.MaxBackoff
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Sentinel: ErrUnavailable, Operation: operation, Err: err}
		}

		start := time.Now()
		status, err := c.attempt(ctx, u, out)
		requestDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(time.Since(start).Seconds())

		if err == nil {
			return nil
		}
		if status == http.StatusNotFound {
			return &Error{Sentinel: ErrEventNotFound, Operation: operation, Status: status}
		}
		lastErr = err
		c.log.Warn().Err(err).Str("operation", operation).Int("attempt", attempt).Msg("schedule service request failed")
	}

	return &Error{Sentinel: ErrUnavailable, Operation: operation, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, u *url.URL, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("not found")
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
