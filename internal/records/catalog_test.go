package records

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radio-aktywne/datarecords/internal/objectstore"
	"github.com/radio-aktywne/datarecords/internal/reckey"
	"github.com/radio-aktywne/datarecords/internal/scheduleclient"
)

type fakeScheduleClient struct {
	event     scheduleclient.Event
	eventErr  error
	schedules []scheduleclient.Schedule
	listErr   error
}

func (f *fakeScheduleClient) Get(context.Context, uuid.UUID) (scheduleclient.Event, error) {
	return f.event, f.eventErr
}

func (f *fakeScheduleClient) List(context.Context, time.Time, time.Time, uuid.UUID) ([]scheduleclient.Schedule, error) {
	return f.schedules, f.listErr
}

type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) List(_ context.Context, prefix string) ([]objectstore.Object, error) {
	var out []objectstore.Object
	for key, body := range s.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, objectstore.Object{Key: key, SizeBytes: int64(len(body))})
		}
	}
	return out, nil
}

func (s *fakeStore) Head(_ context.Context, key string) (objectstore.Object, error) {
	body, ok := s.objects[key]
	if !ok {
		return objectstore.Object{}, objectstore.ErrNotFound
	}
	return objectstore.Object{Key: key, SizeBytes: int64(len(body))}, nil
}

func (s *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStore) Get(_ context.Context, key string) (io.ReadCloser, objectstore.Object, error) {
	body, ok := s.objects[key]
	if !ok {
		return nil, objectstore.Object{}, objectstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(body)), objectstore.Object{Key: key, SizeBytes: int64(len(body))}, nil
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func TestCatalogListEventNotFound(t *testing.T) {
	sched := &fakeScheduleClient{eventErr: scheduleclient.ErrEventNotFound}
	cat := New(sched, newFakeStore())

	_, err := cat.List(context.Background(), ListRequest{Event: uuid.New()})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCatalogListBadEventType(t *testing.T) {
	sched := &fakeScheduleClient{event: scheduleclient.Event{Type: scheduleclient.EventTypePrerecorded}}
	cat := New(sched, newFakeStore())

	_, err := cat.List(context.Background(), ListRequest{Event: uuid.New()})
	assert.ErrorIs(t, err, ErrBadEventType)
}

func TestCatalogListFilterSortPaginate(t *testing.T) {
	event := uuid.New()
	store := newFakeStore()

	starts := []time.Time{
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC),
	}
	for _, s := range starts {
		store.objects[reckey.Make(event, s, "mp3")] = []byte("x")
	}

	sched := &fakeScheduleClient{event: scheduleclient.Event{Type: scheduleclient.EventTypeLive}}
	cat := New(sched, store)

	after := starts[0]
	order := OrderDescending
	limit := 2
	offset := 0

	resp, err := cat.List(context.Background(), ListRequest{
		Event: event,
		After: &after,
		Order: &order,
		Limit: &limit,
		Offset: &offset,
	})
	require.NoError(t, err)

	// after starts[0] strictly excludes it -> 3 remain before pagination
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Records, 2)
	// descending: starts[3] then starts[2]
	assert.True(t, resp.Records[0].Start.Equal(starts[3]))
	assert.True(t, resp.Records[1].Start.Equal(starts[2]))
}

func TestCatalogDownloadInstanceNotFound(t *testing.T) {
	event := uuid.New()
	sched := &fakeScheduleClient{event: scheduleclient.Event{Type: scheduleclient.EventTypeLive, Timezone: "UTC"}}
	cat := New(sched, newFakeStore())

	_, _, err := cat.Download(context.Background(), event, time.Now())
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestCatalogUploadConflict(t *testing.T) {
	event := uuid.New()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	key := reckey.Make(event, start, "mp3")
	store.objects[key] = []byte("existing")

	sched := &fakeScheduleClient{
		event: scheduleclient.Event{Type: scheduleclient.EventTypeLive, Timezone: "UTC"},
		schedules: []scheduleclient.Schedule{{
			Event:     scheduleclient.Event{ID: event, Type: scheduleclient.EventTypeLive, Timezone: "UTC"},
			Instances: []scheduleclient.Instance{{Start: start}},
		}},
	}
	cat := New(sched, store)

	err := cat.Upload(context.Background(), event, start, "mp3", bytes.NewReader([]byte("new")), "audio/mpeg")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCatalogUploadThenDownloadRoundTrip(t *testing.T) {
	event := uuid.New()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()

	sched := &fakeScheduleClient{
		event: scheduleclient.Event{Type: scheduleclient.EventTypeLive, Timezone: "UTC"},
		schedules: []scheduleclient.Schedule{{
			Event:     scheduleclient.Event{ID: event, Type: scheduleclient.EventTypeLive, Timezone: "UTC"},
			Instances: []scheduleclient.Instance{{Start: start}},
		}},
	}
	cat := New(sched, store)

	require.NoError(t, cat.Upload(context.Background(), event, start, "mp3", bytes.NewReader([]byte("audio-bytes")), "audio/mpeg"))

	body, obj, err := cat.Download(context.Background(), event, start)
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
	assert.Contains(t, obj.Key, ".mp3")
}

func TestCatalogDeleteNotFoundEvent(t *testing.T) {
	sched := &fakeScheduleClient{eventErr: scheduleclient.ErrEventNotFound}
	cat := New(sched, newFakeStore())

	err := cat.Delete(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrEventNotFound)
}
