package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radio-aktywne/datarecords/internal/credentials"
	"github.com/radio-aktywne/datarecords/internal/objectstore"
	"github.com/radio-aktywne/datarecords/internal/recorder"
	"github.com/radio-aktywne/datarecords/internal/records"
)

type fakeRecorder struct {
	resp recorder.Response
	err  error
}

func (f *fakeRecorder) Record(context.Context, recorder.Request) (recorder.Response, error) {
	return f.resp, f.err
}

type fakeRecords struct {
	listResp records.ListResponse
	listErr  error

	downloadBody string
	downloadObj  objectstore.Object
	downloadErr  error

	headObj objectstore.Object
	headErr error

	uploadErr error
	deleteErr error
}

func (f *fakeRecords) List(context.Context, records.ListRequest) (records.ListResponse, error) {
	return f.listResp, f.listErr
}

func (f *fakeRecords) Download(context.Context, uuid.UUID, time.Time) (io.ReadCloser, objectstore.Object, error) {
	if f.downloadErr != nil {
		return nil, objectstore.Object{}, f.downloadErr
	}
	return io.NopCloser(strings.NewReader(f.downloadBody)), f.downloadObj, nil
}

func (f *fakeRecords) Head(context.Context, uuid.UUID, time.Time) (objectstore.Object, error) {
	return f.headObj, f.headErr
}

func (f *fakeRecords) Upload(context.Context, uuid.UUID, time.Time, string, io.Reader, string) error {
	return f.uploadErr
}

func (f *fakeRecords) Delete(context.Context, uuid.UUID, time.Time) error {
	return f.deleteErr
}

func TestHandleRecordSuccess(t *testing.T) {
	eventID := uuid.New()
	rec := &fakeRecorder{resp: recorder.Response{
		Port:        10900,
		Credentials: credentials.Credentials{Token: "tok", ExpiresAt: time.Unix(0, 0).UTC()},
	}}
	router := NewRouter(rec, &fakeRecords{})

	body := `{"event":"` + eventID.String() + `","format":"mp3"}`
	req := httptest.NewRequest(http.MethodPost, "/record", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"port":10900`)
	assert.Contains(t, w.Body.String(), `"tok"`)
}

func TestHandleRecordBusy(t *testing.T) {
	rec := &fakeRecorder{err: recorder.ErrBusy}
	router := NewRouter(rec, &fakeRecords{})

	body := `{"event":"` + uuid.New().String() + `","format":"mp3"}`
	req := httptest.NewRequest(http.MethodPost, "/record", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "BUSY")
}

func TestHandleRecordBadEventUUID(t *testing.T) {
	router := NewRouter(&fakeRecorder{}, &fakeRecords{})

	req := httptest.NewRequest(http.MethodPost, "/record", strings.NewReader(`{"event":"not-a-uuid"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListRecords(t *testing.T) {
	eventID := uuid.New()
	limit := 10
	cat := &fakeRecords{listResp: records.ListResponse{
		Count: 1,
		Limit: &limit,
		Records: []records.Record{
			{Event: eventID, Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Key: eventID.String() + "/2026-01-01T00:00:00.mp3"},
		},
	}}
	router := NewRouter(&fakeRecorder{}, cat)

	req := httptest.NewRequest(http.MethodGet, "/records/"+eventID.String()+"?order=descending&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestHandleListRecordsEventNotFound(t *testing.T) {
	cat := &fakeRecords{listErr: records.ErrEventNotFound}
	router := NewRouter(&fakeRecorder{}, cat)

	req := httptest.NewRequest(http.MethodGet, "/records/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "EVENT_NOT_FOUND")
}

func TestHandleDownload(t *testing.T) {
	cat := &fakeRecords{downloadBody: "audio-bytes", downloadObj: objectstore.Object{SizeBytes: 11}}
	router := NewRouter(&fakeRecorder{}, cat)

	eventID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/records/"+eventID.String()+"/2026-01-01T00:00:00", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio-bytes", w.Body.String())
}

func TestHandleDownloadInstanceNotFound(t *testing.T) {
	cat := &fakeRecords{downloadErr: records.ErrInstanceNotFound}
	router := NewRouter(&fakeRecorder{}, cat)

	eventID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/records/"+eventID.String()+"/2026-01-01T00:00:00", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "INSTANCE_NOT_FOUND")
}

func TestHandleUploadConflict(t *testing.T) {
	cat := &fakeRecords{uploadErr: records.ErrAlreadyExists}
	router := NewRouter(&fakeRecorder{}, cat)

	eventID := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/records/"+eventID.String()+"/2026-01-01T00:00:00?format=mp3", strings.NewReader("data"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleDelete(t *testing.T) {
	cat := &fakeRecords{}
	router := NewRouter(&fakeRecorder{}, cat)

	eventID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/records/"+eventID.String()+"/2026-01-01T00:00:00", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandlePing(t *testing.T) {
	router := NewRouter(&fakeRecorder{}, &fakeRecords{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWriteErrorDefaultsToInternal(t *testing.T) {
	router := NewRouter(&fakeRecorder{err: errors.New("boom")}, &fakeRecords{})

	body := `{"event":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/record", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
