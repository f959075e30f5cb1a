package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/radio-aktywne/datarecords/internal/clock"
	"github.com/radio-aktywne/datarecords/internal/httpapi/problem"
	xglog "github.com/radio-aktywne/datarecords/internal/log"
	"github.com/radio-aktywne/datarecords/internal/metrics"
	"github.com/radio-aktywne/datarecords/internal/objectstore"
	"github.com/radio-aktywne/datarecords/internal/recorder"
	"github.com/radio-aktywne/datarecords/internal/records"
)

// RecorderService is the subset of *recorder.Recorder the API needs.
type RecorderService interface {
	Record(ctx context.Context, req recorder.Request) (recorder.Response, error)
}

// RecordsService is the subset of *records.Catalog the API needs.
type RecordsService interface {
	List(ctx context.Context, req records.ListRequest) (records.ListResponse, error)
	Download(ctx context.Context, event uuid.UUID, start time.Time) (io.ReadCloser, objectstore.Object, error)
	Head(ctx context.Context, event uuid.UUID, start time.Time) (objectstore.Object, error)
	Upload(ctx context.Context, event uuid.UUID, start time.Time, format string, content io.Reader, contentType string) error
	Delete(ctx context.Context, event uuid.UUID, start time.Time) error
}

type handlers struct {
	recorder RecorderService
	records  RecordsService
}

func (h *handlers) handleRecord(w http.ResponseWriter, r *http.Request) {
	var dto recordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "malformed JSON body", nil)
		return
	}

	eventID, err := uuid.Parse(dto.Event)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "event is not a valid UUID", nil)
		return
	}

	resp, err := h.recorder.Record(r.Context(), recorder.Request{EventID: eventID, Format: dto.Format})
	if err != nil {
		metrics.IncRecordRequest(recordOutcome(err))
		writeError(w, r, err)
		return
	}
	metrics.IncRecordRequest("started")

	writeJSON(w, http.StatusCreated, recordResponseDTO{
		Port:        resp.Port,
		Credentials: credentialsDTO(resp.Credentials),
	})
}

func recordOutcome(err error) string {
	switch {
	case err == nil:
		return "started"
	case errors.Is(err, recorder.ErrInstanceNotFound):
		return "instance_not_found"
	case errors.Is(err, recorder.ErrBusy):
		return "busy"
	case errors.Is(err, recorder.ErrPipelineLaunchFailed):
		return "launch_failed"
	default:
		return "error"
	}
}

func (h *handlers) handleListRecords(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "event"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "event is not a valid UUID", nil)
		return
	}

	req := records.ListRequest{Event: eventID}
	q := r.URL.Query()

	if v := q.Get("after"); v != "" {
		t, err := clock.Parse(v)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "after is not a valid naive ISO-8601 datetime", nil)
			return
		}
		req.After = &t
	}
	if v := q.Get("before"); v != "" {
		t, err := clock.Parse(v)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "before is not a valid naive ISO-8601 datetime", nil)
			return
		}
		req.Before = &t
	}
	if v := q.Get("order"); v != "" {
		order := records.Order(v)
		req.Order = &order
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "limit is not an integer", nil)
			return
		}
		req.Limit = &n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "offset is not an integer", nil)
			return
		}
		req.Offset = &n
	}

	resp, err := h.records.List(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := make([]recordEntryDTO, 0, len(resp.Records))
	for _, rec := range resp.Records {
		entries = append(entries, recordEntryDTO{Event: rec.Event.String(), Start: rec.Start})
	}

	writeJSON(w, http.StatusOK, listResponseDTO{
		Count:   resp.Count,
		Limit:   resp.Limit,
		Offset:  resp.Offset,
		Records: entries,
	})
}

func (h *handlers) pathEventStart(w http.ResponseWriter, r *http.Request) (uuid.UUID, time.Time, bool) {
	eventID, err := uuid.Parse(chi.URLParam(r, "event"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "event is not a valid UUID", nil)
		return uuid.UUID{}, time.Time{}, false
	}
	start, err := clock.Parse(chi.URLParam(r, "start"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "datarecords/bad-request", "Bad Request", "BAD_REQUEST", "start is not a valid naive ISO-8601 datetime", nil)
		return uuid.UUID{}, time.Time{}, false
	}
	return eventID, start, true
}

func (h *handlers) handleDownload(w http.ResponseWriter, r *http.Request) {
	eventID, start, ok := h.pathEventStart(w, r)
	if !ok {
		return
	}

	body, obj, err := h.records.Download(r.Context(), eventID, start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() { _ = body.Close() }()

	setObjectHeaders(w, obj)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *handlers) handleHead(w http.ResponseWriter, r *http.Request) {
	eventID, start, ok := h.pathEventStart(w, r)
	if !ok {
		return
	}

	obj, err := h.records.Head(r.Context(), eventID, start)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setObjectHeaders(w, obj)
	w.WriteHeader(http.StatusOK)
}

// setObjectHeaders stamps the response headers spec §6 requires for a
// record's metadata: Content-Type, Content-Length, ETag, Last-Modified.
func setObjectHeaders(w http.ResponseWriter, obj objectstore.Object) {
	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(obj.SizeBytes, 10))
	if obj.ETag != "" {
		w.Header().Set("ETag", obj.ETag)
	}
	if !obj.LastModified.IsZero() {
		w.Header().Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	}
}

func (h *handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	eventID, start, ok := h.pathEventStart(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	contentType := r.Header.Get("Content-Type")

	if err := h.records.Upload(r.Context(), eventID, start, format, r.Body, contentType); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	eventID, start, ok := h.pathEventStart(w, r)
	if !ok {
		return
	}

	if err := h.records.Delete(r.Context(), eventID, start); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		xglog.L().Error().Err(err).Msg("failed to encode response")
	}
}
