package httpapi

import (
	"errors"
	"net/http"

	"github.com/radio-aktywne/datarecords/internal/httpapi/problem"
	"github.com/radio-aktywne/datarecords/internal/objectstore"
	"github.com/radio-aktywne/datarecords/internal/recorder"
	"github.com/radio-aktywne/datarecords/internal/records"
)

// writeError maps a core error kind to its RFC 7807 HTTP surface, per
// spec §6's error-kind-to-status table.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recorder.ErrInstanceNotFound), errors.Is(err, records.ErrInstanceNotFound):
		problem.Write(w, r, http.StatusNotFound, "datarecords/instance-not-found", "Instance Not Found", "INSTANCE_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, records.ErrEventNotFound):
		problem.Write(w, r, http.StatusNotFound, "datarecords/event-not-found", "Event Not Found", "EVENT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, records.ErrBadEventType):
		problem.Write(w, r, http.StatusUnprocessableEntity, "datarecords/bad-event-type", "Bad Event Type", "BAD_EVENT_TYPE", err.Error(), nil)
	case errors.Is(err, records.ErrAlreadyExists), errors.Is(err, objectstore.ErrAlreadyExists):
		problem.Write(w, r, http.StatusConflict, "datarecords/already-exists", "Record Already Exists", "ALREADY_EXISTS", err.Error(), nil)
	case errors.Is(err, recorder.ErrBusy):
		problem.Write(w, r, http.StatusServiceUnavailable, "datarecords/busy", "No Ports Available", "BUSY", err.Error(), nil)
	case errors.Is(err, recorder.ErrPipelineLaunchFailed):
		problem.Write(w, r, http.StatusBadGateway, "datarecords/pipeline-launch-failed", "Pipeline Launch Failed", "PIPELINE_LAUNCH_FAILED", err.Error(), nil)
	case errors.Is(err, objectstore.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "datarecords/not-found", "Not Found", "NOT_FOUND", err.Error(), nil)
	default:
		problem.Write(w, r, http.StatusInternalServerError, "datarecords/internal", "Internal Server Error", "INTERNAL", err.Error(), nil)
	}
}
