package problem

import (
	"encoding/json"
	"net/http"

	"github.com/radio-aktywne/datarecords/internal/log"
)

// Write writes an RFC 7807 problem details response.
//
//   - type: a machine identifier for the error kind (e.g. "datarecords/not-found").
//   - title: a short human-readable label (e.g. "Not Found").
//   - code: a stable machine-readable short code (e.g. "NOT_FOUND"), kept
//     alongside type/status for clients that match on a flat string rather
//     than parsing the type URI.
//   - detail: a human-readable explanation of this specific occurrence.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string, extra map[string]any) {
	if r == nil {
		// Every handler in this service is expected to pass its request
		// through, so a nil r here means a handler forgot to.
		log.L().Error().Str("type", problemType).Int("status", status).Msg("problem.Write called with nil request")
	}

	instance := ""
	if r != nil {
		instance = r.URL.EscapedPath()
	}

	// Prefer the request-scoped ID set by the logging middleware; fall back
	// to whatever's already on the response header, then to a sentinel that
	// makes a missing request ID visible instead of silently blank.
	reqID := ""
	if r != nil {
		reqID = log.RequestIDFromContext(r.Context())
	}
	if reqID == "" {
		reqID = w.Header().Get(HeaderRequestID)
	}
	if reqID == "" {
		reqID = "unknown-request-id"
	}

	res := map[string]any{
		"type":           problemType,
		"title":          title,
		"status":         status,
		"code":           code,
		JSONKeyRequestID: reqID,
	}

	if detail != "" {
		res["detail"] = detail
	}
	if instance != "" {
		res["instance"] = instance
	}

	// Merge caller-supplied extensions at the top level, but never let one
	// clobber a reserved field.
	for k, v := range extra {
		switch k {
		case "type", "title", "status", "detail", "instance", "code":
			log.L().Warn().Str("key", k).Str("problem_type", problemType).Msg("ignoring reserved key in problem extras")
			continue
		}
		res[k] = v
	}

	w.Header().Set(HeaderRequestID, reqID)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}
