package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/opsledger/internal/ledger"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// skippedLinesHeader lists the indexes of lines whose inventory item was
// missing under the skip policy.
const skippedLinesHeader = "X-Skipped-Lines"

// setSkippedLines sets skippedLinesHeader. It must run before the status is
// written.
func setSkippedLines(w http.ResponseWriter, skipped []int) {
	if len(skipped) == 0 {
		return
	}
	parts := make([]string, len(skipped))
	for i, idx := range skipped {
		parts[i] = strconv.Itoa(idx)
	}
	w.Header().Set(skippedLinesHeader, strings.Join(parts, ","))
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value. It writes a 400 and returns false when
// the value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter. Absent
// parameters yield 0.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// ledgerError maps a ledger failure to a response. Rejections of the request
// are 400s naming the offending line; anything else is logged and hidden.
func ledgerError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if ledger.IsDomainError(err) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("failed to "+action, "error", err, "request_id", RequestID(r.Context()))
	jsonError(w, http.StatusInternalServerError, "failed to "+action)
}

// internalError logs err and writes a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, err error, action string) {
	slog.Error("failed to "+action, "error", err, "request_id", RequestID(r.Context()))
	jsonError(w, http.StatusInternalServerError, "failed to "+action)
}
