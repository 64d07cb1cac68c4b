package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pbaille/sagequill/internal/apperr"
	"github.com/pbaille/sagequill/internal/provider"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeErr maps err onto a response: provider failures keep the provider's
// status and body, application errors use their code and status, anything
// else is an internal error.
func writeErr(w http.ResponseWriter, err error) {
	var se *provider.StatusError
	if errors.As(err, &se) {
		writeError(w, se.StatusCode, se.Body)
		return
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.NewInternal(err)
	}

	body := map[string]any{"error": ae.Message, "code": ae.Code}
	if len(ae.Details) > 0 {
		body["details"] = ae.Details
	}
	writeJSON(w, ae.Status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
