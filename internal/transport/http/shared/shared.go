// Package shared holds the JSON envelope helpers every handler uses, so
// error bodies and success bodies look the same on every route.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "soulbound/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope. Reason is the stable
// machine-readable identifier of the violated precondition, empty for
// ad-hoc failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a domain error into the HTTP envelope. Uncoded
// errors map to 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{
		Error:  string(code),
		Reason: dErrors.ReasonOf(err),
	}
	if code != dErrors.CodeInternal {
		resp.Message = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a success payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// DecodeJSON parses a request body into dst, rejecting unknown fields so
// misfielded requests fail loudly.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
