package core

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error envelope: {"error":{"code":…,"message":…}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// JSONError writes err as an ErrorBody. Errors that are not HTTPError are
// reported as a generic 500 so internal detail never reaches the client.
func JSONError(w http.ResponseWriter, err error) error {
	he := AsHTTPError(err)
	msg := he.Message
	if msg == "" {
		msg = http.StatusText(he.Code)
	}
	return JSON(w, he.Code, ErrorBody{Error: ErrorDetail{Code: he.Key, Message: msg}})
}

// DecodeJSON reads a JSON request body into v. Malformed bodies yield
// ErrBadRequest.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrBadRequest
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
