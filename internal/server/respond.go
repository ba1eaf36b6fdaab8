package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/seqx/internal/shared"
)

// maxBodyBytes caps request bodies read by [decodeJSON].
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// writeJSON encodes v before writing the header, so a value that cannot be encoded
// becomes a 500 error body. Write errors mean the client has gone and are not reported.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorResponse{Error: true, Reason: http.StatusText(status)})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, ErrorResponse{Error: true, Reason: reason})
}

// statusFor maps an error to its HTTP status: bad input is 400, a missing element 404, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrDecode), errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrElementNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", shared.ErrDecode)
		}
		return fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON body", shared.ErrDecode)
	}

	return nil
}

// missingField builds the decode error for a required key that was absent or null.
func missingField(name string) error {
	return fmt.Errorf("%w: missing required field %q", shared.ErrDecode, name)
}
