package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// badRequestError marks malformed requests: wrong content type, broken JSON,
// unknown fields. Mapped to 400 at the response boundary.
type badRequestError struct {
	msg string
}

func (e badRequestError) Error() string { return e.msg }

// decodeJSON parses the request body into v in strict mode: JSON only,
// unknown fields rejected, trailing data rejected.
func decodeJSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType != "application/json" {
		return badRequestError{msg: "expected application/json body"}
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequestError{msg: "empty request body"}
		}
		return badRequestError{msg: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if decoder.More() {
		return badRequestError{msg: "unexpected data after JSON object"}
	}
	return nil
}
