package littlesms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	statusError = "error"

	fieldStatus  = "status"
	fieldError   = "error"
	fieldMessage = "message"
)

// Envelope is a parsed successful response. Its shape depends on the
// operation; callers read fields directly or Decode into a typed result.
// Numbers are kept as json.Number so amounts and ids keep their precision.
type Envelope map[string]any

// Status returns the status discriminant, or "" when absent.
func (e Envelope) Status() string {
	s, _ := e[fieldStatus].(string)
	return s
}

// Decode re-decodes the envelope into v.
func (e Envelope) Decode(v any) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := decodeJSON(raw, v); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return nil
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after json value")
	}
	return nil
}

// Interpret parses a raw response body. A status of "error" becomes a
// *ServiceError; any other status is success and the object is returned
// unchanged. A body that is not a JSON object yields a *DecodeError.
func Interpret(body []byte) (Envelope, error) {
	var env Envelope
	if err := decodeJSON(body, &env); err != nil {
		return nil, &DecodeError{Body: bodySnippet(body), Err: err}
	}
	if env == nil {
		return nil, &DecodeError{Body: bodySnippet(body), Err: fmt.Errorf("response is not a json object")}
	}

	if env.Status() == statusError {
		msg, _ := env[fieldMessage].(string)
		return nil, &ServiceError{Code: errorCode(env[fieldError]), Message: msg}
	}
	return env, nil
}

// errorCode accepts the code as a JSON number or a numeric string.
func errorCode(raw any) int {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return 0
}
