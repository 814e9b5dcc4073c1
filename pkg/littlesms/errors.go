package littlesms

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ServiceError is a failure reported by the service inside a well-formed
// response (status "error").
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("littlesms: error %d: %s", e.Code, e.Message)
}

// TransportError wraps a failed fetch. URL holds the full signed URL; Error
// prints it without the query so credentials and message text stay out of logs.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	safe := stripQuery(e.URL)
	cause := "<nil>"
	if e.Err != nil {
		cause = strings.ReplaceAll(e.Err.Error(), e.URL, safe)
	}
	return fmt.Sprintf("littlesms: fetch %s: %s", safe, cause)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not a JSON object.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("littlesms: decode response %q: %v", e.Body, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func stripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return truncateRunes(s, maxLen) + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
