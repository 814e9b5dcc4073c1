package littlesms

import "context"

// Transport fetches a fully formed URL and returns the raw response body.
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TransportFunc adapts a plain function (for example a platform-managed
// fetcher) to Transport.
type TransportFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f.
func (f TransportFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Logger receives the outgoing URL and the raw response of every call.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{}) {}
