// Package journal keeps a local record of recently sent message ids.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/littlesms/littlesms-go/internal/domain"
)

// Store records sent messages until their retention expires.
type Store interface {
	Close() error
	Record(msgs ...domain.SentMessage) error
	Recent() ([]domain.SentMessage, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	MessageTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultMessageTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured journal backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = defaultMessageTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                          { return nil }
func (noopStore) Record(...domain.SentMessage) error    { return nil }
func (noopStore) Recent() ([]domain.SentMessage, error) { return nil, nil }
