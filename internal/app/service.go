package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/littlesms/littlesms-go/internal/config"
	"github.com/littlesms/littlesms-go/internal/domain"
	"github.com/littlesms/littlesms-go/internal/journal"
	"github.com/littlesms/littlesms-go/internal/logger"
	"github.com/littlesms/littlesms-go/pkg/httpclient"
	"github.com/littlesms/littlesms-go/pkg/littlesms"
	"github.com/littlesms/littlesms-go/pkg/publishers"
)

// API is the subset of littlesms.Client the service drives.
type API interface {
	Balance(ctx context.Context) (littlesms.Envelope, error)
	Send(ctx context.Context, message string, recipients []string, opts littlesms.SendOptions) (littlesms.Envelope, error)
	Status(ctx context.Context, ids ...string) (littlesms.Envelope, error)
	Price(ctx context.Context, message string, recipients []string) (littlesms.Envelope, error)
	History(ctx context.Context, filter littlesms.HistoryFilter) (littlesms.Envelope, error)
}

// EventPublisher publishes "message sent" events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Close() error
}

// Service runs LittleSMS operations for the CLI. Besides calling the API it
// journals sent message ids and fans out send events to publishers.
type Service struct {
	api    API
	store  journal.Store
	fanout EventPublisher
	log    logger.Logger
}

// ErrNoMessages is returned by Status when no ids were given and the journal is empty.
var ErrNoMessages = errors.New("no message ids given and journal is empty")

// NewService builds a service runtime from config.
func NewService(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	transport, err := httpclient.New(httpclient.Options{
		Timeout:       cfg.HTTPTimeout,
		ProxyURL:      cfg.ProxyURL,
		ProxyUser:     cfg.ProxyUser,
		ProxyPassword: cfg.ProxyPassword,
		SkipTLSVerify: cfg.ProxySkipVerify,
		Headers:       map[string]string{"User-Agent": cfg.AppName},
	})
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}

	client, err := littlesms.New(littlesms.Config{
		User:      cfg.User,
		Key:       cfg.Key,
		Host:      cfg.Host,
		Insecure:  cfg.Insecure,
		Transport: transport,
		Logger:    debugSink{log: log},
	})
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := journal.Options{
		MessageTTL:      cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	}
	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"message_ttl_seconds":      int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return newService(client, store, fanout, log), nil
}

func newService(api API, store journal.Store, fanout EventPublisher, log logger.Logger) *Service {
	if store == nil {
		store, _ = journal.NewStore("none", "", journal.Options{})
	}
	if fanout == nil {
		fanout = publishers.NewFanout(nil)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{api: api, store: store, fanout: fanout, log: log}
}

// buildFanout loads the publishers file when configured.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Balance returns the account balance.
func (s *Service) Balance(ctx context.Context) (littlesms.Envelope, error) {
	return s.api.Balance(ctx)
}

// SendRequest describes a message to send.
type SendRequest struct {
	Message    string
	Recipients []string
	Sender     string
	Test       bool
}

// Send sends the message, journals the returned ids and publishes a
// message.sent event. Journal and publish failures are logged only: the
// message has already left.
func (s *Service) Send(ctx context.Context, req SendRequest) (littlesms.Envelope, error) {
	opts := littlesms.SendOptions{Test: req.Test}
	if req.Sender != "" {
		opts.Sender = littlesms.Some(req.Sender)
	}

	env, err := s.api.Send(ctx, req.Message, req.Recipients, opts)
	if err != nil {
		return nil, err
	}

	var res littlesms.SendResult
	if err := env.Decode(&res); err != nil {
		s.log.WarnObj("send response not decodable", "error", err.Error())
		return env, nil
	}

	sentAt := time.Now().UTC()
	msgs := make([]domain.SentMessage, 0, len(res.MessageIDs))
	for _, id := range res.MessageIDs {
		msgs = append(msgs, domain.SentMessage{
			ID:         id,
			Recipients: req.Recipients,
			Sender:     req.Sender,
			Test:       req.Test,
			SentAt:     sentAt,
		})
	}
	if err := s.store.Record(msgs...); err != nil {
		s.log.ErrorObj("journal record failed", "error", err.Error())
	}

	evt := publishers.NewSentEvent(res.MessageIDs, req.Recipients, req.Sender, req.Test, res.Parts, res.Price, res.Balance)
	if delivered, err := s.fanout.Publish(ctx, evt); err != nil {
		s.log.ErrorObj("send event publish failed", "publish_error", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
	}

	return env, nil
}

// Status returns delivery statuses for ids, or for every journalled message
// when ids is empty.
func (s *Service) Status(ctx context.Context, ids []string) (littlesms.Envelope, error) {
	if len(ids) == 0 {
		recent, err := s.store.Recent()
		if err != nil {
			return nil, fmt.Errorf("read journal: %w", err)
		}
		for _, msg := range recent {
			ids = append(ids, msg.ID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoMessages
	}
	return s.api.Status(ctx, ids...)
}

// Price returns the cost of sending message to recipients.
func (s *Service) Price(ctx context.Context, message string, recipients []string) (littlesms.Envelope, error) {
	return s.api.Price(ctx, message, recipients)
}

// History lists sent messages matching filter.
func (s *Service) History(ctx context.Context, filter littlesms.HistoryFilter) (littlesms.Envelope, error) {
	return s.api.History(ctx, filter)
}

// Recent returns the journalled messages.
func (s *Service) Recent() ([]domain.SentMessage, error) {
	return s.store.Recent()
}

// Close releases the journal and publishers, logging any errors encountered.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	err := errors.Join(s.store.Close(), s.fanout.Close())
	if err != nil {
		s.log.ErrorObj("service close failed", "error", err.Error())
	}
	return err
}

// debugSink forwards the client's request/response trace at debug level.
type debugSink struct {
	log logger.Logger
}

func (d debugSink) InfoObj(msg, key string, obj interface{}) {
	d.log.DebugObj(msg, key, obj)
}
