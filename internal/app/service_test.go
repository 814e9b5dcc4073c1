package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/littlesms/littlesms-go/internal/config"
	"github.com/littlesms/littlesms-go/internal/domain"
	"github.com/littlesms/littlesms-go/pkg/littlesms"
	"github.com/littlesms/littlesms-go/pkg/publishers"
)

// fakeAPI returns canned envelopes and records arguments.
type fakeAPI struct {
	sendEnv   littlesms.Envelope
	sendErr   error
	sendOpts  littlesms.SendOptions
	statusIDs []string
}

func (f *fakeAPI) Balance(context.Context) (littlesms.Envelope, error) {
	return littlesms.Envelope{"status": "success", "balance": 1.0}, nil
}

func (f *fakeAPI) Send(_ context.Context, _ string, _ []string, opts littlesms.SendOptions) (littlesms.Envelope, error) {
	f.sendOpts = opts
	return f.sendEnv, f.sendErr
}

func (f *fakeAPI) Status(_ context.Context, ids ...string) (littlesms.Envelope, error) {
	f.statusIDs = ids
	return littlesms.Envelope{"status": "success"}, nil
}

func (f *fakeAPI) Price(context.Context, string, []string) (littlesms.Envelope, error) {
	return littlesms.Envelope{"status": "success"}, nil
}

func (f *fakeAPI) History(context.Context, littlesms.HistoryFilter) (littlesms.Envelope, error) {
	return littlesms.Envelope{"status": "success"}, nil
}

// memoryStore is an in-memory journal.
type memoryStore struct {
	mu   sync.Mutex
	msgs []domain.SentMessage
	err  error
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Record(msgs ...domain.SentMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *memoryStore) Recent() ([]domain.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SentMessage(nil), m.msgs...), m.err
}

// fakeFanout records published events.
type fakeFanout struct {
	events []publishers.Event
	err    error
	closed bool
}

func (f *fakeFanout) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func (f *fakeFanout) Close() error {
	f.closed = true
	return nil
}

func sendEnvelope() littlesms.Envelope {
	return littlesms.Envelope{
		"status":      "success",
		"count":       2.0,
		"recipients":  []any{"7001112233", "7004445566"},
		"price":       1.0,
		"parts":       1.0,
		"test":        0.0,
		"balance":     9.0,
		"messages_id": []any{"101", "102"},
	}
}

func TestSendJournalsAndPublishes(t *testing.T) {
	api := &fakeAPI{sendEnv: sendEnvelope()}
	store := &memoryStore{}
	fanout := &fakeFanout{}
	svc := newService(api, store, fanout, nil)

	env, err := svc.Send(context.Background(), SendRequest{
		Message:    "hi",
		Recipients: []string{"7001112233", "7004445566"},
		Sender:     "shop",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if env.Status() != "success" {
		t.Fatalf("unexpected envelope %#v", env)
	}
	if sender, ok := api.sendOpts.Sender.Get(); !ok || sender != "shop" {
		t.Fatalf("sender not forwarded: %#v", api.sendOpts)
	}

	if len(store.msgs) != 2 || store.msgs[0].ID != "101" || store.msgs[1].ID != "102" {
		t.Fatalf("unexpected journal %+v", store.msgs)
	}
	if len(fanout.events) != 1 {
		t.Fatalf("expected one event, got %d", len(fanout.events))
	}
	evt := fanout.events[0]
	if evt.Type != publishers.EventTypeMessageSent || len(evt.MessageIDs) != 2 || evt.Price.IntPart() != 1 {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestSendWithoutSenderLeavesOptionUnset(t *testing.T) {
	api := &fakeAPI{sendEnv: sendEnvelope()}
	svc := newService(api, &memoryStore{}, &fakeFanout{}, nil)

	if _, err := svc.Send(context.Background(), SendRequest{Message: "hi", Recipients: []string{"7"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if api.sendOpts.Sender.IsSet() {
		t.Fatalf("sender must stay unset")
	}
}

func TestSendSideEffectFailuresDoNotFailSend(t *testing.T) {
	api := &fakeAPI{sendEnv: sendEnvelope()}
	svc := newService(api, &memoryStore{err: errors.New("disk full")}, &fakeFanout{err: errors.New("queue down")}, nil)

	if _, err := svc.Send(context.Background(), SendRequest{Message: "hi", Recipients: []string{"7"}}); err != nil {
		t.Fatalf("Send must succeed despite journal/publish errors, got %v", err)
	}
}

func TestSendServiceErrorSkipsSideEffects(t *testing.T) {
	api := &fakeAPI{sendErr: &littlesms.ServiceError{Code: 5, Message: "no money"}}
	store := &memoryStore{}
	fanout := &fakeFanout{}
	svc := newService(api, store, fanout, nil)

	_, err := svc.Send(context.Background(), SendRequest{Message: "hi", Recipients: []string{"7"}})
	var svcErr *littlesms.ServiceError
	if !errors.As(err, &svcErr) || svcErr.Code != 5 {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if len(store.msgs) != 0 || len(fanout.events) != 0 {
		t.Fatalf("failed send must not be journalled or published")
	}
}

func TestStatusFallsBackToJournal(t *testing.T) {
	api := &fakeAPI{}
	store := &memoryStore{msgs: []domain.SentMessage{{ID: "7"}, {ID: "8"}}}
	svc := newService(api, store, nil, nil)

	if _, err := svc.Status(context.Background(), nil); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(api.statusIDs) != 2 || api.statusIDs[0] != "7" || api.statusIDs[1] != "8" {
		t.Fatalf("unexpected ids %v", api.statusIDs)
	}

	if _, err := svc.Status(context.Background(), []string{"42"}); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(api.statusIDs) != 1 || api.statusIDs[0] != "42" {
		t.Fatalf("explicit ids must win, got %v", api.statusIDs)
	}
}

func TestStatusEmptyJournal(t *testing.T) {
	svc := newService(&fakeAPI{}, &memoryStore{}, nil, nil)
	if _, err := svc.Status(context.Background(), nil); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("expected ErrNoMessages, got %v", err)
	}
}

func TestCloseClosesFanout(t *testing.T) {
	fanout := &fakeFanout{}
	svc := newService(&fakeAPI{}, &memoryStore{}, fanout, nil)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fanout.closed {
		t.Fatalf("expected fanout closed")
	}
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	cfg := &config.Config{JournalType: "none", AppName: "littlesms"}
	if _, err := NewService(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestNewServiceWithJournal(t *testing.T) {
	cfg := &config.Config{
		AppName:     "littlesms",
		User:        "alice",
		Key:         "secret",
		JournalType: "bbolt",
		JournalPath: t.TempDir() + "/journal.db",
	}
	svc, err := NewService(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	recent, err := svc.Recent()
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected empty journal, got %v err=%v", recent, err)
	}
}
