// Package littlesms is a client for the LittleSMS HTTP API.
package littlesms

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/littlesms/littlesms-go/pkg/httpclient"
)

const defaultTimeout = 15 * time.Second

// Config holds the per-client settings. The zero value of Insecure selects
// https.
type Config struct {
	User      string
	Key       string
	Host      string
	Insecure  bool
	Transport Transport
	Logger    Logger
}

// Client calls the LittleSMS API. It holds only read-only configuration and
// may be shared across goroutines when its Transport allows that.
type Client struct {
	user      string
	key       string
	host      string
	secure    bool
	transport Transport
	log       Logger
}

// New creates a Client. A nil Transport falls back to a resty-backed fetch
// with a 15s timeout.
func New(cfg Config) (*Client, error) {
	user := strings.TrimSpace(cfg.User)
	if user == "" {
		return nil, errors.New("littlesms: user is required")
	}
	if cfg.Key == "" {
		return nil, errors.New("littlesms: key is required")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = httpclient.NewRestyClient(defaultTimeout)
	}
	var log Logger = noopLogger{}
	if cfg.Logger != nil {
		log = cfg.Logger
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}

	return &Client{
		user:      user,
		key:       cfg.Key,
		host:      host,
		secure:    !cfg.Insecure,
		transport: transport,
		log:       log,
	}, nil
}

// SendOptions carries the optional arguments of Send.
type SendOptions struct {
	Sender Optional[string]
	Test   bool
}

// HistoryFilter narrows History. Unset fields are not sent.
type HistoryFilter struct {
	HistoryID Optional[int64]
	Recipient Optional[string]
	Sender    Optional[string]
	Status    Optional[string]
	DateFrom  Optional[string]
	DateTo    Optional[string]
	ID        Optional[int64]
}

// Balance returns the account balance.
func (c *Client) Balance(ctx context.Context) (Envelope, error) {
	return c.do(ctx, PathBalance, nil)
}

// Send sends message to one or more recipients.
func (c *Client) Send(ctx context.Context, message string, recipients []string, opts SendOptions) (Envelope, error) {
	return c.do(ctx, PathSend, sendParams(message, recipients, opts))
}

// Status returns the delivery status of one or more messages.
func (c *Client) Status(ctx context.Context, ids ...string) (Envelope, error) {
	return c.do(ctx, PathStatus, Params{"messages_id": List(ids)})
}

// Price returns the cost of sending message to recipients.
func (c *Client) Price(ctx context.Context, message string, recipients []string) (Envelope, error) {
	return c.do(ctx, PathPrice, Params{
		"message":    Text(message),
		"recipients": List(recipients),
	})
}

// History lists sent messages matching filter. The zero filter returns the
// full history.
func (c *Client) History(ctx context.Context, filter HistoryFilter) (Envelope, error) {
	return c.do(ctx, PathHistory, historyParams(filter))
}

// Request builds the signed request for path and params without sending it.
func (c *Client) Request(path string, params Params) Request {
	return BuildRequest(c.user, c.key, c.host, c.secure, path, params)
}

func (c *Client) do(ctx context.Context, path string, params Params) (Envelope, error) {
	url := c.Request(path, params).URL()
	c.log.InfoObj("littlesms request", "url", url)

	body, err := c.transport.Fetch(ctx, url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	c.log.InfoObj("littlesms response", "body", string(body))

	return Interpret(body)
}

func sendParams(message string, recipients []string, opts SendOptions) Params {
	params := Params{
		"message":    Text(message),
		"recipients": List(recipients),
		"sender":     optText(opts.Sender),
	}
	if opts.Test {
		params["test"] = Text("1")
	}
	return params
}

func historyParams(f HistoryFilter) Params {
	return Params{
		"history_id": optInt(f.HistoryID),
		"recipient":  optText(f.Recipient),
		"sender":     optText(f.Sender),
		"status":     optText(f.Status),
		"date_from":  optText(f.DateFrom),
		"date_to":    optText(f.DateTo),
		"id":         optInt(f.ID),
	}
}
