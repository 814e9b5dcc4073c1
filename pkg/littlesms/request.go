package littlesms

import (
	"net/url"
)

const (
	// DefaultHost is the public LittleSMS API host.
	DefaultHost = "littlesms.ru"

	PathBalance = "user/balance"
	PathSend    = "message/send"
	PathStatus  = "message/status"
	PathPrice   = "message/price"
	PathHistory = "message/history"

	paramSign = "sign"
	paramUser = "user"
)

// Request is a signed, transport-ready API call.
type Request struct {
	Scheme string
	Host   string
	Path   string
	Query  url.Values
}

// URL renders <scheme>://<host>/api/<path>?<query>.
func (r Request) URL() string {
	u := url.URL{
		Scheme:   r.Scheme,
		Host:     r.Host,
		Path:     "/api/" + r.Path,
		RawQuery: r.Query.Encode(),
	}
	return u.String()
}

// BuildRequest normalizes params, signs them and assembles the request.
// The sign and user query keys are added after signing and are not part of
// the signed values.
func BuildRequest(user, key, host string, secure bool, path string, params Params) Request {
	normalized := params.Normalize()
	sign := Sign(user, key, normalized)

	query := make(url.Values, len(normalized)+2)
	for k, v := range normalized {
		query.Set(k, v)
	}
	query.Set(paramSign, sign)
	query.Set(paramUser, user)

	scheme := "https"
	if !secure {
		scheme = "http"
	}
	if host == "" {
		host = DefaultHost
	}

	return Request{
		Scheme: scheme,
		Host:   host,
		Path:   path,
		Query:  query,
	}
}
