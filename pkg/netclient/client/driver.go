// Package client is the HTTP driver: it glues the wire codec to the
// transport and runs the redirect loop. Every outcome, success or
// failure, is reported through an Envelope; no error crosses the
// package boundary any other way.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/transport"
	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/wire"
)

// Statuses that trigger the redirect loop.
func isRedirect(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// Request is the full input to the driver: the wire-level descriptor
// plus the transmission knobs. The driver mutates only its own copy
// during the redirect loop; callers can reuse a Request across calls.
type Request struct {
	wire.Request

	Server wire.ServerAddress

	Timeout    time.Duration
	MaxRetries int

	AllowRedirects  bool
	MaxRedirects    int
	MaintainSession bool // carry Set-Cookie forward across redirect hops
}

// Envelope is the driver's uniform result: a nullable response record, a
// validity flag, and a human-readable error string. The driver returns
// one even on failure.
type Envelope struct {
	Response     *wire.Response
	Valid        bool
	ErrorMessage string
}

func invalid(format string, args ...any) *Envelope {
	return &Envelope{Valid: false, ErrorMessage: fmt.Sprintf(format, args...)}
}

// Client drives requests over a single persistent-capable transport.
// Like the transport it owns, a Client is not safe for concurrent use;
// concurrent callers create one Client each.
type Client struct {
	transport *transport.Transport
	stats     Stats
}

// Stats are the driver's plain counters. The prometheus-tagged build
// exports them; plain builds can still read them directly.
type Stats struct {
	Requests  uint64
	Redirects uint64
	Failures  uint64
}

// New creates a Client over a default TCP transport.
func New() *Client {
	return NewWithTransport(transport.New(nil))
}

// NewWithTransport creates a Client over the given transport. Tests use
// this to run the whole stack over in-memory connections.
func NewWithTransport(t *transport.Transport) *Client {
	return &Client{transport: t}
}

// Stats returns a copy of the driver counters.
func (c *Client) Stats() Stats {
	return c.stats
}

// Close drops the transport's persistent stream.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Do executes one logical request, following redirects per the
// descriptor's knobs.
//
// The loop is driven by the Location header: each hop rewrites the URL
// of a local copy of the descriptor and re-issues. With session carry
// enabled, the last non-empty Set-Cookie seen is installed as the
// outgoing Cookie on later hops and attached to the terminal response
// when that response carries none of its own, so callers always observe
// the minted session.
func (c *Client) Do(ctx context.Context, req *Request) *Envelope {
	r := *req // hops mutate the copy only

	var lastCookie string // last Set-Cookie seen on a redirect hop

	env := c.doSingle(ctx, &r)
	if !env.Valid {
		return env
	}
	if !isRedirect(env.Response.StatusCode) {
		return env
	}
	if !r.AllowRedirects {
		c.stats.Failures++
		env.Valid = false
		env.ErrorMessage = "Redirection is needed, but not allowed"
		return env
	}

	for hops := 0; hops < r.MaxRedirects; {
		if env.Response.Location == "" {
			// Valid and not redirecting further: attach the remembered
			// cookie so the caller sees the session minted mid-chain.
			if env.Response.SetCookie == "" && lastCookie != "" && r.MaintainSession {
				logrus.Debugf("client: applying last cookie: %s", lastCookie)
				env.Response.SetCookie = lastCookie
			}
			return env
		}

		logrus.Debugf("client: redirecting to: %s", env.Response.Location)
		r.URL = env.Response.Location
		if r.MaintainSession && env.Response.SetCookie != "" {
			logrus.Debugf("client: updating cookie: %s", env.Response.SetCookie)
			lastCookie = env.Response.SetCookie
			r.Cookie = lastCookie
		}

		env = c.doSingle(ctx, &r)
		if !env.Valid {
			env.ErrorMessage = "Error during redirection: " + env.ErrorMessage
			return env
		}
		hops++
		c.stats.Redirects++
	}

	c.stats.Failures++
	env.Valid = false
	env.ErrorMessage = fmt.Sprintf("Max redirect count reached: %d", r.MaxRedirects)
	return env
}

// doSingle runs the encode → transmit → decode path once, without
// redirect handling. Each stage's failure becomes a stage-tagged
// envelope.
func (c *Client) doSingle(ctx context.Context, r *Request) *Envelope {
	c.stats.Requests++

	enc := r.Request
	enc.Host = r.Server.Host

	encoded, err := wire.EncodeRequest(&enc)
	if err != nil {
		c.stats.Failures++
		return invalid("Error encoding request: %v", err)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	raw, err := c.transport.RoundTrip(ctx, &transport.Delivery{
		Payload:    encoded,
		Server:     r.Server,
		Method:     r.Method,
		Timeout:    timeout,
		MaxRetries: r.MaxRetries,
		KeepAlive:  r.KeepAlive,
	})
	if err != nil {
		c.stats.Failures++
		return invalid("Error sending request: %v", err)
	}

	resp, err := wire.DecodeResponse(raw)
	if err != nil {
		c.stats.Failures++
		return invalid("Error decoding response: %v", err)
	}

	return &Envelope{Response: resp, Valid: true}
}
