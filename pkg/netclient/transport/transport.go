// Package transport delivers encoded request buffers over TCP and reads
// back complete response buffers.
//
// A Transport owns at most one persistent connection and the server
// address it belongs to. It is not safe for concurrent use; callers that
// need concurrency create one Transport per goroutine.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/bytebufferpool"

	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/wire"
)

// DialFunc opens a stream to addr ("host:port") within timeout. The
// default dials TCP; tests substitute in-memory listeners.
type DialFunc func(addr string, timeout time.Duration) (net.Conn, error)

func defaultDial(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", addr, timeout)
}

// Config carries the transport knobs that are not per-request.
type Config struct {
	// ConnectTimeout bounds each dial attempt.
	ConnectTimeout time.Duration
	// PollInterval is the read-deadline slice used while accumulating
	// the response.
	PollInterval time.Duration
	// ReadChunkSize is the per-read buffer size.
	ReadChunkSize int
	// Dial opens connections. nil means TCP.
	Dial DialFunc
}

// DefaultConfig returns the knobs the original client shipped with.
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout: 5 * time.Second,
		PollInterval:   100 * time.Millisecond,
		ReadChunkSize:  4096,
	}
}

// Delivery is the input for one request/response exchange.
type Delivery struct {
	Payload    []byte
	Server     wire.ServerAddress
	Method     string
	Timeout    time.Duration
	MaxRetries int
	KeepAlive  bool
}

// Transport sends encoded requests and receives framed responses.
type Transport struct {
	config *Config

	// persistent stream state; valid only as a pair
	conn    net.Conn
	current wire.ServerAddress
}

// New creates a Transport. A nil config gets defaults.
func New(config *Config) *Transport {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Dial == nil {
		config.Dial = defaultDial
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	if config.ReadChunkSize <= 0 {
		config.ReadChunkSize = 4096
	}
	return &Transport{config: config}
}

// RoundTrip writes the delivery's payload and reads one complete
// response buffer, retrying the send per the delivery's retry budget.
func (t *Transport) RoundTrip(ctx context.Context, d *Delivery) ([]byte, error) {
	conn, err := t.send(ctx, d)
	if err != nil {
		return nil, err
	}

	data, err := t.receive(ctx, conn, d)
	if err != nil {
		// Any receive failure poisons the stream.
		t.dropConn(conn, d.KeepAlive)
		return nil, err
	}

	if !d.KeepAlive {
		conn.Close()
	}
	return data, nil
}

// Close drops the persistent stream, if any.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.current = wire.ServerAddress{}
	return err
}

// send writes the full payload, opening (or reusing) a stream. Up to
// MaxRetries attempts; every failure closes and clears the stream before
// the next one. Exhaustion surfaces the last error.
func (t *Transport) send(ctx context.Context, d *Delivery) (net.Conn, error) {
	retries := d.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := t.acquireConn(d)
		if err == nil {
			if _, err = conn.Write(d.Payload); err == nil {
				return conn, nil
			}
			t.dropConn(conn, d.KeepAlive)
		}
		lastErr = err
		logrus.Debugf("transport: send attempt %d to %s failed: %v", attempt+1, d.Server, err)
	}
	return nil, fmt.Errorf("%w: failed to send after %d retries, last error: %v",
		ErrSendRetriesExhausted, retries, lastErr)
}

// acquireConn returns the stream to write to: the persistent one when
// keep-alive is requested and it is still bound to the same server and
// alive, otherwise a fresh dial. A persistent dial replaces whatever was
// stored; a non-keep-alive dial leaves the persistent state alone.
func (t *Transport) acquireConn(d *Delivery) (net.Conn, error) {
	addr := d.Server.String()

	if !d.KeepAlive {
		return t.config.Dial(addr, t.config.ConnectTimeout)
	}

	if t.conn != nil && t.current == d.Server && connAlive(t.conn) {
		logrus.Debugf("transport: reusing persistent connection to %s", addr)
		return t.conn, nil
	}

	// Changing servers (or a dead stream) closes and replaces the
	// persistent connection.
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}

	conn, err := t.config.Dial(addr, t.config.ConnectTimeout)
	if err != nil {
		t.current = wire.ServerAddress{}
		return nil, err
	}
	t.conn = conn
	t.current = d.Server
	return conn, nil
}

// dropConn closes conn and, when it is the persistent stream, clears the
// stored state.
func (t *Transport) dropConn(conn net.Conn, keepAlive bool) {
	conn.Close()
	if keepAlive && t.conn == conn {
		t.conn = nil
		t.current = wire.ServerAddress{}
	}
}

// connAlive probes a stored stream without consuming response bytes. A
// zero-length read or any non-timeout error means the peer is gone;
// buffered stray bytes also disqualify the stream for reuse.
func connAlive(conn net.Conn) bool {
	if err := conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return false
	}
	defer conn.SetReadDeadline(time.Time{})

	var probe [1]byte
	n, err := conn.Read(probe[:])
	if n > 0 {
		return false
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	return false
}

// receive accumulates the response until it is complete per its framing.
//
// Completion, evaluated once the CRLFCRLF header terminator has been
// seen: chunked responses complete at the terminator chunk;
// Content-Length responses complete when the body reaches the declared
// length; a GET response with no declared length completes with its
// headers. Peer close after complete headers ends the exchange for any
// method once a declared Content-Length has been reached (a chunked body
// is not checked for its terminator here); a close before that is an
// incomplete response. The caller's timeout bounds the whole loop.
func (t *Transport) receive(ctx context.Context, conn net.Conn, d *Delivery) ([]byte, error) {
	deadline := time.Now().Add(d.Timeout)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	chunk := make([]byte, t.config.ReadChunkSize)

	var (
		headerComplete bool
		contentLength  int
		hasLength      bool
		chunked        bool
		bodyStart      int
	)

	complete := func() bool {
		if !headerComplete {
			return false
		}
		body := buf.B[bodyStart:]
		switch {
		case chunked:
			return bytes.HasSuffix(body, []byte("0\r\n\r\n"))
		case hasLength:
			return len(body) >= contentLength
		default:
			// no declared framing: a GET response ends with its headers
			return d.Method == wire.MethodGET
		}
	}

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		poll := t.config.PollInterval
		if remaining := time.Until(deadline); remaining < poll {
			poll = remaining
		}
		if err := conn.SetReadDeadline(time.Now().Add(poll)); err != nil {
			return nil, err
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			buf.B = append(buf.B, chunk[:n]...)

			if !headerComplete {
				if idx := bytes.Index(buf.B, []byte("\r\n\r\n")); idx != -1 {
					headerComplete = true
					bodyStart = idx + 4
					contentLength, hasLength, chunked = scanFraming(buf.B[:bodyStart])
				}
			}
			if complete() {
				return copyOut(buf), nil
			}
		}

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if err == io.EOF {
				// peer close after complete headers and any declared
				// length ends the exchange; anything earlier is a
				// truncated response
				if headerComplete && len(buf.B)-bodyStart >= contentLength {
					return copyOut(buf), nil
				}
				return nil, ErrIncompleteResponse
			}
			return nil, err
		}
	}

	return nil, ErrReceiveTimeout
}

// scanFraming pulls Content-Length and a chunked flag out of the raw
// header block. Unlike the decoder, this match is case-insensitive: it
// only steers framing, not the parsed response.
func scanFraming(header []byte) (contentLength int, hasLength, chunked bool) {
	for _, line := range bytes.Split(header, []byte("\r\n")) {
		lower := strings.ToLower(string(line))
		switch {
		case strings.HasPrefix(lower, "content-length:"):
			if n, err := strconv.Atoi(strings.TrimSpace(lower[len("content-length:"):])); err == nil {
				contentLength = n
				hasLength = true
			}
		case strings.HasPrefix(lower, "transfer-encoding:"):
			chunked = strings.Contains(lower, "chunked")
		}
	}
	return contentLength, hasLength, chunked
}

func copyOut(buf *bytebufferpool.ByteBuffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out
}
