package client

import (
	"time"

	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/wire"
)

// DefaultUserAgent identifies this client on the wire.
const DefaultUserAgent = "netclient/1.0"

// DefaultRequestTemplate returns the canonical default request
// descriptor. Callers clone it (value copy) and override per call; the
// settings layer attaches one of these in its second initialization
// phase.
func DefaultRequestTemplate() *Request {
	return &Request{
		Request: wire.Request{
			Method:    wire.MethodGET,
			Version:   wire.HTTP11,
			KeepAlive: true,
			UserAgent: DefaultUserAgent,
			ChunkSize: wire.DefaultChunkSize,
		},
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		AllowRedirects:  true,
		MaxRedirects:    5,
		MaintainSession: true,
	}
}
