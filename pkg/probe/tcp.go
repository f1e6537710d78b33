package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
)

// TCPProbe opens a connection and closes it immediately once the handshake
// completes — grounded on the teacher's TCPTracer connect/classify shape,
// trimmed from a TTL-walking hop tracer down to a single fixed-target dial.
type TCPProbe struct {
	dialer *net.Dialer
}

// NewTCPProbe builds a probe with a fresh net.Dialer per call's deadline;
// the dialer itself holds no state between calls.
func NewTCPProbe() *TCPProbe {
	return &TCPProbe{dialer: &net.Dialer{}}
}

// Probe dials host:port and reports Ok on handshake completion, Refused on
// RST, Timeout on deadline, Unreachable on any other network error.
func (p *TCPProbe) Probe(ctx context.Context, host string, port int, deadline time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = InternalError(endpoint.CheckTcp)
		}
	}()

	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	start := time.Now()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		if ctx.Err() != nil && !errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			return Canceled(endpoint.CheckTcp)
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			return Result{CheckKind: endpoint.CheckTcp, Status: StatusRefused, Detail: "connection refused"}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Timeout(endpoint.CheckTcp)
		}
		return Result{CheckKind: endpoint.CheckTcp, Status: StatusUnreachable, Detail: err.Error()}
	}
	rtt := time.Since(start)
	_ = conn.Close()
	return Result{CheckKind: endpoint.CheckTcp, Status: StatusOk}.WithLatency(rtt)
}
