// Package probe implements one adapter per check kind (DNS, ICMP, TCP, UDP,
// HTTP). Each adapter maps a single probe attempt against a single target to
// a typed CheckResult; none of them retain state across calls beyond shared,
// process-scoped transport resources (resolver, HTTP client).
package probe

import (
	"net"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
)

// Status is the outcome of one probe attempt, per spec.md §3.
type Status int

const (
	StatusOk Status = iota
	StatusTimeout
	StatusRefused
	StatusUnreachable
	StatusNameError
	StatusProtocolError
	StatusCapabilityDenied
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusRefused:
		return "refused"
	case StatusUnreachable:
		return "unreachable"
	case StatusNameError:
		return "name_error"
	case StatusProtocolError:
		return "protocol_error"
	case StatusCapabilityDenied:
		return "capability_denied"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Ok reports whether the probe succeeded.
func (s Status) Ok() bool {
	return s == StatusOk
}

// Failed reports whether the probe ran and did not succeed — the
// complement of Ok, excluding Canceled (which spec.md §4.4/§8 treats as
// "no sample" rather than a failure for latency/suppression purposes).
func (s Status) Failed() bool {
	return s != StatusOk && s != StatusCanceled
}

// Result is one probe outcome. ProtocolCode is populated only for
// StatusProtocolError (e.g. an HTTP status code); LatencyMs is meaningful
// only when LatencyValid is set, and is left at 0 otherwise.
type Result struct {
	CheckKind          endpoint.CheckKind
	StartedAt          time.Time // monotonic-safe: always time.Now() from a single clock source
	LatencyMs          float64
	LatencyValid       bool
	Status             Status
	ProtocolCode       int
	Detail             string
	ResolvedAddresses  []net.IP // populated only for CheckDns + StatusOk
	Unverified         bool     // UDP "Ok but no confirmation seen" — spec.md §4.2/§8
}

// NoLatency returns a copy of r with LatencyValid cleared and LatencyMs
// zeroed. The adapters do not call it: their non-Ok results are built
// without latency, except HTTP ProtocolError, which keeps its measured
// latency.
func (r Result) NoLatency() Result {
	r.LatencyValid = false
	r.LatencyMs = 0
	return r
}

// WithLatency returns a copy of r carrying latency d as milliseconds.
func (r Result) WithLatency(d time.Duration) Result {
	r.LatencyMs = float64(d) / float64(time.Millisecond)
	r.LatencyValid = true
	return r
}

// Timeout builds a canonical Timeout result for kind.
func Timeout(kind endpoint.CheckKind) Result {
	return Result{CheckKind: kind, Status: StatusTimeout, Detail: kind.ShortName() + " timeout"}
}

// Canceled builds a canonical Canceled result for kind.
func Canceled(kind endpoint.CheckKind) Result {
	return Result{CheckKind: kind, Status: StatusCanceled, Detail: kind.ShortName() + " canceled"}
}

// InternalError converts a recovered panic/unexpected error into the
// ProtocolError("internal") result spec.md §4.3/§7 mandates — adapters
// never propagate a panic to the scheduler.
func InternalError(kind endpoint.CheckKind) Result {
	return Result{CheckKind: kind, Status: StatusProtocolError, Detail: "internal error"}
}

// DNSCascadeUnreachable synthesizes the Unreachable("dns failed") result
// spec.md §4.3/§7 requires for dependent layers (Icmp/Tcp/Http) on a tick
// where this endpoint's Dns probe failed.
func DNSCascadeUnreachable(kind endpoint.CheckKind) Result {
	return Result{CheckKind: kind, Status: StatusUnreachable, Detail: "dns failed"}
}
