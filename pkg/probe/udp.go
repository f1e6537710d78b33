package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// UDPProbe sends a zero-payload datagram and waits for either a reply or an
// ICMP port-unreachable. Grounded on the teacher's UDPTracer raw-socket
// listen pattern, trimmed to a single TTL-less send per spec.md §4.2.
type UDPProbe struct{}

// NewUDPProbe builds a stateless UDP probe.
func NewUDPProbe() *UDPProbe {
	return &UDPProbe{}
}

// Probe sends a zero-payload datagram to host:port. Because UDP has no
// handshake, Ok with Unverified=true means "no rejection observed within
// deadline" (spec.md §4.2/§9's "unverified Ok"); a genuine reply or an ICMP
// unreachable message yields a normally-verified result.
func (p *UDPProbe) Probe(ctx context.Context, host string, port int, deadline time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = InternalError(endpoint.CheckUdp)
		}
	}()

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return Result{CheckKind: endpoint.CheckUdp, Status: StatusUnreachable, Detail: err.Error()}
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return Result{CheckKind: endpoint.CheckUdp, Status: StatusUnreachable, Detail: err.Error()}
	}
	defer conn.Close()

	icmpConn, icmpErr := listenICMPFor(addr.IP)
	if icmpErr == nil {
		defer icmpConn.Close()
		_ = icmpConn.SetDeadline(deadline)
	}

	start := time.Now()
	if _, err := conn.Write(nil); err != nil {
		return Result{CheckKind: endpoint.CheckUdp, Status: StatusUnreachable, Detail: err.Error()}
	}

	_ = conn.SetReadDeadline(deadline)
	replyBuf := make([]byte, 1)
	done := make(chan Result, 2)

	go func() {
		n, _, err := conn.ReadFromUDP(replyBuf)
		if err == nil && n >= 0 {
			done <- Result{CheckKind: endpoint.CheckUdp, Status: StatusOk}.WithLatency(time.Since(start))
		}
	}()

	if icmpErr == nil {
		go func() {
			buf := make([]byte, 1500)
			n, _, err := icmpConn.ReadFrom(buf)
			if err != nil {
				return
			}
			rm, err := icmp.ParseMessage(protocolFor(addr.IP), buf[:n])
			if err != nil {
				return
			}
			if rm.Type == ipv4.ICMPTypeDestinationUnreachable || rm.Type == ipv6.ICMPTypeDestinationUnreachable {
				done <- Result{CheckKind: endpoint.CheckUdp, Status: StatusUnreachable, Detail: "port unreachable"}
			}
		}()
	}

	select {
	case <-ctx.Done():
		return Canceled(endpoint.CheckUdp)
	case r := <-done:
		return r
	case <-time.After(time.Until(deadline)):
		// No reply and no rejection within the deadline: per spec.md §4.2
		// this is an "unverified Ok", not a failure.
		// latency_ms = 0 is a sentinel here, not a measurement — the
		// dashboard renders Unverified results with a distinct
		// low-information bin regardless of the numeric value.
		return Result{CheckKind: endpoint.CheckUdp, Status: StatusOk, Unverified: true,
			Detail: "unverified", LatencyMs: 0, LatencyValid: true}
	}
}

func listenICMPFor(target net.IP) (*icmp.PacketConn, error) {
	if target.To4() != nil {
		return icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	}
	return icmp.ListenPacket("ip6:ipv6-icmp", "::")
}

func protocolFor(target net.IP) int {
	if target.To4() != nil {
		return 1
	}
	return 58
}
