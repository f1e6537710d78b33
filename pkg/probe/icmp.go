package probe

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// ICMPProbe sends a single echo request/reply per call. Unlike the
// hop-walking teacher tracer (which opens one raw socket per trace and
// increments TTL), HydraPing needs one shot at a fixed address — TTL is
// always left at its path-default value.
type ICMPProbe struct {
	id         int
	capability *ICMPCapability
}

// NewICMPProbe builds a probe that consults cap before every attempt; when
// cap reports denied, Probe returns CapabilityDenied without touching the
// network (see spec.md §4.2: "Capability is probed once at startup").
func NewICMPProbe(cap *ICMPCapability) *ICMPProbe {
	return &ICMPProbe{id: os.Getpid() & 0xffff, capability: cap}
}

// Probe sends one ICMP echo to address and waits up to deadline.
func (p *ICMPProbe) Probe(ctx context.Context, address net.IP, deadline time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = InternalError(endpoint.CheckIcmp)
		}
	}()

	if p.capability != nil && !p.capability.Allowed() {
		return Result{CheckKind: endpoint.CheckIcmp, Status: StatusCapabilityDenied, Detail: "ICMP unavailable"}
	}

	network, listenAddr, proto := icmpNetworkFor(address)
	conn, err := icmp.ListenPacket(network, listenAddr)
	if err != nil {
		return Result{CheckKind: endpoint.CheckIcmp, Status: StatusCapabilityDenied, Detail: "ICMP unavailable"}
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return Result{CheckKind: endpoint.CheckIcmp, Status: StatusProtocolError, Detail: err.Error()}
	}

	seq := int(time.Now().UnixNano() & 0xffff)
	msg := &icmp.Message{
		Type: echoType(address),
		Code: 0,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: []byte("hydraping")},
	}
	payload, err := msg.Marshal(nil)
	if err != nil {
		return Result{CheckKind: endpoint.CheckIcmp, Status: StatusProtocolError, Detail: err.Error()}
	}

	start := time.Now()
	if _, err := conn.WriteTo(payload, &net.IPAddr{IP: address}); err != nil {
		return Result{CheckKind: endpoint.CheckIcmp, Status: StatusUnreachable, Detail: err.Error()}
	}

	reply := make([]byte, 1500)
	for {
		select {
		case <-ctx.Done():
			return Result{CheckKind: endpoint.CheckIcmp, Status: StatusCanceled, Detail: "canceled"}
		default:
		}

		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return Timeout(endpoint.CheckIcmp)
			}
			return Result{CheckKind: endpoint.CheckIcmp, Status: StatusUnreachable, Detail: err.Error()}
		}
		rtt := time.Since(start)

		rm, err := icmp.ParseMessage(proto, reply[:n])
		if err != nil {
			continue
		}

		peerIP := peer.(*net.IPAddr).IP
		if !peerIP.Equal(address) {
			continue
		}

		switch body := rm.Body.(type) {
		case *icmp.Echo:
			if body.ID == p.id && body.Seq == seq {
				return Result{CheckKind: endpoint.CheckIcmp, Status: StatusOk}.WithLatency(rtt)
			}
		default:
			if rm.Type == ipv4.ICMPTypeDestinationUnreachable || rm.Type == ipv6.ICMPTypeDestinationUnreachable {
				return Result{CheckKind: endpoint.CheckIcmp, Status: StatusUnreachable, Detail: "destination unreachable"}
			}
		}
	}
}

func echoType(address net.IP) icmp.Type {
	if address.To4() != nil {
		return ipv4.ICMPTypeEcho
	}
	return ipv6.ICMPTypeEchoRequest
}

func icmpNetworkFor(address net.IP) (network, listenAddr string, proto int) {
	if address.To4() != nil {
		return "ip4:icmp", "0.0.0.0", 1
	}
	return "ip6:ipv6-icmp", "::", 58
}

// ICMPCapability is the process-wide, scheduler-owned flag spec.md §9
// describes ("model it as scheduler-owned configuration, not as mutable
// globals"). It is probed once at startup by DetectICMPCapability and read
// (never mutated) by every ICMPProbe thereafter.
type ICMPCapability struct {
	allowed bool
}

// Allowed reports whether raw-socket ICMP is usable on this process.
func (c *ICMPCapability) Allowed() bool {
	if c == nil {
		return true
	}
	return c.allowed
}

// DetectICMPCapability probes raw-socket availability once by trying to open
// an IPv4 ICMP listen socket (rather than inspecting euid or CAP_NET_RAW the
// way the teacher's trace.CheckPrivileges does), and returns a capability
// value instead of a fatal error — spec.md §4.2/§4.3 requires graceful
// degradation, never aborting the run.
func DetectICMPCapability() *ICMPCapability {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return &ICMPCapability{allowed: false}
	}
	conn.Close()
	return &ICMPCapability{allowed: true}
}
