// Package endpoint defines the HydraPing target model: the endpoint
// variants a user can configure and the probe layers each variant implies.
package endpoint

import "fmt"

// Kind is the endpoint variant, derived once at parse time from the raw
// target string or record.
type Kind int

const (
	KindIp Kind = iota
	KindIpPort
	KindDomain
	KindHttp
)

func (k Kind) String() string {
	switch k {
	case KindIp:
		return "ip"
	case KindIpPort:
		return "ip_port"
	case KindDomain:
		return "domain"
	case KindHttp:
		return "http"
	default:
		return "unknown"
	}
}

// IPVersion restricts DNS result filtering and ICMP address-family choice.
type IPVersion int

const (
	IPVersionAny IPVersion = iota
	IPVersionV4
	IPVersionV6
)

// PortProtocol is the transport used for an explicit IpPort endpoint.
type PortProtocol int

const (
	PortProtocolTcp PortProtocol = iota
	PortProtocolUdp
)

func (p PortProtocol) String() string {
	if p == PortProtocolUdp {
		return "udp"
	}
	return "tcp"
}

// CheckKind is one probe layer. Priority order for primary-pick and
// suppression purposes is declared by Priority(), not by iota order.
type CheckKind int

const (
	CheckDns CheckKind = iota
	CheckIcmp
	CheckTcp
	CheckUdp
	CheckHttp
)

func (c CheckKind) String() string {
	switch c {
	case CheckDns:
		return "dns"
	case CheckIcmp:
		return "icmp"
	case CheckTcp:
		return "tcp"
	case CheckUdp:
		return "udp"
	case CheckHttp:
		return "http"
	default:
		return "unknown"
	}
}

// ShortName is the upper-case label the dashboard's latency column renders,
// e.g. "HTTP", "TCP".
func (c CheckKind) ShortName() string {
	switch c {
	case CheckDns:
		return "DNS"
	case CheckIcmp:
		return "ICMP"
	case CheckTcp:
		return "TCP"
	case CheckUdp:
		return "UDP"
	case CheckHttp:
		return "HTTP"
	default:
		return "?"
	}
}

// Priority returns the layer's rank for primary-pick and suppression:
// higher number wins. Http > Tcp ≈ Udp > Dns > Icmp, per spec §3/§4.4.
func (c CheckKind) Priority() int {
	switch c {
	case CheckHttp:
		return 4
	case CheckTcp, CheckUdp:
		return 3
	case CheckDns:
		return 2
	case CheckIcmp:
		return 1
	default:
		return 0
	}
}

// Endpoint is an immutable, fully-derived target record. Construct one only
// through ParseEntries; the zero value is not meaningful.
type Endpoint struct {
	ID                   string
	Label                string
	Kind                 Kind
	IPVersionPref        IPVersion
	PortProtocol         PortProtocol // meaningful only for KindIpPort
	Host                 string
	Port                 int    // 0 when not applicable
	Path                 string // HTTP path, may be empty
	Scheme               string // "http" or "https", KindHttp only
	ApplicableChecks     []CheckKind
	PrimaryCheckOverride *CheckKind
}

// HasCheck reports whether kind is in ApplicableChecks.
func (e Endpoint) HasCheck(kind CheckKind) bool {
	for _, k := range e.ApplicableChecks {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate checks the invariants spec.md §3 requires of a fully-built
// Endpoint. ParseEntries always returns validated Endpoints; this is exported so
// tests and config round-trips can re-check a hand-built value.
func (e Endpoint) Validate() error {
	if len(e.ApplicableChecks) == 0 {
		return fmt.Errorf("endpoint %q: applicable_checks must be non-empty", e.Label)
	}
	if e.PrimaryCheckOverride != nil && !e.HasCheck(*e.PrimaryCheckOverride) {
		return fmt.Errorf("endpoint %q: primary_check_type %q is not one of its applicable checks",
			e.Label, e.PrimaryCheckOverride.String())
	}
	return nil
}

// applicableChecks implements the exhaustive derivation table in spec.md §3.
func applicableChecks(k Kind, portProto PortProtocol, scheme string) []CheckKind {
	switch k {
	case KindIp:
		return []CheckKind{CheckIcmp}
	case KindIpPort:
		if portProto == PortProtocolUdp {
			return []CheckKind{CheckIcmp, CheckUdp}
		}
		return []CheckKind{CheckIcmp, CheckTcp}
	case KindDomain:
		return []CheckKind{CheckDns, CheckIcmp, CheckTcp}
	case KindHttp:
		return []CheckKind{CheckDns, CheckIcmp, CheckTcp, CheckHttp}
	default:
		return nil
	}
}

// DefaultPort returns the TCP port a Domain/Http endpoint's Tcp check(s)
// should target. Domain endpoints probe both 80 and 443 (see the
// scheduler's runDomainTcp/mergeTcpTieBreak); Http endpoints derive a single
// port from scheme.
func DefaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// URL reconstructs the request target for an Http endpoint's HttpProbe,
// omitting the port when it's the scheme's default so the probe hits the
// URL a user would actually type.
func (e Endpoint) URL() string {
	host := e.Host
	if e.Port != 0 && e.Port != DefaultPort(e.Scheme) {
		host = fmt.Sprintf("%s:%d", e.Host, e.Port)
	}
	return fmt.Sprintf("%s://%s%s", e.Scheme, host, e.Path)
}
