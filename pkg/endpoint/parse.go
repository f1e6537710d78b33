package endpoint

import (
	"fmt"
	"hash/fnv"
	"net"
	"strconv"
	"strings"
)

// ConfigError reports a malformed entry in the user's target list, carrying
// the offending entry's index so the CLI can print a precise location (see
// spec.md §4.1/§7 — this kind is always fatal, exit code 2).
type ConfigError struct {
	Index   int
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("endpoint[%d]: %s", e.Index, e.Message)
}

// RawEntry is the decoded shape of one `[endpoints] targets` list element
// — either a bare string or the structured object form spec.md §6 defines.
// Config decoding (internal/config) produces these; ParseEntries never
// touch TOML directly, keeping the parser testable without a config file.
type RawEntry struct {
	URL              string
	Name             string
	Protocol         string // "tcp" | "udp" | ""
	IPVersion        int    // 0 (unset), 4, or 6
	PrimaryCheckType string // "dns" | "icmp" | "tcp" | "udp" | "http" | ""
}

// ParseEntries parses every raw entry into an Endpoint, preserving order.
// An empty list or any malformed entry returns a *ConfigError naming the
// offending index; no partial endpoint list is ever returned on error.
func ParseEntries(entries []RawEntry) ([]Endpoint, error) {
	if len(entries) == 0 {
		return nil, &ConfigError{Index: -1, Message: "target list must not be empty"}
	}

	out := make([]Endpoint, 0, len(entries))
	for i, raw := range entries {
		ep, err := parseOne(i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, nil
}

func parseOne(index int, raw RawEntry) (Endpoint, error) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return Endpoint{}, &ConfigError{Index: index, Message: "url must not be empty"}
	}

	ipVersion, err := parseIPVersion(raw.IPVersion)
	if err != nil {
		return Endpoint{}, &ConfigError{Index: index, Message: err.Error()}
	}

	portProto := PortProtocolTcp
	if raw.Protocol != "" {
		switch strings.ToLower(raw.Protocol) {
		case "tcp":
			portProto = PortProtocolTcp
		case "udp":
			portProto = PortProtocolUdp
		default:
			return Endpoint{}, &ConfigError{Index: index, Message: fmt.Sprintf("unknown protocol %q: must be tcp or udp", raw.Protocol)}
		}
	}

	ep, err := classify(url, portProto, ipVersion)
	if err != nil {
		return Endpoint{}, &ConfigError{Index: index, Message: err.Error()}
	}

	ep.ID = stableID(url)
	if raw.Name != "" {
		ep.Label = raw.Name
	} else {
		ep.Label = url
	}

	if raw.PrimaryCheckType != "" {
		ck, ok := parseCheckKind(raw.PrimaryCheckType)
		if !ok {
			return Endpoint{}, &ConfigError{Index: index, Message: fmt.Sprintf("unknown primary_check_type %q", raw.PrimaryCheckType)}
		}
		if !ep.HasCheck(ck) {
			return Endpoint{}, &ConfigError{Index: index, Message: fmt.Sprintf(
				"primary_check_type %q is not applicable to %q (%s)", raw.PrimaryCheckType, url, ep.Kind)}
		}
		ep.PrimaryCheckOverride = &ck
	}

	if err := ep.Validate(); err != nil {
		return Endpoint{}, &ConfigError{Index: index, Message: err.Error()}
	}
	return ep, nil
}

// classify implements the parsing rules of spec.md §4.1, in order:
// http(s):// scheme, bracketed/plain ip:port, bare IP literal, else hostname.
func classify(url string, portProto PortProtocol, ipVersion IPVersion) (Endpoint, error) {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return classifyHTTP(url, ipVersion)
	}

	if host, port, ok := splitHostPort(url); ok {
		return Endpoint{
			Kind:             KindIpPort,
			IPVersionPref:    ipVersion,
			PortProtocol:     portProto,
			Host:             host,
			Port:             port,
			ApplicableChecks: applicableChecks(KindIpPort, portProto, ""),
		}, nil
	}

	if ip := net.ParseIP(url); ip != nil {
		return Endpoint{
			Kind:             KindIp,
			IPVersionPref:    ipVersion,
			Host:             url,
			ApplicableChecks: applicableChecks(KindIp, portProto, ""),
		}, nil
	}

	if !isValidHostname(url) {
		return Endpoint{}, fmt.Errorf("malformed target %q", url)
	}

	return Endpoint{
		Kind:             KindDomain,
		IPVersionPref:    ipVersion,
		Host:             url,
		ApplicableChecks: applicableChecks(KindDomain, portProto, ""),
	}, nil
}

func classifyHTTP(raw string, ipVersion IPVersion) (Endpoint, error) {
	scheme := "http"
	rest := raw
	switch {
	case strings.HasPrefix(strings.ToLower(raw), "https://"):
		scheme = "https"
		rest = raw[len("https://"):]
	case strings.HasPrefix(strings.ToLower(raw), "http://"):
		scheme = "http"
		rest = raw[len("http://"):]
	}

	path := ""
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		path = rest[idx:]
		rest = rest[:idx]
	}

	host := rest
	port := DefaultPort(scheme)
	if h, p, ok := splitHostPort(rest); ok {
		host = h
		port = p
	}

	if host == "" {
		return Endpoint{}, fmt.Errorf("malformed target %q: missing host", raw)
	}

	return Endpoint{
		Kind:             KindHttp,
		IPVersionPref:    ipVersion,
		Host:             host,
		Port:             port,
		Path:             path,
		Scheme:           scheme,
		ApplicableChecks: applicableChecks(KindHttp, PortProtocolTcp, scheme),
	}, nil
}

// splitHostPort recognizes "[ipv6]:port" and "ipv4-or-host:port" forms. It
// deliberately does not accept a bare "host:port" where host is a DNS name
// without a dot-or-colon-free ambiguity concern — spec.md reserves the
// Domain variant for hostnames with no explicit port.
func splitHostPort(s string) (host string, port int, ok bool) {
	if strings.HasPrefix(s, "[") {
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			return "", 0, false
		}
		if net.ParseIP(h) == nil {
			return "", 0, false
		}
		portNum, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, false
		}
		return h, portNum, true
	}

	// A bare IPv6 literal (e.g. "::1") has more than one colon and no
	// port; only a single-colon "ipv4:port" form is handled unbracketed.
	if strings.Count(s, ":") != 1 {
		return "", 0, false
	}
	idx := strings.LastIndexByte(s, ':')
	h, p := s[:idx], s[idx+1:]
	if net.ParseIP(h) == nil {
		return "", 0, false
	}
	portNum, err := strconv.Atoi(p)
	if err != nil || portNum <= 0 || portNum > 65535 {
		return "", 0, false
	}
	return h, portNum, true
}

func isValidHostname(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n/\\") {
		return false
	}
	labels := strings.Split(s, ".")
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	return true
}

func parseIPVersion(v int) (IPVersion, error) {
	switch v {
	case 0:
		return IPVersionAny, nil
	case 4:
		return IPVersionV4, nil
	case 6:
		return IPVersionV6, nil
	default:
		return IPVersionAny, fmt.Errorf("invalid ip_version %d: must be 4 or 6", v)
	}
}

func parseCheckKind(s string) (CheckKind, bool) {
	switch strings.ToLower(s) {
	case "dns":
		return CheckDns, true
	case "icmp":
		return CheckIcmp, true
	case "tcp":
		return CheckTcp, true
	case "udp":
		return CheckUdp, true
	case "http":
		return CheckHttp, true
	default:
		return 0, false
	}
}

// stableID derives a short, stable identifier from the normalized url, per
// spec.md §3 ("id (stable, derived from normalized url)"). FNV-1a is used
// rather than a cryptographic hash since collision-resistance against an
// adversary is not a requirement here, only stability across runs.
func stableID(url string) string {
	normalized := strings.ToLower(strings.TrimSpace(url))
	h := fnv.New64a()
	_, _ = h.Write([]byte(normalized))
	return strconv.FormatUint(h.Sum64(), 36)
}
