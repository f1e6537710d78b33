package probe

import (
	"context"
	"net"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// DNSProbe resolves a hostname via github.com/miekg/dns, querying every
// configured server concurrently and keeping the earliest successful
// response — spec.md §4.2's "earliest response wins" rule. When no custom
// servers are configured it falls back to the host's resolv.conf servers.
type DNSProbe struct {
	servers []string // host:port; empty means "use system resolver config"
}

// NewDNSProbe builds a probe against the given custom servers (IP literals,
// port 53 assumed unless already present). An empty slice means "ask the
// servers found in /etc/resolv.conf", mirroring how most of the corpus's
// miekg/dns callers build a *dns.Client against a discovered server list.
func NewDNSProbe(servers []string) *DNSProbe {
	resolved := make([]string, 0, len(servers))
	for _, s := range servers {
		resolved = append(resolved, withDefaultPort(s, "53"))
	}
	if len(resolved) == 0 {
		if cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil {
			for _, s := range cfg.Servers {
				resolved = append(resolved, net.JoinHostPort(s, cfg.Port))
			}
		}
	}
	return &DNSProbe{servers: resolved}
}

// Probe resolves host with an AAAA query when famPref is V6 and an A query
// otherwise, keeping only addresses of the family famPref allows (spec.md
// §3: "ip_version ... restricts Dns result filtering").
func (p *DNSProbe) Probe(ctx context.Context, host string, famPref endpoint.IPVersion, deadline time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = InternalError(endpoint.CheckDns)
		}
	}()

	if len(p.servers) == 0 {
		return Result{CheckKind: endpoint.CheckDns, Status: StatusProtocolError, Detail: "no resolvers configured"}
	}

	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	type race struct {
		addrs []net.IP
		rtt   time.Duration
		err   error
	}
	results := make(chan race, len(p.servers))

	g, gctx := errgroup.WithContext(ctx)
	client := &dns.Client{Timeout: time.Until(deadline)}
	qtype := dns.TypeA
	if famPref == endpoint.IPVersionV6 {
		qtype = dns.TypeAAAA
	}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	for _, server := range p.servers {
		server := server
		g.Go(func() error {
			in, rtt, err := client.ExchangeContext(gctx, msg, server)
			if err != nil {
				results <- race{err: err}
				return nil
			}
			addrs, nameErr := extractAddrs(in, famPref)
			if nameErr {
				results <- race{err: errNXDOMAIN}
				return nil
			}
			results <- race{addrs: addrs, rtt: rtt}
			return nil
		})
	}

	go func() { _ = g.Wait(); close(results) }()

	var sawNameError bool
	for r := range results {
		select {
		case <-ctx.Done():
			return Timeout(endpoint.CheckDns)
		default:
		}
		if r.err != nil {
			if r.err == errNXDOMAIN {
				sawNameError = true
			}
			continue
		}
		if len(r.addrs) > 0 {
			return Result{CheckKind: endpoint.CheckDns, Status: StatusOk, ResolvedAddresses: r.addrs}.WithLatency(r.rtt)
		}
	}

	if ctx.Err() != nil {
		return Timeout(endpoint.CheckDns)
	}
	if sawNameError {
		return Result{CheckKind: endpoint.CheckDns, Status: StatusNameError, Detail: "NXDOMAIN"}
	}
	return Result{CheckKind: endpoint.CheckDns, Status: StatusNameError, Detail: "no data"}
}

var errNXDOMAIN = &nxdomainError{}

type nxdomainError struct{}

func (*nxdomainError) Error() string { return "NXDOMAIN" }

// extractAddrs pulls A/AAAA records from in, filtered by famPref. The bool
// return reports NXDOMAIN/NODATA so the caller can distinguish "responded,
// nothing useful" from a genuine transport error.
func extractAddrs(in *dns.Msg, famPref endpoint.IPVersion) ([]net.IP, bool) {
	if in.Rcode == dns.RcodeNameError {
		return nil, true
	}
	var addrs []net.IP
	for _, rr := range in.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			if famPref != endpoint.IPVersionV6 {
				addrs = append(addrs, rec.A)
			}
		case *dns.AAAA:
			if famPref != endpoint.IPVersionV4 {
				addrs = append(addrs, rec.AAAA)
			}
		}
	}
	if len(addrs) == 0 {
		return nil, true
	}
	return addrs, false
}

func withDefaultPort(s, port string) string {
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s
	}
	return net.JoinHostPort(s, port)
}
