package scheduler

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/fprochazka/hydraping/internal/timeline"
	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
	"go.uber.org/zap"
)

// runEndpointTick runs every applicable, non-disabled check for ep and
// returns the completed SampleBucket, per spec.md §4.3. DNS is resolved
// first when ep needs it (Domain/Http); a DNS failure synthesizes
// Unreachable("dns failed") for the dependent layers instead of running
// them, per §7's cascade rule.
func (s *Scheduler) runEndpointTick(ctx context.Context, ep endpoint.Endpoint, tick int64, tickTime, nextTickTime time.Time) timeline.Bucket {
	bucket := timeline.NewBucket(tick, tickTime)
	deadline := minTime(tickTime.Add(s.cfg.Timeout), nextTickTime)

	address, dnsFailed := s.resolveAddress(ctx, ep, tick, deadline, &bucket)

	var wg sync.WaitGroup
	var mu sync.Mutex
	set := func(kind endpoint.CheckKind, r probe.Result) {
		mu.Lock()
		bucket.Results[kind] = r
		mu.Unlock()
	}

	if ep.HasCheck(endpoint.CheckIcmp) && !s.cfg.DisableICMP && s.capability.Allowed() {
		if dnsFailed {
			set(endpoint.CheckIcmp, probe.DNSCascadeUnreachable(endpoint.CheckIcmp))
		} else if address != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r := s.runTracked(ctx, ep.ID, endpoint.CheckIcmp, 0, deadline, func(pctx context.Context) probe.Result {
					return s.icmpProbe.Probe(pctx, address, deadline)
				})
				set(endpoint.CheckIcmp, r)
			}()
		}
	}

	switch ep.Kind {
	case endpoint.KindDomain:
		if ep.HasCheck(endpoint.CheckTcp) {
			if dnsFailed {
				set(endpoint.CheckTcp, probe.DNSCascadeUnreachable(endpoint.CheckTcp))
			} else if address != nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					set(endpoint.CheckTcp, s.runDomainTcp(ctx, ep, address, deadline))
				}()
			}
		}
	case endpoint.KindHttp:
		if ep.HasCheck(endpoint.CheckTcp) {
			if dnsFailed {
				set(endpoint.CheckTcp, probe.DNSCascadeUnreachable(endpoint.CheckTcp))
			} else if address != nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					r := s.runTracked(ctx, ep.ID, endpoint.CheckTcp, ep.Port, deadline, func(pctx context.Context) probe.Result {
						return s.tcpProbe.Probe(pctx, address.String(), ep.Port, deadline)
					})
					set(endpoint.CheckTcp, r)
				}()
			}
		}
		if ep.HasCheck(endpoint.CheckHttp) {
			if dnsFailed {
				set(endpoint.CheckHttp, probe.DNSCascadeUnreachable(endpoint.CheckHttp))
			} else {
				wg.Add(1)
				go func() {
					defer wg.Done()
					r := s.runTracked(ctx, ep.ID, endpoint.CheckHttp, 0, deadline, func(pctx context.Context) probe.Result {
						return s.httpProbe.Probe(pctx, ep.URL(), deadline)
					})
					set(endpoint.CheckHttp, r)
				}()
			}
		}
	case endpoint.KindIpPort:
		if ep.HasCheck(endpoint.CheckTcp) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r := s.runTracked(ctx, ep.ID, endpoint.CheckTcp, ep.Port, deadline, func(pctx context.Context) probe.Result {
					return s.tcpProbe.Probe(pctx, ep.Host, ep.Port, deadline)
				})
				set(endpoint.CheckTcp, r)
			}()
		}
		if ep.HasCheck(endpoint.CheckUdp) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r := s.runTracked(ctx, ep.ID, endpoint.CheckUdp, ep.Port, deadline, func(pctx context.Context) probe.Result {
					return s.udpProbe.Probe(pctx, ep.Host, ep.Port, deadline)
				})
				set(endpoint.CheckUdp, r)
			}()
		}
	}

	wg.Wait()
	return bucket
}

// resolveAddress runs the Dns check for endpoints that need resolution
// (Domain/Http), recording its result into bucket and returning the first
// resolved address (filtered by ip_version_pref) plus whether it failed.
// Ip/IpPort endpoints already carry a literal address and skip this.
func (s *Scheduler) resolveAddress(ctx context.Context, ep endpoint.Endpoint, tick int64, deadline time.Time, bucket *timeline.Bucket) (net.IP, bool) {
	switch ep.Kind {
	case endpoint.KindIp:
		return net.ParseIP(ep.Host), false
	case endpoint.KindIpPort:
		return net.ParseIP(ep.Host), false
	}

	if !ep.HasCheck(endpoint.CheckDns) || s.cfg.DisableDNS {
		// DNS is intentionally off (--no-dns), not failing: no CheckDns entry
		// is recorded, but dependent layers still can't resolve an address.
		return nil, true
	}

	r := s.runTracked(ctx, ep.ID, endpoint.CheckDns, 0, deadline, func(pctx context.Context) probe.Result {
		return s.dnsProbe.Probe(pctx, ep.Host, ep.IPVersionPref, deadline)
	})
	bucket.Results[endpoint.CheckDns] = r

	if !r.Status.Ok() || len(r.ResolvedAddresses) == 0 {
		return nil, true
	}
	return r.ResolvedAddresses[0], false
}

// runDomainTcp runs Tcp(80) and Tcp(443) concurrently for a Domain endpoint
// and merges them into the single CheckTcp layer the primary-pick and
// suppression logic expect, per spec.md §4.3's tie-break: Ok wins over
// failure; between two Ok results the lower latency wins (spec.md §7
// scenario 5); between two failures the earlier-tried (earlier StartedAt)
// wins.
func (s *Scheduler) runDomainTcp(ctx context.Context, ep endpoint.Endpoint, address net.IP, deadline time.Time) probe.Result {
	var wg sync.WaitGroup
	results := make([]probe.Result, 2)
	ports := [2]int{80, 443}

	for i, port := range ports {
		i, port := i, port
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			r := s.runTracked(ctx, ep.ID, endpoint.CheckTcp, port, deadline, func(pctx context.Context) probe.Result {
				return s.tcpProbe.Probe(pctx, address.String(), port, deadline)
			})
			r.StartedAt = start
			results[i] = r
		}()
	}
	wg.Wait()

	a, b := results[0], results[1]
	return mergeTcpTieBreak(a, b)
}

func mergeTcpTieBreak(a, b probe.Result) probe.Result {
	aOk, bOk := a.Status.Ok(), b.Status.Ok()
	switch {
	case aOk && !bOk:
		return a
	case bOk && !aOk:
		return b
	case aOk && bOk:
		if a.LatencyMs <= b.LatencyMs {
			return a
		}
		return b
	default:
		if !a.StartedAt.After(b.StartedAt) {
			return a
		}
		return b
	}
}

// runTracked wraps a probe call with overlap-cancellation bookkeeping:
// spec.md §4.3 forbids a new tick's probe of the same (endpoint, check_kind)
// from overlapping a still-running prior one — if one is found, it is
// canceled immediately and its adapter's result (normally Canceled) is
// still returned to, and recorded in, its own tick's bucket (the deadline
// bound in §4.3 means this should be rare in practice).
func (s *Scheduler) runTracked(ctx context.Context, endpointID string, kind endpoint.CheckKind, port int, deadline time.Time, fn func(context.Context) probe.Result) probe.Result {
	key := taskKey{endpointID: endpointID, kind: kind, port: port}
	pctx, cancel := context.WithDeadline(ctx, deadline)

	s.mu.Lock()
	if prev, ok := s.tasks[key]; ok {
		select {
		case <-prev.done:
		default:
			s.logger.Warn("probe overlap: canceling previous tick's probe",
				zap.String("endpoint", endpointID), zap.String("check", kind.String()))
			prev.cancel()
		}
	}
	cur := &inflight{cancel: cancel, done: make(chan struct{})}
	s.tasks[key] = cur
	s.mu.Unlock()

	defer func() {
		cancel()
		close(cur.done)
	}()

	return fn(pctx)
}
