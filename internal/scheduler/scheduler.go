// Package scheduler drives the periodic, concurrent probe fan-out: one tick
// timer, one task per (endpoint, check_kind) per tick, deadlined and
// overlap-protected, feeding completed SampleBuckets into a timeline.Store.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fprochazka/hydraping/internal/timeline"
	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds the scheduler's runtime-tunable knobs, the scheduler-owned
// equivalent of spec.md §4.3's [checks] section plus the CLI's
// runtime-only --no-dns/--no-icmp overrides.
type Config struct {
	Interval    time.Duration
	Timeout     time.Duration
	DisableDNS  bool
	DisableICMP bool
}

// taskKey identifies one overlap-tracked probe slot. Domain endpoints run
// two concurrent Tcp probes (80 and 443) that must not be confused with each
// other for overlap-cancellation purposes, hence the Port discriminator.
type taskKey struct {
	endpointID string
	kind       endpoint.CheckKind
	port       int
}

type inflight struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns the tick timer and the probe adapters. It is the only
// writer of the timeline.Store it was built with.
type Scheduler struct {
	cfg        Config
	endpoints  []endpoint.Endpoint
	store      *timeline.Store
	capability *probe.ICMPCapability
	logger     *zap.Logger

	dnsProbe  *probe.DNSProbe
	icmpProbe *probe.ICMPProbe
	tcpProbe  *probe.TCPProbe
	udpProbe  *probe.UDPProbe
	httpProbe *probe.HTTPProbe

	mu    sync.Mutex
	tasks map[taskKey]*inflight

	icmpNoticeOnce sync.Once
	icmpDisabledAt time.Time
}

// New builds a Scheduler wired to store, probing via the given adapters.
// Grounded on the teacher's ContinuousTracer/Monitor constructors, which
// likewise take their collaborators (tracer, config) fully formed rather
// than constructing them internally.
func New(
	cfg Config,
	endpoints []endpoint.Endpoint,
	store *timeline.Store,
	capability *probe.ICMPCapability,
	dnsProbe *probe.DNSProbe,
	icmpProbe *probe.ICMPProbe,
	tcpProbe *probe.TCPProbe,
	udpProbe *probe.UDPProbe,
	httpProbe *probe.HTTPProbe,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		endpoints:  endpoints,
		store:      store,
		capability: capability,
		logger:     logger,
		dnsProbe:   dnsProbe,
		icmpProbe:  icmpProbe,
		tcpProbe:   tcpProbe,
		udpProbe:   udpProbe,
		httpProbe:  httpProbe,
		tasks:      make(map[taskKey]*inflight),
	}
}

// ICMPDisabled reports whether raw-socket ICMP has been found unavailable —
// a single process-wide flag per spec.md §4.3/§7, surfaced by the caller as
// one standalone notice rather than per endpoint.
func (s *Scheduler) ICMPDisabled() (bool, time.Time) {
	if s.capability == nil || s.capability.Allowed() {
		return false, time.Time{}
	}
	return true, s.icmpDisabledAt
}

// Run fires one tick every cfg.Interval until ctx is canceled, mirroring the
// teacher's ContinuousTracer.Run: after each cycle it sleeps until the next
// tick's scheduled time t0 + k·interval, so neither a slow cycle nor
// per-tick overhead drifts the schedule forward. Unlike the teacher, a tick
// fans out across every endpoint concurrently rather than tracing one target
// serially.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.capability.Allowed() {
		s.icmpNoticeOnce.Do(func() { s.icmpDisabledAt = time.Now() })
	}

	var tick int64
	t0 := time.Now()
	interval := s.cfg.Interval

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tickTime := time.Now()
		nextTickTime := t0.Add(time.Duration(tick+1) * interval)

		s.runTick(ctx, tick, tickTime, nextTickTime)

		tick++
		if wait := time.Until(nextTickTime); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
}

// runTick fans out one task per endpoint; endpoints never block each other
// (spec.md §4.3: "a slow endpoint never delays another"). Errors are never
// returned from the per-endpoint goroutines so one endpoint's failure can
// never cancel its siblings via errgroup's shared context.
func (s *Scheduler) runTick(ctx context.Context, tick int64, tickTime, nextTickTime time.Time) {
	var g errgroup.Group
	var mu sync.Mutex
	var completed, timedOut, canceled int
	for _, ep := range s.endpoints {
		ep := ep
		g.Go(func() error {
			bucket := s.runEndpointTick(ctx, ep, tick, tickTime, nextTickTime)
			if !s.store.Append(ep.ID, bucket) {
				s.logger.Warn("bucket append rejected: out of sequence", zap.String("endpoint", ep.ID), zap.Int64("tick", tick))
			}
			c, t, x := countOutcomes(bucket)
			mu.Lock()
			completed += c
			timedOut += t
			canceled += x
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	s.logger.Info("tick complete",
		zap.Int64("tick", tick),
		zap.Int("completed", completed),
		zap.Int("timed_out", timedOut),
		zap.Int("canceled", canceled),
	)
}

// countOutcomes tallies a tick's per-endpoint probe results into the three
// buckets spec.md §4.3's tick summary reports: completed (any definite
// status, success or failure), timed out, and canceled (overlap-preempted).
func countOutcomes(bucket timeline.Bucket) (completed, timedOut, canceled int) {
	for _, r := range bucket.Results {
		switch r.Status {
		case probe.StatusTimeout:
			timedOut++
		case probe.StatusCanceled:
			canceled++
		default:
			completed++
		}
	}
	return completed, timedOut, canceled
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
