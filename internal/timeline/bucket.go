// Package timeline implements the per-endpoint bucketed ring of multi-layer
// probe results (spec.md §3 SampleBucket/Timeline, §4.4), the PrimaryPick
// selection rule, and the suppression policy that drives the dashboard's
// problems block.
package timeline

import (
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
)

// Bucket is one tick's outcome for one endpoint: every applicable,
// non-disabled check_kind that ran that tick, keyed by kind.
type Bucket struct {
	Index   int64
	At      time.Time
	Results map[endpoint.CheckKind]probe.Result
}

// NewBucket builds an empty bucket for tick index — "missing ticks are
// explicit empty buckets (not gaps)" per spec.md §3.
func NewBucket(index int64, at time.Time) Bucket {
	return Bucket{Index: index, At: at, Results: make(map[endpoint.CheckKind]probe.Result)}
}

// IsEmpty reports whether no probe produced a result this tick.
func (b Bucket) IsEmpty() bool {
	return len(b.Results) == 0
}

// PrimaryPick selects which CheckResult represents ep for bucket b,
// implementing the ordered rule in spec.md §3:
//  1. primary_check_override, if its result exists in b.
//  2. Otherwise the highest-priority successful layer.
//  3. Otherwise the lowest-priority layer that actually ran and failed.
//  4. Otherwise: none (tick ran but nothing completed).
func PrimaryPick(ep endpoint.Endpoint, b Bucket) (probe.Result, bool) {
	if ep.PrimaryCheckOverride != nil {
		if r, ok := b.Results[*ep.PrimaryCheckOverride]; ok {
			return r, true
		}
	}

	var bestOk *probe.Result
	for kind, r := range b.Results {
		if !r.Status.Ok() {
			continue
		}
		if bestOk == nil || kind.Priority() > bestOk.CheckKind.Priority() {
			rr := r
			bestOk = &rr
		}
	}
	if bestOk != nil {
		return *bestOk, true
	}

	var worstFail *probe.Result
	for kind, r := range b.Results {
		if r.Status == probe.StatusCanceled {
			continue
		}
		if !r.Status.Failed() {
			continue
		}
		if worstFail == nil || kind.Priority() < worstFail.CheckKind.Priority() {
			rr := r
			worstFail = &rr
		}
	}
	if worstFail != nil {
		return *worstFail, true
	}

	return probe.Result{}, false
}
