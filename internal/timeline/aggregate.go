package timeline

import (
	"github.com/fprochazka/hydraping/pkg/endpoint"
)

// Aggregates are the per-endpoint summary values spec.md §4.4 exposes:
// packet_loss_pct (fraction of buckets whose PrimaryPick is a failure),
// latency_last, and latency_mean (over successful PrimaryPicks).
type Aggregates struct {
	PacketLossPct float64
	LatencyLastMs float64
	HasLatency    bool
	LatencyMeanMs float64
}

// ComputeAggregates derives Aggregates from the snapshot window, per
// endpoint ep's applicable checks (used to pick the right PrimaryPick per
// bucket).
func ComputeAggregates(ep endpoint.Endpoint, buckets []Bucket) Aggregates {
	var failures, counted int
	var sum float64
	var successCount int
	var lastLatency float64
	var hasLast bool

	for _, b := range buckets {
		pick, ok := PrimaryPick(ep, b)
		if !ok {
			continue
		}
		counted++
		if pick.Status.Failed() {
			failures++
			continue
		}
		if pick.LatencyValid {
			sum += pick.LatencyMs
			successCount++
			lastLatency = pick.LatencyMs
			hasLast = true
		}
	}

	agg := Aggregates{}
	if counted > 0 {
		agg.PacketLossPct = float64(failures) / float64(counted) * 100
	}
	if successCount > 0 {
		agg.LatencyMeanMs = sum / float64(successCount)
	}
	if hasLast {
		agg.LatencyLastMs = lastLatency
		agg.HasLatency = true
	}
	return agg
}
