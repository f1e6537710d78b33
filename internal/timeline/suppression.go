package timeline

import (
	"fmt"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
)

// Problem is one unsuppressed failure surfaced to the dashboard's problems
// block, per spec.md §4.4/§4.5.
type Problem struct {
	CheckKind endpoint.CheckKind
	Message   string
}

// ActiveProblems computes the suppression-filtered problem list for the
// most recent non-empty bucket of ring, per spec.md §4.4:
//  1. S = successful layers, F = failed layers in that bucket.
//  2. A failure at layer L is suppressed iff some layer strictly higher
//     than L succeeded.
//  3. Each unsuppressed failure yields one Problem with a canonical message.
//
// A DNS failure is a special case (spec.md §7 scenario 4): when Dns fails,
// its cascade-synthesized dependents (Unreachable("dns failed")) are
// suppressed outright and only the Dns failure itself is reported, since
// the cascade is not independent evidence of a second problem.
func ActiveProblems(ring *Ring) []Problem {
	b, ok := ring.LatestNonEmpty()
	if !ok {
		return nil
	}
	return activeProblemsForBucket(b)
}

func activeProblemsForBucket(b Bucket) []Problem {
	highestOkPriority := -1
	for kind, r := range b.Results {
		if r.Status.Ok() && kind.Priority() > highestOkPriority {
			highestOkPriority = kind.Priority()
		}
	}

	if dnsResult, ok := b.Results[endpoint.CheckDns]; ok && dnsResult.Status.Failed() {
		return []Problem{{CheckKind: endpoint.CheckDns, Message: canonicalMessage(dnsResult)}}
	}

	var problems []Problem
	for kind, r := range b.Results {
		if !r.Status.Failed() {
			continue
		}
		if kind.Priority() < highestOkPriority {
			continue // suppressed: a strictly higher layer succeeded
		}
		problems = append(problems, Problem{CheckKind: kind, Message: canonicalMessage(r)})
	}
	return orderByPriorityDesc(problems)
}

func orderByPriorityDesc(problems []Problem) []Problem {
	for i := 1; i < len(problems); i++ {
		for j := i; j > 0 && problems[j].CheckKind.Priority() > problems[j-1].CheckKind.Priority(); j-- {
			problems[j], problems[j-1] = problems[j-1], problems[j]
		}
	}
	return problems
}

// canonicalMessage renders the short human message spec.md §4.4 calls for,
// e.g. "ICMP unreachable", "HTTP 503", "DNS timeout".
func canonicalMessage(r probe.Result) string {
	switch r.Status {
	case probe.StatusProtocolError:
		if r.ProtocolCode != 0 {
			return fmt.Sprintf("%s %d", r.CheckKind.ShortName(), r.ProtocolCode)
		}
		return fmt.Sprintf("%s protocol error", r.CheckKind.ShortName())
	case probe.StatusTimeout:
		return fmt.Sprintf("%s timeout", r.CheckKind.ShortName())
	case probe.StatusRefused:
		return fmt.Sprintf("%s refused", r.CheckKind.ShortName())
	case probe.StatusUnreachable:
		if r.Detail == "dns failed" {
			return fmt.Sprintf("%s unreachable (dns failed)", r.CheckKind.ShortName())
		}
		return fmt.Sprintf("%s unreachable", r.CheckKind.ShortName())
	case probe.StatusNameError:
		return fmt.Sprintf("%s name error", r.CheckKind.ShortName())
	case probe.StatusCapabilityDenied:
		return fmt.Sprintf("%s unavailable", r.CheckKind.ShortName())
	default:
		return r.Detail
	}
}
