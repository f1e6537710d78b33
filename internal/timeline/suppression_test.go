package timeline

import (
	"testing"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveProblems_HigherLayerSuccessSuppressesLowerFailure(t *testing.T) {
	r := NewRing(1)
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusUnreachable}
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusOk}
	require.True(t, r.Append(b))

	problems := ActiveProblems(r)
	assert.Empty(t, problems)
}

func TestActiveProblems_NoHigherLayerSurfacesFailure(t *testing.T) {
	r := NewRing(1)
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusUnreachable}
	require.True(t, r.Append(b))

	problems := ActiveProblems(r)
	require.Len(t, problems, 1)
	assert.Equal(t, endpoint.CheckIcmp, problems[0].CheckKind)
	assert.Equal(t, "ICMP unreachable", problems[0].Message)
}

func TestActiveProblems_DNSFailureSuppressesCascadeDependents(t *testing.T) {
	r := NewRing(1)
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckDns] = probe.Result{CheckKind: endpoint.CheckDns, Status: probe.StatusTimeout}
	b.Results[endpoint.CheckIcmp] = probe.DNSCascadeUnreachable(endpoint.CheckIcmp)
	b.Results[endpoint.CheckTcp] = probe.DNSCascadeUnreachable(endpoint.CheckTcp)
	require.True(t, r.Append(b))

	problems := ActiveProblems(r)
	require.Len(t, problems, 1)
	assert.Equal(t, endpoint.CheckDns, problems[0].CheckKind)
	assert.Equal(t, "DNS timeout", problems[0].Message)
}

func TestActiveProblems_MultipleUnsuppressedOrderedByPriorityDesc(t *testing.T) {
	r := NewRing(1)
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusRefused}
	b.Results[endpoint.CheckHttp] = probe.Result{CheckKind: endpoint.CheckHttp, Status: probe.StatusProtocolError, ProtocolCode: 503}
	require.True(t, r.Append(b))

	problems := ActiveProblems(r)
	require.Len(t, problems, 2)
	assert.Equal(t, endpoint.CheckHttp, problems[0].CheckKind)
	assert.Equal(t, "HTTP 503", problems[0].Message)
	assert.Equal(t, endpoint.CheckTcp, problems[1].CheckKind)
}

func TestActiveProblems_NoBucketsYieldsNoProblems(t *testing.T) {
	r := NewRing(3)
	assert.Empty(t, ActiveProblems(r))
}

func TestActiveProblems_ScansBackwardPastEmptyBuckets(t *testing.T) {
	r := NewRing(3)
	now := time.Now()
	b0 := NewBucket(0, now)
	b0.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusUnreachable}
	require.True(t, r.Append(b0))
	require.True(t, r.Append(NewBucket(1, now))) // empty: probes canceled/no tick output

	problems := ActiveProblems(r)
	require.Len(t, problems, 1)
	assert.Equal(t, endpoint.CheckIcmp, problems[0].CheckKind)
}
