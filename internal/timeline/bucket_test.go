package timeline

import (
	"testing"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
	"github.com/stretchr/testify/assert"
)

func domainEndpoint() endpoint.Endpoint {
	return endpoint.Endpoint{
		ID:               "dom1",
		Label:            "example.com",
		Kind:             endpoint.KindDomain,
		Host:             "example.com",
		ApplicableChecks: []endpoint.CheckKind{endpoint.CheckDns, endpoint.CheckIcmp, endpoint.CheckTcp},
	}
}

func TestPrimaryPick_HighestPrioritySuccessWins(t *testing.T) {
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckDns] = probe.Result{CheckKind: endpoint.CheckDns, Status: probe.StatusOk}
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusOk}
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusOk}

	pick, ok := PrimaryPick(domainEndpoint(), b)
	assert.True(t, ok)
	assert.Equal(t, endpoint.CheckTcp, pick.CheckKind)
}

func TestPrimaryPick_LowestPriorityFailureWhenNoneSucceed(t *testing.T) {
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckDns] = probe.Result{CheckKind: endpoint.CheckDns, Status: probe.StatusTimeout}
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusUnreachable}
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusUnreachable}

	pick, ok := PrimaryPick(domainEndpoint(), b)
	assert.True(t, ok)
	assert.Equal(t, endpoint.CheckIcmp, pick.CheckKind)
}

func TestPrimaryPick_CanceledNeverCounts(t *testing.T) {
	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusCanceled}
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusCanceled}

	_, ok := PrimaryPick(domainEndpoint(), b)
	assert.False(t, ok)
}

func TestPrimaryPick_OverrideWinsEvenIfNotBest(t *testing.T) {
	override := endpoint.CheckIcmp
	ep := domainEndpoint()
	ep.PrimaryCheckOverride = &override

	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusTimeout}
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusOk}

	pick, ok := PrimaryPick(ep, b)
	assert.True(t, ok)
	assert.Equal(t, endpoint.CheckIcmp, pick.CheckKind)
}

func TestPrimaryPick_OverrideAbsentFallsBackToRule(t *testing.T) {
	override := endpoint.CheckHttp // not applicable for a Domain endpoint
	ep := domainEndpoint()
	ep.PrimaryCheckOverride = &override

	b := NewBucket(0, time.Now())
	b.Results[endpoint.CheckTcp] = probe.Result{CheckKind: endpoint.CheckTcp, Status: probe.StatusOk}

	pick, ok := PrimaryPick(ep, b)
	assert.True(t, ok)
	assert.Equal(t, endpoint.CheckTcp, pick.CheckKind)
}

func TestBucket_IsEmpty(t *testing.T) {
	b := NewBucket(0, time.Now())
	assert.True(t, b.IsEmpty())
	b.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusOk}
	assert.False(t, b.IsEmpty())
}
