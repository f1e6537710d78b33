package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntries_Variants(t *testing.T) {
	tests := []struct {
		name    string
		entry   RawEntry
		kind    Kind
		checks  []CheckKind
	}{
		{"bare ip", RawEntry{URL: "8.8.8.8"}, KindIp, []CheckKind{CheckIcmp}},
		{"ip with port", RawEntry{URL: "1.1.1.1:53", Protocol: "udp"}, KindIpPort, []CheckKind{CheckIcmp, CheckUdp}},
		{"ipv6 bracketed port", RawEntry{URL: "[2606:4700:4700::1111]:443"}, KindIpPort, []CheckKind{CheckIcmp, CheckTcp}},
		{"domain", RawEntry{URL: "example.com"}, KindDomain, []CheckKind{CheckDns, CheckIcmp, CheckTcp}},
		{"https", RawEntry{URL: "https://example.com"}, KindHttp, []CheckKind{CheckDns, CheckIcmp, CheckTcp, CheckHttp}},
		{"http with path", RawEntry{URL: "http://api.example.com/health"}, KindHttp, []CheckKind{CheckDns, CheckIcmp, CheckTcp, CheckHttp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eps, err := ParseEntries([]RawEntry{tt.entry})
			require.NoError(t, err)
			require.Len(t, eps, 1)
			assert.Equal(t, tt.kind, eps[0].Kind)
			assert.ElementsMatch(t, tt.checks, eps[0].ApplicableChecks)
			assert.NotEmpty(t, eps[0].ID)
		})
	}
}

func TestParseEntries_HttpsDefaultPort(t *testing.T) {
	eps, err := ParseEntries([]RawEntry{{URL: "https://example.com"}})
	require.NoError(t, err)
	assert.Equal(t, 443, eps[0].Port)

	eps, err = ParseEntries([]RawEntry{{URL: "http://example.com"}})
	require.NoError(t, err)
	assert.Equal(t, 80, eps[0].Port)
}

func TestParseEntries_EmptyListIsConfigError(t *testing.T) {
	_, err := ParseEntries(nil)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseEntries_UnknownProtocol(t *testing.T) {
	_, err := ParseEntries([]RawEntry{{URL: "1.1.1.1:53", Protocol: "sctp"}})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, cfgErr.Index)
}

func TestParseEntries_PrimaryCheckOverride(t *testing.T) {
	eps, err := ParseEntries([]RawEntry{{URL: "example.com", PrimaryCheckType: "tcp"}})
	require.NoError(t, err)
	require.NotNil(t, eps[0].PrimaryCheckOverride)
	assert.Equal(t, CheckTcp, *eps[0].PrimaryCheckOverride)
}

func TestParseEntries_IncompatiblePrimaryCheckType(t *testing.T) {
	_, err := ParseEntries([]RawEntry{{URL: "8.8.8.8", PrimaryCheckType: "http"}})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseEntries_MalformedURL(t *testing.T) {
	_, err := ParseEntries([]RawEntry{{URL: "not a host"}})
	require.Error(t, err)
}

func TestParseEntries_LabelDefaultsToURL(t *testing.T) {
	eps, err := ParseEntries([]RawEntry{{URL: "example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "example.com", eps[0].Label)

	eps, err = ParseEntries([]RawEntry{{URL: "example.com", Name: "My Site"}})
	require.NoError(t, err)
	assert.Equal(t, "My Site", eps[0].Label)
}

func TestParseEntries_StableIDAcrossRuns(t *testing.T) {
	eps1, err := ParseEntries([]RawEntry{{URL: "example.com"}})
	require.NoError(t, err)
	eps2, err := ParseEntries([]RawEntry{{URL: "example.com"}})
	require.NoError(t, err)
	assert.Equal(t, eps1[0].ID, eps2[0].ID)
}

func TestCheckKind_Priority(t *testing.T) {
	assert.Greater(t, CheckHttp.Priority(), CheckTcp.Priority())
	assert.Greater(t, CheckTcp.Priority(), CheckDns.Priority())
	assert.Greater(t, CheckDns.Priority(), CheckIcmp.Priority())
	assert.Equal(t, CheckTcp.Priority(), CheckUdp.Priority())
}
