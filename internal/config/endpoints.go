package config

import "github.com/fprochazka/hydraping/pkg/endpoint"

// RawEntries converts the config's target list into the endpoint
// package's parser input, keeping internal/config ignorant of endpoint
// classification rules (that logic belongs entirely to pkg/endpoint).
func (c *Config) RawEntries() []endpoint.RawEntry {
	out := make([]endpoint.RawEntry, len(c.Endpoints.Targets))
	for i, t := range c.Endpoints.Targets {
		out[i] = endpoint.RawEntry{
			URL:              t.URL,
			Name:             t.Name,
			Protocol:         t.Protocol,
			IPVersion:        t.IPVersion,
			PrimaryCheckType: t.PrimaryCheckType,
		}
	}
	return out
}
