package catalogue

import "time"

// CapabilityRecord remembers whether an optional upstream endpoint answered
// for a given scope. It is overwritten on every probe, never appended, and
// consulted before repeating a probe so a known-dead endpoint is not hit
// again within the session.
type CapabilityRecord struct {
	ScopeID     string    `json:"scopeId"`
	Available   bool      `json:"available"`
	LastChecked time.Time `json:"lastChecked"`
	Diagnostics string    `json:"diagnostics,omitempty"`
}

type capabilityKey struct {
	endpoint string
	scopeID  string
}

// Capability returns the last probe outcome for (endpoint, scopeID).
func (c *Catalogue) Capability(endpoint, scopeID string) (CapabilityRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.caps[capabilityKey{endpoint: endpoint, scopeID: scopeID}]
	return rec, ok
}

// RecordCapability overwrites the probe outcome for (endpoint, scopeID).
func (c *Catalogue) RecordCapability(endpoint, scopeID string, available bool, diagnostics string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caps[capabilityKey{endpoint: endpoint, scopeID: scopeID}] = CapabilityRecord{
		ScopeID:     scopeID,
		Available:   available,
		LastChecked: c.now(),
		Diagnostics: diagnostics,
	}
}
