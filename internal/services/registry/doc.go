// Package registry is the read-only client for the externally owned
// authoritative identity store.
//
// The registry maps normalized athlete names to canonical external IDs. It is
// treated as an unreliable secondary source: lookups carry a short timeout and
// every transport failure is surfaced as an error the resolver degrades to
// "not found". There is no write path.
package registry
