// Package resolve turns (source system, source-local id, display name)
// tuples into canonical athlete identities.
//
// Resolution is a fixed fallback chain: existing source mapping, local
// normalized-name match, external identity store, then creation of a fresh
// identity. The chain is idempotent per mapping key, safe under concurrent
// writers (a lost create race degrades to a lookup), and never fails a run
// because the external store is down.
package resolve
