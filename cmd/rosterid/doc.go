// Package main hosts the rosterid CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the identity engine: resolving
// source-local identifiers, ingesting parsed record manifests, inspecting
// canonical identities and their aggregate flags, and running duplicate scans
// and merges. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
