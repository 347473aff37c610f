// Package dav implements the WebDAV-style protocol surface of the file
// server.
//
// # Architecture Overview
//
// The package is a thin translation layer between HTTP and the two store
// gateways:
//
//   - Handler (handler.go): tenant resolution, verb dispatch, error mapping
//   - Verb files (get.go, put.go, ...): one protocol verb's contract each
//   - range.go: byte-range header parsing with lenient fallback
//   - multistatus.go: 207 Multi-Status XML serialization
//
// # Request Flow
//
// Every request path has the shape /{tenant}/{path...}; the first segment
// names the sandbox, the remainder (normalized) is the file path. Handler
// validates tenant existence once, then dispatches to the verb handler with
// (tenant, path) resolved. Handlers hold no state between requests; every
// invocation re-reads what it needs from the metadata store.
//
// # Consistency
//
// The protocol layer owns the cross-store write ordering: PUT reserves a
// pending metadata entry, uploads the blob, then commits. A failure between
// upload and commit leaves a pending entry behind; the reconcile package
// cleans those up out of band. Reads only ever observe ready entries, so a
// half-finished write is invisible rather than partially visible.
package dav
