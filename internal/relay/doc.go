// Package relay exposes the room service over HTTP and provides a client
// for it.
//
// HTTP API
//
//	POST /envelopes
//	    Verify and apply one envelope (canonical JSON body). Returns a
//	    Receipt.
//
//	GET /rooms
//	    List rooms.
//
//	GET /rooms/{rid}/members
//	    Return the room's roster.
//
//	GET /rooms/{rid}/items?limit=N
//	    Return the N most recent archived envelopes, oldest first.
//
//	GET /metrics
//	    Prometheus metrics.
//
// Errors are JSON objects {"error": "..."}. Stale or badly signed
// envelopes get 401, permission failures 403, unknown rooms 404, replays
// and conflicting creations 409, and anything undecodable 400.
package relay
