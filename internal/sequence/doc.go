// Package sequence runs deferred producers strictly one at a time and bounds
// in-flight calls against rate-limited providers.
//
// Ordering and rate limiting are separate concerns here: Run guarantees input
// order and at most one running producer per sequence, while Gate caps
// concurrent calls to a shared provider across every caller that holds it.
package sequence
