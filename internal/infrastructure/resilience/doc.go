// Package resilience provides the circuit breaker guarding outbound
// host traffic.
//
// A breaker per remote peer fails fast once the peer keeps erroring:
// closed counts failures, open rejects with ErrCircuitOpen until the
// cooldown elapses, half-open admits a single probe that either closes
// the breaker or reopens it.
package resilience
