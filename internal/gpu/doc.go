// Package gpu samples per-process GPU engine utilization and memory.
//
// Counters arrive as instance-keyed arrays, one item per (process, engine)
// for utilization and one per (process, adapter) for memory. The first
// successful collection only primes rate-based counters and yields nothing.
// If the counter source cannot be opened the sampler is disabled for the
// rest of the session.
package gpu
