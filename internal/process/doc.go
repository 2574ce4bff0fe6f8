// Package process samples the per-process table.
//
// Every tick the Sampler enumerates live processes and rebuilds the record
// list from scratch. Cheap fields (name, command line, status, memory, CPU
// percent) are read on every tick, as are I/O byte counters which feed a
// rate tracker. Priority, owner, thread count and private memory are
// expensive or privilege-gated, so they are served from an AttributeCache
// that refreshes on a Cadence; precise CPU time is refreshed on its own
// phase of the same cadence. Unreadable processes get platform defaults
// rather than errors.
//
// Controller applies user intents (signals, nice steps, CPU affinity) to
// running processes.
package process
