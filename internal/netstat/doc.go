// Package netstat attributes network connections and bandwidth to processes.
//
// Connections are enumerated every tick and grouped by owning pid for a
// connection count. When the platform can report per-connection byte
// counters, established TCP connections are instrumented and their cumulative
// bytes are turned into download and upload rates. The first failure to
// enable counting permanently downgrades the tracker to count-only mode so
// an unprivileged or unsupported host pays that cost once.
package netstat
