// Package parallel provides a bounded worker pool.
//
// WorkerPool runs submitted jobs with at most N in flight, collects their
// results and errors, and optionally cancels remaining work on the first
// failure. Map is the ordered fan-out used by the vault scanner.
package parallel
