// Package debounce coalesces bursts of change notifications into a single
// call that runs one quiet interval after the last notification.
package debounce
