// Package checkbox rewrites the completion marker of a single checklist line.
//
// A toggle resolves the document, reads its full current text, validates the
// line number, matches the checkbox pattern, replaces exactly one marker
// character and writes the text back in one update. Any failure before the
// write leaves the document untouched. Nothing is cached between calls, so
// every toggle works on the latest text.
package checkbox
