// Package preflight provides readiness checks for the filesystem paths and
// services a download run depends on.
//
// The run command calls RunAll before fetching anything so a missing output
// directory fails fast instead of after a long download. The doctor command
// prints the same results next to the binary dependency report.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
