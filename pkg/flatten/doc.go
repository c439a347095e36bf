// Package flatten keeps a flat row sequence consistent with an expandable
// tree.
//
// The Sequence holds the pre-order flattening of every node whose ancestors
// are all expanded (or preview-expanded, in which case only the preview slice
// is included). Engine.Expand and Engine.Collapse splice rows in and out of
// that sequence in place and report the exact display range that changed, so
// a list view can animate the change instead of redrawing everything.
//
// Display positions include a fixed header offset (rows the host draws above
// the first node). The engine subtracts it before every lookup and adds it
// back to every notification.
//
// Concurrency: nothing here locks. All calls, and all reads of the Sequence
// by the renderer, must happen on the single goroutine that owns the view.
// Mutating the Sequence or the nodes' expansion flags outside the engine
// while rows are laid out is undefined.
package flatten
