// Package viz renders comparison results in the terminal.
//
//   - [RenderReport]: colored one-shot report for CLI output
//   - [Canvas]: Braille pixel canvas used to overlay two trajectories
//   - [Browser]: Bubble Tea program for stepping through mismatches
//
// # Key Bindings
//
//	j/k, up/down - Select mismatch
//	tab          - Cycle mismatch kind filter
//	q            - Quit
package viz
