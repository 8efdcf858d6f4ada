// Package viz renders soft bodies in the terminal.
//
// The boundary surface of a body is drawn as a braille wireframe through a
// small perspective [Camera]. [Model] is a bubbletea program that steps the
// body in real time and lets the user grab it, reset it and tune its
// compliance while it runs.
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	R         - Reset to the rest pose
//	G         - Grab or release the top particle
//	H/L J/K   - Move the grab target along x and y
//	U/N       - Move the grab target along z
//	Tab       - Select edge or volume compliance
//	Up/Down   - Double or halve the selected compliance
//	X/Y/Z     - Rotate the camera
//	+/-       - Zoom
//	T         - Cycle themes
package viz
