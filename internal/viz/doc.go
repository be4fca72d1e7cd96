// Package viz draws bodies in the terminal.
//
// Rendering goes through a braille [Canvas] (2x4 dots per cell) and an
// orbiting perspective [Camera]. [Model] is a Bubble Tea program that steps
// an updater live and shows energy and tree statistics beside the view.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	R          - Reset to initial bodies
//	H/J/K/L    - Orbit camera (arrows too)
//	+/-        - Zoom
//	[ ]        - Fewer/more steps per frame
//	B          - Toggle root bounds
//	T          - Toggle octree overlay
//	F          - Refit camera to bodies
//	G          - Toggle GIF recording
//	?          - Help
//	Q          - Quit
package viz
