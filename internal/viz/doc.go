// Package viz renders simulation snapshots in the terminal.
//
//   - [Renderer]: projects particles through the camera and draws them on a
//     [Canvas] of braille cells, shaded by depth
//   - [App]: the bubbletea model that owns the terminal, forwards input to a
//     [control.Controller] and shows the frames the renderer sends it
//
// The renderer runs on the render loop and never touches the terminal
// directly; frames reach the program through [ProgramSink].
//
// # Key Bindings
//
//	w/a/s/d   - Move forward, left, back, right
//	space/c   - Move up/down
//	i/j/k/l   - Pitch and yaw
//	u/o       - Roll
//	↑/↓       - Zoom in/out
//	←/→       - Camera speed
//	1/2/3/4   - Reset FOV, position, orientation, speed
//	r         - Reset the simulation
//	tab       - Toggle diagnostics
//	q         - Quit
package viz
