// Package control turns user input into camera state for the renderer.
//
// A [Controller] collects key and mouse events from the terminal goroutine
// and applies them to its [Camera] when the control loop calls Update.
// Each Update produces an immutable [ControlSnapshot] that the render loop
// reads through an exchange cell:
//
//	ctrl := control.NewController(control.NewCamera())
//	ctrl.Press(control.ActionZoomIn) // from the input goroutine
//	snap, stop := ctrl.Update()      // from the control loop
//
// Camera is not safe for concurrent use and is only touched by Update.
package control
