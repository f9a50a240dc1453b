// Package ui provides the interactive terminal view of a task selection.
//
// The model renders the controller's grouped task tree, moves a cursor over
// task rows and toggles the selected checkbox in place. Render passes
// started by index updates reach the model through the controller's change
// listener.
package ui
