// Package editor owns the in-memory diagram and applies user gestures to it.
//
// An [Editor] holds the diagram, the selection flags reported by the
// canvas, and the single active node whose properties the inspector edits.
// Every operation is serialized by a mutex, the analogue of the canvas's
// single event thread. Operations that change the node or edge collections
// autosave synchronously through the configured [Saver]; failures are
// logged and otherwise ignored.
//
// # Selection
//
// The active selection is either empty or one node id:
//
//	Nothing-Selected --click one node--> Node-Selected(id)
//	Node-Selected(id) --click canvas / multi-select--> Nothing-Selected
//	Node-Selected(id) --delete that node--> Nothing-Selected
//
// With several nodes selected the first reported one is active.
// [Editor.Relabel] only applies to the active node.
//
// # Import and Export
//
// Imports and exports share a busy flag: only one runs at a time and a
// concurrent request fails fast with BUSY. Exports copy the diagram under
// the lock and encode outside it, so editing continues while an image
// renders; a cancelled context abandons the wait.
package editor
