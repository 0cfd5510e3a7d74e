// Package ui presents edit progress in the terminal.
//
// Two presenters observe running tasks:
//   - [PopupListener] : writes one styled progress line per change, for plain terminal output
//   - [Model] : an interactive bubbletea view fed by a [ChannelListener]
//
// Listeners run on the scheduler's goroutine and never block it: [ChannelListener] drops updates
// when its buffer is full, the same way a lossy status line would.
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Updates are read from
// the channel one at a time through a [tea.Cmd], so the program and the host loop run side by side.
package ui
