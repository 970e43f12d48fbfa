// Package ui provides the terminal interface for browsing the storefront
// catalog.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. A Model never owns catalog data: on every
// tick it takes a fresh state.Snapshot from the shared store and rebuilds its
// rows from it, so data written by the background poller or by a finished
// mutation shows up on the next tick without any extra plumbing.
//
// Mutations go through the Actions interface (implemented by
// remote.Coordinator). Toggling a product's stock is applied to the cache
// optimistically before the request is sent and rolled back if it fails;
// the UI just re-reads the snapshot when the command returns.
//
// # Views
//
//   - Products: a table of the products in the selected category with a
//     detail pane showing the focused product, its category, and its reviews
//     joined with their authors.
//   - Logs: the tail of the storefront log file, colored by severity.
//
// # Files
//
//   - app.go: Model, messages, commands, and key handling
//   - view.go: layout and rendering of the header, panes, and footer
//   - help.go: the help overlay
//   - keys.go: key bindings
//   - theme.go: color themes and Lipgloss styles
//   - strings.go: small formatting helpers
//
// # Preferences
//
// The selected theme and category filter are saved to the prefs file
// whenever they change, so the next session starts where this one ended.
package ui
