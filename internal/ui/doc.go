// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single import:
//  1. [PreviewView] : Browse the songs read from the input file
//  2. [ConfirmView] : Confirm the playlist name, visibility, and song count
//  3. [ImportView] : Monitor real-time progress with a spinner, progress bar, and recent outcomes
//  4. [ResultView] : Display match counts and the songs that were not found
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ImportEngine; the engine never blocks on a slow UI.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
