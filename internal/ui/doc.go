// Package ui turns keystrokes into navigation and navigation into frames.
//
// Input flow:
//   - DecodeKeys splits a chunk of bytes read from the remote terminal into
//     bubbletea key messages. Escape sequences the grammar does not use stay
//     single opaque tokens so they never match a binding.
//   - Interpret resolves each key to an action through the keymap, then looks
//     the action up in a per-focus transition table. A missing entry means the
//     key does nothing on that screen. The previous key is kept in the session
//     state so "g g" can be recognised with one token of lookback.
//
// Output flow:
//   - Compose builds a View from the session state and the catalog. It never
//     touches the terminal and is safe to call repeatedly.
//   - Draw turns a View into a frame of exactly Height lines using the shared
//     lipgloss styles; the post screen is a bubbles viewport.
//
// State ownership:
//   - internal/ui/state.Session is a plain value. Callers serialise access to
//     it; internal/session does so with a per-session mutex.
package ui
