// Package render draws engine views as text for terminals and chat clients.
//
// Boards are plain UTF-8 with optional ANSI colour for red suits. Face-down
// tableau cards are drawn as ## so a rendering never reveals hidden cards.
package render
