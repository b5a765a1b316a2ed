// Package ui renders styled terminal output for the CLI with lipgloss.
//
// Progress lines and the end-of-run summary share one [Palette]; colors degrade
// to plain text when the output is not a terminal.
package ui
