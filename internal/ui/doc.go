// Package ui renders sync progress and run summaries for the terminal with [lipgloss] styles.
package ui
