// Package cli provides command-line helpers for the rampart command,
// currently signal-driven shutdown contexts.
package cli
