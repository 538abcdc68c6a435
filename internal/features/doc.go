// Package features holds the built-in features: listeners that react to
// state change events after a command runs.
package features
