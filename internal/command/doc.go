// Package command provides the editor command registry.
//
// A fixed built-in command set is merged with dynamically registered plugin
// commands. Plugins may override built-ins by name. The registry backs the
// command palette: Filter performs case-insensitive subsequence matching and
// marks commands unavailable in the current key context as disabled rather
// than hiding them.
package command
