package command

import (
	"sort"
	"strings"
	"sync"
)

// Registry manages the built-in command set plus dynamically registered
// plugin commands. It is safe for concurrent use.
type Registry struct {
	builtins []Command

	mu     sync.RWMutex
	plugin []Command // registration order preserved
}

// NewRegistry creates a registry seeded with the built-in commands.
func NewRegistry() *Registry {
	return &Registry{builtins: Builtins()}
}

// Register adds a plugin command. An existing plugin command with the same
// name is replaced, so plugins can also shadow built-ins.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.plugin {
		if existing.Name == cmd.Name {
			r.plugin = append(r.plugin[:i], r.plugin[i+1:]...)
			break
		}
	}
	r.plugin = append(r.plugin, cmd)
}

// Unregister removes the plugin command with the given name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.plugin {
		if existing.Name == name {
			r.plugin = append(r.plugin[:i], r.plugin[i+1:]...)
			return
		}
	}
}

// UnregisterPrefix removes every plugin command whose name starts with
// prefix. Plugins namespace their commands, so this is plugin unload.
func (r *Registry) UnregisterPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.plugin[:0]
	for _, cmd := range r.plugin {
		if !strings.HasPrefix(cmd.Name, prefix) {
			kept = append(kept, cmd)
		}
	}
	r.plugin = kept
}

// All returns the built-in commands followed by the plugin commands.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Command, 0, len(r.builtins)+len(r.plugin))
	all = append(all, r.builtins...)
	all = append(all, r.plugin...)
	return all
}

// Find returns the command with the exact name. Plugin commands shadow
// built-ins.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cmd := range r.plugin {
		if cmd.Name == name {
			return cmd, true
		}
	}
	for _, cmd := range r.builtins {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// PluginCount returns the number of registered plugin commands.
func (r *Registry) PluginCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugin)
}

// Count returns the total number of commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builtins) + len(r.plugin)
}

// Filter returns palette suggestions for the query in the given context.
// Matching is a case-insensitive subsequence test on the command name; an
// empty query matches everything. Commands unavailable in ctx are included
// but disabled, and available suggestions sort before disabled ones (the
// relative order within each group is preserved).
func (r *Registry) Filter(query string, ctx Context) []Suggestion {
	queryLower := strings.ToLower(query)

	var suggestions []Suggestion
	for _, cmd := range r.All() {
		if !subsequenceMatch(queryLower, strings.ToLower(cmd.Name)) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Text:        cmd.Name,
			Description: cmd.Description,
			Disabled:    !cmd.AvailableIn(ctx),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return !suggestions[i].Disabled && suggestions[j].Disabled
	})
	return suggestions
}

// subsequenceMatch reports whether every rune of query appears in name in
// order, not necessarily adjacent.
func subsequenceMatch(query, name string) bool {
	if query == "" {
		return true
	}
	qr := []rune(query)
	qi := 0
	for _, nr := range name {
		if nr == qr[qi] {
			qi++
			if qi == len(qr) {
				return true
			}
		}
	}
	return false
}
