// Package plugin loads Lua command plugins.
//
// A plugin is a Lua script that declares palette commands through
// register_command. Scripts run once at load time in a sandboxed state:
// only the base, table, string, and math libraries are open, and the
// code-loading builtins are removed. The state is closed after the script
// returns; plugins are declarative registrars, not resident interpreters.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hugefile/internal/command"
	"github.com/dshills/hugefile/internal/log"
)

var logger = log.GetLogger("plugin")

// Loader loads plugin scripts and tracks their registrations so a plugin
// can be unloaded again.
type Loader struct {
	registry *command.Registry

	mu     sync.Mutex
	loaded map[string][]string // plugin name -> registered command names
}

// NewLoader creates a loader registering into the given registry.
func NewLoader(registry *command.Registry) *Loader {
	return &Loader{
		registry: registry,
		loaded:   make(map[string][]string),
	}
}

// LoadScript runs one plugin script. The plugin's name is the file name
// without extension; its commands are registered as "<Name>: <command>",
// so unloading by prefix cannot touch another plugin's commands.
func (l *Loader) LoadScript(path string) error {
	name := pluginName(path)

	l.mu.Lock()
	if _, ok := l.loaded[name]; ok {
		l.mu.Unlock()
		return fmt.Errorf("plugin %s: already loaded", name)
	}
	l.mu.Unlock()

	L := newSandboxedState()
	defer L.Close()

	var registered []string
	L.SetGlobal("register_command", L.NewFunction(func(L *lua.LState) int {
		cmdName := L.CheckString(1)
		desc := L.OptString(2, "")
		contexts, err := parseContexts(L.OptTable(3, nil))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}

		full := name + ": " + cmdName
		l.registry.Register(command.Command{
			Name:        full,
			Description: desc,
			Action:      "plugin." + name,
			Contexts:    contexts,
		})
		registered = append(registered, full)
		return 0
	}))

	if err := L.DoFile(path); err != nil {
		// Half-registered commands from a failed script must not linger.
		for _, cmdName := range registered {
			l.registry.Unregister(cmdName)
		}
		return fmt.Errorf("plugin %s: %w", name, err)
	}

	l.mu.Lock()
	l.loaded[name] = registered
	l.mu.Unlock()
	logger.Debugf("loaded plugin %s (%d commands)", name, len(registered))
	return nil
}

// LoadDir loads every .lua script in dir in name order. A missing directory
// is not an error. The first failing script aborts the load.
func (l *Loader) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading plugin dir %s: %w", dir, err)
	}

	var scripts []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			scripts = append(scripts, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(scripts)

	for _, script := range scripts {
		if err := l.LoadScript(script); err != nil {
			return err
		}
	}
	return nil
}

// Unload removes every command the named plugin registered.
func (l *Loader) Unload(name string) {
	l.mu.Lock()
	_, ok := l.loaded[name]
	delete(l.loaded, name)
	l.mu.Unlock()
	if !ok {
		return
	}
	l.registry.UnregisterPrefix(name + ":")
	logger.Debugf("unloaded plugin %s", name)
}

// Loaded returns the names of loaded plugins, sorted.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.loaded))
	for name := range l.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pluginName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// newSandboxedState creates a Lua state with only safe libraries open.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// The base library brings code-loading entry points along; none of
	// them belong in a declarative plugin script.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// parseContexts converts a Lua array of context names. nil means all
// contexts.
func parseContexts(tbl *lua.LTable) ([]command.Context, error) {
	if tbl == nil {
		return nil, nil
	}
	var contexts []command.Context
	var parseErr error
	tbl.ForEach(func(_, v lua.LValue) {
		if parseErr != nil {
			return
		}
		switch v.String() {
		case "normal":
			contexts = append(contexts, command.ContextNormal)
		case "prompt":
			contexts = append(contexts, command.ContextPrompt)
		case "help":
			contexts = append(contexts, command.ContextHelp)
		default:
			parseErr = fmt.Errorf("unknown context %q", v.String())
		}
	})
	return contexts, parseErr
}
