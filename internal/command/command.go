package command

// Context identifies the input context a command is available in.
type Context int

const (
	// ContextNormal is regular buffer navigation and editing.
	ContextNormal Context = iota
	// ContextPrompt is active while the command palette or a prompt owns input.
	ContextPrompt
	// ContextHelp is active while the help screen is shown.
	ContextHelp
)

// String returns the context name.
func (c Context) String() string {
	switch c {
	case ContextNormal:
		return "normal"
	case ContextPrompt:
		return "prompt"
	case ContextHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Command is a named, palette-visible editor action.
type Command struct {
	// Name is the unique palette-visible name; registration replaces by it.
	Name string
	// Description is shown next to the name in the palette.
	Description string
	// Action is the symbolic action identifier dispatched on execution.
	Action string
	// Contexts lists where the command is available. Empty means everywhere.
	Contexts []Context
}

// AvailableIn reports whether the command can run in the given context.
func (c Command) AvailableIn(ctx Context) bool {
	if len(c.Contexts) == 0 {
		return true
	}
	for _, cc := range c.Contexts {
		if cc == ctx {
			return true
		}
	}
	return false
}

// Suggestion is one palette entry produced by Registry.Filter.
type Suggestion struct {
	Text        string
	Description string
	// Disabled marks a command that matched the query but is unavailable in
	// the current context; the palette shows it dimmed.
	Disabled bool
}

// Builtins returns the built-in command set.
func Builtins() []Command {
	return []Command{
		{Name: "Save File", Description: "Flush pending edits to the backing file", Action: "file.save"},
		{Name: "Quit", Description: "Exit, prompting if edits are unsaved", Action: "app.quit"},
		{Name: "Go To Line", Description: "Jump to a line by number", Action: "cursor.goto", Contexts: []Context{ContextNormal}},
		{Name: "Insert Line", Description: "Insert a line below the cursor", Action: "edit.insert-line", Contexts: []Context{ContextNormal}},
		{Name: "Delete Line", Description: "Delete the line under the cursor", Action: "edit.delete-line", Contexts: []Context{ContextNormal}},
		{Name: "Next Tab", Description: "Switch to the next buffer tab", Action: "tab.next", Contexts: []Context{ContextNormal}},
		{Name: "Previous Tab", Description: "Switch to the previous buffer tab", Action: "tab.prev", Contexts: []Context{ContextNormal}},
		{Name: "Reload File", Description: "Discard cached chunks and re-read the file", Action: "file.reload", Contexts: []Context{ContextNormal}},
		{Name: "Close Help", Description: "Return from the help screen", Action: "help.close", Contexts: []Context{ContextHelp}},
	}
}
