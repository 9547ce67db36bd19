// Package renderer draws the editor chrome onto a tcell screen: the tab
// bar for open buffers, the command palette suggestions popup, and the
// themes both draw with. Buffer text layout is left to the integrating
// shell; the components here only own their own screen regions.
package renderer
