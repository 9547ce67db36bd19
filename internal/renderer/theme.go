package renderer

import "github.com/gdamore/tcell/v2"

// Theme holds the colors the chrome components draw with.
type Theme struct {
	Name string

	Text       tcell.Color
	Background tcell.Color

	TabActiveFg    tcell.Color
	TabActiveBg    tcell.Color
	TabInactiveFg  tcell.Color
	TabInactiveBg  tcell.Color
	TabSeparatorBg tcell.Color

	PopupBorderFg        tcell.Color
	PopupTextFg          tcell.Color
	SuggestionBg         tcell.Color
	SuggestionSelectedBg tcell.Color
	DisabledFg           tcell.Color
}

// DefaultTheme is the dark theme used when no theme is configured.
func DefaultTheme() Theme {
	return Theme{
		Name:                 "default",
		Text:                 tcell.ColorWhite,
		Background:           tcell.ColorBlack,
		TabActiveFg:          tcell.ColorBlack,
		TabActiveBg:          tcell.ColorAqua,
		TabInactiveFg:        tcell.ColorSilver,
		TabInactiveBg:        tcell.ColorNavy,
		TabSeparatorBg:       tcell.ColorBlack,
		PopupBorderFg:        tcell.ColorAqua,
		PopupTextFg:          tcell.ColorWhite,
		SuggestionBg:         tcell.ColorNavy,
		SuggestionSelectedBg: tcell.ColorTeal,
		DisabledFg:           tcell.ColorGray,
	}
}

// LightTheme is a light variant.
func LightTheme() Theme {
	return Theme{
		Name:                 "light",
		Text:                 tcell.ColorBlack,
		Background:           tcell.ColorWhite,
		TabActiveFg:          tcell.ColorWhite,
		TabActiveBg:          tcell.ColorNavy,
		TabInactiveFg:        tcell.ColorBlack,
		TabInactiveBg:        tcell.ColorSilver,
		TabSeparatorBg:       tcell.ColorWhite,
		PopupBorderFg:        tcell.ColorNavy,
		PopupTextFg:          tcell.ColorBlack,
		SuggestionBg:         tcell.ColorSilver,
		SuggestionSelectedBg: tcell.ColorAqua,
		DisabledFg:           tcell.ColorGray,
	}
}

// LookupTheme returns the named theme, falling back to the default.
func LookupTheme(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DefaultTheme()
	}
}
