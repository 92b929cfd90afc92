// Package theme models the light/dark presentation mode and the CSS variables
// the mini-app shell applies for it.
package theme

// Mode is the presentation mode
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Theme is the persisted presentation preference
type Theme struct {
	Mode Mode `json:"mode"`
}

// Params mirrors the theme parameters injected by the chat platform
type Params struct {
	BgColor          string `json:"bg_color,omitempty"`
	TextColor        string `json:"text_color,omitempty"`
	HintColor        string `json:"hint_color,omitempty"`
	LinkColor        string `json:"link_color,omitempty"`
	ButtonColor      string `json:"button_color,omitempty"`
	ButtonTextColor  string `json:"button_text_color,omitempty"`
	SecondaryBgColor string `json:"secondary_bg_color,omitempty"`
}

// Light returns the default theme
func Light() Theme {
	return Theme{Mode: ModeLight}
}

// Valid reports whether the mode is one of the known modes
func (m Mode) Valid() bool {
	return m == ModeLight || m == ModeDark
}

// Toggle flips between light and dark
func (t Theme) Toggle() Theme {
	if t.Mode == ModeDark {
		return Theme{Mode: ModeLight}
	}
	return Theme{Mode: ModeDark}
}

// Initial picks the stored theme first, then the platform color scheme, then light.
func Initial(stored *Theme, colorScheme Mode) Theme {
	if stored != nil && stored.Mode.Valid() {
		return *stored
	}
	if colorScheme.Valid() {
		return Theme{Mode: colorScheme}
	}
	return Light()
}

// Variables returns the attributes and CSS custom properties the shell applies for a theme.
func Variables(t Theme, p Params) map[string]string {
	mode := t.Mode
	if !mode.Valid() {
		mode = ModeLight
	}

	return map[string]string{
		"data-theme":                    string(mode),
		"--tg-theme-bg-color":           orDefault(p.BgColor, "#ffffff"),
		"--tg-theme-text-color":         orDefault(p.TextColor, "#000000"),
		"--tg-theme-hint-color":         orDefault(p.HintColor, "#999999"),
		"--tg-theme-link-color":         orDefault(p.LinkColor, "#2481cc"),
		"--tg-theme-button-color":       orDefault(p.ButtonColor, "#2481cc"),
		"--tg-theme-button-text-color":  orDefault(p.ButtonTextColor, "#ffffff"),
		"--tg-theme-secondary-bg-color": orDefault(p.SecondaryBgColor, "#f1f1f1"),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
