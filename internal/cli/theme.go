package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gremlin/internal/config"
)

// palette is the set of colors a theme is built from.
type palette struct {
	primary lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	faint   lipgloss.Color
	link    lipgloss.Color
	danger  lipgloss.Color
}

var (
	darkPalette = palette{
		primary: colorCyan,
		text:    colorWhite,
		muted:   colorGray,
		faint:   colorDim,
		link:    colorBlue,
		danger:  colorRed,
	}
	lightPalette = palette{
		primary: lipgloss.Color("30"),
		text:    lipgloss.Color("235"),
		muted:   lipgloss.Color("242"),
		faint:   lipgloss.Color("250"),
		link:    lipgloss.Color("25"),
		danger:  lipgloss.Color("124"),
	}
)

// theme holds the rendered styles of the browse view.
type theme struct {
	name string

	title       lipgloss.Style
	input       lipgloss.Style
	placeholder lipgloss.Style
	pkgName     lipgloss.Style
	selected    lipgloss.Style
	version     lipgloss.Style
	desc        lipgloss.Style
	link        lipgloss.Style
	skeleton    lipgloss.Style
	alert       lipgloss.Style
	alertTitle  lipgloss.Style
	help        lipgloss.Style
}

// newTheme returns the theme called name, falling back to dark.
func newTheme(name string) theme {
	p := darkPalette
	if name == config.ThemeLight {
		p = lightPalette
	} else {
		name = config.ThemeDark
	}

	return theme{
		name:        name,
		title:       lipgloss.NewStyle().Bold(true).Foreground(p.primary).Padding(0, 1),
		input:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.primary).Padding(0, 1),
		placeholder: lipgloss.NewStyle().Foreground(p.faint),
		pkgName:     lipgloss.NewStyle().Bold(true).Foreground(p.text),
		selected:    lipgloss.NewStyle().Bold(true).Foreground(p.primary),
		version:     lipgloss.NewStyle().Foreground(p.muted),
		desc:        lipgloss.NewStyle().Foreground(p.muted),
		link:        lipgloss.NewStyle().Foreground(p.link).Underline(true),
		skeleton:    lipgloss.NewStyle().Foreground(p.faint),
		alert:       lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.danger).Padding(0, 1),
		alertTitle:  lipgloss.NewStyle().Bold(true).Foreground(p.danger),
		help:        lipgloss.NewStyle().Foreground(p.faint),
	}
}

// toggle switches between the dark and light themes.
func (t theme) toggle() theme {
	if t.name == config.ThemeDark {
		return newTheme(config.ThemeLight)
	}
	return newTheme(config.ThemeDark)
}
