package explorer

// Theme names an ocean color preset.
type Theme string

const (
	ThemeBlue   Theme = "blue"
	ThemeTeal   Theme = "teal"
	ThemePurple Theme = "purple"
	ThemeSunset Theme = "sunset"
)

var themeColors = map[Theme]uint32{
	ThemeBlue:   0x1a5f7a,
	ThemeTeal:   0x2a9d8f,
	ThemePurple: 0x6a4c93,
	ThemeSunset: 0xe76f51,
}

// Color returns the ocean color of the theme. Unknown themes are blue.
func (t Theme) Color() uint32 {
	if c, ok := themeColors[t]; ok {
		return c
	}
	return themeColors[ThemeBlue]
}

// Settings are the viewer preferences.
type Settings struct {
	ShowBreadcrumbs bool
	ShowCompass     bool
	ShowMinimap     bool
	OceanTheme      Theme
	BoatSpeed       float32
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		ShowBreadcrumbs: true,
		ShowCompass:     true,
		ShowMinimap:     true,
		OceanTheme:      ThemeBlue,
		BoatSpeed:       1.0,
	}
}
