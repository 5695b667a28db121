package theme

import (
	"image/color"
)

// Theme defines the colors of the desktop editor window.
type Theme struct {
	Name string

	// Canvas backdrop, shown through transparent pixels and around the image
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA
	MessageText      color.RGBA // transient messages such as "saved"
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		CheckerLight:     color.RGBA{0xee, 0xee, 0xee, 0xff},
		CheckerDark:      color.RGBA{0xcc, 0xcc, 0xcc, 0xff},
		StatusBackground: color.RGBA{0x20, 0x20, 0x20, 0xff},
		StatusText:       color.RGBA{0xf0, 0xf0, 0xf0, 0xff},
		MessageText:      color.RGBA{0xff, 0xd7, 0x40, 0xff},
	}
}

// Dark returns the built-in dark theme.
func Dark() *Theme {
	return &Theme{
		Name:             "Dark",
		CheckerLight:     color.RGBA{0x3a, 0x3a, 0x3a, 0xff},
		CheckerDark:      color.RGBA{0x2a, 0x2a, 0x2a, 0xff},
		StatusBackground: color.RGBA{0x10, 0x10, 0x10, 0xff},
		StatusText:       color.RGBA{0xc8, 0xc8, 0xc8, 0xff},
		MessageText:      color.RGBA{0x7c, 0xc4, 0xff, 0xff},
	}
}

var builtin = map[string]func() *Theme{
	"default": Default,
	"light":   Default,
	"dark":    Dark,
}
