package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var (
	// DefaultWindowSize fits beside a 800x600 game client
	DefaultWindowSize = fyne.NewSize(420, 520)

	ColorPrimary    = color.NRGBA{R: 126, G: 87, B: 194, A: 255} // Deep purple
	ColorSuccess    = color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	ColorWarning    = color.NRGBA{R: 255, G: 179, B: 0, A: 255}
	ColorError      = color.NRGBA{R: 229, G: 57, B: 53, A: 255}
	ColorBackground = color.NRGBA{R: 24, G: 20, B: 32, A: 255}
)

// DanceTheme is the progress window theme
type DanceTheme struct{}

func (t *DanceTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameButton:
		return ColorPrimary
	case theme.ColorNameBackground:
		return ColorBackground
	case theme.ColorNameSuccess:
		return ColorSuccess
	case theme.ColorNameWarning:
		return ColorWarning
	case theme.ColorNameError:
		return ColorError
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *DanceTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *DanceTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *DanceTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 18
	case theme.SizeNamePadding:
		return 6
	default:
		return theme.DefaultTheme().Size(name)
	}
}

// statusImportance maps a session status onto a label color
func statusImportance(status string) widget.Importance {
	switch status {
	case "Finished":
		return widget.SuccessImportance
	case "Stalled", "Cancelled":
		return widget.WarningImportance
	case "Failed":
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}
