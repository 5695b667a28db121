package appstate

import (
	"golang.org/x/mobile/event/key"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
)

// Action names a shell command bound to a key.
type Action string

const (
	ActionNone         Action = ""
	ActionPan          Action = "pan"
	ActionDraw         Action = "draw"
	ActionRotateCW     Action = "rotate+"
	ActionRotateCCW    Action = "rotate-"
	ActionFlipH        Action = "fliph"
	ActionFlipV        Action = "flipv"
	ActionZoomIn       Action = "zoomin"
	ActionZoomOut      Action = "zoomout"
	ActionBrightnessUp Action = "brightness+"
	ActionBrightnessDn Action = "brightness-"
	ActionContrastUp   Action = "contrast+"
	ActionContrastDn   Action = "contrast-"
	ActionSaturateUp   Action = "saturate+"
	ActionSaturateDn   Action = "saturate-"
	ActionGrayscaleUp  Action = "grayscale+"
	ActionGrayscaleDn  Action = "grayscale-"
	ActionReset        Action = "reset"
	ActionSave         Action = "save"
	ActionCopy         Action = "copy"
	ActionQuit         Action = "quit"
	ActionWidthUp      Action = "width+"
	ActionWidthDn      Action = "width-"
	ActionCycleColor   Action = "color"
)

const (
	rotateStep = 15
	filterStep = 10
	widthStep  = 2
)

var runeActions = map[rune]Action{
	'p': ActionPan,
	'd': ActionDraw,
	'r': ActionRotateCW,
	'R': ActionRotateCCW,
	'h': ActionFlipH,
	'v': ActionFlipV,
	'+': ActionZoomIn,
	'=': ActionZoomIn,
	'-': ActionZoomOut,
	'b': ActionBrightnessUp,
	'B': ActionBrightnessDn,
	'c': ActionContrastUp,
	'C': ActionContrastDn,
	's': ActionSaturateUp,
	'S': ActionSaturateDn,
	'g': ActionGrayscaleUp,
	'G': ActionGrayscaleDn,
	'0': ActionReset,
	']': ActionWidthUp,
	'[': ActionWidthDn,
	'k': ActionCycleColor,
	'q': ActionQuit,
}

var controlActions = map[rune]Action{
	's': ActionSave,
	'c': ActionCopy,
	'q': ActionQuit,
}

// ActionFor maps a key press to an action. Releases and unbound keys map to
// ActionNone.
func ActionFor(e key.Event) Action {
	if e.Direction == key.DirRelease {
		return ActionNone
	}
	if e.Code == key.CodeEscape {
		return ActionQuit
	}
	if e.Modifiers&key.ModControl != 0 {
		r := e.Rune
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r <= 0 {
			r = controlRune(e.Code)
		}
		return controlActions[r]
	}
	return runeActions[e.Rune]
}

// controlRune recovers the letter of a control chord whose rune the driver
// did not report.
func controlRune(c key.Code) rune {
	switch c {
	case key.CodeS:
		return 's'
	case key.CodeC:
		return 'c'
	case key.CodeQ:
		return 'q'
	}
	return 0
}

// lineColors is the palette cycled by ActionCycleColor.
var lineColors = []string{"#000000", "#ffffff", "#e53935", "#43a047", "#1e88e5", "#fdd835"}

func nextLineColor(cur string) string {
	for i, c := range lineColors {
		if c == cur {
			return lineColors[(i+1)%len(lineColors)]
		}
	}
	return lineColors[0]
}

// apply runs an editing action against ed and returns a status message.
// Save, copy and quit are handled by the shell itself.
func apply(ed *editor.Editor, act Action) string {
	st := ed.State()
	var ok bool
	switch act {
	case ActionPan:
		ok = ed.SetMode(editstate.ModePan)
	case ActionDraw:
		ok = ed.SetMode(editstate.ModeDraw)
	case ActionRotateCW:
		ok = ed.Rotate(rotateStep)
	case ActionRotateCCW:
		ok = ed.Rotate(-rotateStep)
	case ActionFlipH:
		ok = ed.ToggleFlipHorizontal()
	case ActionFlipV:
		ok = ed.ToggleFlipVertical()
	case ActionZoomIn:
		ok = ed.ZoomIn()
	case ActionZoomOut:
		ok = ed.ZoomOut()
	case ActionBrightnessUp:
		ok = ed.SetBrightness(st.Brightness + filterStep)
	case ActionBrightnessDn:
		ok = ed.SetBrightness(st.Brightness - filterStep)
	case ActionContrastUp:
		ok = ed.SetContrast(st.Contrast + filterStep)
	case ActionContrastDn:
		ok = ed.SetContrast(st.Contrast - filterStep)
	case ActionSaturateUp:
		ok = ed.SetSaturate(st.Saturate + filterStep)
	case ActionSaturateDn:
		ok = ed.SetSaturate(st.Saturate - filterStep)
	case ActionGrayscaleUp:
		ok = ed.SetGrayscale(st.Grayscale + filterStep)
	case ActionGrayscaleDn:
		ok = ed.SetGrayscale(st.Grayscale - filterStep)
	case ActionWidthUp:
		ok = ed.SetLineWidth(st.LineWidth + widthStep)
	case ActionWidthDn:
		ok = ed.SetLineWidth(st.LineWidth - widthStep)
	case ActionCycleColor:
		next := nextLineColor(editstate.FormatColor(st.LineColor))
		c, err := editstate.ParseColor(next)
		if err != nil {
			return err.Error()
		}
		ok = ed.SetLineColor(c)
	case ActionReset:
		ed.ResetFilters()
		return "reset"
	default:
		return ""
	}
	if !ok {
		return string(act) + ": not applied"
	}
	return ""
}
