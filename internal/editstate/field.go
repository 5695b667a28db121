package editstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field names accepted by SetField. They match the input ids used by the
// front-ends and the keys of the [defaults] config section.
const (
	FieldBrightness = "brightness"
	FieldContrast   = "contrast"
	FieldSaturate   = "saturate"
	FieldGrayscale  = "grayscale"
	FieldRotation   = "rotate"
	FieldZoom       = "zoom"
	FieldLineWidth  = "line_width"
	FieldLineColor  = "line_color"
	FieldMode       = "mode"
)

// ErrUnknownField is wrapped by SetField for names it does not recognise.
var ErrUnknownField = errors.New("unknown field")

// ParseLeadingInt reads an optionally signed run of decimal digits from the
// start of s, ignoring leading white space and any trailing text, so
// "42px" yields 42 and "-7.9" yields -7. ok is false when no digits are
// present.
func ParseLeadingInt(s string) (v int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetField applies a raw text input to the named field. Numeric fields take
// the leading integer of raw; values that do not parse or fall outside the
// field's range are ignored and applied reports false. err is only set for
// an unknown field name.
func (s *State) SetField(name, raw string) (applied bool, err error) {
	switch name {
	case FieldLineColor:
		c, err := ParseColor(raw)
		if err != nil {
			return false, nil
		}
		s.LineColor = c
		return true, nil
	case FieldMode:
		m, err := ParseMode(raw)
		if err != nil {
			return false, nil
		}
		return s.SetMode(m), nil
	}

	var setter func(float64) bool
	switch name {
	case FieldBrightness:
		setter = s.SetBrightness
	case FieldContrast:
		setter = s.SetContrast
	case FieldSaturate:
		setter = s.SetSaturate
	case FieldGrayscale:
		setter = s.SetGrayscale
	case FieldRotation:
		setter = s.SetRotation
	case FieldLineWidth:
		setter = s.SetLineWidth
	case FieldZoom:
		// zoom is fractional, so it does not go through the integer parser
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return false, nil
		}
		return s.SetZoom(v), nil
	default:
		return false, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	v, ok := ParseLeadingInt(raw)
	if !ok {
		return false, nil
	}
	return setter(float64(v)), nil
}
