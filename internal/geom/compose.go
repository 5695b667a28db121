package geom

// Axis selects a flip direction.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "unknown"
}

// ComposeRotate composes a rotation of deg degrees about (cx, cy) onto m.
func ComposeRotate(m Matrix, deg, cx, cy float64) Matrix {
	return m.Translate(cx, cy).RotateDegrees(deg).Translate(-cx, -cy)
}

// ComposeFlip composes a mirror along axis onto m. The mirror keeps the
// w x h canvas in place: horizontal is translate(w,0)*scale(-1,1), vertical
// is translate(0,h)*scale(1,-1).
func ComposeFlip(m Matrix, axis Axis, w, h float64) Matrix {
	if axis == Vertical {
		return m.Translate(0, h).Scale(1, -1)
	}
	return m.Translate(w, 0).Scale(-1, 1)
}

// ComposeFlipUnrotated undoes the current rotation about the canvas center,
// mirrors, and re-applies the rotation. The mirror therefore acts on the
// image axes as the user sees them.
func ComposeFlipUnrotated(m Matrix, axis Axis, w, h, rotation float64) Matrix {
	cx, cy := w/2, h/2
	if rotation == 0 {
		return ComposeFlip(m, axis, w, h)
	}
	m = ComposeRotate(m, -rotation, cx, cy)
	m = ComposeFlip(m, axis, w, h)
	return ComposeRotate(m, rotation, cx, cy)
}

// ComposeZoom composes a uniform scale by factor about the user-space pivot
// (px, py) onto m.
func ComposeZoom(m Matrix, factor, px, py float64) Matrix {
	return m.Translate(px, py).Scale(factor, factor).Translate(-px, -py)
}

// Rect is a CSS-pixel rectangle as returned by getBoundingClientRect.
type Rect struct {
	Left, Top, Width, Height float64
}

// Viewport describes where the canvas bitmap is displayed. The bitmap may
// be shown at a different size than its pixel dimensions.
type Viewport struct {
	Rect         Rect
	CanvasWidth  int
	CanvasHeight int
}

// Mounted reports whether the viewport can map pointer positions.
func (v Viewport) Mounted() bool {
	return v.Rect.Width > 0 && v.Rect.Height > 0 && v.CanvasWidth > 0 && v.CanvasHeight > 0
}

// Ratio returns the bitmap-pixels-per-CSS-pixel factors.
func (v Viewport) Ratio() (rx, ry float64) {
	return float64(v.CanvasWidth) / v.Rect.Width, float64(v.CanvasHeight) / v.Rect.Height
}

// ToDevice maps a client position to canvas bitmap (device) pixels.
func (v Viewport) ToDevice(clientX, clientY float64) (Point, bool) {
	if !v.Mounted() {
		return Point{}, false
	}
	rx, ry := v.Ratio()
	return Point{(clientX - v.Rect.Left) * rx, (clientY - v.Rect.Top) * ry}, true
}

// PointerToCanvas maps a client position into canvas user space by
// correcting for the display ratio and applying the inverse of m. ok is
// false when the viewport is not mounted or m cannot be inverted.
func PointerToCanvas(clientX, clientY float64, v Viewport, m Matrix) (Point, bool) {
	dev, ok := v.ToDevice(clientX, clientY)
	if !ok {
		return Point{}, false
	}
	inv, ok := m.Invert()
	if !ok {
		return Point{}, false
	}
	return inv.TransformPoint(dev), true
}

// DeviceToCanvasVector maps a client-space displacement into a user-space
// displacement under m. Zoom is divided out, flips change sign and the
// rotation is undone.
func DeviceToCanvasVector(dx, dy float64, v Viewport, m Matrix) (Point, bool) {
	if !v.Mounted() {
		return Point{}, false
	}
	inv, ok := m.Invert()
	if !ok {
		return Point{}, false
	}
	rx, ry := v.Ratio()
	return inv.TransformVector(Point{dx * rx, dy * ry}), true
}
