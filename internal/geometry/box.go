package geometry

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned bounding box in page pixel coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBox constructs a Box from min/max coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Empty reports whether the box has zero area.
func (b Box) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Contains reports whether other lies fully within b.
func (b Box) Contains(other Box) bool {
	return other.MinX >= b.MinX && other.MinY >= b.MinY &&
		other.MaxX <= b.MaxX && other.MaxY <= b.MaxY
}

// Intersect returns the intersection of two boxes. The result may be empty.
func (b Box) Intersect(other Box) Box {
	ix1 := math.Max(b.MinX, other.MinX)
	iy1 := math.Max(b.MinY, other.MinY)
	ix2 := math.Min(b.MaxX, other.MaxX)
	iy2 := math.Min(b.MaxY, other.MaxY)
	if ix1 >= ix2 || iy1 >= iy2 {
		return Box{}
	}
	return Box{MinX: ix1, MinY: iy1, MaxX: ix2, MaxY: iy2}
}

// Union returns the smallest box covering both boxes.
func (b Box) Union(other Box) Box {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return Box{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// OverlapRatio returns the intersection area divided by the smaller box area.
// Returns 0 when either box is empty. Used to decide whether two candidate
// regions should be merged.
func (b Box) OverlapRatio(other Box) float64 {
	if b.Empty() || other.Empty() {
		return 0
	}
	inter := b.Intersect(other).Area()
	smaller := math.Min(b.Area(), other.Area())
	if smaller <= 0 {
		return 0
	}
	return inter / smaller
}

// HorizontalGap returns the gap between two boxes along the x axis,
// negative when they overlap horizontally.
func (b Box) HorizontalGap(other Box) float64 {
	if b.MinX > other.MaxX {
		return b.MinX - other.MaxX
	}
	if other.MinX > b.MaxX {
		return other.MinX - b.MaxX
	}
	return -math.Min(b.MaxX, other.MaxX) + math.Max(b.MinX, other.MinX)
}

// VerticalGap returns the gap between two boxes along the y axis,
// negative when they overlap vertically.
func (b Box) VerticalGap(other Box) float64 {
	if b.MinY > other.MaxY {
		return b.MinY - other.MaxY
	}
	if other.MinY > b.MaxY {
		return other.MinY - b.MaxY
	}
	return -math.Min(b.MaxY, other.MaxY) + math.Max(b.MinY, other.MinY)
}

// VerticalOverlap returns the overlapping extent of two boxes along the y
// axis. Used for grouping regions into reading-order row bands.
func (b Box) VerticalOverlap(other Box) float64 {
	top := math.Max(b.MinY, other.MinY)
	bottom := math.Min(b.MaxY, other.MaxY)
	if bottom <= top {
		return 0
	}
	return bottom - top
}

// ToRect converts a Box to an image.Rectangle, clamped to image bounds.
func (b Box) ToRect(bounds image.Rectangle) image.Rectangle {
	x1 := clampInt(int(math.Floor(b.MinX)), bounds.Min.X, bounds.Max.X)
	y1 := clampInt(int(math.Floor(b.MinY)), bounds.Min.Y, bounds.Max.Y)
	x2 := clampInt(int(math.Ceil(b.MaxX)), bounds.Min.X, bounds.Max.X)
	y2 := clampInt(int(math.Ceil(b.MaxY)), bounds.Min.Y, bounds.Max.Y)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return image.Rect(x1, y1, x2, y2)
}

// Expand grows the box by pad on every side, clamped to bounds.
func (b Box) Expand(pad float64, bounds image.Rectangle) Box {
	return Box{
		MinX: math.Max(float64(bounds.Min.X), b.MinX-pad),
		MinY: math.Max(float64(bounds.Min.Y), b.MinY-pad),
		MaxX: math.Min(float64(bounds.Max.X), b.MaxX+pad),
		MaxY: math.Min(float64(bounds.Max.Y), b.MaxY+pad),
	}
}

// FromRect converts an image.Rectangle to a Box.
func FromRect(r image.Rectangle) Box {
	return Box{
		MinX: float64(r.Min.X),
		MinY: float64(r.Min.Y),
		MaxX: float64(r.Max.X),
		MaxY: float64(r.Max.Y),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
