// Package images - Box geometry shared by detection postprocessing.
package images

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Rect is an axis-aligned detection box in absolute pixel coordinates.
//
// Both corners are inclusive: a box with X1 == X2 is one pixel wide. Every area and
// overlap computation in this module uses that convention so that scores stay
// numerically compatible with the pixel-counting reference output.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Width returns the inclusive pixel width of the box.
func (r Rect) Width() float32 {
	return r.X2 - r.X1 + 1
}

// Height returns the inclusive pixel height of the box.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1 + 1
}

// Area returns the inclusive pixel area, (x2-x1+1) * (y2-y1+1).
func (r Rect) Area() float32 {
	return r.Width() * r.Height()
}

// Valid reports whether the corners are ordered (X1 <= X2 and Y1 <= Y2) and finite.
func (r Rect) Valid() bool {
	for _, v := range [...]float32{r.X1, r.Y1, r.X2, r.Y2} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return r.X1 <= r.X2 && r.Y1 <= r.Y2
}

// SearchExtent returns the envelope used to index the box spatially.
//
// Because corners are inclusive the box reaches up to X2+1 on the pixel grid. Two boxes
// with a non-zero CalculateIoU always have overlapping extents. The extent stays in
// float32 so any finite box is representable.
//
// Returns:
//   - x1, y1, x2, y2: X1, Y1, X2+1, Y2+1.
func (r Rect) SearchExtent() (x1, y1, x2, y2 float32) {
	return r.X1, r.Y1, r.X2 + 1, r.Y2 + 1
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.1f, %.1f), (%.1f, %.1f)", r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
// IoU = Area of Intersection / Area of Union
//
//   - 1.0 means the boxes are identical.
//   - 0.0 means the boxes do not overlap at all.
//
// The intersection corners are the maximum of the two top-left corners and the minimum
// of the two bottom-right corners. Its inclusive width and height are clamped at zero,
// so disjoint boxes short-circuit to 0. The union follows inclusion-exclusion:
//
//	Area(Union) = Area(A) + Area(B) - Area(Intersection)
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	a := Rect{X1: 0, Y1: 0, X2: 9, Y2: 9} // 10x10 pixels
//	b := Rect{X1: 5, Y1: 5, X2: 14, Y2: 14}
//
//	iou := CalculateIoU(a, b) // intersection 5x5=25, union 100+100-25=175, iou=0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := max(0, ix2-ix1+1)
	interH := max(0, iy2-iy1+1)
	if interW == 0 || interH == 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
