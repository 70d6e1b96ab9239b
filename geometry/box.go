// Package geometry holds the box arithmetic used to relate damage regions to vehicle parts.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidBox is returned when a box is not exactly four numbers.
var ErrInvalidBox = errors.New("invalid box")

// Epsilon is added to every union so that two zero-area boxes do not divide by zero.
const Epsilon = 1e-6

// Box is an axis-aligned region in image pixels: x1, y1, x2, y2.
// Boxes with x2 < x1 or y2 < y1 are accepted and behave as zero-area boxes.
type Box [4]float64

func (b Box) X1() float64 { return b[0] }
func (b Box) Y1() float64 { return b[1] }
func (b Box) X2() float64 { return b[2] }
func (b Box) Y2() float64 { return b[3] }

// Area returns the box area, clamped to zero for malformed boxes.
func Area(b Box) float64 {
	return max(0, (b[2]-b[0])*(b[3]-b[1]))
}

// Intersection returns the area shared by a and b.
func Intersection(a, b Box) float64 {
	ix1 := max(a[0], b[0])
	iy1 := max(a[1], b[1])
	ix2 := min(a[2], b[2])
	iy2 := min(a[3], b[3])

	return max(0, ix2-ix1) * max(0, iy2-iy1)
}

// IoU returns the intersection-over-union of a and b in [0, 1].
func IoU(a, b Box) float64 {
	return IoUWithEpsilon(a, b, Epsilon)
}

// IoUWithEpsilon is IoU with an explicit union guard.
func IoUWithEpsilon(a, b Box, eps float64) float64 {
	inter := Intersection(a, b)
	union := Area(a) + Area(b) - inter + eps

	return inter / union
}

// UnmarshalJSON accepts exactly four numbers. null coordinates are rejected.
func (b *Box) UnmarshalJSON(data []byte) error {
	var coords []*float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBox, err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("%w: want 4 coordinates, got %d", ErrInvalidBox, len(coords))
	}
	for i, c := range coords {
		if c == nil {
			return fmt.Errorf("%w: coordinate %d is null", ErrInvalidBox, i)
		}
	}

	for i, c := range coords {
		b[i] = *c
	}
	return nil
}
