package trajectory

import (
	"gonum.org/v1/gonum/floats"

	"github.com/drawpath/drawpath/server/internal/lib/geo"
)

const minSmoothWidth = 3

// Smoother is a symmetric triangular FIR filter applied to longitude and
// latitude independently. The first and last points are never moved.
//
// With width 5 the coefficients are 1, 4, 9, 4, 1: the squared distance-to-edge
// plus one, so the point being smoothed weighs most.
//
// Smoother values are immutable; WithWidth returns a new filter.
type Smoother struct {
	width        int
	coefficients []float64
	sum          float64
}

// NewSmoother creates a filter spanning width points. Widths below 3 become 3
// and even widths are bumped to the next odd value so the window has a center.
func NewSmoother(width int) Smoother {
	width = normalizeSmoothWidth(width)

	coefficients := make([]float64, width)
	for i := range coefficients {
		k := min(i, width-1-i) + 1
		coefficients[i] = float64(k * k)
	}

	return Smoother{
		width:        width,
		coefficients: coefficients,
		sum:          floats.Sum(coefficients),
	}
}

// WithWidth returns a filter with the new width, leaving s untouched
func (s Smoother) WithWidth(width int) Smoother {
	return NewSmoother(width)
}

// Width returns the normalized window width
func (s Smoother) Width() int {
	return s.width
}

// Coefficients returns a copy of the filter kernel
func (s Smoother) Coefficients() []float64 {
	out := make([]float64, len(s.coefficients))
	copy(out, s.coefficients)
	return out
}

// Filter returns the smoothed trajectory. Points whose window would run past
// either end are averaged over the points available, normalized by the
// coefficients actually used.
func (s Smoother) Filter(t Trajectory) Trajectory {
	if s.width == 0 {
		s = NewSmoother(minSmoothWidth)
	}

	n := len(t)
	out := make(Trajectory, n)
	half := s.width / 2

	for i := 0; i < n; i++ {
		if i == 0 || i == n-1 {
			out[i] = t[i]
			continue
		}

		var sumLng, sumLat, coeffSum float64
		if i >= half && i <= n-half-1 {
			for j := -half; j <= half; j++ {
				c := s.coefficients[j+half]
				sumLng += c * t[i+j].Longitude
				sumLat += c * t[i+j].Latitude
			}
			coeffSum = s.sum
		} else {
			for j := -half; j <= half; j++ {
				if i+j < 0 || i+j >= n {
					continue
				}
				c := s.coefficients[j+half]
				sumLng += c * t[i+j].Longitude
				sumLat += c * t[i+j].Latitude
				coeffSum += c
			}
		}

		out[i] = geo.NewPointUnsafe(sumLng/coeffSum, sumLat/coeffSum)
	}

	return out
}

func normalizeSmoothWidth(width int) int {
	if width < minSmoothWidth {
		width = minSmoothWidth
	}
	if width%2 == 0 {
		width++
	}
	return width
}
