package contour

import (
	"errors"
	"fmt"
	"image"
)

var ErrInvalidWindow = errors.New("smoothing window must be a positive integer")

// Smooth applies a circular moving average of width window to c.
//
// Point i becomes the mean of the window samples at offsets
// -window/2 .. window-1-window/2, indices taken modulo len(c). An even window
// therefore takes one more sample behind i than ahead of it. Means use floor
// division so the result stays on the integer pixel grid.
func Smooth(c Contour, window int) (Contour, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	n := len(c)
	out := make(Contour, n)
	if n == 0 {
		return out, nil
	}

	lo := -(window / 2)
	hi := lo + window - 1

	for i := range c {
		var sumX, sumY int
		for j := lo; j <= hi; j++ {
			p := c[wrap(i+j, n)]
			sumX += p.X
			sumY += p.Y
		}
		out[i] = image.Point{X: floorDiv(sumX, window), Y: floorDiv(sumY, window)}
	}

	return out, nil
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
