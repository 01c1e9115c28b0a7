package treeseq

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"tseda/internal/errors"
)

// MakeWindows builds window bounds for statistics: evenly spaced over
// [0, sequenceLength] with floor(sequenceLength/windowSize) windows,
// the last bound clamped to the exact sequence length.
func MakeWindows(windowSize, sequenceLength float64) ([]float64, error) {
	if windowSize < 1 {
		return nil, errors.InvalidInput("window size must be at least 1, got %g", windowSize)
	}
	num := int(sequenceLength / windowSize)
	if num < 1 {
		num = 1
	}
	windows := make([]float64, num+1)
	floats.Span(windows, 0, sequenceLength)
	windows[len(windows)-1] = sequenceLength
	return windows, nil
}

// checkWindows validates externally supplied window bounds.
func checkWindows(windows []float64, sequenceLength float64) error {
	if len(windows) < 2 {
		return errors.InvalidInput("need at least two window bounds, got %d", len(windows))
	}
	if windows[0] != 0 || windows[len(windows)-1] != sequenceLength {
		return errors.InvalidInput("window bounds must span [0, %g]", sequenceLength)
	}
	for i := 1; i < len(windows); i++ {
		if windows[i] <= windows[i-1] {
			return errors.InvalidInput("window bounds must be strictly increasing")
		}
	}
	return nil
}

// windowIndex locates the window containing a genome position.
func windowIndex(windows []float64, position float64) int {
	// SearchFloat64s returns the first bound > position when stepping
	// back by one, which is the window the position falls in.
	i := sort.SearchFloat64s(windows, position)
	if i < len(windows) && windows[i] == position {
		return i
	}
	return i - 1
}
