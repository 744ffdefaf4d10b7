package rppg

import "sort"

// peakCriteria mirrors the usual find-peaks knobs. Zero values disable a criterion.
type peakCriteria struct {
	Height     float64
	Distance   int
	Prominence float64
}

// findPeaks returns indices of local maxima satisfying the criteria, ascending.
// Filters apply in the order height, distance, prominence.
func findPeaks(x []float64, c peakCriteria) []int {
	peaks := localMaxima(x)

	if c.Height > 0 {
		kept := peaks[:0]
		for _, p := range peaks {
			if x[p] >= c.Height {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}

	if c.Distance > 1 && len(peaks) > 1 {
		peaks = selectByDistance(x, peaks, c.Distance)
	}

	if c.Prominence > 0 {
		kept := peaks[:0]
		for _, p := range peaks {
			if prominence(x, p) >= c.Prominence {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}
	return peaks
}

// localMaxima finds strict local maxima; a flat plateau yields its middle sample (rounded down).
func localMaxima(x []float64) []int {
	var peaks []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
		}
	}
	return peaks
}

// selectByDistance keeps the tallest peaks, dropping any neighbour closer than distance samples.
func selectByDistance(x []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return x[peaks[order[i]]] < x[peaks[order[j]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	kept := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			kept = append(kept, p)
		}
	}
	return kept
}

// prominence is the peak height above the higher of the two lowest points
// reached before encountering a taller sample on either side.
func prominence(x []float64, peak int) float64 {
	top := x[peak]

	leftMin := top
	for i := peak; i >= 0 && x[i] <= top; i-- {
		if x[i] < leftMin {
			leftMin = x[i]
		}
	}

	rightMin := top
	for i := peak; i < len(x) && x[i] <= top; i++ {
		if x[i] < rightMin {
			rightMin = x[i]
		}
	}

	return top - max(leftMin, rightMin)
}
