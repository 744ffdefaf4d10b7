package rppg

import "math"

const (
	minRRMillis    = 300.0
	maxRRMillis    = 2000.0
	minRMSSDMillis = 5.0
	maxRMSSDMillis = 200.0
)

// rmssd computes the root mean square of successive R-R differences in milliseconds from peak indices.
// Intervals outside [300, 2000] ms are discarded; results outside (5, 200) ms are rejected.
func rmssd(peaks []int, fs float64) (float64, bool) {
	if len(peaks) < 3 || fs <= 0 {
		return 0, false
	}

	var rr []float64
	for i := 1; i < len(peaks); i++ {
		ms := float64(peaks[i]-peaks[i-1]) / fs * 1000
		if ms >= minRRMillis && ms <= maxRRMillis {
			rr = append(rr, ms)
		}
	}
	if len(rr) < 3 {
		return 0, false
	}

	var sum float64
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		sum += d * d
	}
	v := math.Sqrt(sum / float64(len(rr)-1))

	if v < minRMSSDMillis || v > maxRMSSDMillis {
		return 0, false
	}
	return v, true
}
