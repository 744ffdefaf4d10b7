package rppg

// Detector finds candidate face rectangles in a grayscale frame.
type Detector interface {
	Detect(gray *GrayImage) []Rect
}

// Tracker picks one face per frame, preferring continuity with the previous pick.
type Tracker struct {
	detector Detector
	last     *Rect
}

func NewTracker(detector Detector) *Tracker {
	return &Tracker{detector: detector}
}

// Track returns the face closest (Manhattan distance of top-left corners) to the
// previous one, or the largest candidate when there is no previous face.
// When nothing is detected the anchor is cleared.
func (t *Tracker) Track(gray *GrayImage) (Rect, bool) {
	candidates := t.detector.Detect(gray)
	if len(candidates) == 0 {
		t.last = nil
		return Rect{}, false
	}

	chosen := candidates[0]
	if t.last != nil {
		best := manhattan(chosen, *t.last)
		for _, c := range candidates[1:] {
			if d := manhattan(c, *t.last); d < best {
				best = d
				chosen = c
			}
		}
	} else {
		for _, c := range candidates[1:] {
			if c.Area() > chosen.Area() {
				chosen = c
			}
		}
	}

	t.last = &chosen
	return chosen, true
}

func (t *Tracker) Last() (Rect, bool) {
	if t.last == nil {
		return Rect{}, false
	}
	return *t.last, true
}

func (t *Tracker) Reset() { t.last = nil }

func manhattan(a, b Rect) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
