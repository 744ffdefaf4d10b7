package rppg

// NamedROI is a sub-region of a detected face used for signal extraction.
type NamedROI struct {
	Name string
	Rect Rect
}

const (
	greenWeight = 0.7
	redWeight   = 0.3
)

// ExtractSignal returns the weighted green/red mean intensity over roi.
// The region is clamped to the frame first; false means the clamped region is degenerate.
func ExtractSignal(frame *Frame, roi Rect) (float64, bool) {
	if frame == nil || frame.Width <= 0 || frame.Height <= 0 {
		return 0, false
	}

	r := roi.Clamp(frame.Width, frame.Height)
	if r.Empty() {
		return 0, false
	}

	var sumG, sumR float64
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			_, g, red := frame.At(x, y)
			sumG += float64(g)
			sumR += float64(red)
		}
	}

	n := float64(r.Area())
	return greenWeight*(sumG/n) + redWeight*(sumR/n), true
}

// FaceROIs splits a face box into forehead and cheek regions.
func FaceROIs(face Rect) []NamedROI {
	w := float64(face.W)
	h := float64(face.H)
	return []NamedROI{
		{Name: "forehead", Rect: Rect{
			X: face.X + int(w*0.25), Y: face.Y + int(h*0.05),
			W: int(w * 0.5), H: int(h * 0.15),
		}},
		{Name: "left_cheek", Rect: Rect{
			X: face.X + int(w*0.1), Y: face.Y + int(h*0.45),
			W: int(w * 0.25), H: int(h * 0.25),
		}},
		{Name: "right_cheek", Rect: Rect{
			X: face.X + int(w*0.65), Y: face.Y + int(h*0.45),
			W: int(w * 0.25), H: int(h * 0.25),
		}},
	}
}

// CombinedSignal averages the valid ROI signals of a face.
// The second return value is the number of ROIs that contributed; zero means the frame must be skipped.
func CombinedSignal(frame *Frame, face Rect) (float64, int) {
	var sum float64
	var valid int
	for _, roi := range FaceROIs(face) {
		v, ok := ExtractSignal(frame, roi.Rect)
		if !ok {
			continue
		}
		sum += v
		valid++
	}
	if valid == 0 {
		return 0, 0
	}
	return sum / float64(valid), valid
}
