package rppg

import (
	"image"
	"image/draw"
	"time"
)

// Frame is a single captured video frame with packed BGR24 pixels (row-major, 3 bytes per pixel).
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	Data      []byte
}

func NewFrame(seq uint64, ts time.Time, width, height int) *Frame {
	return &Frame{
		Seq:       seq,
		Timestamp: ts,
		Width:     width,
		Height:    height,
		Data:      make([]byte, width*height*3),
	}
}

// Set writes one pixel. Out of range coordinates are ignored.
func (f *Frame) Set(x, y int, b, g, r uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 3
	f.Data[i] = b
	f.Data[i+1] = g
	f.Data[i+2] = r
}

func (f *Frame) At(x, y int) (b, g, r uint8) {
	i := (y*f.Width + x) * 3
	return f.Data[i], f.Data[i+1], f.Data[i+2]
}

// Gray converts the frame to an 8-bit luma plane using BT.601 weights.
func (f *Frame) Gray() *GrayImage {
	gray := &GrayImage{Width: f.Width, Height: f.Height, Pix: make([]uint8, f.Width*f.Height)}
	for p := 0; p < f.Width*f.Height; p++ {
		b := float64(f.Data[p*3])
		g := float64(f.Data[p*3+1])
		r := float64(f.Data[p*3+2])
		gray.Pix[p] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
	}
	return gray
}

// FrameFromImage converts a decoded image (typically a JPEG sent by the stream client) into a BGR24 frame.
func FrameFromImage(img image.Image, seq uint64, ts time.Time) *Frame {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	origin := rgba.Bounds().Min
	frame := NewFrame(seq, ts, bounds.Dx(), bounds.Dy())
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			i := rgba.PixOffset(origin.X+x, origin.Y+y)
			frame.Set(x, y, rgba.Pix[i+2], rgba.Pix[i+1], rgba.Pix[i])
		}
	}
	return frame
}

// GrayImage is a single channel luma plane used for face detection.
type GrayImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// Rect is an axis-aligned pixel rectangle; X, Y is the top-left corner.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Clamp moves the origin inside the frame and trims the size so the region fits.
func (r Rect) Clamp(frameW, frameH int) Rect {
	x := max(0, min(r.X, frameW-1))
	y := max(0, min(r.Y, frameH-1))
	return Rect{
		X: x,
		Y: y,
		W: min(r.W, frameW-x),
		H: min(r.H, frameH-y),
	}
}
