// Package imagebuf provides the multi-frame, multi-channel float64 image buffer
// shared by every light-field operation.
//
// Pixels live in one contiguous slice in row-major order with interleaved
// channels, frame after frame:
//
//	Data[((t*Height+y)*Width+x)*Channels+c]
//
// Frame views alias the parent's storage, so accumulating into a frame view
// updates the multi-frame image in place.
package imagebuf

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrShape is returned when two images that must match in size do not.
var ErrShape = errors.New("image shapes differ")

// Image is a dense float64 image with any number of frames and channels.
type Image struct {
	// Width and Height are the spatial dimensions in pixels
	Width, Height int

	// Frames is the number of stacked images (1 for a plain image)
	Frames int

	// Channels is the number of samples per pixel
	Channels int

	// Data holds Width*Height*Frames*Channels samples
	Data []float64
}

// New allocates a zeroed image.
func New(width, height, frames, channels int) *Image {
	if width < 0 || height < 0 || frames < 0 || channels < 0 {
		panic(fmt.Sprintf("imagebuf: negative dimension %dx%dx%dx%d", width, height, frames, channels))
	}
	return &Image{
		Width:    width,
		Height:   height,
		Frames:   frames,
		Channels: channels,
		Data:     make([]float64, width*height*frames*channels),
	}
}

// Offset returns the index of channel 0 of pixel (x, y) in frame t.
func (im *Image) Offset(x, y, t int) int {
	return ((t*im.Height+y)*im.Width + x) * im.Channels
}

// At returns a single sample.
func (im *Image) At(x, y, t, c int) float64 {
	return im.Data[im.Offset(x, y, t)+c]
}

// Set writes a single sample.
func (im *Image) Set(x, y, t, c int, val float64) {
	im.Data[im.Offset(x, y, t)+c] = val
}

// Pixel returns the channels of pixel (x, y) in frame t. The slice aliases Data.
func (im *Image) Pixel(x, y, t int) []float64 {
	i := im.Offset(x, y, t)
	return im.Data[i : i+im.Channels : i+im.Channels]
}

// FrameSize is the number of samples in one frame.
func (im *Image) FrameSize() int {
	return im.Width * im.Height * im.Channels
}

// Frame returns a single-frame view of frame t sharing storage with im.
func (im *Image) Frame(t int) *Image {
	if t < 0 || t >= im.Frames {
		panic(fmt.Sprintf("imagebuf: frame %d out of range [0, %d)", t, im.Frames))
	}
	n := im.FrameSize()
	return &Image{
		Width:    im.Width,
		Height:   im.Height,
		Frames:   1,
		Channels: im.Channels,
		Data:     im.Data[t*n : (t+1)*n : (t+1)*n],
	}
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := &Image{
		Width:    im.Width,
		Height:   im.Height,
		Frames:   im.Frames,
		Channels: im.Channels,
		Data:     make([]float64, len(im.Data)),
	}
	copy(out.Data, im.Data)
	return out
}

// SameShape reports whether im and other have identical dimensions.
func (im *Image) SameShape(other *Image) bool {
	return im.Width == other.Width && im.Height == other.Height &&
		im.Frames == other.Frames && im.Channels == other.Channels
}

// Add accumulates other into im sample by sample.
func (im *Image) Add(other *Image) error {
	if !im.SameShape(other) {
		return fmt.Errorf("add %dx%dx%dx%d to %dx%dx%dx%d: %w",
			other.Width, other.Height, other.Frames, other.Channels,
			im.Width, im.Height, im.Frames, im.Channels, ErrShape)
	}
	floats.Add(im.Data, other.Data)
	return nil
}

// Divide divides every sample by s.
func (im *Image) Divide(s float64) {
	floats.Scale(1/s, im.Data)
}

// Fill sets every sample to val.
func (im *Image) Fill(val float64) {
	for i := range im.Data {
		im.Data[i] = val
	}
}

// Stats summarizes the sample values of an image.
type Stats struct {
	Mean, StdDev float64
	Min, Max     float64
}

// Stats computes summary statistics over all samples. An empty image
// yields the zero value.
func (im *Image) Stats() Stats {
	if len(im.Data) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(im.Data, nil)
	if len(im.Data) == 1 {
		std = 0
	}
	return Stats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(im.Data),
		Max:    floats.Max(im.Data),
	}
}
