// Package lightfield reinterprets a single-frame lenslet image as a 4D ray-space
// tensor addressed by spatial (x, y) and angular (u, v) coordinates.
//
// The raster is a macro-pixel mosaic: every lenslet is a contiguous
// USize x VSize block of angular samples and lenslets tile the image on a
// regular grid, so sample (x, y, u, v) lives at raster pixel
// (x*USize + u, y*VSize + v). A LightField never copies pixels; writes through
// it are visible in the wrapped image and vice versa.
package lightfield

import (
	"errors"
	"fmt"

	"lfsynth/pkg/imagebuf"
)

var (
	// ErrMultiFrame is returned when the source image has more than one frame.
	ErrMultiFrame = errors.New("light field must be built from a single-frame image")

	// ErrGeometry is returned when the lenslet size does not tile the image.
	ErrGeometry = errors.New("lenslet size does not tile the image")
)

// LightField is a geometry descriptor over a shared single-frame image.
type LightField struct {
	// Image is the wrapped lenslet raster
	Image *imagebuf.Image

	// XSize and YSize are the number of lenslets along each spatial axis
	XSize, YSize int

	// USize and VSize are the lenslet width and height in pixels
	USize, VSize int

	// Channels is shared with the wrapped image
	Channels int
}

// New wraps img as a light field with lenslets of uSize x vSize pixels.
func New(img *imagebuf.Image, uSize, vSize int) (*LightField, error) {
	if img.Frames != 1 {
		return nil, fmt.Errorf("image has %d frames: %w", img.Frames, ErrMultiFrame)
	}
	if uSize <= 0 || vSize <= 0 {
		return nil, fmt.Errorf("lenslet size %dx%d: %w", uSize, vSize, ErrGeometry)
	}
	if img.Width%uSize != 0 || img.Height%vSize != 0 {
		return nil, fmt.Errorf("image %dx%d with lenslet %dx%d: %w",
			img.Width, img.Height, uSize, vSize, ErrGeometry)
	}
	return &LightField{
		Image:    img,
		XSize:    img.Width / uSize,
		YSize:    img.Height / vSize,
		USize:    uSize,
		VSize:    vSize,
		Channels: img.Channels,
	}, nil
}

// offset maps a 4D lattice position to the index of its channel 0.
func (lf *LightField) offset(x, y, u, v int) int {
	return lf.Image.Offset(x*lf.USize+u, y*lf.VSize+v, 0)
}

// At returns the sample at (x, y, u, v) in channel c.
func (lf *LightField) At(x, y, u, v, c int) float64 {
	return lf.Image.Data[lf.offset(x, y, u, v)+c]
}

// Set writes the sample at (x, y, u, v) in channel c.
func (lf *LightField) Set(x, y, u, v, c int, val float64) {
	lf.Image.Data[lf.offset(x, y, u, v)+c] = val
}

// Sample returns all channels at lattice position (x, y, u, v). The slice
// aliases the wrapped image.
func (lf *LightField) Sample(x, y, u, v int) []float64 {
	i := lf.offset(x, y, u, v)
	return lf.Image.Data[i : i+lf.Channels : i+lf.Channels]
}

// Views is the number of sub-aperture views.
func (lf *LightField) Views() int {
	return lf.USize * lf.VSize
}

// View copies the sub-aperture view at angular sample (u, v) into dst and
// returns it. A nil dst, or one of the wrong shape, is replaced by a freshly
// allocated XSize x YSize single-frame image.
func (lf *LightField) View(u, v int, dst *imagebuf.Image) *imagebuf.Image {
	if dst == nil || dst.Width != lf.XSize || dst.Height != lf.YSize ||
		dst.Frames != 1 || dst.Channels != lf.Channels {
		dst = imagebuf.New(lf.XSize, lf.YSize, 1, lf.Channels)
	}
	for y := 0; y < lf.YSize; y++ {
		for x := 0; x < lf.XSize; x++ {
			copy(dst.Pixel(x, y, 0), lf.Sample(x, y, u, v))
		}
	}
	return dst
}
