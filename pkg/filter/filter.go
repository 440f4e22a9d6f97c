// Package filter implements the resampling operators used by refocusing:
// sub-pixel translation and Lanczos band-limiting blur.
//
// Both are separable. Every pass reads outside the image by clamping to the
// nearest edge, and every kernel is normalized to unit sum so flat regions
// stay flat.
package filter

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"lfsynth/pkg/imagebuf"
)

// lanczosLobes is the support of the Lanczos window in kernel units.
const lanczosLobes = 3

// Axis selects the dimension a separable pass runs along.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisT
)

func lanczos(x float64) float64 {
	if x == 0 {
		return 1
	}
	if x <= -lanczosLobes || x >= lanczosLobes {
		return 0
	}
	px := math.Pi * x
	return lanczosLobes * math.Sin(px) * math.Sin(px/lanczosLobes) / (px * px)
}

// kernel is a 1D filter: dst[i] = sum_j weights[j] * src[i+offsets[j]].
type kernel struct {
	offsets []int
	weights []float64
}

func (k kernel) identity() bool {
	return len(k.offsets) == 1 && k.offsets[0] == 0 && k.weights[0] == 1
}

func (k kernel) normalize() kernel {
	if sum := floats.Sum(k.weights); sum != 0 {
		floats.Scale(1/sum, k.weights)
	}
	return k
}

// shiftKernel resamples a signal moved by d: dst[i] = src[i-d].
func shiftKernel(d float64) kernel {
	s := -d
	fl := math.Floor(s)
	frac := s - fl
	base := int(fl)
	if frac == 0 {
		return kernel{offsets: []int{base}, weights: []float64{1}}
	}
	k := kernel{}
	for j := 1 - lanczosLobes; j <= lanczosLobes; j++ {
		k.offsets = append(k.offsets, base+j)
		k.weights = append(k.weights, lanczos(frac-float64(j)))
	}
	return k.normalize()
}

// blurKernel is a Lanczos low-pass stretched by radius.
func blurKernel(radius float64) kernel {
	n := int(math.Ceil(lanczosLobes * radius))
	k := kernel{}
	for j := -n; j <= n; j++ {
		k.offsets = append(k.offsets, j)
		k.weights = append(k.weights, lanczos(float64(j)/radius))
	}
	return k.normalize()
}

// axisGeometry returns the length of an axis and the distance between
// consecutive samples along it in im.Data.
func axisGeometry(im *imagebuf.Image, axis Axis) (n, stride int) {
	switch axis {
	case AxisX:
		return im.Width, im.Channels
	case AxisY:
		return im.Height, im.Width * im.Channels
	default:
		return im.Frames, im.FrameSize()
	}
}

// convolve runs k along one axis of src and returns a new image.
func convolve(src *imagebuf.Image, axis Axis, k kernel) *imagebuf.Image {
	dst := imagebuf.New(src.Width, src.Height, src.Frames, src.Channels)
	n, stride := axisGeometry(src, axis)
	if n == 0 || stride == 0 {
		return dst
	}
	for i := range src.Data {
		pos := (i / stride) % n
		base := i - pos*stride
		sum := 0.0
		for j, off := range k.offsets {
			q := pos + off
			if q < 0 {
				q = 0
			} else if q >= n {
				q = n - 1
			}
			sum += k.weights[j] * src.Data[base+q*stride]
		}
		dst.Data[i] = sum
	}
	return dst
}

// Translate returns a copy of img moved by (dx, dy) pixels. Fractional
// offsets are resampled with a Lanczos-3 kernel; integral offsets copy
// samples exactly.
func Translate(img *imagebuf.Image, dx, dy float64) *imagebuf.Image {
	out := img
	if k := shiftKernel(dx); !k.identity() {
		out = convolve(out, AxisX, k)
	}
	if k := shiftKernel(dy); !k.identity() {
		out = convolve(out, AxisY, k)
	}
	if out == img {
		out = img.Clone()
	}
	return out
}

// LanczosBlur low-pass filters img with a Lanczos kernel of the given radius
// along each axis. A non-positive radius leaves that axis untouched.
func LanczosBlur(img *imagebuf.Image, radiusX, radiusY, radiusT float64) *imagebuf.Image {
	out := img
	for _, pass := range []struct {
		axis   Axis
		radius float64
	}{
		{AxisX, radiusX},
		{AxisY, radiusY},
		{AxisT, radiusT},
	} {
		if pass.radius <= 0 {
			continue
		}
		out = convolve(out, pass.axis, blurKernel(pass.radius))
	}
	if out == img {
		out = img.Clone()
	}
	return out
}
