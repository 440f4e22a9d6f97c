// Package focalstack turns a 4D light field into a 3D focal stack by
// shift-and-add refocusing: for each slope alpha every sub-aperture view is
// translated in proportion to its angular offset, band-limited when the shift
// per angular step exceeds a pixel, and averaged into one output frame.
package focalstack

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"lfsynth/pkg/filter"
	"lfsynth/pkg/imagebuf"
	"lfsynth/pkg/lightfield"
)

var (
	// ErrNonPositiveStep is returned when deltaAlpha is zero or negative.
	ErrNonPositiveStep = errors.New("alpha step must be positive")

	// ErrEmptyRange is returned when minAlpha exceeds maxAlpha.
	ErrEmptyRange = errors.New("alpha range is empty")
)

// Alphas enumerates the refocus slopes minAlpha, minAlpha+delta, ... up to and
// including maxAlpha when the accumulated value lands on it. The returned
// slice defines both the frame count and the processing order.
func Alphas(minAlpha, maxAlpha, deltaAlpha float64) ([]float64, error) {
	if !(deltaAlpha > 0) || math.IsInf(deltaAlpha, 0) {
		return nil, fmt.Errorf("deltaAlpha %g: %w", deltaAlpha, ErrNonPositiveStep)
	}
	if !(minAlpha <= maxAlpha) || math.IsInf(minAlpha, 0) || math.IsInf(maxAlpha, 0) {
		return nil, fmt.Errorf("alpha range [%g, %g]: %w", minAlpha, maxAlpha, ErrEmptyRange)
	}
	var alphas []float64
	for alpha := minAlpha; alpha <= maxAlpha; alpha += deltaAlpha {
		alphas = append(alphas, alpha)
	}
	return alphas, nil
}

// Option configures Synthesize.
type Option func(*options)

type options struct {
	workers  int
	progress func(done, total int)
}

// WithWorkers bounds the number of frames computed concurrently. Values
// below one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithProgress registers a callback invoked after every finished frame.
// Calls are serialized.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}

// Synthesize renders one refocused frame per alpha in [minAlpha, maxAlpha].
// The result has XSize x YSize pixels, the light field's channel count and
// len(Alphas(...)) frames.
func Synthesize(lf *lightfield.LightField, minAlpha, maxAlpha, deltaAlpha float64, opts ...Option) (*imagebuf.Image, error) {
	if lf.Image.Frames != 1 {
		return nil, fmt.Errorf("focal stack: %w", lightfield.ErrMultiFrame)
	}
	alphas, err := Alphas(minAlpha, maxAlpha, deltaAlpha)
	if err != nil {
		return nil, err
	}
	return SynthesizeAlphas(lf, alphas, opts...), nil
}

// SynthesizeAlphas renders one refocused frame per given alpha.
func SynthesizeAlphas(lf *lightfield.LightField, alphas []float64, opts ...Option) *imagebuf.Image {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	if o.workers > len(alphas) {
		o.workers = len(alphas)
	}

	out := imagebuf.New(lf.XSize, lf.YSize, len(alphas), lf.Channels)

	// Frames are independent and write disjoint regions of out, so each
	// worker owns its scratch view and needs no locking.
	jobs := make(chan int)
	done := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var view *imagebuf.Image
			for t := range jobs {
				view = renderFrame(lf, alphas[t], out.Frame(t), view)
				done <- t
			}
		}()
	}
	go func() {
		for t := range alphas {
			jobs <- t
		}
		close(jobs)
		wg.Wait()
		close(done)
	}()

	completed := 0
	for range done {
		completed++
		if o.progress != nil {
			o.progress(completed, len(alphas))
		}
	}
	return out
}

// renderFrame accumulates every processed view for one alpha into frame and
// normalizes it. view is reusable scratch space and is returned for the next
// call.
func renderFrame(lf *lightfield.LightField, alpha float64, frame, view *imagebuf.Image) *imagebuf.Image {
	cu := float64(lf.USize-1) * 0.5
	cv := float64(lf.VSize-1) * 0.5

	for v := 0; v < lf.VSize; v++ {
		for u := 0; u < lf.USize; u++ {
			view = lf.View(u, v, view)
			processed := view

			if alpha*float64(u) != 0 || alpha*float64(v) != 0 {
				processed = filter.Translate(processed, (float64(u)-cu)*alpha, (float64(v)-cv)*alpha)
			}
			if a := math.Abs(alpha); a > 1 {
				processed = filter.LanczosBlur(processed, a, a, 0)
			}

			// Shapes always match: both are XSize x YSize single frames.
			_ = frame.Add(processed)
		}
	}

	frame.Divide(float64(lf.Views()))
	return view
}
