// Package warp resamples a light field through a per-pixel index map.
//
// The index map is a 4-channel image whose channels hold normalized
// (s, t, u, v) ray coordinates in [0, 1]. Each output pixel takes the light
// field's value at the denormalized coordinate, either interpolated
// quadrilinearly or copied from the nearest lattice sample in quick mode.
package warp

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"lfsynth/pkg/imagebuf"
	"lfsynth/pkg/lightfield"
)

// IndexChannels is the required channel count of an index map.
const IndexChannels = 4

// ErrIndexChannels is returned when the index map does not have 4 channels.
var ErrIndexChannels = errors.New("index map must have 4 channels (s, t, u, v)")

// Option configures Warp.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers bounds the number of rows processed concurrently. Values below
// one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Warp samples lf at every pixel of index. The result has the index map's
// width, height and frame count and the light field's channel count.
func Warp(lf *lightfield.LightField, index *imagebuf.Image, quick bool, opts ...Option) (*imagebuf.Image, error) {
	if index.Channels != IndexChannels {
		return nil, fmt.Errorf("index map has %d channels: %w", index.Channels, ErrIndexChannels)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}

	out := imagebuf.New(index.Width, index.Height, index.Frames, lf.Channels)
	rows := index.Frames * index.Height

	// Rows write disjoint output pixels and only read lf and index.
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				warpRow(lf, index, out, row/index.Height, row%index.Height, quick)
			}
		}()
	}
	for row := 0; row < rows; row++ {
		jobs <- row
	}
	close(jobs)
	wg.Wait()

	return out, nil
}

func warpRow(lf *lightfield.LightField, index, out *imagebuf.Image, t, y int, quick bool) {
	for x := 0; x < index.Width; x++ {
		st := index.Pixel(x, y, t)
		lx := st[0] * float64(lf.XSize-1)
		ly := st[1] * float64(lf.YSize-1)
		lu := st[2] * float64(lf.USize-1)
		lv := st[3] * float64(lf.VSize-1)

		dst := out.Pixel(x, y, t)
		if !quick {
			lf.Sample4D(lx, ly, lu, lv, dst)
			continue
		}
		copy(dst, lf.Sample(
			nearest(lx, lf.XSize),
			nearest(ly, lf.YSize),
			nearest(lu, lf.USize),
			nearest(lv, lf.VSize),
		))
	}
}

// nearest rounds p by adding one half and truncating, then clamps the result
// into [0, size-1].
func nearest(p float64, size int) int {
	i := int(p + 0.5)
	if i < 0 {
		return 0
	}
	if i > size-1 {
		return size - 1
	}
	return i
}
