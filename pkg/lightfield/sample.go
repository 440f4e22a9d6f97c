package lightfield

import "math"

// bracket clamps p into [0, size-1] and returns the two lattice indices that
// surround it together with their linear weights.
func bracket(p float64, size int) (i0, i1 int, w0, w1 float64) {
	hi := float64(size - 1)
	if p < 0 || math.IsNaN(p) {
		p = 0
	} else if p > hi {
		p = hi
	}
	i0 = int(p)
	i1 = i0 + 1
	if i1 > size-1 {
		i1 = size - 1
	}
	w1 = p - float64(i0)
	w0 = 1 - w1
	return i0, i1, w0, w1
}

// Sample4D quadrilinearly interpolates the light field at a continuous
// position and writes one value per channel into out, which must hold at
// least Channels values.
//
// Each axis is clamped into [0, size-1] independently, so positions outside
// the lattice read the nearest edge. At integer positions the result is the
// lattice value itself.
func (lf *LightField) Sample4D(x, y, u, v float64, out []float64) {
	var (
		xi, yi, ui, vi [2]int
		xw, yw, uw, vw [2]float64
	)
	xi[0], xi[1], xw[0], xw[1] = bracket(x, lf.XSize)
	yi[0], yi[1], yw[0], yw[1] = bracket(y, lf.YSize)
	ui[0], ui[1], uw[0], uw[1] = bracket(u, lf.USize)
	vi[0], vi[1], vw[0], vw[1] = bracket(v, lf.VSize)

	out = out[:lf.Channels]
	for c := range out {
		out[c] = 0
	}

	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			wxy := xw[a] * yw[b]
			if wxy == 0 {
				continue
			}
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					w := wxy * uw[i] * vw[j]
					if w == 0 {
						continue
					}
					s := lf.Sample(xi[a], yi[b], ui[i], vi[j])
					for c, val := range s {
						out[c] += w * val
					}
				}
			}
		}
	}
}
