// Package point injects a single 3D scene point into a light field.
package point

import "lfsynth/pkg/lightfield"

// Intensity is the value written to every channel of a splatted sample.
const Intensity = 1.0

// Splat paints the point (px, py) with disparity pz into every sub-aperture
// view of lf, in place. px and py are normalized to [0, 1] at the focal
// plane; pz = 0 lies on the focal plane and projects to the same pixel in
// every view. Views from which the point falls outside the spatial grid are
// skipped. Splat returns the number of views that received the point.
func Splat(lf *lightfield.LightField, px, py, pz float64) int {
	hits := 0
	for v := 0; v < lf.VSize; v++ {
		for u := 0; u < lf.USize; u++ {
			pu := float64(u) + 0.5 - float64(lf.USize)*0.5
			pv := float64(v) + 0.5 - float64(lf.VSize)*0.5

			x := int((px+pz*pu)*float64(lf.XSize) + 0.5)
			y := int((py+pz*pv)*float64(lf.YSize) + 0.5)
			if x < 0 || x >= lf.XSize || y < 0 || y >= lf.YSize {
				continue
			}

			s := lf.Sample(x, y, u, v)
			for c := range s {
				s[c] = Intensity
			}
			hits++
		}
	}
	return hits
}
