package point

import (
	"testing"

	"lfsynth/pkg/imagebuf"
	"lfsynth/pkg/lightfield"
)

func createLightField(t *testing.T, xSize, ySize, uSize, vSize, channels int) *lightfield.LightField {
	t.Helper()
	lf, err := lightfield.New(imagebuf.New(xSize*uSize, ySize*vSize, 1, channels), uSize, vSize)
	if err != nil {
		t.Fatalf("Failed to create light field: %v", err)
	}
	return lf
}

// countLit returns the lit spatial positions of view (u, v)
func countLit(lf *lightfield.LightField, u, v int) [][2]int {
	var lit [][2]int
	for y := 0; y < lf.YSize; y++ {
		for x := 0; x < lf.XSize; x++ {
			if lf.At(x, y, u, v, 0) != 0 {
				lit = append(lit, [2]int{x, y})
			}
		}
	}
	return lit
}

// TestSplatFocalPlane verifies that a point on the focal plane lands on the
// same pixel in every view
func TestSplatFocalPlane(t *testing.T) {
	lf := createLightField(t, 8, 8, 4, 4, 3)

	hits := Splat(lf, 0.5, 0.5, 0)
	if hits != 16 {
		t.Errorf("Expected 16 views hit, got %d", hits)
	}

	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			lit := countLit(lf, u, v)
			if len(lit) != 1 || lit[0] != [2]int{4, 4} {
				t.Errorf("View (%d,%d): expected only (4,4) lit, got %v", u, v, lit)
				continue
			}
			for c := 0; c < 3; c++ {
				if lf.At(4, 4, u, v, c) != Intensity {
					t.Errorf("View (%d,%d) channel %d not at full intensity", u, v, c)
				}
			}
		}
	}
}

// TestSplatDisparityShear verifies the per-view position for non-zero disparity
func TestSplatDisparityShear(t *testing.T) {
	lf := createLightField(t, 16, 16, 4, 4, 1)
	px, py, pz := 0.4, 0.6, 0.05

	Splat(lf, px, py, pz)

	seen := map[[2]int]bool{}
	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			pu := float64(u) + 0.5 - 2
			pv := float64(v) + 0.5 - 2
			want := [2]int{int((px+pz*pu)*16 + 0.5), int((py+pz*pv)*16 + 0.5)}

			lit := countLit(lf, u, v)
			if len(lit) != 1 || lit[0] != want {
				t.Errorf("View (%d,%d): expected %v lit, got %v", u, v, want, lit)
			}
			seen[want] = true
		}
	}
	if len(seen) < 2 {
		t.Error("Non-zero disparity should move the point between views")
	}
}

// TestSplatSkipsOffscreenViews verifies that off-grid projections are ignored
func TestSplatSkipsOffscreenViews(t *testing.T) {
	lf := createLightField(t, 8, 8, 4, 4, 1)

	// Near the right edge with a strong disparity: views with pu > 0 project
	// past the last column.
	hits := Splat(lf, 0.9, 0.5, 0.1)
	if hits == 0 || hits == 16 {
		t.Fatalf("Expected some but not all views to be hit, got %d", hits)
	}
	for v := 0; v < 4; v++ {
		for u := 2; u < 4; u++ {
			if lit := countLit(lf, u, v); len(lit) != 0 {
				t.Errorf("View (%d,%d) should be skipped, got %v", u, v, lit)
			}
		}
	}

	if got := Splat(lf, 5, 5, 0); got != 0 {
		t.Errorf("A point far outside the grid should hit no view, got %d", got)
	}
}

// TestSplatOverwrites verifies that existing content is replaced, not blended
func TestSplatOverwrites(t *testing.T) {
	lf := createLightField(t, 4, 4, 2, 2, 2)
	lf.Image.Fill(0.3)

	Splat(lf, 0.5, 0.5, 0)
	if lf.At(2, 2, 1, 1, 1) != Intensity {
		t.Errorf("Expected full intensity, got %f", lf.At(2, 2, 1, 1, 1))
	}
	if lf.At(1, 2, 1, 1, 0) != 0.3 {
		t.Error("Neighbouring samples should be untouched")
	}

	Splat(lf, 0.5, 0.5, 0)
	if lf.At(2, 2, 0, 0, 0) != Intensity {
		t.Error("Repeated splats should not accumulate past full intensity")
	}
}
