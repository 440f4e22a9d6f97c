package imagebuf

import (
	"errors"
	"math"
	"testing"
)

// TestNewImage verifies allocation and dimensions
func TestNewImage(t *testing.T) {
	im := New(4, 3, 2, 3)

	if len(im.Data) != 4*3*2*3 {
		t.Fatalf("Expected %d samples, got %d", 4*3*2*3, len(im.Data))
	}
	if im.FrameSize() != 36 {
		t.Errorf("Expected frame size 36, got %d", im.FrameSize())
	}
	for i, v := range im.Data {
		if v != 0 {
			t.Fatalf("Sample %d not zeroed: %f", i, v)
		}
	}
}

// TestSetAt verifies the interleaved row-major layout
func TestSetAt(t *testing.T) {
	im := New(5, 4, 2, 3)
	im.Set(2, 3, 1, 2, 0.75)

	want := ((1*4+3)*5+2)*3 + 2
	if im.Data[want] != 0.75 {
		t.Errorf("Expected sample at index %d, layout is wrong", want)
	}
	if got := im.At(2, 3, 1, 2); got != 0.75 {
		t.Errorf("At returned %f, want 0.75", got)
	}

	px := im.Pixel(2, 3, 1)
	if len(px) != 3 || px[2] != 0.75 {
		t.Errorf("Pixel returned %v", px)
	}
	px[0] = 0.25
	if im.At(2, 3, 1, 0) != 0.25 {
		t.Error("Pixel slice should alias the image storage")
	}
}

// TestFrameAliasing verifies that frame views share storage with the parent
func TestFrameAliasing(t *testing.T) {
	im := New(3, 3, 3, 1)
	f := im.Frame(1)

	if f.Frames != 1 || f.Width != 3 || f.Height != 3 {
		t.Fatalf("Unexpected frame view shape %dx%dx%d", f.Width, f.Height, f.Frames)
	}

	f.Set(1, 1, 0, 0, 9)
	if im.At(1, 1, 1, 0) != 9 {
		t.Error("Writing through a frame view should update the parent")
	}
	if im.At(1, 1, 0, 0) != 0 || im.At(1, 1, 2, 0) != 0 {
		t.Error("Frame view leaked into neighbouring frames")
	}
}

// TestAddDivide verifies accumulation and normalization
func TestAddDivide(t *testing.T) {
	acc := New(2, 2, 1, 2)
	one := New(2, 2, 1, 2)
	one.Fill(1)
	two := New(2, 2, 1, 2)
	two.Fill(2)

	if err := acc.Add(one); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := acc.Add(two); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	acc.Divide(2)

	for i, v := range acc.Data {
		if v != 1.5 {
			t.Errorf("Sample %d: expected 1.5, got %f", i, v)
		}
	}
}

// TestAddShapeMismatch verifies that mismatched shapes are rejected
func TestAddShapeMismatch(t *testing.T) {
	a := New(2, 2, 1, 1)
	b := New(2, 2, 1, 3)

	err := a.Add(b)
	if !errors.Is(err, ErrShape) {
		t.Errorf("Expected ErrShape, got %v", err)
	}
}

// TestClone verifies that clones are independent
func TestClone(t *testing.T) {
	a := New(2, 2, 1, 1)
	a.Fill(3)
	b := a.Clone()
	b.Set(0, 0, 0, 0, 7)

	if a.At(0, 0, 0, 0) != 3 {
		t.Error("Clone should not share storage")
	}
	if !a.SameShape(b) {
		t.Error("Clone should keep the shape")
	}
}

// TestStats verifies summary statistics
func TestStats(t *testing.T) {
	im := New(2, 2, 1, 1)
	copy(im.Data, []float64{0, 1, 2, 3})

	s := im.Stats()
	if s.Mean != 1.5 {
		t.Errorf("Expected mean 1.5, got %f", s.Mean)
	}
	if s.Min != 0 || s.Max != 3 {
		t.Errorf("Expected range [0, 3], got [%f, %f]", s.Min, s.Max)
	}
	// Unbiased standard deviation of {0,1,2,3}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("Unexpected standard deviation %f", s.StdDev)
	}

	if (New(0, 0, 0, 0).Stats() != Stats{}) {
		t.Error("Empty image should yield zero stats")
	}
}
