package models

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUsage marks malformed command arguments. It is reported before any
// processing starts.
var ErrUsage = errors.New("usage error")

// Lenslet is the pixel size of one lenslet, i.e. the angular resolution
type Lenslet struct {
	// Width is the number of angular samples along u
	Width int

	// Height is the number of angular samples along v
	Height int
}

// FocalStackParams are the arguments of the focalstack command
type FocalStackParams struct {
	Lenslet Lenslet

	// MinAlpha and MaxAlpha bound the refocus slopes, both inclusive
	MinAlpha, MaxAlpha float64

	// DeltaAlpha is the step between adjacent slopes
	DeltaAlpha float64
}

// WarpParams are the arguments of the warp command
type WarpParams struct {
	Lenslet Lenslet

	// Quick selects nearest-neighbour sampling instead of quadrilinear
	Quick bool
}

// PointParams are the arguments of the point command
type PointParams struct {
	Lenslet Lenslet

	// X and Y are the normalized point position at the focal plane
	X, Y float64

	// Z is the point's disparity; 0 lies on the focal plane
	Z float64
}

// ViewsParams are the arguments of the views command
type ViewsParams struct {
	Lenslet Lenslet
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

func parseLenslet(cmd string, args []string) (Lenslet, error) {
	w, err := strconv.Atoi(args[0])
	if err != nil {
		return Lenslet{}, usagef("%s: lenslet width %q is not an integer", cmd, args[0])
	}
	h, err := strconv.Atoi(args[1])
	if err != nil {
		return Lenslet{}, usagef("%s: lenslet height %q is not an integer", cmd, args[1])
	}
	if w <= 0 || h <= 0 {
		return Lenslet{}, usagef("%s: lenslet size must be positive, got %dx%d", cmd, w, h)
	}
	return Lenslet{Width: w, Height: h}, nil
}

func parseFloats(cmd string, names []string, args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, usagef("%s: %s %q is not a number", cmd, names[i], a)
		}
		out[i] = f
	}
	return out, nil
}

// ParseFocalStack parses "lensletW lensletH minAlpha maxAlpha deltaAlpha"
func ParseFocalStack(args []string) (FocalStackParams, error) {
	if len(args) != 5 {
		return FocalStackParams{}, usagef("focalstack takes five arguments, got %d", len(args))
	}
	lenslet, err := parseLenslet("focalstack", args[:2])
	if err != nil {
		return FocalStackParams{}, err
	}
	vals, err := parseFloats("focalstack", []string{"minAlpha", "maxAlpha", "deltaAlpha"}, args[2:])
	if err != nil {
		return FocalStackParams{}, err
	}
	return FocalStackParams{
		Lenslet:    lenslet,
		MinAlpha:   vals[0],
		MaxAlpha:   vals[1],
		DeltaAlpha: vals[2],
	}, nil
}

// ParseWarp parses "lensletW lensletH [quick]". Any trailing argument equal
// to "quick" enables nearest-neighbour sampling; others are ignored.
func ParseWarp(args []string) (WarpParams, error) {
	if len(args) < 2 {
		return WarpParams{}, usagef("warp takes at least two arguments, got %d", len(args))
	}
	lenslet, err := parseLenslet("warp", args[:2])
	if err != nil {
		return WarpParams{}, err
	}
	p := WarpParams{Lenslet: lenslet}
	for _, a := range args[2:] {
		if a == "quick" {
			p.Quick = true
		}
	}
	return p, nil
}

// ParsePoint parses "lensletW lensletH px py pz"
func ParsePoint(args []string) (PointParams, error) {
	if len(args) != 5 {
		return PointParams{}, usagef("point takes five arguments, got %d", len(args))
	}
	lenslet, err := parseLenslet("point", args[:2])
	if err != nil {
		return PointParams{}, err
	}
	vals, err := parseFloats("point", []string{"px", "py", "pz"}, args[2:])
	if err != nil {
		return PointParams{}, err
	}
	return PointParams{Lenslet: lenslet, X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ParseViews parses "lensletW lensletH"
func ParseViews(args []string) (ViewsParams, error) {
	if len(args) != 2 {
		return ViewsParams{}, usagef("views takes two arguments, got %d", len(args))
	}
	lenslet, err := parseLenslet("views", args)
	if err != nil {
		return ViewsParams{}, err
	}
	return ViewsParams{Lenslet: lenslet}, nil
}
