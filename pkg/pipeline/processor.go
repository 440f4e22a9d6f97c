// Package pipeline runs the lfsynth commands end to end: loading the
// lenslet image, building the light field, processing it and writing the
// results, printing numbered steps along the way.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"lfsynth/internal/models"
	"lfsynth/pkg/focalstack"
	"lfsynth/pkg/imagebuf"
	"lfsynth/pkg/imageio"
	"lfsynth/pkg/lightfield"
	"lfsynth/pkg/point"
	"lfsynth/pkg/visualization"
	"lfsynth/pkg/warp"
)

// ContactSheetName is the file written next to the views by RunViews
const ContactSheetName = "contact_sheet.png"

// Params holds the input/output and processing configuration shared by all
// commands.
type Params struct {
	// Input is the lenslet image holding the light field
	Input string

	// Index is the 4-channel index map used by the warp command
	Index string

	// Output is the file (or directory, for views) results are written to
	Output string

	// NumCores bounds the number of workers; values below one use all cores
	NumCores int

	// Verbose enables step and progress output
	Verbose bool

	// SaveIntermediaryResults saves the sub-aperture views before processing
	SaveIntermediaryResults bool

	// IntermediaryDir is where intermediary results are written
	IntermediaryDir string

	// Gamma, JPEGQuality and GIFDelay control output encoding
	Gamma       float64
	JPEGQuality int
	GIFDelay    int

	// ViewScale is the upscaling factor for saved views
	ViewScale int

	// ContactCell is the width of each view in the contact sheet
	ContactCell int
}

// Processor runs one command at a time with the given parameters.
type Processor struct {
	params *Params

	// written lists the files produced by the last run
	written []string

	// frameStats holds per-frame statistics of the last focal stack
	frameStats []imagebuf.Stats
}

// NewProcessor creates a processor with the provided parameters.
func NewProcessor(params *Params) *Processor {
	return &Processor{params: params}
}

// Written returns the files produced by the last run
func (p *Processor) Written() []string {
	return p.written
}

// FrameStats returns the per-frame statistics of the last focal stack
func (p *Processor) FrameStats() []imagebuf.Stats {
	return p.frameStats
}

func (p *Processor) logf(format string, args ...any) {
	if p.params.Verbose {
		fmt.Printf(format, args...)
	}
}

func (p *Processor) encodeOptions() imageio.Options {
	return imageio.Options{
		Gamma:   p.params.Gamma,
		Quality: p.params.JPEGQuality,
		Delay:   p.params.GIFDelay,
	}
}

// loadLightField performs the load and build steps common to every command
func (p *Processor) loadLightField(lenslet models.Lenslet) (*lightfield.LightField, error) {
	p.logf("Step 1: Loading lenslet image %s...\n", p.params.Input)
	img, err := imageio.Load(p.params.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to load light field: %w", err)
	}

	p.logf("Step 2: Building %dx%d light field...\n", lenslet.Width, lenslet.Height)
	lf, err := lightfield.New(img, lenslet.Width, lenslet.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to build light field: %w", err)
	}
	p.logf("Light field: %dx%d spatial, %dx%d angular, %d channels\n",
		lf.XSize, lf.YSize, lf.USize, lf.VSize, lf.Channels)

	if p.params.SaveIntermediaryResults {
		p.saveIntermediaryViews(lf)
	}
	return lf, nil
}

// saveIntermediaryViews writes every sub-aperture view as loaded. Failures
// are reported and do not stop processing.
func (p *Processor) saveIntermediaryViews(lf *lightfield.LightField) {
	dir := filepath.Join(p.params.IntermediaryDir, "01_views")
	p.logf("Saving sub-aperture views to %s...\n", dir)
	viewer := visualization.NewViewer(lf, p.params.Gamma)
	if err := viewer.SaveViewSequence(dir, 1); err != nil {
		fmt.Printf("Warning: Failed to save intermediary views: %v\n", err)
	}
}

func (p *Processor) save(im *imagebuf.Image, path string) error {
	if err := ensureParentDir(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	paths, err := imageio.Save(im, path, p.encodeOptions())
	p.written = append(p.written, paths...)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// RunFocalStack synthesizes the focal stack of the input light field
func (p *Processor) RunFocalStack(fp models.FocalStackParams) error {
	p.written, p.frameStats = nil, nil

	// Validate the range before touching the input.
	alphas, err := focalstack.Alphas(fp.MinAlpha, fp.MaxAlpha, fp.DeltaAlpha)
	if err != nil {
		return err
	}

	lf, err := p.loadLightField(fp.Lenslet)
	if err != nil {
		return err
	}

	p.logf("Step 3: Synthesizing %d focal planes...\n", len(alphas))
	stack := focalstack.SynthesizeAlphas(lf, alphas,
		focalstack.WithWorkers(p.params.NumCores),
		focalstack.WithProgress(func(done, total int) {
			p.logf("computing frame %d of %d\n", done, total)
		}),
	)

	p.frameStats = make([]imagebuf.Stats, stack.Frames)
	for t := 0; t < stack.Frames; t++ {
		s := stack.Frame(t).Stats()
		p.frameStats[t] = s
		p.logf("Frame %d (alpha %.3f): mean %.4f, std %.4f, range [%.4f, %.4f]\n",
			t, alphas[t], s.Mean, s.StdDev, s.Min, s.Max)
	}

	p.logf("Step 4: Saving focal stack to %s...\n", p.params.Output)
	return p.save(stack, p.params.Output)
}

// RunWarp resamples the input light field through the index map
func (p *Processor) RunWarp(wp models.WarpParams) error {
	p.written, p.frameStats = nil, nil

	lf, err := p.loadLightField(wp.Lenslet)
	if err != nil {
		return err
	}

	p.logf("Step 3: Loading index map %s...\n", p.params.Index)
	index, err := imageio.Load(p.params.Index)
	if err != nil {
		return fmt.Errorf("failed to load index map: %w", err)
	}

	mode := "quadrilinear"
	if wp.Quick {
		mode = "nearest"
	}
	p.logf("Step 4: Warping with %s sampling...\n", mode)
	out, err := warp.Warp(lf, index, wp.Quick, warp.WithWorkers(p.params.NumCores))
	if err != nil {
		return err
	}

	p.logf("Step 5: Saving warped image to %s...\n", p.params.Output)
	return p.save(out, p.params.Output)
}

// RunPoint splats a point into the input light field and saves it. The
// output defaults to overwriting the input.
func (p *Processor) RunPoint(pp models.PointParams) error {
	p.written, p.frameStats = nil, nil

	lf, err := p.loadLightField(pp.Lenslet)
	if err != nil {
		return err
	}

	p.logf("Step 3: Splatting point (%g, %g, %g)...\n", pp.X, pp.Y, pp.Z)
	hits := point.Splat(lf, pp.X, pp.Y, pp.Z)
	p.logf("Point visible in %d of %d views\n", hits, lf.Views())

	output := p.params.Output
	if output == "" {
		output = p.params.Input
	}
	p.logf("Step 4: Saving light field to %s...\n", output)
	return p.save(lf.Image, output)
}

// RunViews writes every sub-aperture view and a contact sheet into the
// output directory
func (p *Processor) RunViews(vp models.ViewsParams) error {
	p.written, p.frameStats = nil, nil

	lf, err := p.loadLightField(vp.Lenslet)
	if err != nil {
		return err
	}

	dir := p.params.Output
	viewer := visualization.NewViewer(lf, p.params.Gamma)

	p.logf("Step 3: Saving %d views to %s...\n", lf.Views(), dir)
	if err := viewer.SaveViewSequence(dir, p.params.ViewScale); err != nil {
		return fmt.Errorf("failed to save views: %w", err)
	}
	for v := 0; v < lf.VSize; v++ {
		for u := 0; u < lf.USize; u++ {
			p.written = append(p.written, filepath.Join(dir, visualization.ViewFilename(u, v)))
		}
	}

	p.logf("Step 4: Building contact sheet...\n")
	sheet, err := viewer.ContactSheet(p.params.ContactCell)
	if err != nil {
		return fmt.Errorf("failed to build contact sheet: %w", err)
	}
	sheetPath := filepath.Join(dir, ContactSheetName)
	if err := viewer.SaveView(sheet, sheetPath); err != nil {
		return fmt.Errorf("failed to save contact sheet: %w", err)
	}
	p.written = append(p.written, sheetPath)
	return nil
}

// ensureParentDir creates the parent directory of a file output
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
