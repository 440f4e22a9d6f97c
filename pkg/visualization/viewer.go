package visualization

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"lfsynth/pkg/imageio"
	"lfsynth/pkg/lightfield"
)

// Viewer renders the sub-aperture views of a light field for inspection.
type Viewer struct {
	lf *lightfield.LightField

	// gamma is applied when converting views to displayable images
	gamma float64
}

// NewViewer creates a viewer over lf
func NewViewer(lf *lightfield.LightField, gamma float64) *Viewer {
	return &Viewer{
		lf:    lf,
		gamma: gamma,
	}
}

// ExtractView returns the sub-aperture view at angular sample (u, v)
func (vw *Viewer) ExtractView(u, v int) (image.Image, error) {
	if u < 0 || v < 0 {
		return nil, fmt.Errorf("angular position must be non-negative")
	}
	if u >= vw.lf.USize || v >= vw.lf.VSize {
		return nil, fmt.Errorf("angular position (%d,%d) exceeds lenslet %dx%d", u, v, vw.lf.USize, vw.lf.VSize)
	}
	return imageio.ToImage(vw.lf.View(u, v, nil), 0, vw.gamma)
}

// ScaleView enlarges img by an integer factor with Catmull-Rom resampling.
// Lenslet images have few lenslets, so raw views are tiny.
func ScaleView(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SaveView saves a view as a PNG image
func (vw *Viewer) SaveView(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// ViewFilename names the file of view (u, v) in a saved sequence
func ViewFilename(u, v int) string {
	return fmt.Sprintf("view_%03d_%03d.png", u, v)
}

// SaveViewSequence extracts every sub-aperture view, scales it and saves it
// to outputDir
func (vw *Viewer) SaveViewSequence(outputDir string, scale int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for v := 0; v < vw.lf.VSize; v++ {
		for u := 0; u < vw.lf.USize; u++ {
			img, err := vw.ExtractView(u, v)
			if err != nil {
				return err
			}

			filename := filepath.Join(outputDir, ViewFilename(u, v))
			if err := vw.SaveView(ScaleView(img, scale), filename); err != nil {
				return err
			}
		}
	}

	return nil
}

// ContactSheet tiles every view on one image in angular order, each view
// resized to cell pixels wide with Lanczos resampling
func (vw *Viewer) ContactSheet(cell int) (image.Image, error) {
	if cell <= 0 {
		return nil, fmt.Errorf("cell size must be positive")
	}
	cellH := cell * vw.lf.YSize / vw.lf.XSize
	if cellH < 1 {
		cellH = 1
	}

	sheet := image.NewNRGBA64(image.Rect(0, 0, cell*vw.lf.USize, cellH*vw.lf.VSize))
	for v := 0; v < vw.lf.VSize; v++ {
		for u := 0; u < vw.lf.USize; u++ {
			img, err := vw.ExtractView(u, v)
			if err != nil {
				return nil, err
			}
			thumb := resize.Resize(uint(cell), uint(cellH), img, resize.Lanczos3)
			r := image.Rect(u*cell, v*cellH, (u+1)*cell, (v+1)*cellH)
			draw.Draw(sheet, r, thumb, thumb.Bounds().Min, draw.Src)
		}
	}
	return sheet, nil
}
