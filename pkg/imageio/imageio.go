// Package imageio converts between image files and imagebuf images.
//
// Supported inputs are PNG, JPEG, GIF, BMP, TIFF and WebP. Outputs are PNG
// and TIFF at 16 bits per channel, JPEG, and animated GIF for stacks.
// Sample values are normalized to [0, 1].
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"lfsynth/pkg/imagebuf"
)

// ErrUnsupportedFormat is returned for file extensions with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrUnsupportedChannels is returned when an image cannot be represented
// with Go's color models.
var ErrUnsupportedChannels = errors.New("unsupported channel count")

// Options controls encoding.
type Options struct {
	// Gamma is applied as v^(1/Gamma) on output; 0 or 1 disables it
	Gamma float64

	// Quality is the JPEG quality (1-100); 0 selects 90
	Quality int

	// Delay is the GIF frame delay in 100ths of a second; 0 selects 10
	Delay int
}

// Load decodes an image file into a single-frame image. Grayscale files
// yield 1 channel, files with an alpha channel 4, anything else 3.
func Load(path string) (*imagebuf.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// channelsOf picks the channel count that preserves the information in img.
func channelsOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.NRGBA, *image.NRGBA64:
		return 4
	default:
		return 3
	}
}

// FromImage converts img into a single-frame imagebuf image.
func FromImage(img image.Image) *imagebuf.Image {
	bounds := img.Bounds()
	channels := channelsOf(img)
	out := imagebuf.New(bounds.Dx(), bounds.Dy(), 1, channels)

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
			px := out.Pixel(x, y, 0)
			switch channels {
			case 1:
				px[0] = float64(c.R) / 65535.0
			case 3:
				px[0] = float64(c.R) / 65535.0
				px[1] = float64(c.G) / 65535.0
				px[2] = float64(c.B) / 65535.0
			case 4:
				px[0] = float64(c.R) / 65535.0
				px[1] = float64(c.G) / 65535.0
				px[2] = float64(c.B) / 65535.0
				px[3] = float64(c.A) / 65535.0
			}
		}
	}
	return out
}

// toU16 clamps v to [0, 1], applies gamma and scales to 16 bits.
func toU16(v, gamma float64) uint16 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		v = 1
	}
	if gamma > 0 && gamma != 1 {
		v = math.Pow(v, 1/gamma)
	}
	return uint16(math.Round(v * 65535))
}

// ToImage converts frame t of im into a Go image. One channel maps to
// Gray16, two to gray plus alpha, three to opaque RGB and four to RGBA.
func ToImage(im *imagebuf.Image, t int, gamma float64) (image.Image, error) {
	rect := image.Rect(0, 0, im.Width, im.Height)
	if im.Channels == 1 {
		gray := image.NewGray16(rect)
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				gray.SetGray16(x, y, color.Gray16{Y: toU16(im.At(x, y, t, 0), gamma)})
			}
		}
		return gray, nil
	}
	if im.Channels > 4 {
		return nil, fmt.Errorf("%d channels: %w", im.Channels, ErrUnsupportedChannels)
	}

	out := image.NewNRGBA64(rect)
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			px := im.Pixel(x, y, t)
			c := color.NRGBA64{A: 0xffff}
			switch len(px) {
			case 2:
				g := toU16(px[0], gamma)
				c.R, c.G, c.B = g, g, g
				c.A = toU16(px[1], 1)
			case 3:
				c.R, c.G, c.B = toU16(px[0], gamma), toU16(px[1], gamma), toU16(px[2], gamma)
			case 4:
				c.R, c.G, c.B = toU16(px[0], gamma), toU16(px[1], gamma), toU16(px[2], gamma)
				c.A = toU16(px[3], 1)
			}
			out.SetNRGBA64(x, y, c)
		}
	}
	return out, nil
}

// Save writes im to path. Single-frame images become one file; multi-frame
// images become an animated GIF when path ends in .gif and a numbered
// sequence otherwise. It returns the paths written.
func Save(im *imagebuf.Image, path string, opts Options) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gif" {
		if err := SaveAnimatedGIF(im, path, opts); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	if im.Frames == 1 {
		if err := saveFrame(im, 0, path, opts); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return SaveSequence(im, path, opts)
}

// SequencePath names frame t of a sequence derived from path, e.g.
// stack.png -> stack_007.png.
func SequencePath(path string, t int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(path, ext), t, ext)
}

// SaveSequence writes one file per frame.
func SaveSequence(im *imagebuf.Image, path string, opts Options) ([]string, error) {
	paths := make([]string, 0, im.Frames)
	for t := 0; t < im.Frames; t++ {
		p := SequencePath(path, t)
		if err := saveFrame(im, t, p, opts); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func saveFrame(im *imagebuf.Image, t int, path string, opts Options) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".tif", ".tiff", ".jpg", ".jpeg":
	default:
		return fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}

	img, err := ToImage(im, t, opts.Gamma)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	switch ext {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(file, img)
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		quality := opts.Quality
		if quality == 0 {
			quality = 90
		}
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// SaveAnimatedGIF writes every frame of im as one GIF frame, quantized to the
// Plan9 palette with Floyd-Steinberg dithering.
func SaveAnimatedGIF(im *imagebuf.Image, path string, opts Options) error {
	delay := opts.Delay
	if delay == 0 {
		delay = 10
	}
	out := &gif.GIF{
		Image: make([]*image.Paletted, 0, im.Frames),
		Delay: make([]int, 0, im.Frames),
	}
	for t := 0; t < im.Frames; t++ {
		img, err := ToImage(im, t, opts.Gamma)
		if err != nil {
			return err
		}
		pimg := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, image.Point{})
		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create gif file: %w", err)
	}
	defer file.Close()
	if err := gif.EncodeAll(file, out); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
