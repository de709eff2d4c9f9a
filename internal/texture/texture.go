// Package texture prepares PNG images for use as glTF textures by bringing
// them to power-of-two dimensions.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
)

// Texture errors.
var (
	ErrNotPNG     = errors.New("not a PNG image")
	ErrEmptyImage = errors.New("image has no pixels")
)

// Result reports the source size and the power-of-two output size.
type Result struct {
	W, H         int
	WPow2, HPow2 int
}

// FracW returns the share of the output width covered by the source.
func (r Result) FracW() float64 {
	return float64(r.W) / float64(r.WPow2)
}

// FracH returns the share of the output height covered by the source.
func (r Result) FracH() float64 {
	return float64(r.H) / float64(r.HPow2)
}

// Options controls PowerTwo.
type Options struct {
	// Background fills padding and, with Flatten, shows through
	// transparent pixels.
	Background color.RGBA
	Flatten    bool
	// Resize scales the image to the power-of-two size instead of padding
	// the canvas.
	Resize bool
}

// NextPow2 returns the smallest power of two >= n, and 1 for n < 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerTwo reads the PNG at src and writes a copy with power-of-two width
// and height to dst. In pad mode the source stays at its size, anchored at
// the top-left corner.
func PowerTwo(src, dst string, opts Options) (Result, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", src, err)
	}
	if !filetype.Is(data, "png") {
		return Result{}, fmt.Errorf("%w: %s", ErrNotPNG, src)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", src, err)
	}

	out, res, err := Pow2Image(img, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", src, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", dst, err)
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return Result{}, fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", dst, err)
	}
	return res, nil
}

// Pow2Image is PowerTwo on a decoded image.
func Pow2Image(img image.Image, opts Options) (*image.RGBA, Result, error) {
	b := img.Bounds()
	res := Result{W: b.Dx(), H: b.Dy()}
	if res.W == 0 || res.H == 0 {
		return nil, res, ErrEmptyImage
	}
	res.WPow2 = NextPow2(res.W)
	res.HPow2 = NextPow2(res.H)

	if opts.Resize {
		img = transform.Resize(img, res.WPow2, res.HPow2, transform.Linear)
		b = img.Bounds()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, res.WPow2, res.HPow2))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	op := draw.Src
	if opts.Flatten {
		op = draw.Over
	}
	draw.Draw(canvas, image.Rect(0, 0, b.Dx(), b.Dy()), img, b.Min, op)
	return canvas, res, nil
}
