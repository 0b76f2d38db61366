// Package imaging converts between images and the float64 matrices the
// wavelet engine operates on.
//
// Luminance uses the BT.601 weights (Y = 0.299R + 0.587G + 0.114B), the same
// convention as OpenCV's COLOR_BGR2YUV.
package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Channel selects how a matrix is painted back into an image.
type Channel int

const (
	Luminance Channel = iota
	Red
	Green
	Blue
)

// ParseChannel maps "luminance", "red", "green" or "blue" to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(s) {
	case "", "luminance", "gray", "y":
		return Luminance, nil
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	return Luminance, fmt.Errorf("unknown channel %q", s)
}

// Channels holds the per-channel planes of an image.
type Channels struct {
	Luminance [][]float64
	R         [][]float64
	G         [][]float64
	B         [][]float64
}

// ToNRGBA normalises any image to *image.NRGBA.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)
	return nrgba
}

// ToLuminanceMatrix returns the luminance plane as rows x cols.
func ToLuminanceMatrix(img image.Image) [][]float64 {
	return ToChannelMatrices(img).Luminance
}

// ToChannelMatrices extracts luminance and the three colour planes.
func ToChannelMatrices(img image.Image) Channels {
	n := ToNRGBA(img)
	minX := n.Rect.Min.X
	minY := n.Rect.Min.Y
	h := n.Rect.Dy()
	w := n.Rect.Dx()

	c := Channels{
		Luminance: makeGrid(h, w),
		R:         makeGrid(h, w),
		G:         makeGrid(h, w),
		B:         makeGrid(h, w),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := n.PixOffset(minX+x, minY+y)
			r := float64(n.Pix[off])
			g := float64(n.Pix[off+1])
			b := float64(n.Pix[off+2])

			c.R[y][x] = r
			c.G[y][x] = g
			c.B[y][x] = b
			c.Luminance[y][x] = 0.299*r + 0.587*g + 0.114*b
		}
	}
	return c
}

// FromMatrix paints m into a new opaque image. When maxAbs > 0 the
// magnitudes are rescaled so that maxAbs maps to 255, which is how detail
// bands (signed, small) are made visible; otherwise values are clamped to
// [0, 255] as-is.
func FromMatrix(m [][]float64, maxAbs float64, ch Channel) *image.NRGBA {
	h := len(m)
	w := 0
	if h > 0 {
		w = len(m[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w && x < len(m[y]); x++ {
			v := m[y][x]
			if maxAbs > 0 {
				v = math.Abs(v) / maxAbs * 255
			}
			u := clampU8(v)

			off := img.PixOffset(x, y)
			switch ch {
			case Red:
				img.Pix[off] = u
			case Green:
				img.Pix[off+1] = u
			case Blue:
				img.Pix[off+2] = u
			default:
				img.Pix[off] = u
				img.Pix[off+1] = u
				img.Pix[off+2] = u
			}
			img.Pix[off+3] = 255
		}
	}
	return img
}

// MaxAbs returns the largest absolute value in m, or 0 for an empty matrix.
func MaxAbs(m [][]float64) float64 {
	out := 0.0
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		out = math.Max(out, math.Max(math.Abs(floats.Max(row)), math.Abs(floats.Min(row))))
	}
	return out
}

// Crop trims m to the largest power-of-two rectangle that fits, no side
// larger than maxSide (ignored when <= 0). It returns nil if m is smaller
// than 2x2.
func Crop(m [][]float64, maxSide int) [][]float64 {
	h := len(m)
	if h == 0 {
		return nil
	}
	w := len(m[0])
	ch, cw := floorPow2(h), floorPow2(w)
	if maxSide > 0 {
		ch = min(ch, floorPow2(maxSide))
		cw = min(cw, floorPow2(maxSide))
	}
	if ch < 2 || cw < 2 {
		return nil
	}
	out := make([][]float64, ch)
	for y := 0; y < ch; y++ {
		out[y] = make([]float64, cw)
		copy(out[y], m[y][:cw])
	}
	return out
}

func floorPow2(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// clampU8 clamps a float64 to [0, 255] and converts to uint8.
func clampU8(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// makeGrid allocates a 2D slice of float64 with the given dimensions.
func makeGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

// Load opens a JPEG or PNG file and returns it as *image.NRGBA.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var decoded image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		decoded, err = jpeg.Decode(f)
	case ".png":
		decoded, err = png.Decode(f)
	default:
		decoded, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ToNRGBA(decoded), nil
}

// Decode reads any registered image format from r.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return ToNRGBA(decoded), format, nil
}

// Save writes img to disk. The format follows the file extension; anything
// that is not .png is written as JPEG.
func Save(img image.Image, outputPath string, jpegQuality int) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".png":
		return png.Encode(f, img)
	default:
		return jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	}
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
