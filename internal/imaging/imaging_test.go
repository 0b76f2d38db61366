package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/wavescope/internal/imaging"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestToChannelMatrices(t *testing.T) {
	img := solid(4, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	c := imaging.ToChannelMatrices(img)

	require.Len(t, c.Luminance, 2)
	require.Len(t, c.Luminance[0], 4)
	assert.Equal(t, 200.0, c.R[1][3])
	assert.Equal(t, 100.0, c.G[0][0])
	assert.Equal(t, 50.0, c.B[0][2])
	assert.InDelta(t, 0.299*200+0.587*100+0.114*50, c.Luminance[1][1], 1e-9)
}

func TestFromMatrix_ClampAndNormalise(t *testing.T) {
	m := [][]float64{{-5, 0, 128, 300}}

	raw := imaging.FromMatrix(m, 0, imaging.Luminance)
	assert.Equal(t, uint8(0), raw.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(128), raw.NRGBAAt(2, 0).G)
	assert.Equal(t, uint8(255), raw.NRGBAAt(3, 0).B)
	assert.Equal(t, uint8(255), raw.NRGBAAt(0, 0).A)

	scaled := imaging.FromMatrix(m, imaging.MaxAbs(m), imaging.Red)
	assert.Equal(t, uint8(255), scaled.NRGBAAt(3, 0).R)
	assert.Equal(t, uint8(4), scaled.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), scaled.NRGBAAt(3, 0).G)
}

func TestMaxAbs(t *testing.T) {
	assert.Equal(t, 9.0, imaging.MaxAbs([][]float64{{1, -9}, {3, 4}}))
	assert.Equal(t, 0.0, imaging.MaxAbs(nil))
}

func TestCrop(t *testing.T) {
	m := make([][]float64, 100)
	for i := range m {
		m[i] = make([]float64, 70)
		m[i][0] = float64(i)
	}
	c := imaging.Crop(m, 0)
	require.Len(t, c, 64)
	require.Len(t, c[0], 64)
	assert.Equal(t, 63.0, c[63][0])

	c = imaging.Crop(m, 40)
	require.Len(t, c, 32)
	require.Len(t, c[0], 32)

	assert.Nil(t, imaging.Crop([][]float64{{1, 2, 3}}, 0))
}

func TestParseChannel(t *testing.T) {
	ch, err := imaging.ParseChannel("Green")
	require.NoError(t, err)
	assert.Equal(t, imaging.Green, ch)
	_, err = imaging.ParseChannel("alpha")
	require.Error(t, err)
}

func TestSaveLoadPNG(t *testing.T) {
	img := solid(8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, imaging.Save(img, path, 90))

	got, err := imaging.Load(path)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, got.Pix)

	var buf bytes.Buffer
	require.NoError(t, imaging.EncodePNG(&buf, img))
	dec, format, err := imaging.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, img.Bounds(), dec.Bounds())
}
