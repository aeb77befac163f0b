package bmp_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/color/palette"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdouchement/bmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"
)

func TestHeaderRoundTrip(t *testing.T) {
	src := fixture(t, randomImage(11, 7, 1))

	b, err := bmp.Load(src)
	require.NoError(t, err)
	assert.Equal(t, bmp.Loaded, b.State())

	dst := filepath.Join(t.TempDir(), "copy.bmp")
	require.NoError(t, b.Save(dst))
	assert.Equal(t, bmp.Saved, b.State())
	assert.Nil(t, b.Modified(), "saving does not run a transform")

	in, err := read(src)
	require.NoError(t, err)
	out, err := read(dst)
	require.NoError(t, err)
	assert.Equal(t, in[:54], out[:54])
	assert.Equal(t, in, out, "an untransformed image is copied as is")
}

func TestHeaderRoundTripAfterTransform(t *testing.T) {
	src := fixture(t, randomImage(13, 9, 2))

	b, err := bmp.Load(src)
	require.NoError(t, err)
	require.NoError(t, b.Equalize())
	assert.Equal(t, bmp.Transformed, b.State())

	dst := filepath.Join(t.TempDir(), "equalized.bmp")
	require.NoError(t, b.Save(dst))

	in, err := read(src)
	require.NoError(t, err)
	out, err := read(dst)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	assert.Equal(t, in[:54], out[:54])

	// The output stays readable by another decoder.
	m, err := xbmp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 13, 9), m.Bounds())
}

func TestDecodeMatchesReferenceDecoder(t *testing.T) {
	data := encode(t, randomImage(10, 6, 3))

	want, err := xbmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	b, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	got, err := b.Image()
	require.NoError(t, err)

	assert.Equal(t, want.(*image.RGBA).Pix, got.Pix)

	cfg, err := bmp.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 6, cfg.Height)
}

func TestHistogramTotalsOnLoad(t *testing.T) {
	b, err := bmp.Decode(bytes.NewReader(encode(t, randomImage(21, 17, 4))))
	require.NoError(t, err)

	h := b.Histogram()
	require.NotNil(t, h)
	for _, ch := range []bmp.Channel{bmp.Red, bmp.Green, bmp.Blue, bmp.Luma} {
		assert.Equal(t, uint64(21*17), h.Total(ch), ch.String())
	}
	assert.Equal(t, 21*17, b.InfoHeader().ImageSize())
}

func TestFlatImageEqualizesToWhite(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = 40, 80, 120, 0xff
	}

	b, err := bmp.Decode(bytes.NewReader(encode(t, m)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Histogram().CDF(bmp.Green)[80])

	require.NoError(t, b.Equalize())
	b.Modified().ForEachPixel(func(row, col int, r, g, bl uint8) {
		assert.Equal(t, []uint8{255, 255, 255}, []uint8{r, g, bl}, "pixel (%d, %d)", row, col)
	})
}

func TestGrayscaleTwice(t *testing.T) {
	b, err := bmp.Decode(bytes.NewReader(encode(t, randomImage(11, 4, 5))))
	require.NoError(t, err)

	require.NoError(t, b.ConvertToGrayscale())
	once := append([]byte(nil), b.Modified().Pix...)

	require.NoError(t, b.ConvertToGrayscale())
	assert.Equal(t, once, b.Modified().Pix)

	b.Modified().ForEachPixel(func(_, _ int, r, g, bl uint8) {
		assert.True(t, r == g && g == bl)
	})
}

func TestTransformsDoNotCompose(t *testing.T) {
	b, err := bmp.Decode(bytes.NewReader(encode(t, randomImage(6, 6, 6))))
	require.NoError(t, err)
	original := append([]byte(nil), b.Original().Pix...)

	require.NoError(t, b.FillChannel(bmp.Red, 255))
	require.NoError(t, b.IsolateChannel(bmp.Green))

	b.Modified().ForEachPixel(func(row, col int, r, g, bl uint8) {
		_, wg, _ := b.Original().PixelAt(row, col)
		assert.Equal(t, []uint8{0, wg, 0}, []uint8{r, g, bl})
	})
	assert.Equal(t, original, b.Original().Pix, "the original buffer is never written")
}

func TestPaddingPreserved(t *testing.T) {
	data := encode(t, randomImage(11, 5, 7))
	const stride = 36 // 11*3 = 33, padded to 36.
	for row := 0; row < 5; row++ {
		for i := 33; i < stride; i++ {
			data[54+row*stride+i] = 0xCD
		}
	}

	for name, fn := range map[string]func(b *bmp.Bitmap) error{
		"equalize":  func(b *bmp.Bitmap) error { return b.Equalize() },
		"grayscale": func(b *bmp.Bitmap) error { return b.ConvertToGrayscale() },
		"fill":      func(b *bmp.Bitmap) error { return b.FillChannel(bmp.Blue, 9) },
		"isolate":   func(b *bmp.Bitmap) error { return b.IsolateChannel(bmp.Red) },
		"blur":      func(b *bmp.Bitmap) error { return b.Blur(1) },
	} {
		b, err := bmp.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		require.NoError(t, fn(b), name)

		var out bytes.Buffer
		require.NoError(t, b.Encode(&out), name)
		for row := 0; row < 5; row++ {
			start := 54 + row*stride
			assert.Equal(t, []byte{0xCD, 0xCD, 0xCD}, out.Bytes()[start+33:start+stride], "%s row %d", name, row)
		}
	}
}

func TestLumaMode(t *testing.T) {
	data := encode(t, randomImage(8, 8, 8))

	perChannel, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, perChannel.Equalize())

	lumaOnly, err := bmp.Decode(bytes.NewReader(data), bmp.WithEqualizeMode(bmp.LumaOnly))
	require.NoError(t, err)
	require.NoError(t, lumaOnly.Equalize())

	assert.NotEqual(t, perChannel.Modified().Pix, lumaOnly.Modified().Pix)
}

func TestWorkers(t *testing.T) {
	data := encode(t, randomImage(33, 41, 9))

	sequential, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	parallel, err := bmp.Decode(bytes.NewReader(data), bmp.WithWorkers(4))
	require.NoError(t, err)
	assert.Equal(t, sequential.Histogram(), parallel.Histogram())

	require.NoError(t, sequential.Equalize())
	require.NoError(t, parallel.Equalize())
	assert.Equal(t, sequential.Modified().Pix, parallel.Modified().Pix)
}

func TestRehistogram(t *testing.T) {
	b, err := bmp.Decode(bytes.NewReader(encode(t, randomImage(7, 7, 10))))
	require.NoError(t, err)
	require.NoError(t, b.FillChannel(bmp.Red, 3))

	h, err := b.Rehistogram()
	require.NoError(t, err)
	assert.Equal(t, uint64(49), h.Count(bmp.Red, 3))
	assert.NotEqual(t, uint64(49), b.Histogram().Count(bmp.Red, 3), "the load-time histogram is kept")
}

func TestTruncatedPixels(t *testing.T) {
	data := encode(t, randomImage(11, 3, 11))
	short := data[:len(data)-5]

	_, err := bmp.Decode(bytes.NewReader(short))
	var terr bmp.TruncatedError
	assert.True(t, errors.As(err, &terr))

	b, err := bmp.Decode(bytes.NewReader(short), bmp.WithLenient(true))
	require.NoError(t, err)
	pix := b.Original().Pix
	assert.Equal(t, short[54:], pix[:len(pix)-5])
	assert.Equal(t, make([]byte, 5), pix[len(pix)-5:])
}

func TestFormatErrors(t *testing.T) {
	data := encode(t, randomImage(3, 3, 12))
	var ferr bmp.FormatError

	_, err := bmp.Decode(bytes.NewReader(data[:10]))
	assert.True(t, errors.As(err, &ferr), "short file header")

	_, err = bmp.Decode(bytes.NewReader(data[:40]))
	assert.True(t, errors.As(err, &ferr), "short info header")

	bad := append([]byte(nil), data...)
	bad[0], bad[1] = 'P', 'K'
	_, err = bmp.Decode(bytes.NewReader(bad))
	assert.True(t, errors.As(err, &ferr), "signature")

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint16(bad[26:], 3)
	_, err = bmp.Decode(bytes.NewReader(bad))
	assert.True(t, errors.As(err, &ferr), "planes")

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[10:], 20)
	_, err = bmp.Decode(bytes.NewReader(bad))
	assert.True(t, errors.As(err, &ferr), "data offset")
}

func TestDataOffsetGapIsKept(t *testing.T) {
	data := encode(t, randomImage(4, 4, 13))
	gap := []byte{1, 2, 3, 4, 5, 6}

	shifted := append([]byte(nil), data[:54]...)
	binary.LittleEndian.PutUint32(shifted[10:], uint32(54+len(gap)))
	shifted = append(shifted, gap...)
	shifted = append(shifted, data[54:]...)

	b, err := bmp.Decode(bytes.NewReader(shifted))
	require.NoError(t, err)

	ref, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ref.Original().Pix, b.Original().Pix)

	var out bytes.Buffer
	require.NoError(t, b.Encode(&out))
	assert.Equal(t, shifted, out.Bytes())
}

func TestTopDown(t *testing.T) {
	data := encode(t, randomImage(5, 3, 14))
	want, err := xbmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// Reverse the row order and flag it with a negative height.
	const stride = 16
	flipped := append([]byte(nil), data[:54]...)
	binary.LittleEndian.PutUint32(flipped[22:], uint32(0xFFFFFFFD)) // -3
	for row := 2; row >= 0; row-- {
		flipped = append(flipped, data[54+row*stride:54+(row+1)*stride]...)
	}

	b, err := bmp.Decode(bytes.NewReader(flipped))
	require.NoError(t, err)
	assert.True(t, b.InfoHeader().TopDown())

	got, err := b.Image()
	require.NoError(t, err)
	assert.Equal(t, want.(*image.RGBA).Pix, got.Pix)
}

func TestPalettedImage(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 6, 4), palette.Plan9)
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 7)
	}
	data := encode(t, m)

	b, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int16(8), b.InfoHeader().BitsPerPixel)
	assert.True(t, b.InfoHeader().HasColorTable())
	assert.Nil(t, b.Histogram())
	assert.Nil(t, b.Original())

	var uerr bmp.UnsupportedError
	assert.True(t, errors.As(b.Equalize(), &uerr))
	assert.True(t, errors.As(b.ConvertToGrayscale(), &uerr))

	var out bytes.Buffer
	require.NoError(t, b.Encode(&out))
	assert.Equal(t, data, out.Bytes())
}

func TestSmallPaletteKeptAsIs(t *testing.T) {
	data := monochromeImage()

	for _, lenient := range []bool{false, true} {
		b, err := bmp.Decode(bytes.NewReader(data), bmp.WithLenient(lenient))
		require.NoError(t, err)
		assert.Equal(t, int16(1), b.InfoHeader().BitsPerPixel)
		assert.Equal(t, int32(2), b.InfoHeader().ColorsUsed)
		assert.Nil(t, b.Histogram())

		var uerr bmp.UnsupportedError
		assert.True(t, errors.As(b.Blur(1), &uerr))

		var out bytes.Buffer
		require.NoError(t, b.Encode(&out))
		assert.Equal(t, data, out.Bytes(), "lenient: %v", lenient)
	}
}

func TestRawHeader(t *testing.T) {
	data := encode(t, randomImage(5, 3, 17))

	b, err := bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	raw := b.RawHeader()
	assert.Equal(t, data[:54], raw)
	raw[0] = 'X'
	assert.Equal(t, data[:54], b.RawHeader())
}

func TestDecodeImage(t *testing.T) {
	data := encode(t, randomImage(9, 4, 18))
	want, err := xbmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	got, err := bmp.DecodeImage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, want.Bounds(), got.Bounds())
	assert.Equal(t, want.(*image.RGBA).Pix, got.(*image.RGBA).Pix)

	_, err = bmp.DecodeImage(bytes.NewReader(monochromeImage()))
	var uerr bmp.UnsupportedError
	assert.True(t, errors.As(err, &uerr))
}

func TestNotLoaded(t *testing.T) {
	var b bmp.Bitmap
	assert.Equal(t, bmp.Unloaded, b.State())
	assert.Equal(t, bmp.ErrNotLoaded, b.Equalize())
	assert.Equal(t, bmp.ErrNotLoaded, b.ConvertToGrayscale())
	assert.Equal(t, bmp.ErrNotLoaded, b.Save(filepath.Join(t.TempDir(), "x.bmp")))
	assert.Equal(t, bmp.ErrNotLoaded, b.Encode(&bytes.Buffer{}))
	_, err := b.Image()
	assert.Equal(t, bmp.ErrNotLoaded, err)
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := bmp.Load(filepath.Join(dir, "missing.bmp"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	b, err := bmp.Load(fixture(t, randomImage(2, 2, 15)))
	require.NoError(t, err)
	err = b.Save(filepath.Join(dir, "no", "such", "dir", "out.bmp"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not create image")
	assert.Equal(t, bmp.Loaded, b.State())
}

func TestStates(t *testing.T) {
	b, err := bmp.Load(fixture(t, randomImage(3, 2, 16)))
	require.NoError(t, err)
	assert.Equal(t, bmp.Loaded, b.State())
	assert.Nil(t, b.Modified())

	require.NoError(t, b.Blur(1))
	assert.Equal(t, bmp.Transformed, b.State())

	require.NoError(t, b.Save(filepath.Join(t.TempDir(), "a.bmp")))
	assert.Equal(t, bmp.Saved, b.State())
	require.NoError(t, b.Save(filepath.Join(t.TempDir(), "b.bmp")))
	assert.Equal(t, bmp.Saved, b.State())

	require.NoError(t, b.ConvertToGrayscale())
	assert.Equal(t, bmp.Transformed, b.State())
}

///////////////////////////
//                       //
// Fixtures              //
//                       //
///////////////////////////

// randomImage returns an opaque image, which x/image/bmp encodes as 24-bit.
func randomImage(width, height int, seed int64) *image.RGBA {
	rnd := rand.New(rand.NewSource(seed))
	m := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.SetRGBA(x, y, color.RGBA{
				R: uint8(rnd.Intn(256)),
				G: uint8(rnd.Intn(256)),
				B: uint8(rnd.Intn(256)),
				A: 0xff,
			})
		}
	}
	return m
}

// monochromeImage returns an 8x8 1-bit image with a 2-entry palette.
func monochromeImage() []byte {
	const (
		width, height = 8, 8
		stride        = 4
		dataOffset    = 54 + 2*4
	)
	data := make([]byte, dataOffset+stride*height)

	le := binary.LittleEndian
	copy(data, "BM")
	le.PutUint32(data[2:], uint32(len(data)))
	le.PutUint32(data[10:], dataOffset)
	le.PutUint32(data[14:], 40)
	le.PutUint32(data[18:], width)
	le.PutUint32(data[22:], height)
	le.PutUint16(data[26:], 1) // Planes.
	le.PutUint16(data[28:], 1) // Bits per pixel.
	le.PutUint32(data[46:], 2) // Colors used.
	copy(data[58:], []byte{0xff, 0xff, 0xff, 0x00})
	for row := 0; row < height; row++ {
		data[dataOffset+row*stride] = 0xAA >> uint(row%2)
	}
	return data
}

func encode(t testing.TB, m image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, xbmp.Encode(&buf, m))
	return buf.Bytes()
}

func fixture(t testing.TB, m image.Image) string {
	dst := filepath.Join(t.TempDir(), "fixture.bmp")
	require.NoError(t, os.WriteFile(dst, encode(t, m), 0644))
	return dst
}

func read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	return b, errors.Wrap(err, "could not read data")
}
