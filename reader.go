package bmp

// Resources:
// https://learn.microsoft.com/en-us/windows/win32/gdi/bitmap-storage
// https://en.wikipedia.org/wiki/BMP_file_format
// https://github.com/golang/image/tree/master/bmp

import (
	"image"
	"image/color"
	"io"
)

// DecodeConfig returns the color model and dimensions of a BMP image without
// decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	d, err := newDecoder(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(d.ih.Width),
		Height:     d.ih.Rows(),
	}, nil
}

// DecodeImage decodes a 24-bit BMP image as an image.RGBA.
func DecodeImage(r io.Reader) (image.Image, error) {
	b, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return b.Image()
}

// Image returns the pixels that Save would write as an image.RGBA with
// its origin at the top-left corner.
func (b *Bitmap) Image() (*image.RGBA, error) {
	if err := b.checkSupported(); err != nil {
		return nil, err
	}
	p := b.original
	if b.modified != nil {
		p = b.modified
	}

	m := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	topDown := b.ih.TopDown()
	p.ForEachPixel(func(row, col int, r, g, bl uint8) {
		y := p.Height - 1 - row
		if topDown {
			y = row
		}
		i := m.PixOffset(col, y)
		m.Pix[i+0] = r
		m.Pix[i+1] = g
		m.Pix[i+2] = bl
		m.Pix[i+3] = 0xff
	})
	return m, nil
}

func init() {
	image.RegisterFormat("bmp", signature, DecodeImage, DecodeConfig)
}
