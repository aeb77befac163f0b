package bmp

import (
	"fmt"
	"io"
)

// PixelBuffer holds 24-bit pixels exactly as they are laid out on disk:
// rows of Stride bytes, B, G, R per pixel, padding at the end of each row.
type PixelBuffer struct {
	// Pix holds Stride*Height bytes.
	Pix []byte
	// Stride is the padded row width in bytes.
	Stride int
	// Width and Height are the logical dimensions in pixels.
	Width, Height int
}

// PaddedRowWidth returns the number of bytes of a 24-bit row of width pixels,
// rounded up to a multiple of 4.
func PaddedRowWidth(width int) int {
	return (width*bytesPerPixel + 3) &^ 3
}

// NewPixelBuffer returns a zeroed buffer for a width x height image.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, FormatError(fmt.Sprintf("invalid dimensions %dx%d", width, height))
	}
	stride := PaddedRowWidth(width)
	n := mul2NonNeg(stride, height)
	if n < 0 || n > MaxPixelBytes {
		return nil, AllocationError(fmt.Sprintf("%dx%d pixel buffer is too large", width, height))
	}
	return &PixelBuffer{
		Pix:    make([]byte, n),
		Stride: stride,
		Width:  width,
		Height: height,
	}, nil
}

// readPixels reads the Stride*height bytes of the pixel region from r.
// A short region is an error unless lenient is set, in which case the
// missing bytes are left zeroed.
func readPixels(r io.Reader, width, height int, lenient bool) (*PixelBuffer, error) {
	p, err := NewPixelBuffer(width, height)
	if err != nil {
		return nil, err
	}

	n, err := io.ReadFull(r, p.Pix)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		if !lenient {
			return nil, TruncatedError(fmt.Sprintf("pixel data has %d bytes, want %d", n, len(p.Pix)))
		}
	default:
		return nil, err
	}
	return p, nil
}

// PixOffset returns the index of the first byte (blue) of the pixel at (row, col).
func (p *PixelBuffer) PixOffset(row, col int) int {
	return row*p.Stride + col*bytesPerPixel
}

func (p *PixelBuffer) check(row, col int) {
	if row < 0 || row >= p.Height || col < 0 || col >= p.Width {
		panic(fmt.Sprintf("bmp: pixel (%d, %d) out of range %dx%d", row, col, p.Width, p.Height))
	}
}

// PixelAt returns the color of the pixel at (row, col). Rows are numbered
// in storage order. It panics if the coordinates are out of range.
func (p *PixelBuffer) PixelAt(row, col int) (r, g, b uint8) {
	p.check(row, col)
	i := p.PixOffset(row, col)
	return p.Pix[i+2], p.Pix[i+1], p.Pix[i]
}

// SetPixelAt sets the color of the pixel at (row, col). It panics if the
// coordinates are out of range.
func (p *PixelBuffer) SetPixelAt(row, col int, r, g, b uint8) {
	p.check(row, col)
	i := p.PixOffset(row, col)
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = b, g, r
}

// ForEachPixel calls fn for every pixel, row by row in storage order and
// left to right within a row. Padding bytes are never visited.
func (p *PixelBuffer) ForEachPixel(fn func(row, col int, r, g, b uint8)) {
	for row := 0; row < p.Height; row++ {
		line := p.Row(row)
		for col := 0; col < p.Width; col++ {
			i := col * bytesPerPixel
			fn(row, col, line[i+2], line[i+1], line[i])
		}
	}
}

// Row returns the pixel bytes of a row, without its padding.
func (p *PixelBuffer) Row(row int) []byte {
	start := row * p.Stride
	return p.Pix[start : start+p.Width*bytesPerPixel]
}

// Padding returns the padding bytes at the end of a row.
func (p *PixelBuffer) Padding(row int) []byte {
	start := row * p.Stride
	return p.Pix[start+p.Width*bytesPerPixel : start+p.Stride]
}

// Clone returns a deep copy of p.
func (p *PixelBuffer) Clone() *PixelBuffer {
	c := *p
	c.Pix = make([]byte, len(p.Pix))
	copy(c.Pix, p.Pix)
	return &c
}

// sameGeometry reports whether p and o describe the same layout.
func (p *PixelBuffer) sameGeometry(o *PixelBuffer) bool {
	return p.Width == o.Width && p.Height == o.Height && p.Stride == o.Stride && len(p.Pix) == len(o.Pix)
}
