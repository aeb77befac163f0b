package bmp

import (
	"fmt"
	"io"
)

type decoder struct {
	r  io.Reader
	fh FileHeader
	ih InfoHeader

	raw    []byte       // The header as read.
	extra  []byte       // Bytes between the header and the pixel data.
	pix    *PixelBuffer // 24-bit RGB pixels.
	opaque []byte       // Color table and pixel data the pipeline does not interpret.
}

func newDecoder(r io.Reader) (*decoder, error) {
	d := &decoder{
		r:   r,
		raw: make([]byte, headerLen),
	}

	n, err := io.ReadFull(r, d.raw)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	d.raw = d.raw[:n]

	if d.fh, err = DecodeFileHeader(d.raw); err != nil {
		return nil, err
	}
	if d.ih, err = DecodeInfoHeader(d.raw); err != nil {
		return nil, err
	}

	if d.ih.Width <= 0 {
		return nil, FormatError(fmt.Sprintf("width must be greater than 0, got %d", d.ih.Width))
	}
	if d.ih.Height == 0 {
		return nil, FormatError("height must not be 0")
	}
	if d.ih.Planes != 1 {
		return nil, FormatError(fmt.Sprintf("planes must be 1, got %d", d.ih.Planes))
	}
	return d, nil
}

// decodePixels reads everything that follows the header.
func (d *decoder) decodePixels(lenient bool) (err error) {
	if !d.ih.Supported() {
		// Color table (of any size) and pixels are kept as is, never interpreted.
		d.opaque, err = io.ReadAll(d.r)
		return err
	}

	if d.fh.DataOffset < headerLen {
		return FormatError(fmt.Sprintf("pixel data offset %d overlaps the header", d.fh.DataOffset))
	}
	gap := int64(d.fh.DataOffset) - headerLen
	if gap > MaxPixelBytes {
		return FormatError(fmt.Sprintf("pixel data offset %d is too large", d.fh.DataOffset))
	}
	if d.extra, err = d.readExtra(int(gap), lenient); err != nil {
		return err
	}

	d.pix, err = readPixels(d.r, int(d.ih.Width), d.ih.Rows(), lenient)
	return err
}

// readExtra reads n bytes that sit between the header and the pixel data.
func (d *decoder) readExtra(n int, lenient bool) ([]byte, error) {
	p := make([]byte, n)
	m, err := io.ReadFull(d.r, p)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		if !lenient {
			return nil, TruncatedError(fmt.Sprintf("%d bytes before pixel data, want %d", m, n))
		}
	default:
		return nil, err
	}
	return p, nil
}
