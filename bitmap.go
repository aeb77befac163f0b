package bmp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Bitmap is a decoded BMP file together with its transforms.
//
// The original pixel buffer and its histogram are fixed at load time.
// Every transform reads the original buffer and writes a modified copy,
// so transforms do not compose: the last one wins. To chain them, save
// and load again.
type Bitmap struct {
	opts  options
	state State

	raw    []byte
	fh     FileHeader
	ih     InfoHeader
	extra  []byte
	opaque []byte

	original  *PixelBuffer
	modified  *PixelBuffer
	histogram *Histogram
}

// Load reads the BMP file at path.
func Load(path string, opts ...Option) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open image")
	}
	defer f.Close()

	b, err := Decode(bufio.NewReader(f), opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	return b, nil
}

// Decode reads a BMP image from r. No Bitmap is returned on error.
func Decode(r io.Reader, opts ...Option) (*Bitmap, error) {
	o := newOptions(opts)

	d, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	if err = d.decodePixels(o.lenient); err != nil {
		return nil, err
	}

	b := &Bitmap{
		opts:     o,
		state:    Loaded,
		raw:      d.raw,
		fh:       d.fh,
		ih:       d.ih,
		extra:    d.extra,
		opaque:   d.opaque,
		original: d.pix,
	}
	if b.original != nil {
		b.histogram = BuildHistogram(b.original, o.workers)
	}
	return b, nil
}

// State returns the lifecycle stage of b.
func (b *Bitmap) State() State {
	return b.state
}

// FileHeader returns the decoded file header.
func (b *Bitmap) FileHeader() FileHeader {
	return b.fh
}

// InfoHeader returns the decoded info header.
func (b *Bitmap) InfoHeader() InfoHeader {
	return b.ih
}

// RawHeader returns a copy of the 54 header bytes as read.
func (b *Bitmap) RawHeader() []byte {
	return EncodeHeader(b.raw)
}

// Histogram returns the histogram of the original pixels, or nil when the
// pixels are not 24-bit RGB.
func (b *Bitmap) Histogram() *Histogram {
	return b.histogram
}

// Original returns the pixels as loaded, or nil when they are not 24-bit RGB.
// The buffer must not be modified.
func (b *Bitmap) Original() *PixelBuffer {
	return b.original
}

// Modified returns the output of the last transform, or nil if none ran.
func (b *Bitmap) Modified() *PixelBuffer {
	return b.modified
}

// Rehistogram builds a histogram of the pixels that Save would write.
func (b *Bitmap) Rehistogram() (*Histogram, error) {
	if err := b.checkSupported(); err != nil {
		return nil, err
	}
	if b.modified != nil {
		return BuildHistogram(b.modified, b.opts.workers), nil
	}
	return BuildHistogram(b.original, b.opts.workers), nil
}

func (b *Bitmap) checkSupported() error {
	if b.state == Unloaded {
		return ErrNotLoaded
	}
	if b.original == nil {
		return UnsupportedError(fmt.Sprintf("transform of %s image with %s compression",
			BitsPerPixelName(b.ih.BitsPerPixel), CompressionName(b.ih.Compression)))
	}
	return nil
}

// ensureModified allocates the modified buffer as a copy of the original
// one. It does nothing when the buffer already exists.
func (b *Bitmap) ensureModified() {
	if b.modified == nil {
		b.modified = b.original.Clone()
	}
}

func (b *Bitmap) transform(fn func(dst, src *PixelBuffer) error) error {
	if err := b.checkSupported(); err != nil {
		return err
	}
	b.ensureModified()
	if err := fn(b.modified, b.original); err != nil {
		return err
	}
	b.state = Transformed
	return nil
}

// ConvertToGrayscale sets every pixel to its luma.
func (b *Bitmap) ConvertToGrayscale() error {
	return b.transform(func(dst, src *PixelBuffer) error {
		return Grayscale(dst, src, b.opts.workers)
	})
}

// Equalize applies histogram equalization in the configured mode.
func (b *Bitmap) Equalize() error {
	return b.transform(func(dst, src *PixelBuffer) error {
		return Equalize(dst, src, b.histogram, b.opts.mode, b.opts.workers)
	})
}

// FillChannel sets channel ch of every pixel to v.
func (b *Bitmap) FillChannel(ch Channel, v uint8) error {
	return b.transform(func(dst, src *PixelBuffer) error {
		return FillChannel(dst, src, ch, v, b.opts.workers)
	})
}

// IsolateChannel keeps only channel ch.
func (b *Bitmap) IsolateChannel(ch Channel) error {
	return b.transform(func(dst, src *PixelBuffer) error {
		return IsolateChannel(dst, src, ch, b.opts.workers)
	})
}

// Blur applies a box blur of the given radius.
func (b *Bitmap) Blur(radius int) error {
	return b.transform(func(dst, src *PixelBuffer) error {
		return Blur(dst, src, radius, b.opts.workers)
	})
}

// Encode writes the original header bytes, followed by the bytes found
// between header and pixels, followed by the modified pixels or the
// original ones when no transform ran.
func (b *Bitmap) Encode(w io.Writer) error {
	if b.state == Unloaded {
		return ErrNotLoaded
	}
	if err := b.encode(w); err != nil {
		return err
	}
	b.state = Saved
	return nil
}

func (b *Bitmap) encode(w io.Writer) error {
	if _, err := w.Write(EncodeHeader(b.raw)); err != nil {
		return err
	}
	if _, err := w.Write(b.extra); err != nil {
		return err
	}

	pix := b.opaque
	switch {
	case b.modified != nil:
		pix = b.modified.Pix
	case b.original != nil:
		pix = b.original.Pix
	}
	_, err := w.Write(pix)
	return err
}

// Save writes the image to path. A partially written file is left in place
// on error.
func (b *Bitmap) Save(path string) error {
	if b.state == Unloaded {
		return ErrNotLoaded
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create image")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err = b.encode(w); err != nil {
		return errors.Wrap(err, "could not write image")
	}
	if err = w.Flush(); err != nil {
		return errors.Wrap(err, "could not write image")
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "could not flush image to disk")
	}

	b.state = Saved
	return nil
}
