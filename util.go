package bmp

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
)

// A FormatError reports that the input is not a valid BMP image.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("bmp: invalid format: %s", string(e))
}

// An UnsupportedError reports that the input uses a valid but
// unimplemented feature.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("bmp: unsupported feature: %s", string(e))
}

// A TruncatedError reports that the pixel region is shorter than the
// header announces.
type TruncatedError string

func (e TruncatedError) Error() string {
	return fmt.Sprintf("bmp: truncated data: %s", string(e))
}

// An AllocationError reports that a buffer cannot be allocated.
type AllocationError string

func (e AllocationError) Error() string {
	return fmt.Sprintf("bmp: allocation failure: %s", string(e))
}

// An InternalError reports that an internal error was encountered.
type InternalError string

func (e InternalError) Error() string {
	return fmt.Sprintf("bmp: internal error: %s", string(e))
}

// ErrNotLoaded is returned by every Bitmap operation before a successful load.
var ErrNotLoaded = errors.New("bmp: image not loaded")

// clamp truncates v toward zero and bounds it to [0, 255].
func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// minInt returns the smaller of x or y.
func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

// maxInt returns the larger of x or y.
func maxInt(a, b int) int {
	if a >= b {
		return a
	}
	return b
}

// mul2NonNeg returns (x * y), unless at least one argument is negative or
// if the computation overflows the int type, in which case it returns -1.
func mul2NonNeg(x int, y int) int {
	if (x < 0) || (y < 0) {
		return -1
	}
	hi, lo := bits.Mul64(uint64(x), uint64(y))
	if hi != 0 {
		return -1
	}
	a := int(lo)
	if (a < 0) || (uint64(a) != lo) {
		return -1
	}
	return a
}

// BitsPerPixelName describes a bits-per-pixel value.
func BitsPerPixelName(bpp int16) string {
	switch bpp {
	case Monochrome:
		return "Monochrome palette, 2 colors"
	case Palettized4:
		return "4-bits palettized, 16 colors"
	case Palettized8:
		return "8-bits palettized, 256 colors"
	case RGB16:
		return "16-bits RGB, 65536 colors"
	case RGB24:
		return "24-bits RGB, 16M colors"
	default:
		return fmt.Sprintf("Unknown(%d)", bpp)
	}
}

// CompressionName describes a compression type.
func CompressionName(c int32) string {
	switch c {
	case CompressionRGB:
		return "None"
	case CompressionRLE8:
		return "8-bits RLE"
	case CompressionRLE4:
		return "4-bits RLE"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}
