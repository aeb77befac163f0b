package bmp

import (
	"fmt"
	"math"
)

// A pixelFunc maps the color of one pixel to a new color.
type pixelFunc func(r, g, b uint8) (uint8, uint8, uint8)

// mapPixels writes f(src) into dst for every logical pixel. Padding bytes
// of dst are left as they are.
func mapPixels(dst, src *PixelBuffer, workers int, f pixelFunc) error {
	if !dst.sameGeometry(src) {
		return InternalError("source and destination buffers differ in geometry")
	}

	parallelRows(src.Height, workers, func(start, end int) {
		for row := start; row < end; row++ {
			in, out := src.Row(row), dst.Row(row)
			for i := 0; i < len(in); i += bytesPerPixel {
				r, g, b := f(in[i+2], in[i+1], in[i])
				out[i], out[i+1], out[i+2] = b, g, r
			}
		}
	})
	return nil
}

// Grayscale replaces every pixel of src by its luma, written to dst.
func Grayscale(dst, src *PixelBuffer, workers int) error {
	return mapPixels(dst, src, workers, func(r, g, b uint8) (uint8, uint8, uint8) {
		y := luma(r, g, b)
		return y, y, y
	})
}

// equalizationTable maps each level to floor(cdf[level] * 255), clamped.
func equalizationTable(cdf []float64) (t [levels]uint8) {
	for level := range t {
		t[level] = clamp(math.Floor(cdf[level] * 255))
	}
	return
}

// Equalize remaps the intensities of src through the cumulative
// distributions of h and writes the result to dst. h must describe src.
func Equalize(dst, src *PixelBuffer, h *Histogram, mode EqualizeMode, workers int) error {
	switch mode {
	case PerChannel:
		tr := equalizationTable(h.CDF(Red))
		tg := equalizationTable(h.CDF(Green))
		tb := equalizationTable(h.CDF(Blue))
		return mapPixels(dst, src, workers, func(r, g, b uint8) (uint8, uint8, uint8) {
			return tr[r], tg[g], tb[b]
		})
	case LumaOnly:
		ty := equalizationTable(h.CDF(Luma))
		return mapPixels(dst, src, workers, func(r, g, b uint8) (uint8, uint8, uint8) {
			y, cb, cr := RGBToYCbCr(r, g, b)
			return YCbCrToRGB(ty[y], cb, cr)
		})
	default:
		return UnsupportedError(fmt.Sprintf("equalize mode %d", mode))
	}
}

// FillChannel sets channel ch of every pixel to v.
func FillChannel(dst, src *PixelBuffer, ch Channel, v uint8, workers int) error {
	if !ch.isColor() {
		return UnsupportedError(fmt.Sprintf("fill of %s channel", ch))
	}
	return mapPixels(dst, src, workers, func(r, g, b uint8) (uint8, uint8, uint8) {
		switch ch {
		case Red:
			r = v
		case Green:
			g = v
		case Blue:
			b = v
		}
		return r, g, b
	})
}

// IsolateChannel keeps channel ch and zeroes the two others.
func IsolateChannel(dst, src *PixelBuffer, ch Channel, workers int) error {
	if !ch.isColor() {
		return UnsupportedError(fmt.Sprintf("isolation of %s channel", ch))
	}
	return mapPixels(dst, src, workers, func(r, g, b uint8) (uint8, uint8, uint8) {
		switch ch {
		case Red:
			return r, 0, 0
		case Green:
			return 0, g, 0
		default:
			return 0, 0, b
		}
	})
}

// Blur replaces every pixel of src by the average of the pixels within
// radius of it (a box filter clipped at the borders) and writes it to dst.
func Blur(dst, src *PixelBuffer, radius, workers int) error {
	if radius < 0 {
		return UnsupportedError(fmt.Sprintf("negative blur radius %d", radius))
	}
	if !dst.sameGeometry(src) {
		return InternalError("source and destination buffers differ in geometry")
	}

	parallelRows(src.Height, workers, func(start, end int) {
		for row := start; row < end; row++ {
			r0, r1 := maxInt(row-radius, 0), minInt(row+radius, src.Height-1)
			out := dst.Row(row)
			for col := 0; col < src.Width; col++ {
				c0, c1 := maxInt(col-radius, 0), minInt(col+radius, src.Width-1)

				var sr, sg, sb, n int
				for y := r0; y <= r1; y++ {
					in := src.Row(y)
					for x := c0; x <= c1; x++ {
						i := x * bytesPerPixel
						sb += int(in[i])
						sg += int(in[i+1])
						sr += int(in[i+2])
						n++
					}
				}

				i := col * bytesPerPixel
				out[i], out[i+1], out[i+2] = uint8(sb/n), uint8(sg/n), uint8(sr/n)
			}
		}
	})
	return nil
}
