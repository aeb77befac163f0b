package bmp

// RGBToYCbCr converts an RGB triple to YCbCr with the ITU-R BT.601
// studio-swing matrix. Results are truncated and clamped to [0, 255].
func RGBToYCbCr(r, g, b uint8) (y, cb, cr uint8) {
	fr, fg, fb := float64(r), float64(g), float64(b)

	y = clamp(0.257*fr + 0.504*fg + 0.098*fb + 16)
	cb = clamp(-0.148*fr - 0.291*fg + 0.439*fb + 128)
	cr = clamp(0.439*fr - 0.386*fg - 0.071*fb + 128)
	return
}

// YCbCrToRGB converts a YCbCr triple back to RGB with the inverse BT.601
// matrix. It is not an exact inverse of RGBToYCbCr: truncation loses
// information on the way.
func YCbCrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	fy := 1.164 * (float64(y) - 16)
	fcb := float64(cb) - 128
	fcr := float64(cr) - 128

	r = clamp(fy + 1.596*fcr)
	g = clamp(fy - 0.391*fcb - 0.813*fcr)
	b = clamp(fy + 2.018*fcb)
	return
}

// luma returns the Y component of an RGB triple.
func luma(r, g, b uint8) uint8 {
	y, _, _ := RGBToYCbCr(r, g, b)
	return y
}
