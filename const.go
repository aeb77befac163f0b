package bmp

// A BMP file starts with a 14-byte file header followed by a 40-byte
// BITMAPINFOHEADER. All integers are little-endian. Pixel rows are stored
// bottom-up (positive height), 3 bytes per pixel in B, G, R order, each row
// padded to a multiple of 4 bytes.
//
// Resources:
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapinfoheader
// https://www.fileformat.info/format/bmp/egff.htm

const (
	signature = "BM"

	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen

	bytesPerPixel = 3
	levels        = 256 // Intensity levels of an 8-bit channel.
)

// File header offsets.
const (
	oSignature  = 0
	oFileSize   = 2
	oReserved   = 6
	oDataOffset = 10
)

// Info header offsets.
const (
	oInfoHeaderSize      = 14
	oWidth               = 18
	oHeight              = 22
	oPlanes              = 26
	oBitsPerPixel        = 28
	oCompression         = 30
	oCompressedImageSize = 34
	oXPixelsPerMeter     = 38
	oYPixelsPerMeter     = 42
	oColorsUsed          = 46
	oImportantColors     = 50

	// The intensity bytes overlap the upper bytes of ImportantColors.
	oRedIntensity   = 51
	oGreenIntensity = 52
	oBlueIntensity  = 53
)

// Bits per pixel values. They also tell, indirectly, the number of colors.
const (
	Monochrome  = 1
	Palettized4 = 4
	Palettized8 = 8
	RGB16       = 16
	RGB24       = 24
)

// Compression types.
const (
	CompressionRGB  = 0
	CompressionRLE8 = 1
	CompressionRLE4 = 2
)

// MaxPixelBytes bounds the size of a decoded pixel buffer.
const MaxPixelBytes = 1 << 30

// Channel identifies one of the histogram channels.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Luma

	numChannels = 4
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Luma:
		return "luma"
	default:
		return "unknown"
	}
}

// isColor reports whether c is one of the stored R, G, B channels.
func (c Channel) isColor() bool {
	return c == Red || c == Green || c == Blue
}

// EqualizeMode selects how Equalize remaps pixel intensities.
type EqualizeMode int

const (
	// PerChannel equalizes R, G and B independently, each through its own CDF.
	PerChannel EqualizeMode = iota
	// LumaOnly equalizes Y and rebuilds RGB keeping the original Cb and Cr.
	LumaOnly
)

func (m EqualizeMode) String() string {
	switch m {
	case PerChannel:
		return "per-channel"
	case LumaOnly:
		return "luma"
	default:
		return "unknown"
	}
}

// State is the lifecycle stage of a Bitmap.
type State int

const (
	Unloaded State = iota
	Loaded
	Transformed
	Saved
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Transformed:
		return "transformed"
	case Saved:
		return "saved"
	default:
		return "unknown"
	}
}
