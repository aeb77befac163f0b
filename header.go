package bmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

//------------------------//
// Header codec           //
//------------------------//

// FileHeader is the 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved   uint32
	DataOffset uint32 // Offset from the start of the file to the pixel data.
}

// InfoHeader is the 40-byte BITMAPINFOHEADER.
type InfoHeader struct {
	HeaderSize          uint32
	Width               int32
	Height              int32 // Positive for bottom-up rows, negative for top-down.
	Planes              int16
	BitsPerPixel        int16
	Compression         int32
	CompressedImageSize uint32
	XPixelsPerMeter     int32
	YPixelsPerMeter     int32
	ColorsUsed          int32
	ImportantColors     int32

	// Intensity holds the red, green and blue intensity bytes. They alias
	// the upper bytes of ImportantColors and carry no meaning of their own.
	Intensity [3]byte
}

// DecodeFileHeader decodes the file header at the start of p.
func DecodeFileHeader(p []byte) (FileHeader, error) {
	var h FileHeader
	if len(p) < fileHeaderLen {
		return h, FormatError(fmt.Sprintf("file header needs %d bytes, got %d", fileHeaderLen, len(p)))
	}

	copy(h.Signature[:], p[oSignature:oSignature+2])
	if string(h.Signature[:]) != signature {
		return h, FormatError("not a bitmap signature")
	}

	h.FileSize = binary.LittleEndian.Uint32(p[oFileSize:])
	h.Reserved = binary.LittleEndian.Uint32(p[oReserved:])
	h.DataOffset = binary.LittleEndian.Uint32(p[oDataOffset:])
	return h, nil
}

// DecodeInfoHeader decodes the info header from a buffer holding the whole
// 54-byte header (file header included).
func DecodeInfoHeader(p []byte) (InfoHeader, error) {
	var h InfoHeader
	if len(p) < headerLen {
		return h, FormatError(fmt.Sprintf("info header needs %d bytes, got %d", headerLen, len(p)))
	}

	le := binary.LittleEndian
	h.HeaderSize = le.Uint32(p[oInfoHeaderSize:])
	h.Width = int32(le.Uint32(p[oWidth:]))
	h.Height = int32(le.Uint32(p[oHeight:]))
	h.Planes = int16(le.Uint16(p[oPlanes:]))
	h.BitsPerPixel = int16(le.Uint16(p[oBitsPerPixel:]))
	h.Compression = int32(le.Uint32(p[oCompression:]))
	h.CompressedImageSize = le.Uint32(p[oCompressedImageSize:])
	h.XPixelsPerMeter = int32(le.Uint32(p[oXPixelsPerMeter:]))
	h.YPixelsPerMeter = int32(le.Uint32(p[oYPixelsPerMeter:]))
	h.ColorsUsed = int32(le.Uint32(p[oColorsUsed:]))
	h.ImportantColors = int32(le.Uint32(p[oImportantColors:]))
	h.Intensity = [3]byte{p[oRedIntensity], p[oGreenIntensity], p[oBlueIntensity]}
	return h, nil
}

// EncodeHeader returns the bytes to write in front of the pixel data.
// The raw header read at load time is re-emitted unchanged: reserved bytes
// and unknown fields are never reconstructed from the decoded structs.
func EncodeHeader(raw []byte) []byte {
	p := make([]byte, headerLen)
	copy(p, raw)
	return p
}

// NewHeader builds the 54-byte header of an uncompressed, bottom-up,
// 24-bit image of the given dimensions.
func NewHeader(width, height int) ([]byte, error) {
	if width <= 0 {
		return nil, FormatError("width must be greater than 0")
	}
	if height <= 0 {
		return nil, FormatError("height must be greater than 0")
	}
	size := mul2NonNeg(PaddedRowWidth(width), height)
	if size < 0 || size > MaxPixelBytes-headerLen {
		return nil, AllocationError(fmt.Sprintf("%dx%d image is too large", width, height))
	}

	le := binary.LittleEndian
	p := make([]byte, headerLen)
	copy(p[oSignature:], signature)
	le.PutUint32(p[oFileSize:], uint32(headerLen+size))
	le.PutUint32(p[oDataOffset:], headerLen)
	le.PutUint32(p[oInfoHeaderSize:], infoHeaderLen)
	le.PutUint32(p[oWidth:], uint32(width))
	le.PutUint32(p[oHeight:], uint32(height))
	le.PutUint16(p[oPlanes:], 1)
	le.PutUint16(p[oBitsPerPixel:], RGB24)
	le.PutUint32(p[oCompressedImageSize:], uint32(size))
	return p, nil
}

// Rows returns the absolute number of pixel rows.
func (h InfoHeader) Rows() int {
	if h.Height < 0 {
		return -int(h.Height)
	}
	return int(h.Height)
}

// TopDown reports whether the first stored row is the top of the image.
func (h InfoHeader) TopDown() bool {
	return h.Height < 0
}

// ImageSize returns the number of pixels, width * rows.
func (h InfoHeader) ImageSize() int {
	return int(h.Width) * h.Rows()
}

// HasColorTable reports whether a 1024-byte color table follows the header.
func (h InfoHeader) HasColorTable() bool {
	return h.BitsPerPixel <= Palettized8
}

// Supported reports whether the transform pipeline can interpret the pixels.
func (h InfoHeader) Supported() bool {
	return h.BitsPerPixel == RGB24 && h.Compression == CompressionRGB
}

func (h FileHeader) String() string {
	buf := bytes.NewBufferString("")
	buf.WriteString("== File header ==\n")
	buf.WriteString(fmt.Sprintf("Signature:   %s\n", string(h.Signature[:])))
	buf.WriteString(fmt.Sprintf("FileSize:    %d bytes\n", h.FileSize))
	buf.WriteString(fmt.Sprintf("DataOffset:  %d\n", h.DataOffset))
	return buf.String()
}

func (h InfoHeader) String() string {
	buf := bytes.NewBufferString("")
	buf.WriteString("== Info header ==\n")
	buf.WriteString(fmt.Sprintf("HeaderSize:          %d\n", h.HeaderSize))
	buf.WriteString(fmt.Sprintf("Width:               %d pixels\n", h.Width))
	buf.WriteString(fmt.Sprintf("Height:              %d pixels\n", h.Height))
	buf.WriteString(fmt.Sprintf("Planes:              %d\n", h.Planes))
	buf.WriteString(fmt.Sprintf("BitsPerPixel:        %s\n", BitsPerPixelName(h.BitsPerPixel)))
	buf.WriteString(fmt.Sprintf("Compression:         %s\n", CompressionName(h.Compression)))
	buf.WriteString(fmt.Sprintf("CompressedImageSize: %d bytes\n", h.CompressedImageSize))
	buf.WriteString(fmt.Sprintf("XPixelsPerMeter:     %d\n", h.XPixelsPerMeter))
	buf.WriteString(fmt.Sprintf("YPixelsPerMeter:     %d\n", h.YPixelsPerMeter))
	buf.WriteString(fmt.Sprintf("ColorsUsed:          %d\n", h.ColorsUsed))
	buf.WriteString(fmt.Sprintf("ImportantColors:     %d\n", h.ImportantColors))
	buf.WriteString(fmt.Sprintf("Intensity (R,G,B):   %v\n", h.Intensity))
	return buf.String()
}
