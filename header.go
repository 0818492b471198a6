package bmp

import (
	"io"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	bmMagic        = 0x4D42 // "BM", little-endian read of the 2-byte signature

	// Compression values in InfoHeader.Compression.
	CompressionNone = 0
	CompressionRLE8 = 1
	CompressionRLE4 = 2
)

// FileHeader is the 14-byte BITMAPFILEHEADER record. The magic and
// reserved fields aren't kept on the in-memory struct: the magic is a
// fixed constant checked on read and written on write, and the reserved
// bytes are always zero.
type FileHeader struct {
	Size   uint32
	Offset uint32
}

// InfoHeader is the (at least) 40-byte BITMAPINFOHEADER record.
type InfoHeader struct {
	InfoSize        uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ClrUsed         uint32
	ClrImportant    uint32
}

func readUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func readUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readFileHeader consumes the 14-byte file header: 2-byte magic, 4-byte
// size, 4 reserved bytes (skipped), 4-byte data offset.
func readFileHeader(r io.Reader) (FileHeader, error) {
	var b [fileHeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return FileHeader{}, unexpectedEOF(err)
	}
	if readUint16(b[0:2]) != bmMagic {
		return FileHeader{}, MalformedHeaderError("bad magic, not a BMP file")
	}
	return FileHeader{
		Size:   readUint32(b[2:6]),
		Offset: readUint32(b[10:14]),
	}, nil
}

// writeFileHeader writes the 14-byte file header, with reserved bytes
// zeroed.
func writeFileHeader(w io.Writer, h FileHeader) error {
	var b [fileHeaderSize]byte
	putUint16(b[0:2], bmMagic)
	putUint32(b[2:6], h.Size)
	// b[6:10] stays zero (reserved)
	putUint32(b[10:14], h.Offset)
	_, err := w.Write(b[:])
	return err
}

// readInfoHeader consumes the info header: its declared size (must be >=
// 40), the 36 bytes of BITMAPINFOHEADER fields, then any surplus padding
// up to InfoSize.
func readInfoHeader(r io.Reader) (InfoHeader, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return InfoHeader{}, unexpectedEOF(err)
	}
	infoSize := readUint32(sizeBuf[:])
	if infoSize < infoHeaderSize {
		return InfoHeader{}, InvalidFieldError{"info_size", "must be >= 40"}
	}

	var b [infoHeaderSize - 4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return InfoHeader{}, unexpectedEOF(err)
	}
	h := InfoHeader{
		InfoSize:        infoSize,
		Width:           int32(readUint32(b[0:4])),
		Height:          int32(readUint32(b[4:8])),
		Planes:          readUint16(b[8:10]),
		BitCount:        readUint16(b[10:12]),
		Compression:     readUint32(b[12:16]),
		ImageSize:       readUint32(b[16:20]),
		XPixelsPerMeter: int32(readUint32(b[20:24])),
		YPixelsPerMeter: int32(readUint32(b[24:28])),
		ClrUsed:         readUint32(b[28:32]),
		ClrImportant:    readUint32(b[32:36]),
	}
	if err := h.validate(); err != nil {
		return InfoHeader{}, err
	}

	if pad := int64(infoSize) - infoHeaderSize; pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return InfoHeader{}, unexpectedEOF(err)
		}
	}
	return h, nil
}

// validate checks every InfoHeader invariant named in the data model.
// Width and height are checked independently of one another.
func (h InfoHeader) validate() error {
	if h.Width <= 0 {
		return InvalidFieldError{"width", "must be > 0"}
	}
	if h.Height <= 0 {
		return InvalidFieldError{"height", "must be > 0"}
	}
	if h.Planes != 1 {
		return InvalidFieldError{"planes", "must be 1"}
	}
	switch h.BitCount {
	case 1, 4, 8, 24:
	default:
		return InvalidFieldError{"bit_count", "must be 1, 4, 8 or 24"}
	}
	switch h.Compression {
	case CompressionNone:
	case CompressionRLE8:
		if h.BitCount != 8 {
			return InvalidFieldError{"compression", "RLE8 requires bit_count 8"}
		}
	case CompressionRLE4:
		if h.BitCount != 4 {
			return InvalidFieldError{"compression", "RLE4 requires bit_count 4"}
		}
	default:
		return UnsupportedError("compression method not implemented")
	}
	if h.ImageSize == 0 && h.BitCount != 24 {
		return InvalidFieldError{"image_size", "may be 0 only when bit_count is 24"}
	}
	max := uint32(1) << h.BitCount
	if h.ClrUsed > max {
		return InvalidFieldError{"clr_used", "out of range"}
	}
	if h.ClrImportant > max {
		return InvalidFieldError{"clr_important", "out of range"}
	}
	return nil
}

// writeInfoHeader writes a full 40-byte info header (no padding; callers
// that finalize a new file always emit InfoSize == 40).
func writeInfoHeader(w io.Writer, h InfoHeader) error {
	var b [infoHeaderSize]byte
	putUint32(b[0:4], h.InfoSize)
	putUint32(b[4:8], uint32(h.Width))
	putUint32(b[8:12], uint32(h.Height))
	putUint16(b[12:14], h.Planes)
	putUint16(b[14:16], h.BitCount)
	putUint32(b[16:20], h.Compression)
	putUint32(b[20:24], h.ImageSize)
	putUint32(b[24:28], uint32(h.XPixelsPerMeter))
	putUint32(b[28:32], uint32(h.YPixelsPerMeter))
	putUint32(b[32:36], h.ClrUsed)
	putUint32(b[36:40], h.ClrImportant)
	_, err := w.Write(b[:])
	return err
}

// colorCount returns the number of colormap entries implied by bitCount,
// i.e. 2^bitCount. Only meaningful for bitCount in {1, 4, 8}.
func colorCount(bitCount uint16) int {
	return 1 << bitCount
}
