package bmp

import (
	"image"
	"io"
	"os"
)

// Encoder builds a BMP file: width, height, band count and pixel type are
// set, FinalizeSettings locks them in and allocates the pixel buffer, the
// caller fills scanlines, and Close writes the whole file in one pass.
//
// The output file (when constructed with Create) is only opened at
// Close: an Encoder that's aborted before Close leaves the target path
// untouched rather than truncating it early.
type Encoder struct {
	filename string
	w        io.Writer
	closer   io.Closer

	width, height int
	numBands      int
	pixelType     string
	finalized     bool

	grayscale bool
	ncomp     int
	pix       []byte
	scanline  int
}

// Create prepares an Encoder that will write to filename once Close is
// called.
func Create(filename string) *Encoder {
	return &Encoder{filename: filename, pixelType: "UINT8", numBands: 3}
}

// NewEncoder prepares an Encoder that writes directly to w, e.g. a
// bytes.Buffer or an already-open file.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, pixelType: "UINT8", numBands: 3}
}

// SetWidth sets the image width. Must be called before FinalizeSettings.
func (e *Encoder) SetWidth(width int) error {
	if e.finalized {
		return StateViolationError("SetWidth called after FinalizeSettings")
	}
	e.width = width
	return nil
}

// SetHeight sets the image height. Must be called before FinalizeSettings.
func (e *Encoder) SetHeight(height int) error {
	if e.finalized {
		return StateViolationError("SetHeight called after FinalizeSettings")
	}
	e.height = height
	return nil
}

// SetNumBands sets the band count: 1 for grayscale output, 3 for RGB.
func (e *Encoder) SetNumBands(bands int) error {
	if e.finalized {
		return StateViolationError("SetNumBands called after FinalizeSettings")
	}
	if bands != 1 && bands != 3 {
		return StateViolationError("bmp supports only 1 (grayscale) or 3 (RGB) bands")
	}
	e.numBands = bands
	return nil
}

// SetPixelType sets the pixel type; only "UINT8" is supported.
func (e *Encoder) SetPixelType(pixelType string) error {
	if e.finalized {
		return StateViolationError("SetPixelType called after FinalizeSettings")
	}
	if pixelType != "UINT8" {
		return StateViolationError("bmp supports only the UINT8 pixel type")
	}
	e.pixelType = pixelType
	return nil
}

// SetCompressionType accepts (and ignores) a requested compression: the
// encoder always emits uncompressed output, per the codec descriptor.
func (e *Encoder) SetCompressionType(name string) error {
	if e.finalized {
		return StateViolationError("SetCompressionType called after FinalizeSettings")
	}
	return nil
}

// Offset returns ncomp — meaningful only after FinalizeSettings.
func (e *Encoder) Offset() int { return e.ncomp }

// FinalizeSettings locks in width/height/bands and allocates the pixel
// buffer; the header fields are computed from these settings at Close.
// No setter may be called again afterwards.
func (e *Encoder) FinalizeSettings() error {
	if e.finalized {
		return StateViolationError("FinalizeSettings called twice")
	}
	if e.width <= 0 {
		return StateViolationError("width must be set to a positive value before finalizing")
	}
	if e.height <= 0 {
		return StateViolationError("height must be set to a positive value before finalizing")
	}
	e.grayscale = e.numBands == 1
	if e.grayscale {
		e.ncomp = 1
	} else {
		e.ncomp = 3
	}
	e.pix = make([]byte, e.ncomp*e.width*e.height)
	e.finalized = true
	return nil
}

// CurrentScanlineOfBand returns a Band view over the current scanline's
// given band, into the in-memory (top-to-bottom) pixel buffer.
func (e *Encoder) CurrentScanlineOfBand(band int) (Band, error) {
	if !e.finalized {
		return Band{}, StateViolationError("CurrentScanlineOfBand called before FinalizeSettings")
	}
	if e.scanline < 0 || e.scanline >= e.height {
		return Band{}, StateViolationError("scanline cursor out of range")
	}
	lineSize := e.width * e.ncomp
	row := e.pix[e.scanline*lineSize : (e.scanline+1)*lineSize]
	return bandOf(row, band, e.ncomp)
}

// NextScanline advances the scanline cursor by one row.
func (e *Encoder) NextScanline() { e.scanline++ }

// SetImage copies a standard library image.Image into the pixel buffer
// all at once, as an alternative to writing scanline by scanline. It must
// be called after FinalizeSettings and match the finalized dimensions and
// band count.
func (e *Encoder) SetImage(img image.Image) error {
	if !e.finalized {
		return StateViolationError("SetImage called before FinalizeSettings")
	}
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return StateViolationError("image bounds do not match finalized width/height")
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if e.grayscale {
				e.pix[i] = byte(r >> 8)
				i++
			} else {
				e.pix[i+0] = byte(r >> 8)
				e.pix[i+1] = byte(g >> 8)
				e.pix[i+2] = byte(bl >> 8)
				i += 3
			}
		}
	}
	return nil
}

// Close finalizes the header fields, opens the output file if this
// Encoder was built with Create, and writes the file header, info
// header, optional palette, and body.
func (e *Encoder) Close() error {
	if !e.finalized {
		return StateViolationError("Close called before FinalizeSettings")
	}
	w := e.w
	if w == nil {
		f, err := os.Create(e.filename)
		if err != nil {
			return err
		}
		e.closer = f
		w = f
	}
	file, info, palette := e.headers()
	if err := writeFileHeader(w, file); err != nil {
		return e.closeAfterError(err)
	}
	if err := writeInfoHeader(w, info); err != nil {
		return e.closeAfterError(err)
	}
	if palette != nil {
		if err := writeColormap(w, palette); err != nil {
			return e.closeAfterError(err)
		}
	}
	var err error
	if e.grayscale {
		err = e.writeGrayBody(w)
	} else {
		err = e.writeRGBBody(w)
	}
	if err != nil {
		return e.closeAfterError(err)
	}
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

func (e *Encoder) closeAfterError(err error) error {
	if e.closer != nil {
		e.closer.Close()
	}
	return err
}

// Abort discards the pixel buffer without writing anything. Because
// Close is the only place this Encoder opens its output file, an aborted
// Encoder built with Create never touches the target path.
func (e *Encoder) Abort() error {
	e.pix = nil
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

// headers computes the on-disk file and info headers (and palette, for
// grayscale output) from the finalized settings, using the true
// fileHeaderSize (14) rather than the source's miscounted constant.
func (e *Encoder) headers() (FileHeader, InfoHeader, Colormap) {
	if e.grayscale {
		rowBytes := e.width
		pad := rowPadding(rowBytes)
		lineSize := rowBytes + pad
		imageSize := uint32(lineSize * e.height)
		palette := identityRamp()
		paletteSize := uint32(4 * len(palette))
		offset := uint32(fileHeaderSize+infoHeaderSize) + paletteSize
		return FileHeader{
				Size:   offset + imageSize,
				Offset: offset,
			}, InfoHeader{
				InfoSize:     infoHeaderSize,
				Width:        int32(e.width),
				Height:       int32(e.height),
				Planes:       1,
				BitCount:     8,
				Compression:  CompressionNone,
				ImageSize:    imageSize,
				ClrUsed:      256,
				ClrImportant: 256,
			}, palette
	}
	rowBytes := 3 * e.width
	pad := rowPadding(rowBytes)
	lineSize := rowBytes + pad
	bodySize := uint32(lineSize * e.height)
	offset := uint32(fileHeaderSize + infoHeaderSize)
	return FileHeader{
			Size:   offset + bodySize,
			Offset: offset,
		}, InfoHeader{
			InfoSize:    infoHeaderSize,
			Width:       int32(e.width),
			Height:      int32(e.height),
			Planes:      1,
			BitCount:    24,
			Compression: CompressionNone,
			ImageSize:   0,
		}, nil
}

// writeGrayBody writes the 8-bit index body (identity ramp, so index ==
// gray level), bottom-to-top, padded to a 4-byte boundary.
func (e *Encoder) writeGrayBody(w io.Writer) error {
	pad := rowPadding(e.width)
	padding := make([]byte, pad)
	lineSize := e.width
	for row := e.height - 1; row >= 0; row-- {
		if _, err := w.Write(e.pix[row*lineSize : (row+1)*lineSize]); err != nil {
			return err
		}
		if pad > 0 {
			if _, err := w.Write(padding); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRGBBody writes the 24-bit body, reordering each pixel to on-disk
// B, G, R, bottom-to-top, padded to a 4-byte boundary.
func (e *Encoder) writeRGBBody(w io.Writer) error {
	pad := rowPadding(3 * e.width)
	padding := make([]byte, pad)
	lineSize := 3 * e.width
	buf := make([]byte, lineSize)
	for row := e.height - 1; row >= 0; row-- {
		src := e.pix[row*lineSize : (row+1)*lineSize]
		for x := 0; x < e.width; x++ {
			buf[3*x+0] = src[3*x+2]
			buf[3*x+1] = src[3*x+1]
			buf[3*x+2] = src[3*x+0]
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		if pad > 0 {
			if _, err := w.Write(padding); err != nil {
				return err
			}
		}
	}
	return nil
}
