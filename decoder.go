package bmp

import (
	"image"
	"io"
	"os"
)

// Decoder reconstructs a pixel buffer from a BMP byte stream. It owns its
// input stream, headers, colormap and pixel buffer from construction
// until Close/Abort; pixel data is decoded lazily, on the first call to
// CurrentScanlineOfBand.
type Decoder struct {
	r      io.ReadSeeker
	closer io.Closer

	file FileHeader
	info InfoHeader
	kind variant

	colormap  Colormap
	grayscale bool
	ncomp     int

	pix      []byte
	dataRead bool
	scanline int
}

// Open opens filename and reads its file header, info header and (if
// indexed) colormap. The returned Decoder owns the file until Close or
// Abort.
func Open(filename string) (*Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	d, err := NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// NewDecoder reads headers and colormap from r, which must support
// seeking: the pixel body is read starting at file_header.offset,
// regardless of how many bytes the headers and colormap occupied.
func NewDecoder(r io.ReadSeeker) (*Decoder, error) {
	fh, err := readFileHeader(r)
	if err != nil {
		return nil, err
	}
	ih, err := readInfoHeader(r)
	if err != nil {
		return nil, err
	}
	kind, err := variantFor(ih)
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		r:    r,
		file: fh,
		info: ih,
		kind: kind,
	}
	if kind.indexed() {
		cm, gray, err := readColormap(r, colorCount(ih.BitCount))
		if err != nil {
			return nil, err
		}
		d.colormap = cm
		d.grayscale = gray
	} else {
		d.grayscale = false
	}
	if d.grayscale {
		d.ncomp = 1
	} else {
		d.ncomp = 3
	}
	return d, nil
}

// Width is the image width in pixels.
func (d *Decoder) Width() int { return int(d.info.Width) }

// Height is the image height in pixels.
func (d *Decoder) Height() int { return int(d.info.Height) }

// NumBands is 1 for a grayscale source, 3 for RGB.
func (d *Decoder) NumBands() int { return d.ncomp }

// PixelType is always "UINT8": this codec's only supported sample type.
func (d *Decoder) PixelType() string { return "UINT8" }

// Offset returns ncomp, the per-pixel stride used to address bands.
func (d *Decoder) Offset() int { return d.ncomp }

// readData dispatches on d.kind and fully decodes the pixel body into
// d.pix. It seeks to file_header.offset first: body parsing never relies
// on the stream's position after the headers/colormap.
func (d *Decoder) readData() error {
	if _, err := d.r.Seek(int64(d.file.Offset), io.SeekStart); err != nil {
		return err
	}
	var err error
	switch d.kind {
	case variantOneBit:
		err = d.read1Bit()
	case variantFourBit:
		err = d.read4Bit()
	case variantRLE4:
		err = d.readRLE(4)
	case variantEightBit:
		err = d.read8Bit()
	case variantRLE8:
		err = d.readRLE(8)
	case variantTrueColor:
		err = d.read24Bit()
	default:
		err = UnsupportedError(d.kind.String())
	}
	if err != nil {
		d.pix = nil
		return err
	}
	d.dataRead = true
	return nil
}

// CurrentScanlineOfBand returns a Band view over the current scanline's
// given band. The first call triggers the full lazy decode.
func (d *Decoder) CurrentScanlineOfBand(band int) (Band, error) {
	if !d.dataRead {
		if err := d.readData(); err != nil {
			return Band{}, err
		}
	}
	if d.scanline < 0 || d.scanline >= int(d.info.Height) {
		return Band{}, StateViolationError("scanline cursor out of range")
	}
	lineSize := int(d.info.Width) * d.ncomp
	row := d.pix[d.scanline*lineSize : (d.scanline+1)*lineSize]
	return bandOf(row, band, d.ncomp)
}

// NextScanline advances the scanline cursor by one row.
func (d *Decoder) NextScanline() { d.scanline++ }

// Close drops the pixel buffer and releases the file this Decoder opened,
// if any. A caller-supplied stream (NewDecoder) is left open.
func (d *Decoder) Close() error {
	d.pix = nil
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// Abort discards any partially decoded pixel buffer without attempting
// further I/O.
func (d *Decoder) Abort() error {
	d.pix = nil
	return d.Close()
}

// Image decodes the full pixel buffer (if not already decoded) and
// returns it as a standard library image.Image: *image.Gray for
// grayscale sources, *image.RGBA for color ones. This is the "ambient
// image-I/O framework" seam spec.md treats as external: a caller that
// wants an image.Image composes it from the core's pixel buffer here.
func (d *Decoder) Image() (image.Image, error) {
	if !d.dataRead {
		if err := d.readData(); err != nil {
			return nil, err
		}
	}
	width, height := int(d.info.Width), int(d.info.Height)
	if d.grayscale {
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, d.pix)
		return img, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(d.pix); i, j = i+3, j+4 {
		img.Pix[j+0] = d.pix[i+0]
		img.Pix[j+1] = d.pix[i+1]
		img.Pix[j+2] = d.pix[i+2]
		img.Pix[j+3] = 0xFF
	}
	return img, nil
}
