package bmp

import "io"

// rowPadding returns the number of padding bytes appended after rowBytes
// on-disk bytes to reach the next 4-byte boundary.
func rowPadding(rowBytes int) int {
	pad := rowBytes % 4
	if pad == 0 {
		return 0
	}
	return 4 - pad
}

// expand looks up index in cm and writes ncomp bytes (1 for grayscale,
// R/G/B for color) into dst.
func expand(dst []byte, cm Colormap, index byte, ncomp int) {
	c := cm[index]
	if ncomp == 1 {
		dst[0] = c.R
		return
	}
	dst[0], dst[1], dst[2] = c.R, c.G, c.B
}

// read1Bit decodes an uncompressed 1-bit-per-pixel body: one bit per
// pixel, MSB first, rows padded to a 4-byte boundary, stored bottom-to-top
// on disk.
func (d *Decoder) read1Bit() error {
	width, height, ncomp := int(d.info.Width), int(d.info.Height), d.ncomp
	rowBytes := (width + 7) / 8
	pad := rowPadding(rowBytes)
	lineSize := width * ncomp
	d.pix = make([]byte, lineSize*height)

	src := make([]byte, rowBytes)
	for diskRow := 0; diskRow < height; diskRow++ {
		if _, err := io.ReadFull(d.r, src); err != nil {
			return truncatedRow(err)
		}
		bufRow := height - 1 - diskRow
		dst := d.pix[bufRow*lineSize : (bufRow+1)*lineSize]
		for x := 0; x < width; x++ {
			c := src[x/8]
			index := (c >> (7 - uint(x%8))) & 0x01
			expand(dst[x*ncomp:x*ncomp+ncomp], d.colormap, index, ncomp)
		}
		if pad > 0 {
			if err := skip(d.r, pad); err != nil {
				return truncatedRow(err)
			}
		}
	}
	return nil
}

// read4Bit decodes an uncompressed 4-bit-per-pixel body: two pixels per
// byte, high nibble first, rows padded to a 4-byte boundary.
func (d *Decoder) read4Bit() error {
	width, height, ncomp := int(d.info.Width), int(d.info.Height), d.ncomp
	rowBytes := (width + 1) / 2
	pad := rowPadding(rowBytes)
	lineSize := width * ncomp
	d.pix = make([]byte, lineSize*height)

	src := make([]byte, rowBytes)
	for diskRow := 0; diskRow < height; diskRow++ {
		if _, err := io.ReadFull(d.r, src); err != nil {
			return truncatedRow(err)
		}
		bufRow := height - 1 - diskRow
		dst := d.pix[bufRow*lineSize : (bufRow+1)*lineSize]
		for x := 0; x < width; x++ {
			c := src[x/2]
			var index byte
			if x%2 == 0 {
				index = (c >> 4) & 0x0F
			} else {
				index = c & 0x0F
			}
			expand(dst[x*ncomp:x*ncomp+ncomp], d.colormap, index, ncomp)
		}
		if pad > 0 {
			if err := skip(d.r, pad); err != nil {
				return truncatedRow(err)
			}
		}
	}
	return nil
}

// read8Bit decodes an uncompressed 8-bit-per-pixel body: one index byte
// per pixel, rows padded to a 4-byte boundary.
func (d *Decoder) read8Bit() error {
	width, height, ncomp := int(d.info.Width), int(d.info.Height), d.ncomp
	pad := rowPadding(width)
	lineSize := width * ncomp
	d.pix = make([]byte, lineSize*height)

	src := make([]byte, width)
	for diskRow := 0; diskRow < height; diskRow++ {
		if _, err := io.ReadFull(d.r, src); err != nil {
			return truncatedRow(err)
		}
		bufRow := height - 1 - diskRow
		dst := d.pix[bufRow*lineSize : (bufRow+1)*lineSize]
		for x := 0; x < width; x++ {
			expand(dst[x*ncomp:x*ncomp+ncomp], d.colormap, src[x], ncomp)
		}
		if pad > 0 {
			if err := skip(d.r, pad); err != nil {
				return truncatedRow(err)
			}
		}
	}
	return nil
}

func skip(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}

func truncatedRow(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return TruncatedStreamError("incomplete scanline")
	}
	return err
}
