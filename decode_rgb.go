package bmp

import "io"

// read24Bit decodes an uncompressed 24-bit-per-pixel body: three bytes
// per pixel on disk in B, G, R order, rows padded to a 4-byte boundary.
func (d *Decoder) read24Bit() error {
	width, height := int(d.info.Width), int(d.info.Height)
	const ncomp = 3
	pad := rowPadding(3 * width)
	lineSize := width * ncomp
	d.pix = make([]byte, lineSize*height)

	src := make([]byte, 3*width)
	for diskRow := 0; diskRow < height; diskRow++ {
		if _, err := io.ReadFull(d.r, src); err != nil {
			return truncatedRow(err)
		}
		bufRow := height - 1 - diskRow
		dst := d.pix[bufRow*lineSize : (bufRow+1)*lineSize]
		for x := 0; x < width; x++ {
			b, g, r := src[3*x], src[3*x+1], src[3*x+2]
			dst[3*x+0], dst[3*x+1], dst[3*x+2] = r, g, b
		}
		if pad > 0 {
			if err := skip(d.r, pad); err != nil {
				return truncatedRow(err)
			}
		}
	}
	return nil
}
