package bmp

import "io"

// rleCursor tracks position while decoding an RLE4/RLE8 stream: x is the
// column within the current output row, row counts rows up from the
// bottom of the image (row 0 is the first row painted, i.e. the image's
// last buffer row). Position in the pixel buffer is always derived from
// (x, row) rather than carried as a running pointer, per the "no pointer
// arithmetic" reformulation of the original's moving base pointer.
type rleCursor struct {
	x, row int
}

func (d *Decoder) readRLE(bitCount int) error {
	width, height, ncomp := int(d.info.Width), int(d.info.Height), d.ncomp
	lineSize := width * ncomp
	d.pix = make([]byte, lineSize*height) // black background (index 0)

	cur := rleCursor{x: 0, row: 0}
	// moveValid allows the cursor-only positions a completed EOL/delta may
	// land on transiently (x == width, row == height) ahead of the
	// command that wraps or terminates them.
	moveValid := func(c rleCursor) bool {
		return c.x >= 0 && c.x <= width && c.row >= 0 && c.row <= height
	}
	// writeValid is the strict bound checked before every pixel write.
	writeValid := func(c rleCursor) bool {
		return c.x >= 0 && c.x < width && c.row >= 0 && c.row < height
	}
	// rowStart returns the pixel-buffer offset of the start of the given
	// RLE row (row 0 = bottom of image = last row of the top-down buffer).
	rowStart := func(row int) int { return (height - 1 - row) * lineSize }

	pixelAt := func(c rleCursor) []byte {
		off := rowStart(c.row) + c.x*ncomp
		return d.pix[off : off+ncomp]
	}

	var b [2]byte
	readPair := func() (byte, byte, error) {
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return 0, 0, truncatedRow(err)
		}
		return b[0], b[1], nil
	}

	// maxOps bounds the loop so a stream missing its end-of-bitmap marker
	// fails with TruncatedStream instead of looping forever.
	maxOps := width*height + height*2 + 64
	for op := 0; ; op++ {
		if op > maxOps {
			return TruncatedStreamError("RLE stream exceeded expected run count without end-of-bitmap marker")
		}
		c1, c2, err := readPair()
		if err != nil {
			return err
		}
		if c1 == 0 {
			switch c2 {
			case 0: // end of line
				cur.x = 0
				cur.row++
				if cur.row > height {
					return TruncatedStreamError("end-of-line moved cursor out of bounds")
				}
			case 1: // end of bitmap
				return nil
			case 2: // delta
				if cur.x == width {
					cur.x = 0
					cur.row++
				}
				dxB, dyB, err := readPair()
				if err != nil {
					return err
				}
				dx, dy := int(dxB), int(dyB)
				nx := cur.x + dx
				if nx > width {
					dy += nx/width + 1
					nx %= width
				}
				cur.x = nx
				cur.row += dy
				if !moveValid(cur) {
					return TruncatedStreamError("delta moved cursor out of bounds")
				}
			default: // absolute run of c2 indices (bitCount=8) or nibbles (bitCount=4)
				if err := d.readAbsoluteRun(bitCount, c2, &cur, writeValid, pixelAt); err != nil {
					return err
				}
			}
		} else {
			if err := d.readEncodedRun(bitCount, c1, c2, &cur, writeValid, pixelAt); err != nil {
				return err
			}
		}
	}
}

// readEncodedRun handles an encoded-mode command (c1, c2): write c1 pixels,
// each index c2 (RLE8) or c2's high and low nibbles alternately, starting
// with the high one (RLE4), without crossing a row boundary.
func (d *Decoder) readEncodedRun(bitCount int, c1, c2 byte, cur *rleCursor, valid func(rleCursor) bool, pixelAt func(rleCursor) []byte) error {
	n := int(c1)
	if cur.x+n > int(d.info.Width) {
		return TruncatedStreamError("encoded run crosses row boundary")
	}
	high, low := (c2&0xF0)>>4, c2&0x0F
	for i := 0; i < n; i++ {
		var index byte
		if bitCount == 8 {
			index = c2
		} else if i%2 == 0 {
			index = high
		} else {
			index = low
		}
		if !valid(*cur) {
			return TruncatedStreamError("encoded run wrote out of bounds")
		}
		expand(pixelAt(*cur), d.colormap, index, d.ncomp)
		cur.x++
	}
	return nil
}

// readAbsoluteRun handles an absolute-mode escape (0, k): k literal
// indices (RLE8) or nibbles (RLE4), each palette-expanded, followed by a
// padding byte if k is odd.
func (d *Decoder) readAbsoluteRun(bitCount int, k byte, cur *rleCursor, valid func(rleCursor) bool, pixelAt func(rleCursor) []byte) error {
	count := int(k)
	var bytesToRead int
	if bitCount == 8 {
		bytesToRead = count
	} else {
		bytesToRead = (count + 1) / 2
	}
	buf := make([]byte, bytesToRead)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return truncatedRow(err)
	}
	emitted := 0
	for _, c := range buf {
		indices := []byte{c}
		if bitCount != 8 {
			indices = []byte{(c & 0xF0) >> 4, c & 0x0F}
		}
		for _, index := range indices {
			if emitted >= count {
				break
			}
			if !valid(*cur) {
				return TruncatedStreamError("absolute run wrote out of bounds")
			}
			expand(pixelAt(*cur), d.colormap, index, d.ncomp)
			cur.x++
			emitted++
		}
	}
	// Padding is keyed on the run's literal index/nibble count k being odd,
	// matching the original decoder's "if (c2 % 2) stream.get();" — for
	// RLE8 that's the same thing as the bytes-read count being odd (one
	// byte per index), and RLE4 preserves the same check rather than
	// recomputing it from ceil(k/2).
	if count%2 != 0 {
		if err := skip(d.r, 1); err != nil {
			return truncatedRow(err)
		}
	}
	return nil
}
