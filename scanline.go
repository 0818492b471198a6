package bmp

// Band is a band-addressable view over one row of an interleaved pixel
// buffer: the band's component of pixel x lives at row[x*ncomp+band]. It's what
// CurrentScanlineOfBand hands back to a caller that wants to read or
// write one color plane of the current scanline without knowing the
// buffer's overall stride.
type Band struct {
	row   []byte
	band  int
	ncomp int
}

// Len is the number of pixels in the row.
func (b Band) Len() int {
	if b.ncomp == 0 {
		return 0
	}
	return len(b.row) / b.ncomp
}

// At returns the band's component of pixel x.
func (b Band) At(x int) byte { return b.row[x*b.ncomp+b.band] }

// Set stores the band's component of pixel x.
func (b Band) Set(x int, v byte) { b.row[x*b.ncomp+b.band] = v }

// bandOf returns the Band view of row for the given band index, validating
// it against ncomp.
func bandOf(row []byte, band, ncomp int) (Band, error) {
	if band < 0 || band >= ncomp {
		return Band{}, StateViolationError("band out of range")
	}
	return Band{row: row, band: band, ncomp: ncomp}, nil
}
