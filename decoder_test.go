package bmp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBMP assembles a complete on-disk BMP: file header, 40-byte info
// header, optional palette (nil for bit_count 24), and body bytes.
func buildBMP(t *testing.T, width, height int, bitCount uint16, compression uint32, imageSize uint32, palette Colormap, body []byte) []byte {
	t.Helper()
	var paletteBytes bytes.Buffer
	if palette != nil {
		require.NoError(t, writeColormap(&paletteBytes, palette))
	}
	offset := uint32(fileHeaderSize+infoHeaderSize) + uint32(paletteBytes.Len())
	var buf bytes.Buffer
	require.NoError(t, writeFileHeader(&buf, FileHeader{
		Size:   offset + uint32(len(body)),
		Offset: offset,
	}))
	require.NoError(t, writeInfoHeader(&buf, InfoHeader{
		InfoSize:    infoHeaderSize,
		Width:       int32(width),
		Height:      int32(height),
		Planes:      1,
		BitCount:    bitCount,
		Compression: compression,
		ImageSize:   imageSize,
	}))
	buf.Write(paletteBytes.Bytes())
	buf.Write(body)
	return buf.Bytes()
}

func readAllPixels(t *testing.T, d *Decoder) []byte {
	t.Helper()
	out := make([]byte, 0, d.Width()*d.Height()*d.NumBands())
	for y := 0; y < d.Height(); y++ {
		for band := 0; band < d.NumBands(); band++ {
			b, err := d.CurrentScanlineOfBand(band)
			require.NoError(t, err)
			if band == 0 {
				// the Band views are only fetched here; the whole
				// interleaved row is copied from d.pix below
				_ = b
			}
		}
		lineSize := d.Width() * d.NumBands()
		row := d.pix[y*lineSize : (y+1)*lineSize]
		out = append(out, row...)
		d.NextScanline()
	}
	return out
}

func TestDecode1BitGrayscale(t *testing.T) {
	// S3: width=8, height=1, palette {black, white}, body 0xA5 (10100101)
	// decodes MSB-first to [255,0,255,0,0,255,0,255], single band.
	palette := Colormap{{0, 0, 0}, {255, 255, 255}}
	body := []byte{0xA5, 0, 0, 0} // padded to 4 bytes (1 data byte + 3 pad)
	raw := buildBMP(t, 8, 1, 1, CompressionNone, 4, palette, body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, d.NumBands())
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{255, 0, 255, 0, 0, 255, 0, 255}, pix)
}

func Test4BitShiftHighNibbleFirst(t *testing.T) {
	// Open Question 1: even x gets the high nibble, odd x the low one.
	palette := make(Colormap, 16)
	for i := range palette {
		palette[i] = RGB{byte(i), byte(i), byte(i)}
	}
	// width=2: one byte 0xAB -> pixel0 = high nibble 0xA, pixel1 = low 0xB.
	body := []byte{0xAB, 0, 0, 0}
	raw := buildBMP(t, 2, 1, 4, CompressionNone, 4, palette, body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{0x0A, 0x0B}, pix)
}

func Test4BitOddWidthPadding(t *testing.T) {
	palette := make(Colormap, 16)
	for i := range palette {
		palette[i] = RGB{byte(i), byte(i), byte(i)}
	}
	// width=3 -> 2 bytes of packed nibbles (ceil(3/2)), padded to 4.
	body := []byte{0x12, 0x30, 0, 0}
	raw := buildBMP(t, 3, 1, 4, CompressionNone, 4, palette, body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, pix)
}

func TestDecode24BitPixels(t *testing.T) {
	// S1: 2x2 RGB image, top row (red, green), bottom row (blue, yellow);
	// on disk the bottom row comes first, each pixel as B, G, R, then 2
	// padding bytes.
	body := []byte{
		0xFF, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00, // disk row0 (bottom): blue, yellow + pad
		0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0x00, 0x00, // disk row1 (top): red, green + pad
	}
	raw := buildBMP(t, 2, 2, 24, CompressionNone, 0, nil, body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 3, d.NumBands())
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{
		255, 0, 0, 0, 255, 0, // row0: red, green
		0, 0, 255, 255, 255, 0, // row1: blue, yellow
	}, pix)
}

func Test24BitRowPadding(t *testing.T) {
	for _, tc := range []struct {
		width int
		pad   int
	}{
		{width: 1, pad: 1},
		{width: 2, pad: 2},
		{width: 3, pad: 3},
		{width: 4, pad: 0},
	} {
		rowBytes := 3 * tc.width
		// Disk row 0 (bottom) is all 0x11, disk row 1 (top) all 0x22; the
		// padding bytes are 0xEE and must never reach the pixel buffer.
		padBytes := bytes.Repeat([]byte{0xEE}, tc.pad)
		body := append(bytes.Repeat([]byte{0x11}, rowBytes), padBytes...)
		body = append(body, bytes.Repeat([]byte{0x22}, rowBytes)...)
		body = append(body, padBytes...)
		raw := buildBMP(t, tc.width, 2, 24, CompressionNone, 0, nil, body)
		d, err := NewDecoder(bytes.NewReader(raw))
		require.NoError(t, err, "width=%d", tc.width)
		want := append(bytes.Repeat([]byte{0x22}, rowBytes), bytes.Repeat([]byte{0x11}, rowBytes)...)
		assert.Equal(t, want, readAllPixels(t, d), "width=%d", tc.width)
	}
}

func gray16Palette() Colormap {
	cm := make(Colormap, 16)
	for i := range cm {
		cm[i] = RGB{byte(i * 17), byte(i * 17), byte(i * 17)}
	}
	return cm
}

func gray256Palette() Colormap {
	return identityRamp()
}

func TestRLE8EncodedRun(t *testing.T) {
	// S4: (05,03) writes index 3 into five consecutive pixels.
	body := []byte{5, 3, 0, 1} // encoded run, then end-of-bitmap
	raw := buildBMP(t, 5, 1, 8, CompressionRLE8, uint32(len(body)), gray256Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{3, 3, 3, 3, 3}, pix)
}

func TestRLE4EncodedRun(t *testing.T) {
	// S5: (05,0x12) writes nibble pattern 1,2,1,2,1 into five pixels.
	body := []byte{5, 0x12, 0, 1}
	raw := buildBMP(t, 5, 1, 4, CompressionRLE4, uint32(len(body)), gray16Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{17, 34, 17, 34, 17}, pix)
}

func TestRLE8Background(t *testing.T) {
	// S7: four end-of-line markers then end-of-bitmap on a 4x4 image;
	// every pixel stays at palette entry 0 (black background).
	body := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	raw := buildBMP(t, 4, 4, 8, CompressionRLE8, uint32(len(body)), gray256Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	for _, b := range pix {
		assert.Equal(t, byte(0), b)
	}
}

func TestRLE8AbsoluteRunOddPadding(t *testing.T) {
	// Absolute run of 3 indices must consume a single padding byte (3 is
	// odd) before the next command is read.
	body := []byte{0, 3, 10, 20, 30, 0 /* pad */, 0, 1 /* end of bitmap */}
	raw := buildBMP(t, 3, 1, 8, CompressionRLE8, uint32(len(body)), gray256Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	assert.Equal(t, []byte{10, 20, 30}, pix)
}

func TestRLE8DeltaWrap(t *testing.T) {
	// S6: width=10, cursor at x=8 (via a preceding encoded run), then
	// (0,2,5,0): dx=5, nx=13>10 so dy=0+13/10+1=2, nx=3 — cursor ends up
	// three columns into a row two lines further up (i.e. the row at
	// file-order y=2 counting from the bottom).
	body := []byte{
		8, 9, // encoded run: index 9 x8 -> x=8
		0, 2, 5, 0, // delta dx=5 dy=0
		1, 7, // encoded run: index 7 x1 at the new cursor
		0, 0, // end of line
		0, 1, // end of bitmap
	}
	raw := buildBMP(t, 10, 4, 8, CompressionRLE8, uint32(len(body)), gray256Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	pix := readAllPixels(t, d)
	lineSize := 10
	// file row 0 (bottom, buffer row 3): first 8 pixels are index 9.
	assert.Equal(t, make([]byte, 8), subtractPattern(pix[3*lineSize:3*lineSize+8], 9))
	// file row 2 (buffer row 1, two rows up from row0): column 3 is index 7.
	assert.Equal(t, byte(7), pix[1*lineSize+3])
}

// subtractPattern returns a zero slice when every byte in got equals want,
// for a readable equality assertion above.
func subtractPattern(got []byte, want byte) []byte {
	out := make([]byte, len(got))
	for i, b := range got {
		if b != want {
			out[i] = b
		}
	}
	return out
}

func TestRLE8MissingTerminatorIsTruncated(t *testing.T) {
	body := []byte{0, 0} // end-of-line, then EOF before end-of-bitmap
	raw := buildBMP(t, 2, 2, 8, CompressionRLE8, uint32(len(body)), gray256Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	_, err = d.CurrentScanlineOfBand(0)
	var target TruncatedStreamError
	assert.ErrorAs(t, err, &target)
}

func TestRLE8EncodedRunCrossingRowIsRejected(t *testing.T) {
	body := []byte{5, 3, 0, 1} // run of 5 into a width-3 row
	raw := buildBMP(t, 3, 1, 8, CompressionRLE8, uint32(len(body)), gray256Palette(), body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	_, err = d.CurrentScanlineOfBand(0)
	var target TruncatedStreamError
	assert.ErrorAs(t, err, &target)
}

func TestDecodeIsLazy(t *testing.T) {
	body := []byte{0x00, 0x00, 0x00, 0x00}
	raw := buildBMP(t, 8, 1, 1, CompressionNone, 4, Colormap{{0, 0, 0}, {255, 255, 255}}, body)
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.False(t, d.dataRead)
	_, err = d.CurrentScanlineOfBand(0)
	require.NoError(t, err)
	assert.True(t, d.dataRead)
}

func TestDecoderGrayscaleClassification(t *testing.T) {
	identity := gray256Palette()
	raw := buildBMP(t, 1, 1, 8, CompressionNone, 4, identity, []byte{0, 0, 0, 0})
	d, err := NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, d.NumBands())

	nonIdentity := gray256Palette()
	nonIdentity[5] = RGB{5, 6, 7}
	raw = buildBMP(t, 1, 1, 8, CompressionNone, 4, nonIdentity, []byte{0, 0, 0, 0})
	d, err = NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 3, d.NumBands())
}
