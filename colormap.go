package bmp

import "io"

// RGB is one colormap entry, stored in memory as an R, G, B triple.
type RGB struct {
	R, G, B byte
}

// Colormap is an ordered palette, one entry per pixel index.
type Colormap []RGB

// readColormap reads n four-byte on-disk entries (B, G, R, reserved) into
// an in-memory R, G, B colormap, and reports whether every entry is
// grayscale (R == G == B).
func readColormap(r io.Reader, n int) (Colormap, bool, error) {
	cm := make(Colormap, n)
	grayscale := true
	var b [4]byte
	for i := range cm {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, false, unexpectedEOF(err)
		}
		entry := RGB{R: b[2], G: b[1], B: b[0]}
		cm[i] = entry
		grayscale = grayscale && entry.R == entry.G && entry.G == entry.B
	}
	return cm, grayscale, nil
}

// writeColormap writes cm back out in on-disk B, G, R, 0 order.
func writeColormap(w io.Writer, cm Colormap) error {
	buf := make([]byte, 4*len(cm))
	for i, entry := range cm {
		buf[4*i+0] = entry.B
		buf[4*i+1] = entry.G
		buf[4*i+2] = entry.R
		buf[4*i+3] = 0
	}
	_, err := w.Write(buf)
	return err
}

// identityRamp builds the 256-entry grayscale ramp palette the encoder
// writes for 8-bit grayscale output: entry i is (i, i, i).
func identityRamp() Colormap {
	cm := make(Colormap, 256)
	for i := range cm {
		cm[i] = RGB{R: byte(i), G: byte(i), B: byte(i)}
	}
	return cm
}
