package bmp

import "strconv"

// variant is the tagged union over the six payload layouts this codec
// understands, resolved once at header-read time from (bit_count,
// compression) and then dispatched on directly, rather than switching on
// the raw header fields throughout the decoder.
type variant int

const (
	variantOneBit variant = iota
	variantFourBit
	variantRLE4
	variantEightBit
	variantRLE8
	variantTrueColor
)

func (v variant) String() string {
	switch v {
	case variantOneBit:
		return "1-bit"
	case variantFourBit:
		return "4-bit"
	case variantRLE4:
		return "RLE4"
	case variantEightBit:
		return "8-bit"
	case variantRLE8:
		return "RLE8"
	case variantTrueColor:
		return "24-bit"
	default:
		return "unknown"
	}
}

// indexed reports whether this variant carries a colormap.
func (v variant) indexed() bool { return v != variantTrueColor }

// variantFor resolves the payload variant for an already-validated info
// header. InfoHeader.validate has already ruled out any (bit_count,
// compression) pair outside the table below, so the default case is
// unreachable in practice; it's kept as a defensive Unsupported error
// rather than a panic.
func variantFor(h InfoHeader) (variant, error) {
	switch h.BitCount {
	case 1:
		return variantOneBit, nil
	case 4:
		if h.Compression == CompressionRLE4 {
			return variantRLE4, nil
		}
		return variantFourBit, nil
	case 8:
		if h.Compression == CompressionRLE8 {
			return variantRLE8, nil
		}
		return variantEightBit, nil
	case 24:
		return variantTrueColor, nil
	default:
		return 0, UnsupportedError("bit depth " + strconv.Itoa(int(h.BitCount)))
	}
}
