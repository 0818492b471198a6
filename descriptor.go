package bmp

// Descriptor is the codec descriptor exposed to the host image-I/O
// framework: the static capabilities a registry uses to pick this codec
// for a given file type, pixel type, or magic sniff.
type Descriptor struct {
	FileType         string
	PixelTypes       []string
	CompressionTypes []string
	MagicStrings     [][]byte
	FileExtensions   []string
}

// CodecDescriptor returns the BMP codec's descriptor. Compression is
// listed as supported because the decoder reads RLE4/RLE8; the encoder
// always ignores a requested compression (see Encoder.SetCompressionType).
func CodecDescriptor() Descriptor {
	return Descriptor{
		FileType:         "BMP",
		PixelTypes:       []string{"UINT8"},
		CompressionTypes: []string{"RLE"},
		MagicStrings:     [][]byte{[]byte("BM")},
		FileExtensions:   []string{"bmp"},
	}
}
