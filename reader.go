// Derived from Go which is licensed as follows:
//
// Copyright (c) 2009 The Go Authors. All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
//   * Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//   * Redistributions in binary form must reproduce the above
// copyright notice, this list of conditions and the following disclaimer
// in the documentation and/or other materials provided with the
// distribution.
//   * Neither the name of Google Inc. nor the names of its
// contributors may be used to endorse or promote products derived from
// this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
// "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
// LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
// A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
// OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
// LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
// DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
// THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package bmp

import (
	"bytes"
	"image"
	"image/color"
	"io"
)

// FormatError reports that the input is not a valid BMP, for callers
// going through the image.RegisterFormat-facing API below. The codec
// core itself reports the finer-grained MalformedHeaderError; Decode
// and DecodeConfig fold that into FormatError to match what image.Decode
// callers expect.
type FormatError string

func (e FormatError) Error() string { return "bmp: invalid format: " + string(e) }

// asReadSeeker adapts r for NewDecoder, which requires seeking to reach
// file_header.offset. Most callers already pass an *os.File or
// *bytes.Reader; a plain io.Reader is buffered in full first.
func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func asFormatError(err error) error {
	if _, ok := err.(MalformedHeaderError); ok {
		return FormatError(err.Error())
	}
	return err
}

// Decode reads a BMP image from r and returns it as an image.Image,
// matching the signature image.RegisterFormat expects.
func Decode(r io.Reader) (image.Image, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}
	d, err := NewDecoder(rs)
	if err != nil {
		return nil, asFormatError(err)
	}
	img, err := d.Image()
	if err != nil {
		return nil, asFormatError(err)
	}
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a BMP image
// without decoding the pixel body.
func DecodeConfig(r io.Reader) (image.Config, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return image.Config{}, err
	}
	d, err := NewDecoder(rs)
	if err != nil {
		return image.Config{}, asFormatError(err)
	}
	model := color.Model(color.RGBAModel)
	if d.NumBands() == 1 {
		model = color.GrayModel
	}
	return image.Config{
		ColorModel: model,
		Width:      d.Width(),
		Height:     d.Height(),
	}, nil
}

func init() {
	image.RegisterFormat("bmp", "BM????\x00\x00\x00\x00", Decode, DecodeConfig)
}
