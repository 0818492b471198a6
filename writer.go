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
	"image"
	"io"
)

// Encode writes m to w in BMP format: as an 8-bit grayscale bitmap if m
// is an *image.Gray, otherwise as a 24-bit truecolor bitmap. This codec
// never writes RLE or bit depths below 8, so any paletted or alpha-
// carrying source image is flattened to one of those two shapes.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	e := NewEncoder(w)
	if _, ok := m.(*image.Gray); ok {
		if err := e.SetNumBands(1); err != nil {
			return err
		}
	} else if err := e.SetNumBands(3); err != nil {
		return err
	}
	if err := e.SetWidth(b.Dx()); err != nil {
		return err
	}
	if err := e.SetHeight(b.Dy()); err != nil {
		return err
	}
	if err := e.FinalizeSettings(); err != nil {
		return err
	}
	if err := e.SetImage(m); err != nil {
		return err
	}
	return e.Close()
}
