// Copyright 2025 the rawscan authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pixel describes the pixel encodings emitted by scanner sensors and
// provides normalized access to individual channels within a packed row of
// bytes. Rows are plain []byte slices; a row holds exactly
// Format.RowBytes(width) bytes.
package pixel

import "fmt"

// Format is a pixel encoding: channel count, per-channel bit depth and
// channel byte order. Multi-byte samples are little-endian.
type Format int

const (
	Invalid Format = iota

	// I1 is 1-bit monochrome, 8 pixels per byte, most significant bit first.
	I1
	// RGB111 is 1-bit-per-channel color, packed R,G,B most significant
	// bit first.
	RGB111
	// I8 is 8-bit monochrome.
	I8
	// RGB888 is 8-bit-per-channel color in R,G,B byte order.
	RGB888
	// BGR888 is 8-bit-per-channel color in B,G,R byte order.
	BGR888
	// I16 is 16-bit monochrome.
	I16
	// RGB161616 is 16-bit-per-channel color in R,G,B order.
	RGB161616
	// BGR161616 is 16-bit-per-channel color in B,G,R order.
	BGR161616
)

// Channels reports the number of color channels of the format.
func (f Format) Channels() int {
	switch f {
	case I1, I8, I16:
		return 1
	case RGB111, RGB888, BGR888, RGB161616, BGR161616:
		return 3
	}
	return 0
}

// Depth reports the number of bits per channel.
func (f Format) Depth() int {
	switch f {
	case I1, RGB111:
		return 1
	case I8, RGB888, BGR888:
		return 8
	case I16, RGB161616, BGR161616:
		return 16
	}
	return 0
}

// Reversed reports whether the channels are stored in B,G,R order.
func (f Format) Reversed() bool {
	return f == BGR888 || f == BGR161616
}

// BitsPerPixel reports the total number of bits one pixel occupies.
func (f Format) BitsPerPixel() int {
	return f.Channels() * f.Depth()
}

// RowBytes reports the number of bytes a row of width pixels occupies. This
// is the only place row length is derived from geometry.
func (f Format) RowBytes(width int) int {
	return (width*f.BitsPerPixel() + 7) / 8
}

func (f Format) String() string {
	switch f {
	case I1:
		return "i1"
	case RGB111:
		return "rgb111"
	case I8:
		return "i8"
	case RGB888:
		return "rgb888"
	case BGR888:
		return "bgr888"
	case I16:
		return "i16"
	case RGB161616:
		return "rgb161616"
	case BGR161616:
		return "bgr161616"
	}
	return fmt.Sprintf("pixel.Format(%d)", int(f))
}

// physChannel maps a logical channel index (0=R, 1=G, 2=B; 0 for mono) to
// the channel's position within the stored pixel.
func (f Format) physChannel(ch int) int {
	if f.Reversed() {
		return 2 - ch
	}
	return ch
}

// ReadChannel returns channel ch of pixel x, scaled to 16 bits. 8-bit
// samples are replicated into both bytes, 1-bit samples read as 0 or
// 0xffff, so a read/write round trip at the same depth is lossless.
func ReadChannel(row []byte, x, ch int, f Format) uint16 {
	c := f.physChannel(ch)
	switch f.Depth() {
	case 1:
		bit := x*f.Channels() + c
		if row[bit/8]&(0x80>>(bit%8)) != 0 {
			return 0xffff
		}
		return 0
	case 8:
		v := uint16(row[x*f.Channels()+c])
		return v<<8 | v
	case 16:
		off := (x*f.Channels() + c) * 2
		return uint16(row[off]) | uint16(row[off+1])<<8
	}
	return 0
}

// WriteChannel stores a 16-bit sample into channel ch of pixel x, reducing
// it to the format's depth.
func WriteChannel(row []byte, x, ch int, f Format, v uint16) {
	c := f.physChannel(ch)
	switch f.Depth() {
	case 1:
		bit := x*f.Channels() + c
		mask := byte(0x80 >> (bit % 8))
		if v >= 0x8000 {
			row[bit/8] |= mask
		} else {
			row[bit/8] &^= mask
		}
	case 8:
		row[x*f.Channels()+c] = byte(v >> 8)
	case 16:
		off := (x*f.Channels() + c) * 2
		row[off] = byte(v)
		row[off+1] = byte(v >> 8)
	}
}

// Pixel is a single pixel with channels scaled to 16 bits.
type Pixel struct {
	R, G, B uint16
}

// ReadPixel returns pixel x of the row. Monochrome formats replicate the
// sample into all three channels.
func ReadPixel(row []byte, x int, f Format) Pixel {
	if f.Channels() == 1 {
		v := ReadChannel(row, x, 0, f)
		return Pixel{v, v, v}
	}
	return Pixel{
		R: ReadChannel(row, x, 0, f),
		G: ReadChannel(row, x, 1, f),
		B: ReadChannel(row, x, 2, f),
	}
}

// WritePixel stores pixel x of the row. Monochrome formats store the mean
// of the three channels.
func WritePixel(row []byte, x int, f Format, p Pixel) {
	if f.Channels() == 1 {
		v := uint16((uint32(p.R) + uint32(p.G) + uint32(p.B)) / 3)
		WriteChannel(row, x, 0, f, v)
		return
	}
	WriteChannel(row, x, 0, f, p.R)
	WriteChannel(row, x, 1, f, p.G)
	WriteChannel(row, x, 2, f, p.B)
}

// ConvertRow re-encodes width pixels from src (format sf) into dst (format
// df). dst must hold df.RowBytes(width) bytes; src and dst must not alias.
func ConvertRow(dst []byte, df Format, src []byte, sf Format, width int) {
	for x := 0; x < width; x++ {
		WritePixel(dst, x, df, ReadPixel(src, x, sf))
	}
}
