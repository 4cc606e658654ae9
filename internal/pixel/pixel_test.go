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

package pixel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRowBytes(t *testing.T) {
	for _, test := range []struct {
		format Format
		width  int
		want   int
	}{
		{I1, 8, 1},
		{I1, 10, 2},
		{RGB111, 10, 4}, // 30 bits
		{I8, 4, 4},
		{RGB888, 4, 12},
		{BGR888, 4, 12},
		{I16, 4, 8},
		{RGB161616, 4, 24},
		{BGR161616, 4, 24},
	} {
		if got := test.format.RowBytes(test.width); got != test.want {
			t.Errorf("%v.RowBytes(%d) = %d, want %d", test.format, test.width, got, test.want)
		}
	}
}

func TestWriteChannelLayout(t *testing.T) {
	for _, test := range []struct {
		name   string
		format Format
		x, ch  int
		value  uint16
		want   []byte
	}{
		{"rgb888 red", RGB888, 1, 0, 0xab00, []byte{0, 0, 0, 0xab, 0, 0}},
		{"rgb888 blue", RGB888, 0, 2, 0xab00, []byte{0, 0, 0xab, 0, 0, 0}},
		{"bgr888 red goes last", BGR888, 0, 0, 0xab00, []byte{0, 0, 0xab, 0, 0, 0}},
		{"bgr888 blue goes first", BGR888, 0, 2, 0xab00, []byte{0xab, 0, 0, 0, 0, 0}},
		{"i16 little endian", I16, 1, 0, 0x1234, []byte{0, 0, 0x34, 0x12}},
		{"i1 msb first", I1, 0, 0, 0xffff, []byte{0x80}},
		{"i1 second pixel", I1, 1, 0, 0xffff, []byte{0x40}},
		{"rgb111 green of pixel 2", RGB111, 2, 1, 0xffff, []byte{0x01, 0x00}},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := make([]byte, len(test.want))
			WriteChannel(got, test.x, test.ch, test.format, test.value)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("row bytes: diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChannelRoundTrip(t *testing.T) {
	for _, format := range []Format{I1, RGB111, I8, RGB888, BGR888, I16, RGB161616, BGR161616} {
		row := make([]byte, format.RowBytes(5))
		for x := 0; x < 5; x++ {
			for ch := 0; ch < format.Channels(); ch++ {
				// Values representable at the format's depth must
				// survive a write/read round trip exactly.
				var v uint16
				switch format.Depth() {
				case 1:
					v = 0xffff * uint16((x+ch)%2)
				case 8:
					b := uint16(37*x + 11*ch)
					v = b<<8 | b
				case 16:
					v = uint16(5000*x + 333*ch)
				}
				WriteChannel(row, x, ch, format, v)
				if got := ReadChannel(row, x, ch, format); got != v {
					t.Errorf("%v: pixel %d channel %d: wrote %#x, read %#x", format, x, ch, v, got)
				}
			}
		}
	}
}

func TestConvertRow(t *testing.T) {
	for _, test := range []struct {
		name     string
		src      []byte
		from, to Format
		width    int
		want     []byte
	}{
		{
			name:  "i8 to rgb888 replicates",
			src:   []byte{0x10, 0x20},
			from:  I8,
			to:    RGB888,
			width: 2,
			want:  []byte{0x10, 0x10, 0x10, 0x20, 0x20, 0x20},
		},
		{
			name:  "rgb888 to bgr888 swaps",
			src:   []byte{1, 2, 3, 4, 5, 6},
			from:  RGB888,
			to:    BGR888,
			width: 2,
			want:  []byte{3, 2, 1, 6, 5, 4},
		},
		{
			name:  "i8 to i16 scales up",
			src:   []byte{0xff, 0x80},
			from:  I8,
			to:    I16,
			width: 2,
			want:  []byte{0xff, 0xff, 0x80, 0x80},
		},
		{
			name:  "i16 to i8 scales down",
			src:   []byte{0x34, 0x12, 0xff, 0xff},
			from:  I16,
			to:    I8,
			width: 2,
			want:  []byte{0x12, 0xff},
		},
		{
			name:  "i1 to i8 thresholds",
			src:   []byte{0x80},
			from:  I1,
			to:    I8,
			width: 2,
			want:  []byte{0xff, 0x00},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := make([]byte, test.to.RowBytes(test.width))
			ConvertRow(got, test.to, test.src, test.from, test.width)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("converted row: diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColorOrderSlots(t *testing.T) {
	for _, test := range []struct {
		order ColorOrder
		want  [3]int
	}{
		{OrderRGB, [3]int{0, 1, 2}},
		{OrderGBR, [3]int{1, 2, 0}},
		{OrderBGR, [3]int{2, 1, 0}},
	} {
		if got := test.order.Slots(); got != test.want {
			t.Errorf("%v.Slots() = %v, want %v", test.order, got, test.want)
		}
	}
}
