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

package pipeline

import (
	"fmt"

	"github.com/scanworks/rawscan/internal/pixel"
)

// ComponentShiftNode corrects the line-distance separation of CCD sensors:
// the red, green and blue sensor rows are physically offset, so channel c
// of output row i must be read from source row i+shift[c]. A lookback
// buffer holds max(shift)+1 source rows; the final max(shift) source rows
// cannot be resolved for all channels and are dropped from the height.
type ComponentShiftNode struct {
	source Node
	shifts [3]int
	extra  int
	row    int
	buffer *rowBuffer
}

func NewComponentShiftNode(source Node, shiftR, shiftG, shiftB int) (*ComponentShiftNode, error) {
	if source.Format().Channels() != 3 {
		return nil, fmt.Errorf("component shift requires a color source, got %v: %w",
			source.Format(), ErrConfiguration)
	}
	shifts := [3]int{shiftR, shiftG, shiftB}
	extra := 0
	for _, s := range shifts {
		if s < 0 {
			return nil, fmt.Errorf("negative channel shift %d: %w", s, ErrConfiguration)
		}
		if s > extra {
			extra = s
		}
	}
	if source.Height() <= extra {
		return nil, fmt.Errorf("source height %d too small for shift %d: %w",
			source.Height(), extra, ErrConfiguration)
	}
	return &ComponentShiftNode{
		source: source,
		shifts: shifts,
		extra:  extra,
		buffer: newRowBuffer(RowBytes(source), extra+1),
	}, nil
}

func (n *ComponentShiftNode) Width() int           { return n.source.Width() }
func (n *ComponentShiftNode) Height() int          { return n.source.Height() - n.extra }
func (n *ComponentShiftNode) Format() pixel.Format { return n.source.Format() }

func (n *ComponentShiftNode) NextRow(out []byte) error {
	if n.row >= n.Height() {
		return ErrExhausted
	}
	// The buffer holds source rows n.row..n.row+extra: the first pull
	// primes it, every later pull slides the window by one source row.
	if !n.buffer.full() {
		for !n.buffer.full() {
			if err := n.source.NextRow(n.buffer.pushBack()); err != nil {
				return err
			}
		}
	} else if err := n.source.NextRow(n.buffer.pushBack()); err != nil {
		return err
	}

	width := n.Width()
	format := n.Format()
	if format.Depth() == 8 {
		for c := 0; c < 3; c++ {
			row := n.buffer.row(n.shifts[c])
			pc := c
			if format.Reversed() {
				pc = 2 - c
			}
			for x := 0; x < width; x++ {
				out[x*3+pc] = row[x*3+pc]
			}
		}
	} else {
		for c := 0; c < 3; c++ {
			row := n.buffer.row(n.shifts[c])
			for x := 0; x < width; x++ {
				pixel.WriteChannel(out, x, c, format, pixel.ReadChannel(row, x, c, format))
			}
		}
	}

	n.row++
	return nil
}

// MaxPixelShifts is the maximum number of pixel-shift lookback rows the
// hardware stagger patterns require.
const MaxPixelShifts = 2

// PixelShiftNode corrects horizontal sensor-element stagger: pixel x of
// output row i is read from source row i+shifts[x%len(shifts)]. Like
// ComponentShiftNode it drops the trailing source rows that cannot be
// resolved for every pixel group.
type PixelShiftNode struct {
	source Node
	shifts []int
	extra  int
	row    int
	buffer *rowBuffer
}

func NewPixelShiftNode(source Node, shifts []int) (*PixelShiftNode, error) {
	if len(shifts) == 0 || len(shifts) > MaxPixelShifts {
		return nil, fmt.Errorf("got %d pixel shifts, want 1..%d: %w",
			len(shifts), MaxPixelShifts, ErrConfiguration)
	}
	extra := 0
	for _, s := range shifts {
		if s < 0 {
			return nil, fmt.Errorf("negative pixel shift %d: %w", s, ErrConfiguration)
		}
		if s > extra {
			extra = s
		}
	}
	if source.Height() <= extra {
		return nil, fmt.Errorf("source height %d too small for shift %d: %w",
			source.Height(), extra, ErrConfiguration)
	}
	return &PixelShiftNode{
		source: source,
		shifts: append([]int(nil), shifts...),
		extra:  extra,
		buffer: newRowBuffer(RowBytes(source), extra+1),
	}, nil
}

func (n *PixelShiftNode) Width() int           { return n.source.Width() }
func (n *PixelShiftNode) Height() int          { return n.source.Height() - n.extra }
func (n *PixelShiftNode) Format() pixel.Format { return n.source.Format() }

func (n *PixelShiftNode) NextRow(out []byte) error {
	if n.row >= n.Height() {
		return ErrExhausted
	}
	if !n.buffer.full() {
		for !n.buffer.full() {
			if err := n.source.NextRow(n.buffer.pushBack()); err != nil {
				return err
			}
		}
	} else if err := n.source.NextRow(n.buffer.pushBack()); err != nil {
		return err
	}

	width := n.Width()
	format := n.Format()
	if format.Depth() >= 8 {
		bpp := format.BitsPerPixel() / 8
		for x := 0; x < width; x++ {
			row := n.buffer.row(n.shifts[x%len(n.shifts)])
			copy(out[x*bpp:(x+1)*bpp], row[x*bpp:(x+1)*bpp])
		}
	} else {
		for x := 0; x < width; x++ {
			row := n.buffer.row(n.shifts[x%len(n.shifts)])
			pixel.WritePixel(out, x, format, pixel.ReadPixel(row, x, format))
		}
	}

	n.row++
	return nil
}
