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

// mergedFormat maps a monochrome input format to the color format produced
// by merging three acquisition lines.
func mergedFormat(input pixel.Format) (pixel.Format, error) {
	switch input {
	case pixel.I1:
		return pixel.RGB111, nil
	case pixel.I8:
		return pixel.RGB888, nil
	case pixel.I16:
		return pixel.RGB161616, nil
	}
	return pixel.Invalid, fmt.Errorf("merge requires a monochrome source, got %v: %w",
		input, ErrConfiguration)
}

// splitFormat maps a color input format to the monochrome format of its
// individual channels.
func splitFormat(input pixel.Format) (pixel.Format, error) {
	switch input {
	case pixel.RGB111:
		return pixel.I1, nil
	case pixel.RGB888, pixel.BGR888:
		return pixel.I8, nil
	case pixel.RGB161616, pixel.BGR161616:
		return pixel.I16, nil
	}
	return pixel.Invalid, fmt.Errorf("split requires a color source, got %v: %w",
		input, ErrConfiguration)
}

// MergeMonoNode fuses three consecutive monochrome source rows into one
// color row. Acquisition line j of each triple fills the color channel the
// ColorOrder assigns to it.
type MergeMonoNode struct {
	source Node
	order  pixel.ColorOrder
	format pixel.Format
	buffer *rowBuffer
}

func NewMergeMonoNode(source Node, order pixel.ColorOrder) (*MergeMonoNode, error) {
	format, err := mergedFormat(source.Format())
	if err != nil {
		return nil, err
	}
	if source.Height()%3 != 0 {
		return nil, fmt.Errorf("source height %d not a multiple of 3: %w",
			source.Height(), ErrConfiguration)
	}
	return &MergeMonoNode{
		source: source,
		order:  order,
		format: format,
		buffer: newRowBuffer(RowBytes(source), 3),
	}, nil
}

func (n *MergeMonoNode) Width() int           { return n.source.Width() }
func (n *MergeMonoNode) Height() int          { return n.source.Height() / 3 }
func (n *MergeMonoNode) Format() pixel.Format { return n.format }

func (n *MergeMonoNode) NextRow(out []byte) error {
	n.buffer.clear()
	for i := 0; i < 3; i++ {
		if err := n.source.NextRow(n.buffer.pushBack()); err != nil {
			return err
		}
	}

	width := n.Width()
	slots := n.order.Slots()
	sourceFormat := n.source.Format()
	if sourceFormat == pixel.I8 {
		for line := 0; line < 3; line++ {
			row := n.buffer.row(line)
			ch := slots[line]
			for x := 0; x < width; x++ {
				out[x*3+ch] = row[x]
			}
		}
		return nil
	}
	for line := 0; line < 3; line++ {
		row := n.buffer.row(line)
		ch := slots[line]
		for x := 0; x < width; x++ {
			pixel.WriteChannel(out, x, ch, n.format, pixel.ReadChannel(row, x, 0, sourceFormat))
		}
	}
	return nil
}

// SplitMonoNode is the inverse of MergeMonoNode: it buffers one color row
// and emits its channels as three successive monochrome rows. The same
// ColorOrder that merged the lines splits them back, so a merge/split pair
// reproduces the original rows.
type SplitMonoNode struct {
	source      Node
	order       pixel.ColorOrder
	format      pixel.Format
	buffer      []byte
	nextChannel int
}

func NewSplitMonoNode(source Node, order pixel.ColorOrder) (*SplitMonoNode, error) {
	format, err := splitFormat(source.Format())
	if err != nil {
		return nil, err
	}
	return &SplitMonoNode{
		source: source,
		order:  order,
		format: format,
		buffer: make([]byte, RowBytes(source)),
	}, nil
}

func (n *SplitMonoNode) Width() int           { return n.source.Width() }
func (n *SplitMonoNode) Height() int          { return n.source.Height() * 3 }
func (n *SplitMonoNode) Format() pixel.Format { return n.format }

func (n *SplitMonoNode) NextRow(out []byte) error {
	if n.nextChannel == 0 {
		if err := n.source.NextRow(n.buffer); err != nil {
			return err
		}
	}

	width := n.Width()
	ch := n.order.Slots()[n.nextChannel]
	sourceFormat := n.source.Format()
	if sourceFormat == pixel.RGB888 {
		for x := 0; x < width; x++ {
			out[x] = n.buffer[x*3+ch]
		}
	} else {
		for x := 0; x < width; x++ {
			pixel.WriteChannel(out, x, 0, n.format, pixel.ReadChannel(n.buffer, x, ch, sourceFormat))
		}
	}
	n.nextChannel = (n.nextChannel + 1) % 3
	return nil
}
