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

// ExtractNode crops and pads the image to a target window. Only
// non-negative offsets are supported, so padding happens on the right and
// bottom only: rows below the source and columns right of the source are
// zero-filled, and offsetX leading columns are skipped from each source
// row. A one-row cache guarantees no source row is pulled twice.
type ExtractNode struct {
	source  Node
	offsetX int
	offsetY int
	width   int
	height  int

	row    int // next output row
	pulled int // source rows pulled so far
	cache  []byte
}

func NewExtractNode(source Node, offsetX, offsetY, width, height int) (*ExtractNode, error) {
	if offsetX < 0 || offsetY < 0 {
		return nil, fmt.Errorf("negative extract offset (%d, %d): %w", offsetX, offsetY, ErrConfiguration)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("extract window %dx%d: %w", width, height, ErrConfiguration)
	}
	return &ExtractNode{
		source:  source,
		offsetX: offsetX,
		offsetY: offsetY,
		width:   width,
		height:  height,
		cache:   make([]byte, RowBytes(source)),
	}, nil
}

func (n *ExtractNode) Width() int           { return n.width }
func (n *ExtractNode) Height() int          { return n.height }
func (n *ExtractNode) Format() pixel.Format { return n.source.Format() }

func (n *ExtractNode) NextRow(out []byte) error {
	if n.row >= n.height {
		return ErrExhausted
	}
	rowBytes := RowBytes(n)
	out = out[:rowBytes]

	want := n.offsetY + n.row
	if want >= n.source.Height() {
		for i := range out {
			out[i] = 0
		}
		n.row++
		return nil
	}
	for n.pulled <= want {
		if err := n.source.NextRow(n.cache); err != nil {
			return err
		}
		n.pulled++
	}

	format := n.Format()
	sourceWidth := n.source.Width()
	columns := 0
	if n.offsetX < sourceWidth {
		columns = sourceWidth - n.offsetX
		if columns > n.width {
			columns = n.width
		}
	}

	if format.Depth() >= 8 {
		bpp := format.BitsPerPixel() / 8
		copy(out, n.cache[n.offsetX*bpp:(n.offsetX+columns)*bpp])
		for i := columns * bpp; i < rowBytes; i++ {
			out[i] = 0
		}
	} else {
		for i := range out {
			out[i] = 0
		}
		for x := 0; x < columns; x++ {
			pixel.WritePixel(out, x, format, pixel.ReadPixel(n.cache, n.offsetX+x, format))
		}
	}

	n.row++
	return nil
}
