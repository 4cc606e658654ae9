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

import "github.com/scanworks/rawscan/internal/pixel"

// ConvertNode re-encodes each row into a destination pixel format without
// changing geometry or row order.
type ConvertNode struct {
	source  Node
	format  pixel.Format
	scratch []byte
}

func NewConvertNode(source Node, format pixel.Format) *ConvertNode {
	return &ConvertNode{
		source:  source,
		format:  format,
		scratch: make([]byte, RowBytes(source)),
	}
}

func (n *ConvertNode) Width() int           { return n.source.Width() }
func (n *ConvertNode) Height() int          { return n.source.Height() }
func (n *ConvertNode) Format() pixel.Format { return n.format }

func (n *ConvertNode) NextRow(out []byte) error {
	if n.format == n.source.Format() {
		return n.source.NextRow(out)
	}
	if err := n.source.NextRow(n.scratch); err != nil {
		return err
	}
	for i := range out[:RowBytes(n)] {
		out[i] = 0
	}
	pixel.ConvertRow(out, n.format, n.scratch, n.source.Format(), n.Width())
	return nil
}
