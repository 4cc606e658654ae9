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

// SourceNode adapts a Producer into the row-pull contract. The producer is
// invoked once per row, for exactly one row's worth of bytes; there is no
// internal buffering.
type SourceNode struct {
	width    int
	height   int
	format   pixel.Format
	producer Producer
	row      int
}

func NewSourceNode(width, height int, format pixel.Format, producer Producer) *SourceNode {
	return &SourceNode{width: width, height: height, format: format, producer: producer}
}

func (n *SourceNode) Width() int           { return n.width }
func (n *SourceNode) Height() int          { return n.height }
func (n *SourceNode) Format() pixel.Format { return n.format }

func (n *SourceNode) NextRow(out []byte) error {
	if n.row >= n.height {
		return ErrExhausted
	}
	if err := n.producer(out[:RowBytes(n)]); err != nil {
		return err
	}
	n.row++
	return nil
}

// BufferedSourceNode adapts a producer that only yields data in batches of
// a fixed size. It keeps a byte queue, refilled with one batch whenever the
// queue runs empty, and serves exactly one row per pull.
type BufferedSourceNode struct {
	width  int
	height int
	format pixel.Format
	row    int
	buffer *chunkBuffer
}

func NewBufferedSourceNode(width, height int, format pixel.Format, inputBatchSize int, producer Producer) (*BufferedSourceNode, error) {
	if inputBatchSize <= 0 {
		return nil, fmt.Errorf("input batch size %d: %w", inputBatchSize, ErrConfiguration)
	}
	return &BufferedSourceNode{
		width:  width,
		height: height,
		format: format,
		buffer: newChunkBuffer(inputBatchSize, producer),
	}, nil
}

func (n *BufferedSourceNode) Width() int           { return n.width }
func (n *BufferedSourceNode) Height() int          { return n.height }
func (n *BufferedSourceNode) Format() pixel.Format { return n.format }

// BufferSize reports the configured batch size.
func (n *BufferedSourceNode) BufferSize() int { return n.buffer.size() }

// BufferAvailable reports the number of buffered bytes not yet consumed.
func (n *BufferedSourceNode) BufferAvailable() int { return n.buffer.available() }

func (n *BufferedSourceNode) NextRow(out []byte) error {
	if n.row >= n.height {
		return ErrExhausted
	}
	if err := n.buffer.read(out[:RowBytes(n)]); err != nil {
		return err
	}
	n.row++
	return nil
}

// ChunkedSourceNode adapts a producer whose transfer sizes are dictated by
// the scanner chipset's buffering model rather than a uniform batch size.
// Downstream nodes see the same row contract as with any other source; the
// transport irregularity stays contained here.
type ChunkedSourceNode struct {
	width  int
	height int
	format pixel.Format
	row    int
	buffer *chunkedBuffer
}

func NewChunkedSourceNode(width, height int, format pixel.Format, totalSize int, model ChunkModel, producer Producer) (*ChunkedSourceNode, error) {
	rowBytes := format.RowBytes(width)
	if totalSize < height*rowBytes {
		return nil, fmt.Errorf("total size %d below %d rows of %d bytes: %w",
			totalSize, height, rowBytes, ErrConfiguration)
	}
	return &ChunkedSourceNode{
		width:  width,
		height: height,
		format: format,
		buffer: newChunkedBuffer(totalSize, model, producer),
	}, nil
}

func (n *ChunkedSourceNode) Width() int           { return n.width }
func (n *ChunkedSourceNode) Height() int          { return n.height }
func (n *ChunkedSourceNode) Format() pixel.Format { return n.format }

// BufferAvailable reports the number of buffered bytes not yet consumed.
func (n *ChunkedSourceNode) BufferAvailable() int { return n.buffer.available() }

func (n *ChunkedSourceNode) NextRow(out []byte) error {
	if n.row >= n.height {
		return ErrExhausted
	}
	if err := n.buffer.read(out[:RowBytes(n)]); err != nil {
		return err
	}
	n.row++
	return nil
}

// ArraySourceNode replays a pre-existing byte slice row by row, with no
// external calls.
type ArraySourceNode struct {
	width  int
	height int
	format pixel.Format
	data   []byte
	row    int
}

func NewArraySourceNode(width, height int, format pixel.Format, data []byte) (*ArraySourceNode, error) {
	if need := height * format.RowBytes(width); len(data) < need {
		return nil, fmt.Errorf("array of %d bytes below %d rows of %d bytes: %w",
			len(data), height, format.RowBytes(width), ErrConfiguration)
	}
	return &ArraySourceNode{width: width, height: height, format: format, data: data}, nil
}

func (n *ArraySourceNode) Width() int           { return n.width }
func (n *ArraySourceNode) Height() int          { return n.height }
func (n *ArraySourceNode) Format() pixel.Format { return n.format }

func (n *ArraySourceNode) NextRow(out []byte) error {
	if n.row >= n.height {
		return ErrExhausted
	}
	rowBytes := RowBytes(n)
	copy(out[:rowBytes], n.data[n.row*rowBytes:])
	n.row++
	return nil
}
