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

// DesegmentNode reconstructs full scan lines from a sensor that reads
// multiple segments of each line in parallel. The interleavedLines buffered
// source rows form one concatenated pixel sequence in which segment s,
// chunk c occupies pixels [(c*segmentCount+s)*pixelsPerChunk, ...); output
// pixel x takes its value from the segment that segmentOrder assigns to
// slot x/segmentPixels.
//
// The output width is configuration, not arithmetic: the hardware discards
// or duplicates edge pixels at segment boundaries, so almost all of the
// physical line may need to be read to reconstruct a narrower image.
type DesegmentNode struct {
	source           Node
	outputWidth      int
	segmentOrder     []int
	segmentPixels    int
	interleavedLines int
	pixelsPerChunk   int
	buffer           *rowBuffer
}

func NewDesegmentNode(source Node, outputWidth int, segmentOrder []int, segmentPixels, interleavedLines, pixelsPerChunk int) (*DesegmentNode, error) {
	if outputWidth <= 0 || segmentPixels <= 0 || interleavedLines <= 0 || pixelsPerChunk <= 0 {
		return nil, fmt.Errorf("desegment geometry must be positive: %w", ErrConfiguration)
	}
	if len(segmentOrder) == 0 {
		return nil, fmt.Errorf("empty segment order: %w", ErrConfiguration)
	}
	for i, s := range segmentOrder {
		if s < 0 || s >= len(segmentOrder) {
			return nil, fmt.Errorf("segment order entry %d is %d, want 0..%d: %w",
				i, s, len(segmentOrder)-1, ErrConfiguration)
		}
	}
	if source.Height()%interleavedLines != 0 {
		return nil, fmt.Errorf("source height %d not a multiple of %d interleaved lines: %w",
			source.Height(), interleavedLines, ErrConfiguration)
	}
	if outputWidth > len(segmentOrder)*segmentPixels {
		return nil, fmt.Errorf("output width %d exceeds %d segments of %d pixels: %w",
			outputWidth, len(segmentOrder), segmentPixels, ErrConfiguration)
	}
	n := &DesegmentNode{
		source:           source,
		outputWidth:      outputWidth,
		segmentOrder:     append([]int(nil), segmentOrder...),
		segmentPixels:    segmentPixels,
		interleavedLines: interleavedLines,
		pixelsPerChunk:   pixelsPerChunk,
		buffer:           newRowBuffer(RowBytes(source), interleavedLines),
	}
	sourcePixels := source.Width() * interleavedLines
	for x := 0; x < outputWidth; x++ {
		if sx := n.sourceIndex(x); sx >= sourcePixels {
			return nil, fmt.Errorf("output pixel %d maps to source pixel %d of %d: %w",
				x, sx, sourcePixels, ErrConfiguration)
		}
	}
	return n, nil
}

// NewDesegmentNodeIdentity is NewDesegmentNode with the identity segment
// order over segmentCount segments.
func NewDesegmentNodeIdentity(source Node, outputWidth, segmentCount, segmentPixels, interleavedLines, pixelsPerChunk int) (*DesegmentNode, error) {
	if segmentCount <= 0 {
		return nil, fmt.Errorf("segment count %d: %w", segmentCount, ErrConfiguration)
	}
	order := make([]int, segmentCount)
	for i := range order {
		order[i] = i
	}
	return NewDesegmentNode(source, outputWidth, order, segmentPixels, interleavedLines, pixelsPerChunk)
}

// NewDeinterleaveNode merges interleavedLines time-multiplexed source rows
// into one logical row without segment reordering. It is the desegment
// configuration with one identity-ordered segment per interleaved line,
// each segment as wide as the source.
func NewDeinterleaveNode(source Node, interleavedLines, pixelsPerChunk int) (*DesegmentNode, error) {
	return NewDesegmentNodeIdentity(source, source.Width()*interleavedLines,
		interleavedLines, source.Width(), interleavedLines, pixelsPerChunk)
}

func (n *DesegmentNode) Width() int           { return n.outputWidth }
func (n *DesegmentNode) Height() int          { return n.source.Height() / n.interleavedLines }
func (n *DesegmentNode) Format() pixel.Format { return n.source.Format() }

// sourceIndex maps an output pixel position to its position within the
// concatenated buffered source rows.
func (n *DesegmentNode) sourceIndex(x int) int {
	slot := x / n.segmentPixels
	off := x % n.segmentPixels
	chunk := off / n.pixelsPerChunk
	o := off % n.pixelsPerChunk
	return (chunk*len(n.segmentOrder)+n.segmentOrder[slot])*n.pixelsPerChunk + o
}

func (n *DesegmentNode) NextRow(out []byte) error {
	n.buffer.clear()
	for i := 0; i < n.interleavedLines; i++ {
		if err := n.source.NextRow(n.buffer.pushBack()); err != nil {
			return err
		}
	}

	format := n.Format()
	sourceWidth := n.source.Width()
	if format.Depth() >= 8 {
		bpp := format.BitsPerPixel() / 8
		for x := 0; x < n.outputWidth; x++ {
			sx := n.sourceIndex(x)
			row := n.buffer.row(sx / sourceWidth)
			so := (sx % sourceWidth) * bpp
			copy(out[x*bpp:(x+1)*bpp], row[so:so+bpp])
		}
		return nil
	}
	for x := 0; x < n.outputWidth; x++ {
		sx := n.sourceIndex(x)
		row := n.buffer.row(sx / sourceWidth)
		pixel.WritePixel(out, x, format, pixel.ReadPixel(row, sx%sourceWidth, format))
	}
	return nil
}
