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

// Package pipeline reconstructs raster images from the raw byte stream of a
// CCD/CIS scanner sensor. Sensors split a scan line into physically
// interleaved segments, emit color channels as separate monochrome lines
// offset from each other, stagger pixel elements horizontally and deliver
// bytes in transport-sized chunks. Each of these distortions is undone by a
// pipeline node; a Stack chains nodes so that a consumer can pull corrected
// rows one at a time.
//
// The whole pipeline is synchronous and single-threaded: pulling a row from
// the last node runs every upstream pull to completion before returning.
package pipeline

import (
	"errors"

	"github.com/scanworks/rawscan/internal/pixel"
)

var (
	// ErrExhausted is returned when more rows are requested from a node
	// than its height allows.
	ErrExhausted = errors.New("image exhausted")

	// ErrConfiguration is returned (wrapped, with detail) when a pipeline
	// is assembled with invalid geometry or in an invalid order.
	ErrConfiguration = errors.New("invalid pipeline configuration")
)

// A Node is one stage of the reconstruction pipeline. Width, Height and
// Format are constant for the lifetime of the node and consistent with
// every row it produces.
type Node interface {
	Width() int
	Height() int
	Format() pixel.Format

	// NextRow writes the node's next row into out, which must hold at
	// least RowBytes(n) bytes. Rows are produced strictly in order; there
	// is no peek and no rewind. Calling NextRow more than Height() times
	// returns ErrExhausted.
	NextRow(out []byte) error
}

// RowBytes reports the length in bytes of one row produced by n.
func RowBytes(n Node) int {
	return n.Format().RowBytes(n.Width())
}

// A Producer supplies raw sensor bytes to a source node. It must fill out
// completely or return an error. It may block (for example on a hardware
// transfer); the pipeline imposes no timeout of its own. Producer errors
// are propagated to the consumer unchanged and are never retried.
type Producer func(out []byte) error
