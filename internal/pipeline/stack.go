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
	"errors"
	"fmt"

	"github.com/scanworks/rawscan/internal/pixel"
)

// Stack owns an ordered chain of nodes. The first node pushed is the
// source; every later node wraps the current last node. Consumers pull
// rows from the stack, which delegates to the last node.
//
// A stack and its nodes serve exactly one scan pass: they are assembled,
// drained and then cleared or dropped. Nodes are never reused across
// geometries.
type Stack struct {
	nodes []Node
}

func NewStack() *Stack {
	return &Stack{}
}

// Clear drops all nodes.
func (s *Stack) Clear() {
	s.nodes = nil
}

// PushFirst installs the chain's source node. It fails if the stack
// already has nodes.
func (s *Stack) PushFirst(n Node) error {
	if len(s.nodes) != 0 {
		return fmt.Errorf("first node pushed onto a stack of %d nodes: %w",
			len(s.nodes), ErrConfiguration)
	}
	s.nodes = append(s.nodes, n)
	return nil
}

// Push appends a transform built on top of the current last node. The
// build function receives that node as its upstream. It fails if the stack
// is empty or if the build fails.
func (s *Stack) Push(build func(upstream Node) (Node, error)) error {
	if len(s.nodes) == 0 {
		return fmt.Errorf("node pushed onto an empty stack: %w", ErrConfiguration)
	}
	n, err := build(s.nodes[len(s.nodes)-1])
	if err != nil {
		return err
	}
	s.nodes = append(s.nodes, n)
	return nil
}

// Input geometry accessors report on the source node, output accessors on
// the last node. On an empty stack they report zero values.

func (s *Stack) InputWidth() int {
	if len(s.nodes) == 0 {
		return 0
	}
	return s.nodes[0].Width()
}

func (s *Stack) InputHeight() int {
	if len(s.nodes) == 0 {
		return 0
	}
	return s.nodes[0].Height()
}

func (s *Stack) InputFormat() pixel.Format {
	if len(s.nodes) == 0 {
		return pixel.Invalid
	}
	return s.nodes[0].Format()
}

func (s *Stack) InputRowBytes() int {
	if len(s.nodes) == 0 {
		return 0
	}
	return RowBytes(s.nodes[0])
}

func (s *Stack) OutputWidth() int {
	if len(s.nodes) == 0 {
		return 0
	}
	return s.nodes[len(s.nodes)-1].Width()
}

func (s *Stack) OutputHeight() int {
	if len(s.nodes) == 0 {
		return 0
	}
	return s.nodes[len(s.nodes)-1].Height()
}

func (s *Stack) OutputFormat() pixel.Format {
	if len(s.nodes) == 0 {
		return pixel.Invalid
	}
	return s.nodes[len(s.nodes)-1].Format()
}

func (s *Stack) OutputRowBytes() int {
	if len(s.nodes) == 0 {
		return 0
	}
	return RowBytes(s.nodes[len(s.nodes)-1])
}

// NextRow pulls the next output row of the chain into out.
func (s *Stack) NextRow(out []byte) error {
	if len(s.nodes) == 0 {
		return fmt.Errorf("next row requested from an empty stack: %w", ErrConfiguration)
	}
	last := s.nodes[len(s.nodes)-1]
	if len(out) < RowBytes(last) {
		return fmt.Errorf("row buffer of %d bytes below row size %d: %w",
			len(out), RowBytes(last), ErrConfiguration)
	}
	return last.NextRow(out)
}

// AllData pulls every remaining row into one contiguous buffer in row
// order. It is a convenience composition of NextRow calls and performs no
// independent logic.
func (s *Stack) AllData() ([]byte, error) {
	if len(s.nodes) == 0 {
		return nil, fmt.Errorf("all data requested from an empty stack: %w", ErrConfiguration)
	}
	rowBytes := s.OutputRowBytes()
	data := make([]byte, 0, rowBytes*s.OutputHeight())
	row := make([]byte, rowBytes)
	for i := 0; i < s.OutputHeight(); i++ {
		if err := s.NextRow(row); err != nil {
			if errors.Is(err, ErrExhausted) {
				break
			}
			return nil, err
		}
		data = append(data, row...)
	}
	return data, nil
}
