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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scanworks/rawscan/internal/pixel"
)

func TestConvertNode(t *testing.T) {
	src := mustArraySource(t, 2, 2, pixel.I8, []byte{0x10, 0x20, 0x30, 0x40})
	n := NewConvertNode(src, pixel.RGB888)
	if got, want := n.Width(), 2; got != want {
		t.Fatalf("Width = %d, want %d", got, want)
	}
	if got, want := n.Height(), 2; got != want {
		t.Fatalf("Height = %d, want %d", got, want)
	}
	if got, want := RowBytes(n), 6; got != want {
		t.Fatalf("RowBytes = %d, want %d", got, want)
	}
	want := [][]byte{
		{0x10, 0x10, 0x10, 0x20, 0x20, 0x20},
		{0x30, 0x30, 0x30, 0x40, 0x40, 0x40},
	}
	for i, w := range want {
		row := make([]byte, 6)
		if err := n.NextRow(row); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		if diff := cmp.Diff(w, row); diff != "" {
			t.Errorf("row %d: diff (-want +got):\n%s", i, diff)
		}
	}
	if err := n.NextRow(make([]byte, 6)); !errors.Is(err, ErrExhausted) {
		t.Errorf("NextRow after height rows = %v, want ErrExhausted", err)
	}
}

func TestConvertNodeSameFormat(t *testing.T) {
	src := mustArraySource(t, 2, 1, pixel.I8, []byte{0x10, 0x20})
	n := NewConvertNode(src, pixel.I8)
	row := make([]byte, 2)
	if err := n.NextRow(row); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x10, 0x20}, row); diff != "" {
		t.Errorf("row: diff (-want +got):\n%s", diff)
	}
}
