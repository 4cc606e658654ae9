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

func TestMergeMonoLines(t *testing.T) {
	for _, test := range []struct {
		order pixel.ColorOrder
		want  []byte
	}{
		// Lines a=0x0a, b=0x0b, c=0x0c per pixel.
		{pixel.OrderRGB, []byte{0x0a, 0x0b, 0x0c, 0x0a, 0x0b, 0x0c}},
		{pixel.OrderGBR, []byte{0x0c, 0x0a, 0x0b, 0x0c, 0x0a, 0x0b}},
		{pixel.OrderBGR, []byte{0x0c, 0x0b, 0x0a, 0x0c, 0x0b, 0x0a}},
	} {
		t.Run(test.order.String(), func(t *testing.T) {
			src := mustArraySource(t, 2, 3, pixel.I8, []byte{
				0x0a, 0x0a,
				0x0b, 0x0b,
				0x0c, 0x0c,
			})
			n, err := NewMergeMonoNode(src, test.order)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := n.Format(), pixel.RGB888; got != want {
				t.Fatalf("Format = %v, want %v", got, want)
			}
			if got, want := n.Height(), 1; got != want {
				t.Fatalf("Height = %d, want %d", got, want)
			}
			row := make([]byte, 6)
			if err := n.NextRow(row); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, row); diff != "" {
				t.Errorf("row: diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeMonoLines16(t *testing.T) {
	src := mustArraySource(t, 1, 3, pixel.I16, []byte{
		0x34, 0x12,
		0x78, 0x56,
		0xbc, 0x9a,
	})
	n, err := NewMergeMonoNode(src, pixel.OrderRGB)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := n.Format(), pixel.RGB161616; got != want {
		t.Fatalf("Format = %v, want %v", got, want)
	}
	row := make([]byte, 6)
	if err := n.NextRow(row); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x34, 0x12, 0x78, 0x56, 0xbc, 0x9a}, row); diff != "" {
		t.Errorf("row: diff (-want +got):\n%s", diff)
	}
}

func TestSplitMonoLines(t *testing.T) {
	// Count source pulls: split must pull one color row per three mono
	// rows, on cursor wrap only.
	pulls := 0
	colors := []byte{0x0a, 0x0b, 0x0c, 0x1a, 0x1b, 0x1c}
	producer := func(out []byte) error {
		copy(out, colors[3*pulls:3*pulls+3])
		pulls++
		return nil
	}
	src := NewSourceNode(1, 2, pixel.RGB888, producer)
	n, err := NewSplitMonoNode(src, pixel.OrderRGB)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := n.Format(), pixel.I8; got != want {
		t.Fatalf("Format = %v, want %v", got, want)
	}
	if got, want := n.Height(), 6; got != want {
		t.Fatalf("Height = %d, want %d", got, want)
	}
	want := []byte{0x0a, 0x0b, 0x0c, 0x1a, 0x1b, 0x1c}
	for i := 0; i < 6; i++ {
		row := make([]byte, 1)
		if err := n.NextRow(row); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		if row[0] != want[i] {
			t.Errorf("row %d = %#x, want %#x", i, row[0], want[i])
		}
		if wantPulls := i/3 + 1; pulls != wantPulls {
			t.Errorf("row %d: %d source pulls, want %d", i, pulls, wantPulls)
		}
	}
	if err := n.NextRow(make([]byte, 1)); !errors.Is(err, ErrExhausted) {
		t.Errorf("NextRow after height rows = %v, want ErrExhausted", err)
	}
}

func TestMergeSplitRoundTrip(t *testing.T) {
	lines := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
		17, 18, 19, 20,
		21, 22, 23, 24,
	}
	for _, order := range []pixel.ColorOrder{pixel.OrderRGB, pixel.OrderGBR, pixel.OrderBGR} {
		t.Run(order.String(), func(t *testing.T) {
			src := mustArraySource(t, 4, 6, pixel.I8, lines)
			merged, err := NewMergeMonoNode(src, order)
			if err != nil {
				t.Fatal(err)
			}
			split, err := NewSplitMonoNode(merged, order)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := split.Height(), 6; got != want {
				t.Fatalf("Height = %d, want %d", got, want)
			}
			got := make([]byte, 0, len(lines))
			for i := 0; i < 6; i++ {
				row := make([]byte, 4)
				if err := split.NextRow(row); err != nil {
					t.Fatalf("row %d: %v", i, err)
				}
				got = append(got, row...)
			}
			if diff := cmp.Diff(lines, got); diff != "" {
				t.Errorf("round trip: diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeMonoConfigurationErrors(t *testing.T) {
	color := mustArraySource(t, 2, 3, pixel.RGB888, make([]byte, 18))
	if _, err := NewMergeMonoNode(color, pixel.OrderRGB); !errors.Is(err, ErrConfiguration) {
		t.Errorf("merge of color source = %v, want ErrConfiguration", err)
	}
	short := mustArraySource(t, 2, 4, pixel.I8, make([]byte, 8))
	if _, err := NewMergeMonoNode(short, pixel.OrderRGB); !errors.Is(err, ErrConfiguration) {
		t.Errorf("merge of indivisible height = %v, want ErrConfiguration", err)
	}
	mono := mustArraySource(t, 2, 3, pixel.I8, make([]byte, 6))
	if _, err := NewSplitMonoNode(mono, pixel.OrderRGB); !errors.Is(err, ErrConfiguration) {
		t.Errorf("split of mono source = %v, want ErrConfiguration", err)
	}
}
