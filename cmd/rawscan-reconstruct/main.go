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

// Program rawscan-reconstruct replays a raw sensor dump through an image
// reconstruction pipeline and writes the corrected image as PNG, TIFF or a
// single-page PDF, depending on the output file suffix.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio"
	"github.com/signintech/gopdf"
	"golang.org/x/image/tiff"

	"github.com/scanworks/rawscan/internal/pipeline"
	"github.com/scanworks/rawscan/internal/pixel"
	"github.com/scanworks/rawscan/internal/raster"
)

var (
	in     = flag.String("in", "", "raw sensor dump to read")
	out    = flag.String("out", "", "output image path (.png, .tif/.tiff or .pdf)")
	width  = flag.Int("width", 0, "source width in pixels")
	height = flag.Int("height", 0, "source height in rows")
	format = flag.String("format", "i8",
		"source pixel format: i1, rgb111, i8, rgb888, bgr888, i16, rgb161616 or bgr161616")
	batchSize = flag.Int("batch_size", 0,
		"read the dump through a batching source of this many bytes instead of all at once")

	segmentOrder = flag.String("segment_order", "",
		"comma-separated segment order, e.g. 1,0; empty disables desegmentation")
	segmentPixels    = flag.Int("segment_pixels", 0, "pixels contributed by each segment")
	interleavedLines = flag.Int("interleaved_lines", 1, "physical rows per logical row")
	pixelsPerChunk   = flag.Int("pixels_per_chunk", 1, "contiguous pixels per segment chunk")
	outputWidth      = flag.Int("output_width", 0, "desegmented line width in pixels")

	mergeOrder = flag.String("merge", "",
		"merge mono line triples using this channel acquisition order (rgb, gbr or bgr); empty disables")

	shiftR = flag.Int("shift_r", 0, "red line distance in rows")
	shiftG = flag.Int("shift_g", 0, "green line distance in rows")
	shiftB = flag.Int("shift_b", 0, "blue line distance in rows")

	pixelShifts = flag.String("pixel_shifts", "",
		"comma-separated per-column-group row shifts for unstaggering, e.g. 0,1; empty disables")

	window = flag.String("extract", "",
		"sub-image window as x,y,width,height; empty disables")

	convertTo = flag.String("convert", "", "convert rows to this pixel format before output; empty disables")

	binarize = flag.Bool("binarize", false, "threshold the output to black/white")
	dpi      = flag.Int("dpi", 600, "resolution used to size PDF pages")
)

func parseFormat(s string) (pixel.Format, error) {
	for _, f := range []pixel.Format{
		pixel.I1, pixel.RGB111, pixel.I8, pixel.RGB888,
		pixel.BGR888, pixel.I16, pixel.RGB161616, pixel.BGR161616,
	} {
		if f.String() == s {
			return f, nil
		}
	}
	return pixel.Invalid, fmt.Errorf("unknown pixel format %q", s)
}

func parseColorOrder(s string) (pixel.ColorOrder, error) {
	for _, o := range []pixel.ColorOrder{pixel.OrderRGB, pixel.OrderGBR, pixel.OrderBGR} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown color order %q", s)
}

func parseInts(s string) ([]int, error) {
	var ints []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ints = append(ints, n)
	}
	return ints, nil
}

func buildStack(raw []byte, sourceFormat pixel.Format) (*pipeline.Stack, error) {
	s := pipeline.NewStack()

	if *batchSize > 0 {
		r := bytes.NewReader(raw)
		// The final batch may reach past the end of the dump; the
		// missing tail reads as zero.
		producer := func(out []byte) error {
			n, err := io.ReadFull(r, out)
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return err
			}
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			return nil
		}
		src, err := pipeline.NewBufferedSourceNode(*width, *height, sourceFormat, *batchSize, producer)
		if err != nil {
			return nil, err
		}
		if err := s.PushFirst(src); err != nil {
			return nil, err
		}
	} else {
		src, err := pipeline.NewArraySourceNode(*width, *height, sourceFormat, raw)
		if err != nil {
			return nil, err
		}
		if err := s.PushFirst(src); err != nil {
			return nil, err
		}
	}

	if *segmentOrder != "" {
		order, err := parseInts(*segmentOrder)
		if err != nil {
			return nil, fmt.Errorf("-segment_order: %v", err)
		}
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewDesegmentNode(up, *outputWidth, order,
				*segmentPixels, *interleavedLines, *pixelsPerChunk)
		}); err != nil {
			return nil, err
		}
	} else if *interleavedLines > 1 {
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewDeinterleaveNode(up, *interleavedLines, *pixelsPerChunk)
		}); err != nil {
			return nil, err
		}
	}

	if *mergeOrder != "" {
		order, err := parseColorOrder(*mergeOrder)
		if err != nil {
			return nil, err
		}
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewMergeMonoNode(up, order)
		}); err != nil {
			return nil, err
		}
	}

	if *shiftR != 0 || *shiftG != 0 || *shiftB != 0 {
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewComponentShiftNode(up, *shiftR, *shiftG, *shiftB)
		}); err != nil {
			return nil, err
		}
	}

	if *pixelShifts != "" {
		shifts, err := parseInts(*pixelShifts)
		if err != nil {
			return nil, fmt.Errorf("-pixel_shifts: %v", err)
		}
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewPixelShiftNode(up, shifts)
		}); err != nil {
			return nil, err
		}
	}

	if *window != "" {
		w, err := parseInts(*window)
		if err != nil || len(w) != 4 {
			return nil, fmt.Errorf("-extract: want x,y,width,height, got %q", *window)
		}
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewExtractNode(up, w[0], w[1], w[2], w[3])
		}); err != nil {
			return nil, err
		}
	}

	if *convertTo != "" {
		f, err := parseFormat(*convertTo)
		if err != nil {
			return nil, err
		}
		if err := s.Push(func(up pipeline.Node) (pipeline.Node, error) {
			return pipeline.NewConvertNode(up, f), nil
		}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func encodePDF(img image.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	// PDF user space units are points, 1/72 inch.
	w := float64(bounds.Dx()) * 72 / float64(*dpi)
	h := float64(bounds.Dy()) * 72 / float64(*dpi)

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: w, H: h}})
	pdf.AddPage()
	holder, err := gopdf.ImageHolderByBytes(pngBuf.Bytes())
	if err != nil {
		return nil, err
	}
	if err := pdf.ImageByHolder(holder, 0, 0, &gopdf.Rect{W: w, H: h}); err != nil {
		return nil, err
	}
	return pdf.GetBytesPdf(), nil
}

func encode(img image.Image, path string) ([]byte, error) {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case ".tif", ".tiff":
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, err
		}
	case ".pdf":
		return encodePDF(img)
	default:
		return nil, fmt.Errorf("unsupported output suffix %q", ext)
	}
	return buf.Bytes(), nil
}

func reconstruct() error {
	sourceFormat, err := parseFormat(*format)
	if err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("both -in and -out are required")
	}
	if *width <= 0 || *height <= 0 {
		return fmt.Errorf("-width and -height are required")
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	s, err := buildStack(raw, sourceFormat)
	if err != nil {
		return err
	}
	log.Printf("pipeline: %dx%d %v in, %dx%d %v out",
		s.InputWidth(), s.InputHeight(), s.InputFormat(),
		s.OutputWidth(), s.OutputHeight(), s.OutputFormat())

	img, err := raster.Image(s)
	if err != nil {
		return err
	}
	if *binarize {
		bw, white := raster.Binarize(img)
		log.Printf("white fraction is %f", white)
		img = bw
	}

	encoded, err := encode(img, *out)
	if err != nil {
		return err
	}
	return renameio.WriteFile(*out, encoded, 0644)
}

func main() {
	flag.Parse()
	if err := reconstruct(); err != nil {
		log.Fatal(err)
	}
}
