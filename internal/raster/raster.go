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

// Package raster assembles the rows pulled from a reconstruction pipeline
// into standard library images.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/scanworks/rawscan/internal/pipeline"
	"github.com/scanworks/rawscan/internal/pixel"
)

// Image drains the remaining rows of the stack into an image. Monochrome
// pipelines produce *image.Gray (16-bit: *image.Gray16), color pipelines
// *image.RGBA (16-bit: *image.RGBA64).
func Image(s *pipeline.Stack) (image.Image, error) {
	width := s.OutputWidth()
	height := s.OutputHeight()
	format := s.OutputFormat()
	rowBytes := s.OutputRowBytes()

	data, err := s.AllData()
	if err != nil {
		return nil, fmt.Errorf("draining pipeline: %w", err)
	}
	if len(data) != height*rowBytes {
		return nil, fmt.Errorf("got %d bytes for %d rows of %d bytes", len(data), height, rowBytes)
	}

	mono := format.Channels() == 1
	deep := format.Depth() == 16
	switch {
	case mono && deep:
		img := image.NewGray16(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			for x := 0; x < width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: pixel.ReadChannel(row, x, 0, format)})
			}
		}
		return img, nil
	case mono:
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			for x := 0; x < width; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(pixel.ReadChannel(row, x, 0, format) >> 8)})
			}
		}
		return img, nil
	case deep:
		img := image.NewRGBA64(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			for x := 0; x < width; x++ {
				p := pixel.ReadPixel(row, x, format)
				img.SetRGBA64(x, y, color.RGBA64{R: p.R, G: p.G, B: p.B, A: 0xffff})
			}
		}
		return img, nil
	default:
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			for x := 0; x < width; x++ {
				p := pixel.ReadPixel(row, x, format)
				offset := y*img.Stride + x*4
				img.Pix[offset+0] = uint8(p.R >> 8)
				img.Pix[offset+1] = uint8(p.G >> 8)
				img.Pix[offset+2] = uint8(p.B >> 8)
				img.Pix[offset+3] = 0xff
			}
		}
		return img, nil
	}
}

// Binarize turns img into a black/white image and reports the fraction of
// white pixels, which callers use for blank-page detection.
func Binarize(img image.Image) (*image.Gray, float64) {
	bounds := img.Bounds()
	out := image.NewGray(bounds)

	var white int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			a := color.GrayModel.Convert(c).(color.Gray).Y
			if a > 127 {
				out.SetGray(x, y, color.Gray{0xff}) // white
				white++
			} else {
				out.SetGray(x, y, color.Gray{0x00}) // black
			}
		}
	}
	total := (bounds.Max.Y - bounds.Min.Y) * (bounds.Max.X - bounds.Min.X)
	return out, float64(white) / float64(total)
}
