// Package codec implements the pure encode/decode functions between a
// byte buffer and a monochrome W x H raster (spec.md §4.1). Neither
// function performs I/O or keeps state; persistence is blockstore's job.
package codec

import (
	"image"
	"image/color"
)

// BytesPerBlock returns floor(w*h/8), the payload size of a block with
// the given raster dimensions.
func BytesPerBlock(w, h int) int {
	return (w * h) / 8
}

// Encode packs bytes into a w x h grayscale raster, one bit per pixel,
// MSB-first within each byte: bit 7 of byte 0 maps to pixel 0, bit 6 to
// pixel 1, and so on (spec.md §3, §4.1). len(data) must be <=
// BytesPerBlock(w, h); pixels beyond 8*len(data) are black (bit 0).
func Encode(data []byte, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	total := w * h

	for pixel := 0; pixel < total; pixel++ {
		byteIndex := pixel / 8
		var bit byte
		if byteIndex < len(data) {
			shift := 7 - uint(pixel%8)
			bit = (data[byteIndex] >> shift) & 1
		}

		value := color.Gray{Y: 0}
		if bit == 1 {
			value = color.Gray{Y: 255}
		}
		img.SetGray(pixel%w, pixel/w, value)
	}
	return img
}

// Decode thresholds each pixel of img (>127 is bit 1, else bit 0) and
// packs 8 pixels MSB-first into each output byte, row-major. The
// returned slice always has length BytesPerBlock(w, h), regardless of
// img's actual bounds (a dimension mismatch is the caller's concern to
// detect, see blockstore.Store.readBlock).
func Decode(img image.Image, w, h int) []byte {
	out := make([]byte, BytesPerBlock(w, h))
	bounds := img.Bounds()
	total := w * h

	for pixel := 0; pixel < total; pixel++ {
		x := bounds.Min.X + pixel%w
		y := bounds.Min.Y + pixel/w

		bit := byte(0)
		if isSet(img, x, y) {
			bit = 1
		}

		byteIndex := pixel / 8
		if byteIndex >= len(out) {
			break
		}
		shift := 7 - uint(pixel%8)
		out[byteIndex] |= bit << shift
	}
	return out
}

// isSet applies the spec's pixel threshold: grayscale value > 127 is a
// set bit, everything else is clear.
func isSet(img image.Image, x, y int) bool {
	gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
	return gray.Y > 127
}
