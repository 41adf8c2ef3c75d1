package codec

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"small", 8, 8},
		{"wide", 1000, 8},
		{"square", 1000, 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bpb := BytesPerBlock(tc.w, tc.h)
			data := make([]byte, bpb)
			for i := range data {
				data[i] = byte(i * 37)
			}

			img := Encode(data, tc.w, tc.h)
			require.Equal(t, tc.w, img.Bounds().Dx())
			require.Equal(t, tc.h, img.Bounds().Dy())

			decoded := Decode(img, tc.w, tc.h)
			assert.Equal(t, data, decoded)
		})
	}
}

func TestEncodeShorterThanBlockIsZeroPadded(t *testing.T) {
	w, h := 64, 8
	bpb := BytesPerBlock(w, h)
	data := []byte{0xFF, 0x00, 0xAA}

	img := Encode(data, w, h)
	decoded := Decode(img, w, h)

	require.Len(t, decoded, bpb)
	assert.Equal(t, byte(0xFF), decoded[0])
	assert.Equal(t, byte(0x00), decoded[1])
	assert.Equal(t, byte(0xAA), decoded[2])
	for _, b := range decoded[3:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestEncodeBitOrderIsMSBFirst(t *testing.T) {
	// 0x80 = 1000_0000: only the first pixel should be white.
	img := Encode([]byte{0x80}, 8, 1)
	assert.Equal(t, uint8(255), img.GrayAt(0, 0).Y)
	for x := 1; x < 8; x++ {
		assert.Equal(t, uint8(0), img.GrayAt(x, 0).Y, "pixel %d should be black", x)
	}
}

func TestDecodeThresholdsAtPixelValue(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 1))
	img.SetGray(0, 0, color.Gray{Y: 128}) // > 127, bit 1
	img.SetGray(1, 0, color.Gray{Y: 127}) // not > 127, bit 0
	for x := 2; x < 8; x++ {
		img.SetGray(x, 0, color.Gray{Y: 0})
	}

	decoded := Decode(img, 8, 1)
	assert.Equal(t, byte(0b1000_0000), decoded[0])
}

func TestEncodeOfAllOnesSetsEveryPixelWhite(t *testing.T) {
	w, h := 16, 16
	pixels := make([]byte, (w*h+7)/8)
	for i := range pixels {
		pixels[i] = 0xFF
	}
	img := Encode(pixels, w, h)
	for _, px := range img.Pix {
		assert.Equal(t, uint8(255), px)
	}
}
