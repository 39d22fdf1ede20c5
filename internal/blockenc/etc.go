// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package blockenc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/nigeltao/etc2/lib/etc2"
)

// EncodeETC compresses img into row-major blocks of an ETC1, ETC2 or EAC
// format. Encoding parameters are fixed by the library.
func EncodeETC(img image.Image, f etc2.Format) ([]byte, error) {
	if f.BytesPerBlock() == 0 {
		return nil, fmt.Errorf("%w: etc format %d", ErrUnknownFormat, int(f))
	}
	r := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrShortData)
	}

	bw, bh := BlockCount(r.Dx(), r.Dy())
	var buf bytes.Buffer
	buf.Grow(bw * bh * f.BytesPerBlock())
	if err := etc2.Encode(&buf, img, f, nil); err != nil {
		return nil, fmt.Errorf("etc encode: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeETC expands row-major blocks of an ETC1, ETC2 or EAC format into a
// width x height image. EAC channels land in red and green with blue zero
// and alpha opaque.
func DecodeETC(data []byte, width, height int, f etc2.Format) (*image.NRGBA, error) {
	bs := f.BytesPerBlock()
	if bs == 0 {
		return nil, fmt.Errorf("%w: etc format %d", ErrUnknownFormat, int(f))
	}
	bw, bh := BlockCount(width, height)
	if len(data) < bw*bh*bs {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortData, len(data), bw*bh*bs)
	}

	m, err := f.NewImage(bw*4, bh*4)
	if err != nil {
		return nil, fmt.Errorf("etc decode: %w", err)
	}
	if err := f.Decode(m, bytes.NewReader(data[:bw*bh*bs]), bw, bh); err != nil {
		return nil, fmt.Errorf("etc decode: %w", err)
	}

	return toNRGBA(m, width, height), nil
}

// toNRGBA crops a decoded image to width x height.
func toNRGBA(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := dst.PixOffset(x, y)
			switch m := src.(type) {
			case *image.NRGBA:
				copy(dst.Pix[o:o+4], m.Pix[m.PixOffset(x, y):])
			case *image.Gray16:
				c := m.Gray16At(x, y)
				dst.Pix[o], dst.Pix[o+3] = uint8(c.Y>>8), 0xFF
			case *image.RGBA64:
				c := m.RGBA64At(x, y)
				dst.Pix[o], dst.Pix[o+1], dst.Pix[o+3] = uint8(c.R>>8), uint8(c.G>>8), 0xFF
			default:
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] = c.R, c.G, c.B, c.A
			}
		}
	}

	return dst
}
