// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package blockenc holds the BC7 block codec, the ETC1S endpoint fitting
// used by the universal encoder and thin wrappers over the etc2 library.
package blockenc

import (
	"fmt"
	"image"
)

// Block is a 4x4 tile of RGBA pixels in row-major order.
type Block [16][4]uint8

// BC7BlockBytes is the size of one BC7 block.
const BC7BlockBytes = 16

// Options tunes encoding.
type Options struct {
	// Quality ranges 0 (fastest) to 4 (best).
	Quality int
	// Perceptual weighs colour error by luma contribution.
	Perceptual bool
}

func (o Options) weights() Weights {
	if o.Perceptual {
		return Perceptual
	}
	return Uniform
}

func (o Options) effort() int {
	return min(4, max(0, o.Quality))
}

// BlockCount returns the number of blocks covering width x height.
func BlockCount(width, height int) (int, int) {
	return (width + 3) / 4, (height + 3) / 4
}

// fetch copies a 4x4 block, clamping coordinates to the image edge.
func fetch(img *image.NRGBA, bx, by int) Block {
	var b Block
	r := img.Bounds()
	for y := 0; y < 4; y++ {
		sy := min(r.Max.Y-1, r.Min.Y+by*4+y)
		for x := 0; x < 4; x++ {
			sx := min(r.Max.X-1, r.Min.X+bx*4+x)
			o := img.PixOffset(sx, sy)
			copy(b[y*4+x][:], img.Pix[o:o+4])
		}
	}

	return b
}

// store writes the visible part of a block into img.
func store(img *image.NRGBA, bx, by int, b *Block) {
	r := img.Bounds()
	for y := 0; y < 4; y++ {
		py := by*4 + y
		if py >= r.Dy() {
			break
		}
		for x := 0; x < 4; x++ {
			px := bx*4 + x
			if px >= r.Dx() {
				break
			}
			o := img.PixOffset(r.Min.X+px, r.Min.Y+py)
			copy(img.Pix[o:o+4], b[y*4+x][:])
		}
	}
}

// Blocks splits img into row-major 4x4 blocks with edge clamping.
func Blocks(img *image.NRGBA) []Block {
	r := img.Bounds()
	bw, bh := BlockCount(r.Dx(), r.Dy())
	out := make([]Block, 0, bw*bh)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			out = append(out, fetch(img, bx, by))
		}
	}

	return out
}

// Assemble builds a width x height image from row-major blocks.
func Assemble(blocks []Block, width, height int) (*image.NRGBA, error) {
	bw, bh := BlockCount(width, height)
	if len(blocks) < bw*bh {
		return nil, fmt.Errorf("%w: have %d blocks, need %d", ErrShortData, len(blocks), bw*bh)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			store(img, bx, by, &blocks[by*bw+bx])
		}
	}

	return img, nil
}

// EncodeBC7Image compresses img into row-major BC7 blocks.
func EncodeBC7Image(img *image.NRGBA, opts Options) ([]byte, error) {
	r := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrShortData)
	}

	effort, w := opts.effort(), opts.weights()
	blocks := Blocks(img)
	out := make([]byte, 0, len(blocks)*BC7BlockBytes)
	for i := range blocks {
		enc := EncodeBC7(&blocks[i], effort, w)
		out = append(out, enc[:]...)
	}

	return out, nil
}

// DecodeBC7Image expands row-major BC7 blocks into a width x height image.
func DecodeBC7Image(data []byte, width, height int) (*image.NRGBA, error) {
	bw, bh := BlockCount(width, height)
	if len(data) < bw*bh*BC7BlockBytes {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortData, len(data), bw*bh*BC7BlockBytes)
	}

	blocks := make([]Block, bw*bh)
	for i := range blocks {
		b, err := DecodeBC7(data[i*BC7BlockBytes : (i+1)*BC7BlockBytes])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks[i] = b
	}

	return Assemble(blocks, width, height)
}
