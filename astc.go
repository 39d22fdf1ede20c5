// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"

	"github.com/arm-software/astc-encoder/astc"
)

// astcQuality maps the block quality range onto the astcenc presets
// fastest, fast, medium, thorough and verythorough.
var astcQuality = [MaxBlockQuality + 1]float32{0, 10, 60, 98, 99}

// astcContext allocates a single threaded ASTC context for f.
func astcContext(f VkFormat, p BlockParams) (*astc.Context, error) {
	bx, by, _ := f.BlockSize()
	profile := astc.ProfileLDR
	if f.IsSRGB() {
		profile = astc.ProfileLDRSRGB
	}
	var flags astc.Flags
	if p.Perceptual {
		flags |= astc.FlagUsePerceptual
	}
	q := astcQuality[min(MaxBlockQuality, max(MinBlockQuality, p.Quality))]

	cfg, err := astc.ConfigInit(profile, bx, by, 1, q, flags)
	if err != nil {
		return nil, err
	}

	return astc.ContextAlloc(&cfg, 1)
}

// astcBlocks returns the block count of a width x height ASTC image.
func astcBlocks(f VkFormat, width, height int) int {
	bx, by, _ := f.BlockSize()
	return ((width + bx - 1) / bx) * ((height + by - 1) / by)
}

// encodeASTC compresses img into row-major ASTC blocks of f.
func encodeASTC(img *image.NRGBA, f VkFormat, p BlockParams) ([]byte, error) {
	ctx, err := astcContext(f, p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ctx.Close() }()

	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := img.Pix
	if img.Stride != w*4 || len(pix) != w*h*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			o := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
			pix = append(pix, img.Pix[o:o+w*4]...)
		}
	}

	src := &astc.Image{DimX: w, DimY: h, DimZ: 1, DataType: astc.TypeU8, DataU8: pix}
	out := make([]byte, astcBlocks(f, w, h)*astc.BlockBytes)
	if err := ctx.CompressImage(src, astc.SwizzleRGBA, out, 0); err != nil {
		return nil, err
	}

	return out, nil
}

// decodeASTC expands row-major ASTC blocks of f into an image.
func decodeASTC(data []byte, width, height int, f VkFormat) (*image.NRGBA, error) {
	if need := astcBlocks(f, width, height) * astc.BlockBytes; len(data) < need {
		return nil, fmt.Errorf("have %d bytes, need %d", len(data), need)
	}
	ctx, err := astcContext(f, BlockParams{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = ctx.Close() }()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	dst := &astc.Image{DimX: width, DimY: height, DimZ: 1, DataType: astc.TypeU8, DataU8: img.Pix}
	if err := ctx.DecompressImage(data, dst, astc.SwizzleRGBA, 0); err != nil {
		return nil, err
	}

	return img, nil
}
