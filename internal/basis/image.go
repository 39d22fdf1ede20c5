// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package basis

import (
	"fmt"
	"image"
)

// ToUniversal maps an image holding channels meaningful channels to the
// layout the universal codecs expect: one channel becomes grey, two channels
// become grey plus alpha and missing alpha becomes opaque.
func ToUniversal(img *image.NRGBA, channels int) (*image.NRGBA, error) {
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("%w: %d", ErrChannelCount, channels)
	}
	r := img.Bounds()
	if r.Empty() {
		return nil, ErrEmptyImage
	}

	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			si := img.PixOffset(r.Min.X+x, r.Min.Y+y)
			di := out.PixOffset(x, y)
			p := img.Pix[si : si+4]
			switch channels {
			case 1:
				out.Pix[di], out.Pix[di+1], out.Pix[di+2], out.Pix[di+3] = p[0], p[0], p[0], 255
			case 2:
				out.Pix[di], out.Pix[di+1], out.Pix[di+2], out.Pix[di+3] = p[0], p[0], p[0], p[1]
			case 3:
				out.Pix[di], out.Pix[di+1], out.Pix[di+2], out.Pix[di+3] = p[0], p[1], p[2], 255
			default:
				copy(out.Pix[di:di+4], p)
			}
		}
	}

	return out, nil
}

// FromUniversal reverses ToUniversal, moving alpha back to green for two
// channel data.
func FromUniversal(img *image.NRGBA, channels int) *image.NRGBA {
	if channels != 2 {
		return img
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = img.Pix[i+3], 0, 255
	}
	return img
}

// hasAlpha reports whether the channel layout carries an alpha slice.
func hasAlpha(channels int) bool {
	return channels == 2 || channels == 4
}
