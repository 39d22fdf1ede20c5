// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"

	"github.com/woozymasta/ktx2/internal/basis"
)

// ReadImage decodes the level 0 image of the first layer and face of a KTX2
// file, the way image decoders return a single picture.
func ReadImage(path string, opts ...ReadOption) (image.Image, error) {
	t, err := ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}

	return t.DecodeImage(0, 0, 0)
}

// DecodeImage decodes one image to 8-bit RGBA. Raw, block and universal
// payloads are supported; formats without a decoder fail with
// ErrNotImplemented.
func (t *Texture) DecodeImage(level, layer, faceSlice int) (*image.NRGBA, error) {
	l := t.Layout()
	index, err := l.ImageIndex(level, layer, faceSlice)
	if err != nil {
		return nil, err
	}
	w, h, _ := l.LevelDimensions(level)

	switch {
	case t.IsUniversal():
		dec, err := newUniversalDecoder(t)
		if err != nil {
			return nil, err
		}
		img, err := dec.decode(index)
		if err != nil {
			return nil, err
		}
		return basis.FromUniversal(img, t.channels), nil

	case t.format.IsCompressed():
		off, _ := l.ImageOffset(level, layer, faceSlice)
		return decodeBlockImage(t.data[off:off+l.ImageSize(level)], w, h, t.format)

	default:
		off, _ := l.ImageOffset(level, layer, faceSlice)
		img, err := rawImage(t.format, t.data[off:off+l.ImageSize(level)], w, h)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d layer %d face/slice %d: %w", ErrDecode, level, layer, faceSlice, err)
		}
		return img, nil
	}
}
