// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"

	"github.com/woozymasta/ktx2"
)

type (
	mipmapper interface {
		GenerateMipmaps(ktx2.MipmapOptions) (*ktx2.MipGenerated, error)
	}
	universalEncoder interface {
		EncodeUniversal(ktx2.UniversalParams) (*ktx2.UniversalEncoded, error)
	}
	blockEncoder interface {
		EncodeBlock(ktx2.VkFormat, ktx2.BlockParams) (*ktx2.BlockEncoded, error)
	}
	deflater interface {
		Deflate(ktx2.DeflateParams) (*ktx2.Supercompressed, error)
	}
)

func generateMipmaps(s ktx2.State, opts ktx2.MipmapOptions) (ktx2.State, error) {
	m, ok := s.(mipmapper)
	if !ok {
		return nil, fmt.Errorf("%w: mipmap generation from %s", ktx2.ErrUnsupportedForFormat, s.Stage())
	}
	next, err := m.GenerateMipmaps(opts)
	if err != nil {
		return nil, err
	}

	return next, nil
}

func encodeUniversal(s ktx2.State, p ktx2.UniversalParams) (ktx2.State, error) {
	e, ok := s.(universalEncoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s encoding needs an uncompressed texture, got %s",
			ktx2.ErrUnsupportedFormat, p.Codec, s.Stage())
	}
	next, err := e.EncodeUniversal(p)
	if err != nil {
		return nil, err
	}

	return next, nil
}

func encodeBlock(s ktx2.State, target ktx2.VkFormat, p ktx2.BlockParams) (ktx2.State, error) {
	e, ok := s.(blockEncoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s encoding needs an uncompressed texture, got %s",
			ktx2.ErrUnsupportedFormat, target, s.Stage())
	}
	next, err := e.EncodeBlock(target, p)
	if err != nil {
		return nil, err
	}

	return next, nil
}

func deflate(s ktx2.State, p ktx2.DeflateParams) (ktx2.State, error) {
	d, ok := s.(deflater)
	if !ok {
		return nil, fmt.Errorf("%w: deflate from %s", ktx2.ErrStageLocked, s.Stage())
	}
	next, err := d.Deflate(p)
	if err != nil {
		return nil, err
	}

	return next, nil
}
