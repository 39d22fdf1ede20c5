// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/woozymasta/ktx2"
)

// universalFlags binds the ETC1S and UASTC encoder parameters.
type universalFlags struct {
	p ktx2.UniversalParams
}

func (f *universalFlags) register(fs *pflag.FlagSet) {
	d := ktx2.DefaultUniversalParams(ktx2.CodecETC1S)
	f.p = d

	fs.IntVar(&f.p.ETC1S.CompressionLevel, "clevel", d.ETC1S.CompressionLevel, "ETC1S compression effort, 0 to 6")
	fs.IntVar(&f.p.ETC1S.QualityLevel, "qlevel", d.ETC1S.QualityLevel, "ETC1S quality, 1 to 255")
	fs.IntVar(&f.p.ETC1S.MaxEndpoints, "max-endpoints", 0, "ETC1S endpoint codebook size, 0 for no cap")
	fs.IntVar(&f.p.ETC1S.MaxSelectors, "max-selectors", 0, "ETC1S selector codebook size, 0 for no cap")
	fs.BoolVar(&f.p.ETC1S.NoEndpointRDO, "no-endpoint-rdo", false, "disable ETC1S endpoint RDO")
	fs.BoolVar(&f.p.ETC1S.NoSelectorRDO, "no-selector-rdo", false, "disable ETC1S selector RDO")

	fs.IntVar(&f.p.UASTC.Quality, "uastc-quality", d.UASTC.Quality, "UASTC quality, 0 (fastest) to 4")
	fs.BoolVar(&f.p.UASTC.RDO, "uastc-rdo", false, "enable UASTC rate distortion optimization")
	fs.Float64Var(&f.p.UASTC.RDOLambda, "uastc-rdo-l", d.UASTC.RDOLambda, "UASTC RDO lambda")
	fs.IntVar(&f.p.UASTC.RDODictSize, "uastc-rdo-d", d.UASTC.RDODictSize, "UASTC RDO dictionary size")
	fs.Float64Var(&f.p.UASTC.RDOMaxSmoothBlockErrorScale, "uastc-rdo-b", d.UASTC.RDOMaxSmoothBlockErrorScale, "UASTC RDO smooth block error scale")
	fs.Float64Var(&f.p.UASTC.RDOMaxSmoothBlockStdDev, "uastc-rdo-s", d.UASTC.RDOMaxSmoothBlockStdDev, "UASTC RDO smooth block deviation")
}

// params returns the validated parameters of the named codec.
func (f *universalFlags) params(codec string) (ktx2.UniversalParams, error) {
	c, err := ktx2.ParseUniversalCodec(codec)
	if err != nil {
		return ktx2.UniversalParams{}, err
	}
	p := f.p
	p.Codec = c

	return p, p.Validate()
}

// blockFlags binds the direct block encoder parameters.
type blockFlags struct {
	quality    int
	perceptual bool
}

func (f *blockFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.quality, "block-quality", ktx2.DefaultBlockQuality,
		fmt.Sprintf("block encoder quality, %d to %d", ktx2.MinBlockQuality, ktx2.MaxBlockQuality))
	fs.BoolVar(&f.perceptual, "block-perceptual", false, "weigh block encoder error by luma")
}

func (f *blockFlags) params() (ktx2.BlockParams, error) {
	p := ktx2.BlockParams{Quality: f.quality, Perceptual: f.perceptual}
	return p, p.Validate()
}

// deflateFlags binds --zstd and --zlib.
type deflateFlags struct {
	fs   *pflag.FlagSet
	zstd int
	zlib int
}

func (f *deflateFlags) register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.IntVar(&f.zstd, "zstd", 0,
		fmt.Sprintf("supercompress with Zstandard, level %d to %d", ktx2.MinZstdLevel, ktx2.MaxZstdLevel))
	fs.IntVar(&f.zlib, "zlib", 0,
		fmt.Sprintf("supercompress with Zlib, level %d to %d", ktx2.MinZlibLevel, ktx2.MaxZlibLevel))
}

// params returns nil when neither flag was given.
func (f *deflateFlags) params() (*ktx2.DeflateParams, error) {
	zstd, zlib := f.fs.Changed("zstd"), f.fs.Changed("zlib")

	var p ktx2.DeflateParams
	switch {
	case zstd && zlib:
		return nil, fmt.Errorf("%w: --zstd and --zlib", ktx2.ErrConflictingOptions)
	case zstd:
		p = ktx2.DeflateParams{Scheme: ktx2.SchemeZstd, Level: f.zstd}
	case zlib:
		p = ktx2.DeflateParams{Scheme: ktx2.SchemeZlib, Level: f.zlib}
	default:
		return nil, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}
