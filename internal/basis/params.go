// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package basis

// ETC1S parameter ranges.
const (
	MinCompressionLevel     = 0
	MaxCompressionLevel     = 6
	DefaultCompressionLevel = 1
	MinQualityLevel         = 1
	MaxQualityLevel         = 255
	DefaultQualityLevel     = 128
	MaxCodebookEntries      = 16128
)

// UASTC parameter ranges.
const (
	MinUASTCQuality     = 0
	MaxUASTCQuality     = 4
	DefaultUASTCQuality = 1

	MinRDOLambda     = 0.001
	MaxRDOLambda     = 10.0
	DefaultRDOLambda = 1.0

	MinRDODictSize     = 64
	MaxRDODictSize     = 65536
	DefaultRDODictSize = 4096

	MinRDOSmoothBlockErrorScale     = 1.0
	MaxRDOSmoothBlockErrorScale     = 300.0
	DefaultRDOSmoothBlockErrorScale = 10.0

	MinRDOSmoothBlockStdDev     = 0.01
	MaxRDOSmoothBlockStdDev     = 65536.0
	DefaultRDOSmoothBlockStdDev = 18.0
)

// codebookLimit is the largest codebook an u16 index stream can address.
const codebookLimit = 0xFFFF

// ETC1SParams controls the ETC1S encoder.
type ETC1SParams struct {
	CompressionLevel int
	QualityLevel     int
	// MaxEndpoints and MaxSelectors cap the codebooks; 0 means unlimited.
	MaxEndpoints  int
	MaxSelectors  int
	NoEndpointRDO bool
	NoSelectorRDO bool
	Perceptual    bool
}

// DefaultETC1SParams returns the default ETC1S parameters.
func DefaultETC1SParams() ETC1SParams {
	return ETC1SParams{
		CompressionLevel: DefaultCompressionLevel,
		QualityLevel:     DefaultQualityLevel,
	}
}

// Clamp forces every parameter into its valid range.
func (p ETC1SParams) Clamp() ETC1SParams {
	p.CompressionLevel = clampInt(p.CompressionLevel, MinCompressionLevel, MaxCompressionLevel)
	p.QualityLevel = clampInt(p.QualityLevel, MinQualityLevel, MaxQualityLevel)
	if p.MaxEndpoints != 0 {
		p.MaxEndpoints = clampInt(p.MaxEndpoints, 1, MaxCodebookEntries)
	}
	if p.MaxSelectors != 0 {
		p.MaxSelectors = clampInt(p.MaxSelectors, 1, MaxCodebookEntries)
	}
	return p
}

// UASTCParams controls the UASTC encoder.
type UASTCParams struct {
	Quality                     int
	RDO                         bool
	RDOLambda                   float64
	RDODictSize                 int
	RDOMaxSmoothBlockErrorScale float64
	RDOMaxSmoothBlockStdDev     float64
}

// DefaultUASTCParams returns the default UASTC parameters with RDO off.
func DefaultUASTCParams() UASTCParams {
	return UASTCParams{
		Quality:                     DefaultUASTCQuality,
		RDOLambda:                   DefaultRDOLambda,
		RDODictSize:                 DefaultRDODictSize,
		RDOMaxSmoothBlockErrorScale: DefaultRDOSmoothBlockErrorScale,
		RDOMaxSmoothBlockStdDev:     DefaultRDOSmoothBlockStdDev,
	}
}

// Clamp forces every parameter into its valid range. Zero RDO settings take
// their defaults.
func (p UASTCParams) Clamp() UASTCParams {
	p.Quality = clampInt(p.Quality, MinUASTCQuality, MaxUASTCQuality)
	if p.RDOLambda == 0 {
		p.RDOLambda = DefaultRDOLambda
	}
	if p.RDODictSize == 0 {
		p.RDODictSize = DefaultRDODictSize
	}
	if p.RDOMaxSmoothBlockErrorScale == 0 {
		p.RDOMaxSmoothBlockErrorScale = DefaultRDOSmoothBlockErrorScale
	}
	if p.RDOMaxSmoothBlockStdDev == 0 {
		p.RDOMaxSmoothBlockStdDev = DefaultRDOSmoothBlockStdDev
	}
	p.RDOLambda = clampFloat(p.RDOLambda, MinRDOLambda, MaxRDOLambda)
	p.RDODictSize = clampInt(p.RDODictSize, MinRDODictSize, MaxRDODictSize)
	p.RDOMaxSmoothBlockErrorScale = clampFloat(p.RDOMaxSmoothBlockErrorScale, MinRDOSmoothBlockErrorScale, MaxRDOSmoothBlockErrorScale)
	p.RDOMaxSmoothBlockStdDev = clampFloat(p.RDOMaxSmoothBlockStdDev, MinRDOSmoothBlockStdDev, MaxRDOSmoothBlockStdDev)
	return p
}

func clampInt(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return min(hi, max(lo, v))
}
