// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"
	"github.com/woozymasta/ktx2/internal/basis"
)

// ETC1S parameter ranges.
const (
	MinETC1SCompressionLevel = basis.MinCompressionLevel
	MaxETC1SCompressionLevel = basis.MaxCompressionLevel
	MinETC1SQualityLevel     = basis.MinQualityLevel
	MaxETC1SQualityLevel     = basis.MaxQualityLevel
	MaxETC1SCodebookEntries  = basis.MaxCodebookEntries
)

// ETC1SParams tunes the ETC1S encoder. Values outside their range are
// clamped with a warning.
type ETC1SParams struct {
	// CompressionLevel is the search effort, 0 to 6.
	CompressionLevel int
	// QualityLevel is 1 to 255. Zero selects the default of 128.
	QualityLevel int
	// MaxEndpoints and MaxSelectors cap the codebooks. Zero means unlimited.
	MaxEndpoints  int
	MaxSelectors  int
	NoEndpointRDO bool
	NoSelectorRDO bool
	Perceptual    bool
}

// UASTCParams tunes the UASTC encoder. Values outside their range are
// clamped with a warning; zero RDO settings take their defaults.
type UASTCParams struct {
	// Quality is 0 (fastest) to 4 (slowest).
	Quality                     int
	RDO                         bool
	RDOLambda                   float64
	RDODictSize                 int
	RDOMaxSmoothBlockErrorScale float64
	RDOMaxSmoothBlockStdDev     float64
}

// UniversalParams selects a universal codec and its parameters.
type UniversalParams struct {
	Codec UniversalCodec
	ETC1S ETC1SParams
	UASTC UASTCParams
}

// DefaultUniversalParams returns the default parameters for codec.
func DefaultUniversalParams(codec UniversalCodec) UniversalParams {
	e := basis.DefaultETC1SParams()
	u := basis.DefaultUASTCParams()

	return UniversalParams{
		Codec: codec,
		ETC1S: ETC1SParams{
			CompressionLevel: e.CompressionLevel,
			QualityLevel:     e.QualityLevel,
		},
		UASTC: UASTCParams{
			Quality:                     u.Quality,
			RDOLambda:                   u.RDOLambda,
			RDODictSize:                 u.RDODictSize,
			RDOMaxSmoothBlockErrorScale: u.RDOMaxSmoothBlockErrorScale,
			RDOMaxSmoothBlockStdDev:     u.RDOMaxSmoothBlockStdDev,
		},
	}
}

// Validate checks the codec and the values that clamping cannot repair.
func (p UniversalParams) Validate() error {
	switch p.Codec {
	case CodecETC1S:
		if p.ETC1S.MaxEndpoints < 0 || p.ETC1S.MaxSelectors < 0 {
			return fmt.Errorf("%w: negative codebook limit", ErrInvalidParameter)
		}
	case CodecUASTC:
		u := p.UASTC
		if u.RDOLambda < 0 || u.RDODictSize < 0 || u.RDOMaxSmoothBlockErrorScale < 0 || u.RDOMaxSmoothBlockStdDev < 0 {
			return fmt.Errorf("%w: negative UASTC RDO setting", ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("%w: universal codec %s", ErrInvalidParameter, p.Codec)
	}

	return nil
}

func (p ETC1SParams) params(logger hclog.Logger) basis.ETC1SParams {
	in := basis.ETC1SParams{
		CompressionLevel: p.CompressionLevel,
		QualityLevel:     p.QualityLevel,
		MaxEndpoints:     p.MaxEndpoints,
		MaxSelectors:     p.MaxSelectors,
		NoEndpointRDO:    p.NoEndpointRDO,
		NoSelectorRDO:    p.NoSelectorRDO,
		Perceptual:       p.Perceptual,
	}
	if in.QualityLevel == 0 {
		in.QualityLevel = basis.DefaultQualityLevel
	}

	out := in.Clamp()
	if out != in {
		logger.Warn("clamping ETC1S parameters",
			"clevel", out.CompressionLevel, "qlevel", out.QualityLevel,
			"max_endpoints", out.MaxEndpoints, "max_selectors", out.MaxSelectors)
	}

	return out
}

func (p UASTCParams) params(logger hclog.Logger) basis.UASTCParams {
	in := basis.UASTCParams{
		Quality:                     p.Quality,
		RDO:                         p.RDO,
		RDOLambda:                   p.RDOLambda,
		RDODictSize:                 p.RDODictSize,
		RDOMaxSmoothBlockErrorScale: p.RDOMaxSmoothBlockErrorScale,
		RDOMaxSmoothBlockStdDev:     p.RDOMaxSmoothBlockStdDev,
	}

	out := in.Clamp()
	if out.Quality != in.Quality || (in.RDO && !sameRDO(in, out)) {
		logger.Warn("clamping UASTC parameters",
			"quality", out.Quality, "rdo_lambda", out.RDOLambda, "rdo_dict_size", out.RDODictSize)
	}

	return out
}

// sameRDO ignores zero inputs, which select defaults rather than clamp.
func sameRDO(in, out basis.UASTCParams) bool {
	return (in.RDOLambda == 0 || in.RDOLambda == out.RDOLambda) &&
		(in.RDODictSize == 0 || in.RDODictSize == out.RDODictSize) &&
		(in.RDOMaxSmoothBlockErrorScale == 0 || in.RDOMaxSmoothBlockErrorScale == out.RDOMaxSmoothBlockErrorScale) &&
		(in.RDOMaxSmoothBlockStdDev == 0 || in.RDOMaxSmoothBlockStdDev == out.RDOMaxSmoothBlockStdDev)
}

func etc1sRecord(p basis.ETC1SParams) string {
	record := fmt.Sprintf("--encode basis-lz --clevel %d --qlevel %d", p.CompressionLevel, p.QualityLevel)
	if p.MaxEndpoints > 0 {
		record += fmt.Sprintf(" --max-endpoints %d", p.MaxEndpoints)
	}
	if p.MaxSelectors > 0 {
		record += fmt.Sprintf(" --max-selectors %d", p.MaxSelectors)
	}
	if p.NoEndpointRDO {
		record += " --no-endpoint-rdo"
	}
	if p.NoSelectorRDO {
		record += " --no-selector-rdo"
	}

	return record
}

func uastcRecord(p basis.UASTCParams) string {
	record := fmt.Sprintf("--encode uastc --uastc-quality %d", p.Quality)
	if p.RDO {
		record += fmt.Sprintf(" --uastc-rdo --uastc-rdo-l %g --uastc-rdo-d %d --uastc-rdo-b %g --uastc-rdo-s %g",
			p.RDOLambda, p.RDODictSize, p.RDOMaxSmoothBlockErrorScale, p.RDOMaxSmoothBlockStdDev)
	}

	return record
}

// checkUniversalSource accepts the 8-bit UNORM and SRGB formats with one to
// four channels.
func checkUniversalSource(f VkFormat) error {
	switch f {
	case FormatR8Unorm, FormatR8SRGB,
		FormatR8G8Unorm, FormatR8G8SRGB,
		FormatR8G8B8Unorm, FormatR8G8B8SRGB,
		FormatR8G8B8A8Unorm, FormatR8G8B8A8SRGB:
		return nil
	}

	return fmt.Errorf("%w: universal encoding needs R8, R8G8, R8G8B8 or R8G8B8A8 UNORM/SRGB, got %s", ErrUnsupportedFormat, f)
}

// universalGeometry returns the in-memory block geometry of a universal
// payload. ETC1S stores a 4-byte index per block and slice.
func universalGeometry(codec UniversalCodec, channels int) blockGeometry {
	if codec == CodecETC1S {
		bytes := 4
		if channels == 2 || channels == 4 {
			bytes = 8
		}
		return blockGeometry{W: 4, H: 4, D: 1, Bytes: bytes}
	}

	return blockGeometry{W: 4, H: 4, D: 1, Bytes: basis.UASTCBlockSize}
}

// etc1sDescriptors locates every image inside its level, in population order.
func etc1sDescriptors(l Layout, channels int) []basis.ImageDesc {
	refs := l.images(0, l.Levels())
	out := make([]basis.ImageDesc, len(refs))
	level, first := -1, 0

	for i, ref := range refs {
		if ref.level != level {
			level, first = ref.level, i
		}
		w, h, _ := l.LevelDimensions(ref.level)
		slice := uint32(basis.SliceBytes(w, h))
		// #nosec G115 -- offsets are bounded by the level size.
		offset := uint32((i - first) * l.ImageSize(ref.level))

		d := basis.ImageDesc{RGBOffset: offset, RGBLength: slice}
		if channels == 2 || channels == 4 {
			d.AlphaOffset = offset + slice
			d.AlphaLength = slice
		}
		out[i] = d
	}

	return out
}

// checkGlobalData verifies that sgd parses and that its image descriptors
// match the layout.
func checkGlobalData(sgd []byte, l Layout, channels int) error {
	want := etc1sDescriptors(l, channels)
	g, err := basis.ParseGlobalData(sgd, len(want))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGlobalData, err)
	}

	for i, d := range g.Images {
		w := want[i]
		if d.RGBOffset != w.RGBOffset || d.RGBLength != w.RGBLength ||
			d.AlphaOffset != w.AlphaOffset || d.AlphaLength != w.AlphaLength {
			return fmt.Errorf("%w: image %d descriptor {%d %d %d %d}, expected {%d %d %d %d}",
				ErrInvalidGlobalData, i, d.RGBOffset, d.RGBLength, d.AlphaOffset, d.AlphaLength,
				w.RGBOffset, w.RGBLength, w.AlphaOffset, w.AlphaLength)
		}
	}

	return nil
}

// encodeUniversal replaces the raw texels of t with an ETC1S or UASTC payload.
func encodeUniversal(t *Texture, p UniversalParams, cfg pipelineConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := checkUniversalSource(t.format); err != nil {
		return err
	}

	channels := t.format.ChannelCount()
	src := t.Layout()
	geom := universalGeometry(p.Codec, channels)
	dst, err := newLayout(geom, t.width, t.height, t.depth, t.levels, t.layers, t.faces, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSizeOverflow, err)
	}

	refs := src.images(0, t.levels)
	load := func(i int) (*image.NRGBA, error) {
		ref := refs[i]
		w, h, _ := src.LevelDimensions(ref.level)
		off, _ := src.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		img, err := rawImage(t.format, t.data[off:off+src.ImageSize(ref.level)], w, h)
		if err != nil {
			return nil, fmt.Errorf("level %d layer %d face/slice %d: %w", ref.level, ref.layer, ref.faceSlice, err)
		}
		return img, nil
	}
	place := func(out []byte, i int, payload []byte) error {
		ref := refs[i]
		size := dst.ImageSize(ref.level)
		if len(payload) != size {
			return fmt.Errorf("%w: level %d layer %d face/slice %d: %d bytes, expected %d",
				ErrEncode, ref.level, ref.layer, ref.faceSlice, len(payload), size)
		}
		off, _ := dst.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		copy(out[off:off+size], payload)
		return nil
	}

	out := make([]byte, dst.DataSize())
	super := Supercompression{Scheme: SchemeNone}
	var record string

	switch p.Codec {
	case CodecETC1S:
		bp := p.ETC1S.params(cfg.logger)
		prepared := make([]*basis.ETC1SImage, len(refs))
		err := forEach(len(refs), cfg.workers, func(i int) error {
			img, err := load(i)
			if err != nil {
				return err
			}
			prepared[i], err = basis.PrepareETC1S(img, channels, bp)
			if err != nil {
				return fmt.Errorf("%w: image %d: %v", ErrEncode, i, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		// Codebooks span every image, so this step is sequential.
		res, err := basis.BuildETC1S(prepared, bp)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		for i, stream := range res.Streams {
			if err := place(out, i, stream); err != nil {
				return err
			}
		}

		g := basis.GlobalData{Codebook: res.Codebook, Images: etc1sDescriptors(dst, channels)}
		sgd, err := g.MarshalBinary()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		super = Supercompression{Scheme: SchemeBasisLZ, GlobalData: sgd}
		record = etc1sRecord(bp)
		cfg.logger.Debug("etc1s codebooks built", "endpoints", len(res.Codebook.Endpoints),
			"selectors", len(res.Codebook.Selectors), "global_bytes", len(sgd))

	case CodecUASTC:
		up := p.UASTC.params(cfg.logger)
		err := forEach(len(refs), cfg.workers, func(i int) error {
			img, err := load(i)
			if err != nil {
				return err
			}
			u, err := basis.ToUniversal(img, channels)
			if err != nil {
				return fmt.Errorf("%w: image %d: %v", ErrEncode, i, err)
			}
			blocks, err := basis.EncodeUASTC(u, up)
			if err != nil {
				return fmt.Errorf("%w: image %d: %v", ErrEncode, i, err)
			}
			return place(out, i, blocks)
		})
		if err != nil {
			return err
		}
		record = uastcRecord(up)
	}

	from := t.format
	t.dfd = universalDescriptor(p.Codec, channels, t.dfd.Primaries, t.dfd.Transfer)
	t.format = FormatUndefined
	t.typeSize = 1
	t.geom = geom
	t.codec = p.Codec
	t.channels = channels
	t.super = super
	t.data = out
	t.packed = nil
	t.meta.appendScParams(record)

	cfg.logger.Debug("universal encoded", "codec", p.Codec, "from", from.Name(),
		"channels", channels, "images", len(refs), "bytes", len(out))

	return nil
}

// universalDecoder decodes images of a universal texture to the universal
// channel layout.
type universalDecoder struct {
	t      *Texture
	l      Layout
	refs   []imageRef
	global *basis.GlobalData
}

func newUniversalDecoder(t *Texture) (*universalDecoder, error) {
	d := &universalDecoder{t: t, l: t.Layout()}
	d.refs = d.l.images(0, t.levels)

	if t.codec == CodecETC1S {
		g, err := basis.ParseGlobalData(t.super.GlobalData, len(d.refs))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGlobalData, err)
		}
		d.global = g
	}

	return d, nil
}

// slices returns the rgb and alpha index streams of image i.
func (d *universalDecoder) slices(i int) (rgb, alpha []byte, err error) {
	ref := d.refs[i]
	level := d.t.data[d.l.LevelOffset(ref.level) : d.l.LevelOffset(ref.level)+d.l.LevelSize(ref.level)]
	desc := d.global.Images[i]

	cut := func(off, n uint32) ([]byte, error) {
		end := uint64(off) + uint64(n)
		if end > uint64(len(level)) {
			return nil, fmt.Errorf("%w: image %d slice [%d,%d) outside level %d", ErrInvalidGlobalData, i, off, end, ref.level)
		}
		return level[off:end], nil
	}

	if rgb, err = cut(desc.RGBOffset, desc.RGBLength); err != nil {
		return nil, nil, err
	}
	if desc.AlphaLength > 0 {
		if alpha, err = cut(desc.AlphaOffset, desc.AlphaLength); err != nil {
			return nil, nil, err
		}
	}

	return rgb, alpha, nil
}

// decode returns image i in the universal channel layout.
func (d *universalDecoder) decode(i int) (*image.NRGBA, error) {
	ref := d.refs[i]
	w, h, _ := d.l.LevelDimensions(ref.level)

	switch d.t.codec {
	case CodecETC1S:
		rgb, alpha, err := d.slices(i)
		if err != nil {
			return nil, err
		}
		img, err := basis.DecodeETC1S(&d.global.Codebook, rgb, alpha, w, h)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrDecode, i, err)
		}
		return img, nil

	case CodecUASTC:
		off, _ := d.l.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		img, err := basis.DecodeUASTC(d.t.data[off:off+d.l.ImageSize(ref.level)], w, h)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrDecode, i, err)
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %s payload", ErrUnsupportedFormat, d.t.codec)
}

// etc1 rewrites the rgb slice of an ETC1S image as ETC1 blocks.
func (d *universalDecoder) etc1(i int) ([]byte, error) {
	ref := d.refs[i]
	w, h, _ := d.l.LevelDimensions(ref.level)
	rgb, _, err := d.slices(i)
	if err != nil {
		return nil, err
	}

	out, err := basis.ETC1SToETC1(&d.global.Codebook, rgb, w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: image %d: %v", ErrDecode, i, err)
	}

	return out, nil
}
