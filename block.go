// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"

	"github.com/nigeltao/etc2/lib/etc2"
	"github.com/woozymasta/bcn"
	"github.com/woozymasta/ktx2/internal/blockenc"
)

// Block encoding quality range.
const (
	MinBlockQuality     = 0
	MaxBlockQuality     = 4
	DefaultBlockQuality = 2
)

// BlockParams tunes direct GPU block encoding.
type BlockParams struct {
	// Quality ranges from 0 (fastest) to 4 (best).
	Quality int
	// Perceptual weighs colour error by luma contribution.
	Perceptual bool
}

// DefaultBlockParams returns the default block encoding parameters.
func DefaultBlockParams() BlockParams {
	return BlockParams{Quality: DefaultBlockQuality}
}

// Validate checks the quality range.
func (p BlockParams) Validate() error {
	if p.Quality < MinBlockQuality || p.Quality > MaxBlockQuality {
		return fmt.Errorf("%w: block quality %d not in [%d,%d]", ErrInvalidParameter, p.Quality, MinBlockQuality, MaxBlockQuality)
	}

	return nil
}

func (p BlockParams) record(target VkFormat) string {
	record := fmt.Sprintf("--encode %s --block-quality %d", target.Name(), p.Quality)
	if p.Perceptual {
		record += " --block-perceptual"
	}

	return record
}

// bcnOptions maps the quality range onto the bcn encoder settings. Image
// level parallelism is handled by the pipeline.
func (p BlockParams) bcnOptions() *bcn.EncodeOptions {
	switch {
	case p.Quality <= 1:
		return &bcn.EncodeOptions{QualityLevel: bcn.QualityLevelFast, Workers: 1}
	case p.Quality == 2:
		return &bcn.EncodeOptions{QualityLevel: 6, Workers: 1}
	case p.Quality == 3:
		return &bcn.EncodeOptions{QualityLevel: 8, Workers: 1}
	default:
		return &bcn.EncodeOptions{QualityLevel: 10, Workers: 1}
	}
}

// blockCodecKind selects the library behind a block format.
type blockCodecKind int

const (
	codecBCn blockCodecKind = iota + 1
	codecBC7
	codecETC
	codecASTC
)

// blockCodec names the encoder that produces a block format.
type blockCodec struct {
	kind blockCodecKind
	bcn  bcn.Format
	etc  etc2.Format
}

// etcFormats maps ETC2 and EAC block formats onto the etc2 library.
var etcFormats = map[VkFormat]etc2.Format{
	FormatETC2R8G8B8Unorm:   etc2.FormatETC2RGB,
	FormatETC2R8G8B8SRGB:    etc2.FormatETC2SRGB,
	FormatETC2R8G8B8A1Unorm: etc2.FormatETC2RGBA1,
	FormatETC2R8G8B8A1SRGB:  etc2.FormatETC2SRGBA1,
	FormatETC2R8G8B8A8Unorm: etc2.FormatETC2RGBA,
	FormatETC2R8G8B8A8SRGB:  etc2.FormatETC2SRGBA,
	FormatEACR11Unorm:       etc2.FormatETC2UnsignedR11,
	FormatEACR11Snorm:       etc2.FormatETC2SignedR11,
	FormatEACR11G11Unorm:    etc2.FormatETC2UnsignedRG11,
	FormatEACR11G11Snorm:    etc2.FormatETC2SignedRG11,
}

// blockCodecFor resolves the encoder of a block format.
func blockCodecFor(f VkFormat) (blockCodec, error) {
	if b := f.bcnFormat(); b != bcn.FormatUnknown {
		return blockCodec{kind: codecBCn, bcn: b}, nil
	}
	if e, ok := etcFormats[f]; ok {
		return blockCodec{kind: codecETC, etc: e}, nil
	}

	switch {
	case f == FormatBC7Unorm || f == FormatBC7SRGB:
		return blockCodec{kind: codecBC7}, nil
	case f.Family() == FamilyASTC:
		return blockCodec{kind: codecASTC}, nil
	}

	return blockCodec{}, fmt.Errorf("%w: block encoding to %s", ErrNotImplemented, f)
}

// checkBlockTarget reports whether src can be encoded to target.
func checkBlockTarget(src, target VkFormat) error {
	ti, ok := lookupFormat(target)
	if !ok || ti.family == FamilyUncompressed {
		return fmt.Errorf("%w: %s is not a block format", ErrUnsupportedFormat, target)
	}

	si, ok := lookupFormat(src)
	if !ok || si.family != FamilyUncompressed || si.packed || si.class != ClassUnorm || si.comps[0].bits != 8 {
		return fmt.Errorf("%w: block encoding needs an 8-bit UNORM or SRGB source, got %s", ErrUnsupportedFormat, src)
	}
	if si.srgb != ti.srgb {
		return fmt.Errorf("%w: %s source for %s", ErrIncompatibleTransfer, src, target)
	}

	_, err := blockCodecFor(target)
	return err
}

// blockImageSize returns the byte size of a width x height image of f.
func blockImageSize(f VkFormat, width, height int) int {
	bx, by, _ := f.BlockSize()
	return ((width + bx - 1) / bx) * ((height + by - 1) / by) * f.BytesPerBlock()
}

// encodeBlockImage compresses one image into row-major blocks of f.
func encodeBlockImage(img *image.NRGBA, f VkFormat, p BlockParams) ([]byte, error) {
	codec, err := blockCodecFor(f)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch codec.kind {
	case codecBCn:
		data, _, _, err = bcn.EncodeImageWithOptions(img, codec.bcn, p.bcnOptions())
	case codecETC:
		data, err = blockenc.EncodeETC(img, codec.etc)
	case codecASTC:
		data, err = encodeASTC(img, f, p)
	default:
		data, err = blockenc.EncodeBC7Image(img, blockenc.Options{Quality: p.Quality, Perceptual: p.Perceptual})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, f, err)
	}

	if expected := blockImageSize(f, img.Rect.Dx(), img.Rect.Dy()); len(data) != expected {
		return nil, fmt.Errorf("%w: %s encoder returned %d bytes, expected %d", ErrEncode, f, len(data), expected)
	}

	return data, nil
}

// decodeBlockImage expands row-major blocks of f into an image.
func decodeBlockImage(data []byte, width, height int, f VkFormat) (*image.NRGBA, error) {
	codec, err := blockCodecFor(f)
	if err != nil {
		return nil, err
	}

	var img *image.NRGBA
	switch codec.kind {
	case codecBCn:
		var raw image.Image
		raw, err = bcn.DecodeImageWithOptions(data, width, height, codec.bcn, nil)
		if err == nil {
			img = toNRGBA(raw)
		}
	case codecETC:
		img, err = blockenc.DecodeETC(data, width, height, codec.etc)
	case codecASTC:
		img, err = decodeASTC(data, width, height, f)
	default:
		img, err = blockenc.DecodeBC7Image(data, width, height)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, f, err)
	}

	return img, nil
}

// encodeBlock replaces the raw texels of t with blocks of target. Every
// image is encoded into a fresh buffer before the texture changes.
func encodeBlock(t *Texture, target VkFormat, p BlockParams, cfg pipelineConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if t.IsUniversal() {
		return fmt.Errorf("%w: block encoding a universal payload", ErrUnsupportedFormat)
	}
	if err := checkBlockTarget(t.format, target); err != nil {
		return err
	}

	ti, _ := lookupFormat(target)
	src := t.Layout()
	dst, err := newLayout(ti.geom, t.width, t.height, t.depth, t.levels, t.layers, t.faces, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSizeOverflow, err)
	}
	dfd, err := NewFormatDescriptor(target)
	if err != nil {
		return err
	}
	dfd.Primaries = t.dfd.Primaries

	refs := src.images(0, t.levels)
	out := make([]byte, dst.DataSize())
	err = forEach(len(refs), cfg.workers, func(i int) error {
		ref := refs[i]
		w, h, _ := src.LevelDimensions(ref.level)
		from, _ := src.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		img, err := rawImage(t.format, t.data[from:from+src.ImageSize(ref.level)], w, h)
		if err != nil {
			return fmt.Errorf("level %d layer %d face/slice %d: %w", ref.level, ref.layer, ref.faceSlice, err)
		}
		blocks, err := encodeBlockImage(img, target, p)
		if err != nil {
			return fmt.Errorf("level %d layer %d face/slice %d: %w", ref.level, ref.layer, ref.faceSlice, err)
		}
		to, _ := dst.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		copy(out[to:to+dst.ImageSize(ref.level)], blocks)
		return nil
	})
	if err != nil {
		return err
	}

	from := t.format
	t.format = target
	t.typeSize = ti.typeSize
	t.geom = ti.geom
	t.dfd = dfd
	t.data = out
	t.packed = nil
	t.meta.appendScParams(p.record(target))

	cfg.logger.Debug("block encoded", "from", from.Name(), "to", target.Name(),
		"images", len(refs), "bytes", len(out), "quality", p.Quality)

	return nil
}
