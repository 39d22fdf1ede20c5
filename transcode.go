// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"

	"github.com/woozymasta/ktx2/internal/basis"
)

// TranscodeTarget is a format a universal payload can be transcoded to.
type TranscodeTarget uint8

// Transcode targets.
const (
	TargetETCRGB TranscodeTarget = iota + 1
	TargetETCRGBA
	TargetEACR11
	TargetEACRG11
	TargetBC1
	TargetBC3
	TargetBC4
	TargetBC5
	TargetBC7
	TargetASTC
	TargetR8
	TargetRG8
	TargetRGB8
	TargetRGBA8
)

var transcodeTargets = []struct {
	target TranscodeTarget
	name   string
	format VkFormat
}{
	{TargetETCRGB, "etc-rgb", FormatETC2R8G8B8Unorm},
	{TargetETCRGBA, "etc-rgba", FormatETC2R8G8B8A8Unorm},
	{TargetEACR11, "eac-r11", FormatEACR11Unorm},
	{TargetEACRG11, "eac-rg11", FormatEACR11G11Unorm},
	{TargetBC1, "bc1", FormatBC1RGBUnorm},
	{TargetBC3, "bc3", FormatBC3Unorm},
	{TargetBC4, "bc4", FormatBC4Unorm},
	{TargetBC5, "bc5", FormatBC5Unorm},
	{TargetBC7, "bc7", FormatBC7Unorm},
	{TargetASTC, "astc", FormatASTC4x4Unorm},
	{TargetR8, "r8", FormatR8Unorm},
	{TargetRG8, "rg8", FormatR8G8Unorm},
	{TargetRGB8, "rgb8", FormatR8G8B8Unorm},
	{TargetRGBA8, "rgba8", FormatR8G8B8A8Unorm},
}

// String returns the target name used on the command line.
func (t TranscodeTarget) String() string {
	for _, e := range transcodeTargets {
		if e.target == t {
			return e.name
		}
	}

	return fmt.Sprintf("target(%d)", uint8(t))
}

// ParseTranscodeTarget resolves a target name such as "bc7" or "rgba8".
func ParseTranscodeTarget(name string) (TranscodeTarget, error) {
	for _, e := range transcodeTargets {
		if e.name == name {
			return e.target, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown transcode target %q", ErrInvalidParameter, name)
}

// TranscodeTargetNames lists every target name.
func TranscodeTargetNames() []string {
	names := make([]string, len(transcodeTargets))
	for i, e := range transcodeTargets {
		names[i] = e.name
	}

	return names
}

// format returns the linear VkFormat of the target.
func (t TranscodeTarget) format() (VkFormat, bool) {
	for _, e := range transcodeTargets {
		if e.target == t {
			return e.format, true
		}
	}

	return FormatUndefined, false
}

// uncompressed reports whether the target is a plain 8-bit format.
func (t TranscodeTarget) uncompressed() bool {
	return t == TargetR8 || t == TargetRG8 || t == TargetRGB8 || t == TargetRGBA8
}

// twoChannel reports whether the target stores red and green only.
func (t TranscodeTarget) twoChannel() bool {
	return t == TargetEACRG11 || t == TargetBC5 || t == TargetRG8
}

// CanTranscode reports whether a payload of codec can be transcoded to target.
func CanTranscode(codec UniversalCodec, target TranscodeTarget) error {
	if _, ok := target.format(); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedTranscodeTarget, target)
	}

	if codec != CodecETC1S && codec != CodecUASTC {
		return fmt.Errorf("%w: texture holds no universal payload", ErrUnsupportedTranscodeTarget)
	}

	return nil
}

// Transcode converts a universal payload to target. Block targets yield a
// block-encoded texture, plain targets a raw one. Supercompression is
// dropped; apply Deflate afterwards to restore it.
func (t *Texture) Transcode(target TranscodeTarget, opts ...TranscodeOption) error {
	if err := CanTranscode(t.codec, target); err != nil {
		return err
	}
	cfg := newTranscodeConfig(opts)
	if err := cfg.block.Validate(); err != nil {
		return err
	}

	dstFormat, _ := target.format()
	if t.dfd.Transfer == TransferSRGB {
		if srgb, ok := dstFormat.SRGBVariant(); ok {
			dstFormat = srgb
		}
	}
	info, _ := lookupFormat(dstFormat)

	dec, err := newUniversalDecoder(t)
	if err != nil {
		return err
	}
	dst, err := newLayout(info.geom, t.width, t.height, t.depth, t.levels, t.layers, t.faces, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSizeOverflow, err)
	}

	var conv pixelConverter
	if target.uncompressed() {
		if conv, err = converterFor(dstFormat); err != nil {
			return err
		}
	}

	out := make([]byte, dst.DataSize())
	err = forEach(len(dec.refs), cfg.workers, func(i int) error {
		ref := dec.refs[i]
		var payload []byte
		var err error

		if t.codec == CodecETC1S && target == TargetETCRGB {
			if payload, err = dec.etc1(i); err != nil {
				return err
			}
		} else {
			img, err := dec.decode(i)
			if err != nil {
				return err
			}
			if target.twoChannel() {
				img = basis.FromUniversal(img, t.channels)
			}
			if payload, err = transcodeImage(img, dstFormat, conv, cfg.block); err != nil {
				return fmt.Errorf("level %d layer %d face/slice %d: %w", ref.level, ref.layer, ref.faceSlice, err)
			}
		}

		size := dst.ImageSize(ref.level)
		if len(payload) != size {
			return fmt.Errorf("%w: level %d layer %d face/slice %d: %d bytes, expected %d",
				ErrEncode, ref.level, ref.layer, ref.faceSlice, len(payload), size)
		}
		off, _ := dst.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		copy(out[off:off+size], payload)
		return nil
	})
	if err != nil {
		return err
	}

	dfd, err := NewFormatDescriptor(dstFormat)
	if err != nil {
		return err
	}
	dfd.Primaries = t.dfd.Primaries

	from := t.codec
	if t.super.Generic() {
		t.meta.dropDeflateRecord()
	}
	t.format = dstFormat
	t.typeSize = info.typeSize
	t.geom = info.geom
	t.dfd = dfd
	t.codec = CodecNone
	t.channels = dstFormat.ChannelCount()
	t.super = Supercompression{Scheme: SchemeNone}
	t.data = out
	t.packed = nil
	t.meta.appendScParams("--transcode " + target.String())

	stage := StageBlockEncoded
	if target.uncompressed() {
		stage = StageRaw
	}
	t.advance(stage)

	cfg.logger.Debug("transcoded", "from", from, "to", dstFormat.Name(), "images", len(dec.refs), "stage", stage)

	return nil
}

// transcodeImage encodes one decoded image to the target format.
func transcodeImage(img *image.NRGBA, f VkFormat, conv pixelConverter, p BlockParams) ([]byte, error) {
	if conv != nil {
		return conv.Convert(img)
	}

	return encodeBlockImage(img, f, p)
}
