// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"sort"
	"strings"

	"github.com/woozymasta/bcn"
)

// VkFormat is a Vulkan format enumerant as stored in the KTX2 header.
type VkFormat uint32

// Supported formats. Values match VkFormat.
const (
	FormatUndefined           VkFormat = 0
	FormatR4G4B4A4UnormPack16 VkFormat = 2
	FormatR5G6B5UnormPack16   VkFormat = 4

	FormatR8Unorm VkFormat = 9
	FormatR8Snorm VkFormat = 10
	FormatR8Uint  VkFormat = 13
	FormatR8Sint  VkFormat = 14
	FormatR8SRGB  VkFormat = 15

	FormatR8G8Unorm VkFormat = 16
	FormatR8G8Snorm VkFormat = 17
	FormatR8G8Uint  VkFormat = 20
	FormatR8G8Sint  VkFormat = 21
	FormatR8G8SRGB  VkFormat = 22

	FormatR8G8B8Unorm VkFormat = 23
	FormatR8G8B8Snorm VkFormat = 24
	FormatR8G8B8Uint  VkFormat = 27
	FormatR8G8B8Sint  VkFormat = 28
	FormatR8G8B8SRGB  VkFormat = 29
	FormatB8G8R8Unorm VkFormat = 30
	FormatB8G8R8SRGB  VkFormat = 36

	FormatR8G8B8A8Unorm VkFormat = 37
	FormatR8G8B8A8Snorm VkFormat = 38
	FormatR8G8B8A8Uint  VkFormat = 41
	FormatR8G8B8A8Sint  VkFormat = 42
	FormatR8G8B8A8SRGB  VkFormat = 43
	FormatB8G8R8A8Unorm VkFormat = 44
	FormatB8G8R8A8SRGB  VkFormat = 50

	FormatA2B10G10R10UnormPack32 VkFormat = 64

	FormatR16Unorm  VkFormat = 70
	FormatR16Snorm  VkFormat = 71
	FormatR16Uint   VkFormat = 74
	FormatR16Sint   VkFormat = 75
	FormatR16Sfloat VkFormat = 76

	FormatR16G16Unorm  VkFormat = 77
	FormatR16G16Snorm  VkFormat = 78
	FormatR16G16Uint   VkFormat = 81
	FormatR16G16Sint   VkFormat = 82
	FormatR16G16Sfloat VkFormat = 83

	FormatR16G16B16Unorm  VkFormat = 84
	FormatR16G16B16Snorm  VkFormat = 85
	FormatR16G16B16Uint   VkFormat = 88
	FormatR16G16B16Sint   VkFormat = 89
	FormatR16G16B16Sfloat VkFormat = 90

	FormatR16G16B16A16Unorm  VkFormat = 91
	FormatR16G16B16A16Snorm  VkFormat = 92
	FormatR16G16B16A16Uint   VkFormat = 95
	FormatR16G16B16A16Sint   VkFormat = 96
	FormatR16G16B16A16Sfloat VkFormat = 97

	FormatR32Uint            VkFormat = 98
	FormatR32Sint            VkFormat = 99
	FormatR32Sfloat          VkFormat = 100
	FormatR32G32Uint         VkFormat = 101
	FormatR32G32Sint         VkFormat = 102
	FormatR32G32Sfloat       VkFormat = 103
	FormatR32G32B32Uint      VkFormat = 104
	FormatR32G32B32Sint      VkFormat = 105
	FormatR32G32B32Sfloat    VkFormat = 106
	FormatR32G32B32A32Uint   VkFormat = 107
	FormatR32G32B32A32Sint   VkFormat = 108
	FormatR32G32B32A32Sfloat VkFormat = 109

	FormatB10G11R11UfloatPack32 VkFormat = 122
	FormatE5B9G9R9UfloatPack32  VkFormat = 123

	FormatBC1RGBUnorm  VkFormat = 131
	FormatBC1RGBSRGB   VkFormat = 132
	FormatBC1RGBAUnorm VkFormat = 133
	FormatBC1RGBASRGB  VkFormat = 134
	FormatBC2Unorm     VkFormat = 135
	FormatBC2SRGB      VkFormat = 136
	FormatBC3Unorm     VkFormat = 137
	FormatBC3SRGB      VkFormat = 138
	FormatBC4Unorm     VkFormat = 139
	FormatBC4Snorm     VkFormat = 140
	FormatBC5Unorm     VkFormat = 141
	FormatBC5Snorm     VkFormat = 142
	FormatBC6HUfloat   VkFormat = 143
	FormatBC6HSfloat   VkFormat = 144
	FormatBC7Unorm     VkFormat = 145
	FormatBC7SRGB      VkFormat = 146

	FormatETC2R8G8B8Unorm   VkFormat = 147
	FormatETC2R8G8B8SRGB    VkFormat = 148
	FormatETC2R8G8B8A1Unorm VkFormat = 149
	FormatETC2R8G8B8A1SRGB  VkFormat = 150
	FormatETC2R8G8B8A8Unorm VkFormat = 151
	FormatETC2R8G8B8A8SRGB  VkFormat = 152
	FormatEACR11Unorm       VkFormat = 153
	FormatEACR11Snorm       VkFormat = 154
	FormatEACR11G11Unorm    VkFormat = 155
	FormatEACR11G11Snorm    VkFormat = 156

	FormatASTC4x4Unorm   VkFormat = 157
	FormatASTC4x4SRGB    VkFormat = 158
	FormatASTC5x4Unorm   VkFormat = 159
	FormatASTC5x4SRGB    VkFormat = 160
	FormatASTC5x5Unorm   VkFormat = 161
	FormatASTC5x5SRGB    VkFormat = 162
	FormatASTC6x5Unorm   VkFormat = 163
	FormatASTC6x5SRGB    VkFormat = 164
	FormatASTC6x6Unorm   VkFormat = 165
	FormatASTC6x6SRGB    VkFormat = 166
	FormatASTC8x5Unorm   VkFormat = 167
	FormatASTC8x5SRGB    VkFormat = 168
	FormatASTC8x6Unorm   VkFormat = 169
	FormatASTC8x6SRGB    VkFormat = 170
	FormatASTC8x8Unorm   VkFormat = 171
	FormatASTC8x8SRGB    VkFormat = 172
	FormatASTC10x5Unorm  VkFormat = 173
	FormatASTC10x5SRGB   VkFormat = 174
	FormatASTC10x6Unorm  VkFormat = 175
	FormatASTC10x6SRGB   VkFormat = 176
	FormatASTC10x8Unorm  VkFormat = 177
	FormatASTC10x8SRGB   VkFormat = 178
	FormatASTC10x10Unorm VkFormat = 179
	FormatASTC10x10SRGB  VkFormat = 180
	FormatASTC12x10Unorm VkFormat = 181
	FormatASTC12x10SRGB  VkFormat = 182
	FormatASTC12x12Unorm VkFormat = 183
	FormatASTC12x12SRGB  VkFormat = 184
)

// NumericClass is the numeric interpretation of a format's channels.
type NumericClass uint8

const (
	ClassUnorm NumericClass = iota
	ClassSnorm
	ClassUint
	ClassSint
	ClassSfloat
	ClassUfloat
)

// Family groups formats by how their texels are addressed.
type Family uint8

const (
	FamilyUncompressed Family = iota
	FamilyBC
	FamilyETC
	FamilyASTC
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyUncompressed:
		return "uncompressed"
	case FamilyBC:
		return "bc"
	case FamilyETC:
		return "etc"
	case FamilyASTC:
		return "astc"
	default:
		return "unknown"
	}
}

// RGBSDA channel ids.
const (
	chRed   uint8 = 0
	chGreen uint8 = 1
	chBlue  uint8 = 2
	chAlpha uint8 = 15
)

// component is one channel of an uncompressed texel, least significant first.
type component struct {
	ch   uint8
	bits int
}

// blockSample is one DFD sample of a compressed block.
type blockSample struct {
	ch     uint8
	offset int
	bits   int
}

type formatInfo struct {
	name     string
	class    NumericClass
	srgb     bool
	family   Family
	typeSize int
	// comps lists uncompressed channels from the least significant bit.
	comps  []component
	packed bool
	shared bool
	geom   blockGeometry
	model  ColorModel
	blocks []blockSample
	bcn    bcn.Format
}

var formatTable = map[VkFormat]formatInfo{}

// byName maps upper-case names without the VK_FORMAT_ prefix.
var byName = map[string]VkFormat{}

func plain(f VkFormat, name string, class NumericClass, srgb bool, bits int, chs ...uint8) {
	comps := make([]component, len(chs))
	for i, ch := range chs {
		comps[i] = component{ch: ch, bits: bits}
	}
	register(f, formatInfo{
		name:     name,
		class:    class,
		srgb:     srgb,
		family:   FamilyUncompressed,
		typeSize: bits / 8,
		comps:    comps,
		geom:     blockGeometry{W: 1, H: 1, D: 1, Bytes: len(chs) * bits / 8},
		model:    ModelRGBSDA,
		bcn:      bcn.FormatUnknown,
	})
}

func packedFormat(f VkFormat, name string, class NumericClass, typeSize int, shared bool, comps ...component) {
	register(f, formatInfo{
		name:     name,
		class:    class,
		family:   FamilyUncompressed,
		typeSize: typeSize,
		comps:    comps,
		packed:   true,
		shared:   shared,
		geom:     blockGeometry{W: 1, H: 1, D: 1, Bytes: typeSize},
		model:    ModelRGBSDA,
		bcn:      bcn.FormatUnknown,
	})
}

func compressed(f VkFormat, name string, family Family, model ColorModel, class NumericClass, srgb bool,
	bw, bh, bytes int, enc bcn.Format, samples ...blockSample) {
	register(f, formatInfo{
		name:     name,
		class:    class,
		srgb:     srgb,
		family:   family,
		typeSize: 1,
		geom:     blockGeometry{W: bw, H: bh, D: 1, Bytes: bytes},
		model:    model,
		blocks:   samples,
		bcn:      enc,
	})
}

func register(f VkFormat, info formatInfo) {
	formatTable[f] = info
	byName[strings.ToUpper(info.name)] = f
}

func init() {
	c := func(ch uint8, bits int) component { return component{ch: ch, bits: bits} }

	packedFormat(FormatR4G4B4A4UnormPack16, "R4G4B4A4_UNORM_PACK16", ClassUnorm, 2, false,
		c(chAlpha, 4), c(chBlue, 4), c(chGreen, 4), c(chRed, 4))
	packedFormat(FormatR5G6B5UnormPack16, "R5G6B5_UNORM_PACK16", ClassUnorm, 2, false,
		c(chBlue, 5), c(chGreen, 6), c(chRed, 5))
	packedFormat(FormatA2B10G10R10UnormPack32, "A2B10G10R10_UNORM_PACK32", ClassUnorm, 4, false,
		c(chRed, 10), c(chGreen, 10), c(chBlue, 10), c(chAlpha, 2))
	packedFormat(FormatB10G11R11UfloatPack32, "B10G11R11_UFLOAT_PACK32", ClassUfloat, 4, false,
		c(chRed, 11), c(chGreen, 11), c(chBlue, 10))
	packedFormat(FormatE5B9G9R9UfloatPack32, "E5B9G9R9_UFLOAT_PACK32", ClassUfloat, 4, true,
		c(chRed, 9), c(chGreen, 9), c(chBlue, 9))

	r, rg, rgb, rgba := []uint8{chRed}, []uint8{chRed, chGreen},
		[]uint8{chRed, chGreen, chBlue}, []uint8{chRed, chGreen, chBlue, chAlpha}
	bgr, bgra := []uint8{chBlue, chGreen, chRed}, []uint8{chBlue, chGreen, chRed, chAlpha}

	plain(FormatR8Unorm, "R8_UNORM", ClassUnorm, false, 8, r...)
	plain(FormatR8Snorm, "R8_SNORM", ClassSnorm, false, 8, r...)
	plain(FormatR8Uint, "R8_UINT", ClassUint, false, 8, r...)
	plain(FormatR8Sint, "R8_SINT", ClassSint, false, 8, r...)
	plain(FormatR8SRGB, "R8_SRGB", ClassUnorm, true, 8, r...)
	plain(FormatR8G8Unorm, "R8G8_UNORM", ClassUnorm, false, 8, rg...)
	plain(FormatR8G8Snorm, "R8G8_SNORM", ClassSnorm, false, 8, rg...)
	plain(FormatR8G8Uint, "R8G8_UINT", ClassUint, false, 8, rg...)
	plain(FormatR8G8Sint, "R8G8_SINT", ClassSint, false, 8, rg...)
	plain(FormatR8G8SRGB, "R8G8_SRGB", ClassUnorm, true, 8, rg...)
	plain(FormatR8G8B8Unorm, "R8G8B8_UNORM", ClassUnorm, false, 8, rgb...)
	plain(FormatR8G8B8Snorm, "R8G8B8_SNORM", ClassSnorm, false, 8, rgb...)
	plain(FormatR8G8B8Uint, "R8G8B8_UINT", ClassUint, false, 8, rgb...)
	plain(FormatR8G8B8Sint, "R8G8B8_SINT", ClassSint, false, 8, rgb...)
	plain(FormatR8G8B8SRGB, "R8G8B8_SRGB", ClassUnorm, true, 8, rgb...)
	plain(FormatB8G8R8Unorm, "B8G8R8_UNORM", ClassUnorm, false, 8, bgr...)
	plain(FormatB8G8R8SRGB, "B8G8R8_SRGB", ClassUnorm, true, 8, bgr...)
	plain(FormatR8G8B8A8Unorm, "R8G8B8A8_UNORM", ClassUnorm, false, 8, rgba...)
	plain(FormatR8G8B8A8Snorm, "R8G8B8A8_SNORM", ClassSnorm, false, 8, rgba...)
	plain(FormatR8G8B8A8Uint, "R8G8B8A8_UINT", ClassUint, false, 8, rgba...)
	plain(FormatR8G8B8A8Sint, "R8G8B8A8_SINT", ClassSint, false, 8, rgba...)
	plain(FormatR8G8B8A8SRGB, "R8G8B8A8_SRGB", ClassUnorm, true, 8, rgba...)
	plain(FormatB8G8R8A8Unorm, "B8G8R8A8_UNORM", ClassUnorm, false, 8, bgra...)
	plain(FormatB8G8R8A8SRGB, "B8G8R8A8_SRGB", ClassUnorm, true, 8, bgra...)

	for _, set := range []struct {
		chs  []uint8
		base string
		fs   [5]VkFormat
	}{
		{r, "R16", [5]VkFormat{FormatR16Unorm, FormatR16Snorm, FormatR16Uint, FormatR16Sint, FormatR16Sfloat}},
		{rg, "R16G16", [5]VkFormat{FormatR16G16Unorm, FormatR16G16Snorm, FormatR16G16Uint, FormatR16G16Sint, FormatR16G16Sfloat}},
		{rgb, "R16G16B16", [5]VkFormat{FormatR16G16B16Unorm, FormatR16G16B16Snorm, FormatR16G16B16Uint, FormatR16G16B16Sint, FormatR16G16B16Sfloat}},
		{rgba, "R16G16B16A16", [5]VkFormat{FormatR16G16B16A16Unorm, FormatR16G16B16A16Snorm, FormatR16G16B16A16Uint, FormatR16G16B16A16Sint, FormatR16G16B16A16Sfloat}},
	} {
		plain(set.fs[0], set.base+"_UNORM", ClassUnorm, false, 16, set.chs...)
		plain(set.fs[1], set.base+"_SNORM", ClassSnorm, false, 16, set.chs...)
		plain(set.fs[2], set.base+"_UINT", ClassUint, false, 16, set.chs...)
		plain(set.fs[3], set.base+"_SINT", ClassSint, false, 16, set.chs...)
		plain(set.fs[4], set.base+"_SFLOAT", ClassSfloat, false, 16, set.chs...)
	}

	for _, set := range []struct {
		chs  []uint8
		base string
		fs   [3]VkFormat
	}{
		{r, "R32", [3]VkFormat{FormatR32Uint, FormatR32Sint, FormatR32Sfloat}},
		{rg, "R32G32", [3]VkFormat{FormatR32G32Uint, FormatR32G32Sint, FormatR32G32Sfloat}},
		{rgb, "R32G32B32", [3]VkFormat{FormatR32G32B32Uint, FormatR32G32B32Sint, FormatR32G32B32Sfloat}},
		{rgba, "R32G32B32A32", [3]VkFormat{FormatR32G32B32A32Uint, FormatR32G32B32A32Sint, FormatR32G32B32A32Sfloat}},
	} {
		plain(set.fs[0], set.base+"_UINT", ClassUint, false, 32, set.chs...)
		plain(set.fs[1], set.base+"_SINT", ClassSint, false, 32, set.chs...)
		plain(set.fs[2], set.base+"_SFLOAT", ClassSfloat, false, 32, set.chs...)
	}

	s := func(ch uint8, offset, bits int) blockSample { return blockSample{ch: ch, offset: offset, bits: bits} }

	for _, srgb := range []bool{false, true} {
		sfx, class := "_UNORM", ClassUnorm
		pick := func(unorm, srgbFormat VkFormat) VkFormat { return unorm }
		if srgb {
			sfx = "_SRGB"
			pick = func(_, srgbFormat VkFormat) VkFormat { return srgbFormat }
		}
		compressed(pick(FormatBC1RGBUnorm, FormatBC1RGBSRGB), "BC1_RGB"+sfx+"_BLOCK", FamilyBC, ModelBC1A, class, srgb,
			4, 4, 8, bcn.FormatDXT1, s(0, 0, 64))
		compressed(pick(FormatBC1RGBAUnorm, FormatBC1RGBASRGB), "BC1_RGBA"+sfx+"_BLOCK", FamilyBC, ModelBC1A, class, srgb,
			4, 4, 8, bcn.FormatDXT1, s(1, 0, 64))
		compressed(pick(FormatBC2Unorm, FormatBC2SRGB), "BC2"+sfx+"_BLOCK", FamilyBC, ModelBC2, class, srgb,
			4, 4, 16, bcn.FormatDXT3, s(15, 0, 64), s(0, 64, 64))
		compressed(pick(FormatBC3Unorm, FormatBC3SRGB), "BC3"+sfx+"_BLOCK", FamilyBC, ModelBC3, class, srgb,
			4, 4, 16, bcn.FormatDXT5, s(15, 0, 64), s(0, 64, 64))
		compressed(pick(FormatBC7Unorm, FormatBC7SRGB), "BC7"+sfx+"_BLOCK", FamilyBC, ModelBC7, class, srgb,
			4, 4, 16, bcn.FormatUnknown, s(0, 0, 128))
		compressed(pick(FormatETC2R8G8B8Unorm, FormatETC2R8G8B8SRGB), "ETC2_R8G8B8"+sfx+"_BLOCK", FamilyETC, ModelETC2, class, srgb,
			4, 4, 8, bcn.FormatUnknown, s(2, 0, 64))
		compressed(pick(FormatETC2R8G8B8A1Unorm, FormatETC2R8G8B8A1SRGB), "ETC2_R8G8B8A1"+sfx+"_BLOCK", FamilyETC, ModelETC2, class, srgb,
			4, 4, 8, bcn.FormatUnknown, s(2, 0, 64), s(15, 0, 64))
		compressed(pick(FormatETC2R8G8B8A8Unorm, FormatETC2R8G8B8A8SRGB), "ETC2_R8G8B8A8"+sfx+"_BLOCK", FamilyETC, ModelETC2, class, srgb,
			4, 4, 16, bcn.FormatUnknown, s(15, 0, 64), s(2, 64, 64))
	}

	compressed(FormatBC4Unorm, "BC4_UNORM_BLOCK", FamilyBC, ModelBC4, ClassUnorm, false, 4, 4, 8, bcn.FormatBC4, s(0, 0, 64))
	compressed(FormatBC4Snorm, "BC4_SNORM_BLOCK", FamilyBC, ModelBC4, ClassSnorm, false, 4, 4, 8, bcn.FormatUnknown, s(0, 0, 64))
	compressed(FormatBC5Unorm, "BC5_UNORM_BLOCK", FamilyBC, ModelBC5, ClassUnorm, false, 4, 4, 16, bcn.FormatBC5, s(0, 0, 64), s(1, 64, 64))
	compressed(FormatBC5Snorm, "BC5_SNORM_BLOCK", FamilyBC, ModelBC5, ClassSnorm, false, 4, 4, 16, bcn.FormatUnknown, s(0, 0, 64), s(1, 64, 64))
	compressed(FormatBC6HUfloat, "BC6H_UFLOAT_BLOCK", FamilyBC, ModelBC6H, ClassUfloat, false, 4, 4, 16, bcn.FormatUnknown, s(0, 0, 128))
	compressed(FormatBC6HSfloat, "BC6H_SFLOAT_BLOCK", FamilyBC, ModelBC6H, ClassSfloat, false, 4, 4, 16, bcn.FormatUnknown, s(0, 0, 128))
	compressed(FormatEACR11Unorm, "EAC_R11_UNORM_BLOCK", FamilyETC, ModelETC2, ClassUnorm, false, 4, 4, 8, bcn.FormatUnknown, s(0, 0, 64))
	compressed(FormatEACR11Snorm, "EAC_R11_SNORM_BLOCK", FamilyETC, ModelETC2, ClassSnorm, false, 4, 4, 8, bcn.FormatUnknown, s(0, 0, 64))
	compressed(FormatEACR11G11Unorm, "EAC_R11G11_UNORM_BLOCK", FamilyETC, ModelETC2, ClassUnorm, false, 4, 4, 16, bcn.FormatUnknown, s(0, 0, 64), s(1, 64, 64))
	compressed(FormatEACR11G11Snorm, "EAC_R11G11_SNORM_BLOCK", FamilyETC, ModelETC2, ClassSnorm, false, 4, 4, 16, bcn.FormatUnknown, s(0, 0, 64), s(1, 64, 64))

	astc := [][2]int{
		{4, 4}, {5, 4}, {5, 5}, {6, 5}, {6, 6}, {8, 5}, {8, 6}, {8, 8},
		{10, 5}, {10, 6}, {10, 8}, {10, 10}, {12, 10}, {12, 12},
	}
	for i, dim := range astc {
		base := FormatASTC4x4Unorm + VkFormat(2*i)
		name := fmt.Sprintf("ASTC_%dx%d", dim[0], dim[1])
		compressed(base, name+"_UNORM_BLOCK", FamilyASTC, ModelASTC, ClassUnorm, false, dim[0], dim[1], 16, bcn.FormatUnknown, s(0, 0, 128))
		compressed(base+1, name+"_SRGB_BLOCK", FamilyASTC, ModelASTC, ClassUnorm, true, dim[0], dim[1], 16, bcn.FormatUnknown, s(0, 0, 128))
	}
}

// lookupFormat returns the table entry for f.
func lookupFormat(f VkFormat) (formatInfo, bool) {
	info, ok := formatTable[f]
	return info, ok
}

// ParseFormat resolves a format name such as "R8G8B8A8_SRGB" or
// "VK_FORMAT_BC7_UNORM_BLOCK".
func ParseFormat(name string) (VkFormat, error) {
	key := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "VK_FORMAT_")
	if f, ok := byName[key]; ok {
		return f, nil
	}

	return FormatUndefined, fmt.Errorf("%w: unknown format %q", ErrInvalidParameter, name)
}

// FormatNames lists every known format name in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(byName))
	for _, f := range byName {
		names = append(names, f.Name())
	}
	sort.Strings(names)

	return names
}

// Name returns the format name without the VK_FORMAT_ prefix.
func (f VkFormat) Name() string {
	if f == FormatUndefined {
		return "UNDEFINED"
	}
	if info, ok := lookupFormat(f); ok {
		return info.name
	}

	return fmt.Sprintf("UNKNOWN_%d", uint32(f))
}

// String returns the full Vulkan enumerant name.
func (f VkFormat) String() string {
	return "VK_FORMAT_" + f.Name()
}

// Known reports whether f is in the format table.
func (f VkFormat) Known() bool {
	_, ok := lookupFormat(f)
	return ok
}

// IsCompressed reports whether f is a block-compressed format.
func (f VkFormat) IsCompressed() bool {
	info, ok := lookupFormat(f)
	return ok && info.family != FamilyUncompressed
}

// Family returns the format family.
func (f VkFormat) Family() Family {
	info, _ := lookupFormat(f)
	return info.family
}

// IsInteger reports whether f stores unnormalized integers.
func (f VkFormat) IsInteger() bool {
	info, ok := lookupFormat(f)
	return ok && (info.class == ClassUint || info.class == ClassSint)
}

// IsSRGB reports whether f uses the sRGB transfer function.
func (f VkFormat) IsSRGB() bool {
	info, ok := lookupFormat(f)
	return ok && info.srgb
}

// Class returns the numeric class of f.
func (f VkFormat) Class() NumericClass {
	info, _ := lookupFormat(f)
	return info.class
}

// TypeSize returns the KTX2 typeSize for f.
func (f VkFormat) TypeSize() int {
	info, ok := lookupFormat(f)
	if !ok {
		return 1
	}

	return info.typeSize
}

// ChannelCount returns the number of channels of an uncompressed format.
// Compressed formats report the channels their blocks carry.
func (f VkFormat) ChannelCount() int {
	info, ok := lookupFormat(f)
	if !ok {
		return 0
	}
	if info.family == FamilyUncompressed {
		return len(info.comps)
	}

	switch f {
	case FormatBC4Unorm, FormatBC4Snorm, FormatEACR11Unorm, FormatEACR11Snorm:
		return 1
	case FormatBC5Unorm, FormatBC5Snorm, FormatEACR11G11Unorm, FormatEACR11G11Snorm:
		return 2
	case FormatBC1RGBUnorm, FormatBC1RGBSRGB, FormatETC2R8G8B8Unorm, FormatETC2R8G8B8SRGB,
		FormatBC6HUfloat, FormatBC6HSfloat:
		return 3
	default:
		return 4
	}
}

// BlockSize returns the texel block dimensions of f.
func (f VkFormat) BlockSize() (w, h, d int) {
	info, ok := lookupFormat(f)
	if !ok {
		return 1, 1, 1
	}

	return info.geom.W, info.geom.H, info.geom.D
}

// BytesPerBlock returns the byte size of one texel block.
func (f VkFormat) BytesPerBlock() int {
	info, ok := lookupFormat(f)
	if !ok {
		return 0
	}

	return info.geom.Bytes
}

// BitDepth returns the widest channel bit length of an uncompressed format
// and 8 for compressed formats.
func (f VkFormat) BitDepth() int {
	info, ok := lookupFormat(f)
	if !ok {
		return 0
	}
	if info.family != FamilyUncompressed {
		return 8
	}

	depth := 0
	for _, c := range info.comps {
		depth = max(depth, c.bits)
	}

	return depth
}

// SRGBVariant returns the _SRGB sibling of f, if any.
func (f VkFormat) SRGBVariant() (VkFormat, bool) {
	info, ok := lookupFormat(f)
	if !ok || info.srgb || info.class != ClassUnorm {
		return FormatUndefined, false
	}
	sibling, ok := byName[strings.ToUpper(strings.Replace(info.name, "_UNORM", "_SRGB", 1))]

	return sibling, ok
}

// LinearVariant returns the _UNORM sibling of an sRGB format, if any.
func (f VkFormat) LinearVariant() (VkFormat, bool) {
	info, ok := lookupFormat(f)
	if !ok || !info.srgb {
		return FormatUndefined, false
	}
	sibling, ok := byName[strings.ToUpper(strings.Replace(info.name, "_SRGB", "_UNORM", 1))]

	return sibling, ok
}

// bcnFormat returns the bcn codec format for f.
func (f VkFormat) bcnFormat() bcn.Format {
	info, ok := lookupFormat(f)
	if !ok {
		return bcn.FormatUnknown
	}

	return info.bcn
}
