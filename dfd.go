// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ColorModel is the KDF colour model of a descriptor.
type ColorModel uint8

// Colour models used by this package.
const (
	ModelUnspecified ColorModel = 0
	ModelRGBSDA      ColorModel = 1
	ModelBC1A        ColorModel = 128
	ModelBC2         ColorModel = 129
	ModelBC3         ColorModel = 130
	ModelBC4         ColorModel = 131
	ModelBC5         ColorModel = 132
	ModelBC6H        ColorModel = 133
	ModelBC7         ColorModel = 134
	ModelETC1        ColorModel = 160
	ModelETC2        ColorModel = 161
	ModelASTC        ColorModel = 162
	ModelETC1S       ColorModel = 163
	ModelUASTC       ColorModel = 166
)

var modelNames = map[ColorModel]string{
	ModelUnspecified: "unspecified",
	ModelRGBSDA:      "rgbsda",
	ModelBC1A:        "bc1a",
	ModelBC2:         "bc2",
	ModelBC3:         "bc3",
	ModelBC4:         "bc4",
	ModelBC5:         "bc5",
	ModelBC6H:        "bc6h",
	ModelBC7:         "bc7",
	ModelETC1:        "etc1",
	ModelETC2:        "etc2",
	ModelASTC:        "astc",
	ModelETC1S:       "etc1s",
	ModelUASTC:       "uastc",
}

func (m ColorModel) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}

	return fmt.Sprintf("model(%d)", uint8(m))
}

// Primaries are the colour primaries of a descriptor.
type Primaries uint8

// Colour primaries.
const (
	PrimariesUnspecified Primaries = 0
	PrimariesBT709       Primaries = 1
	PrimariesBT601EBU    Primaries = 2
	PrimariesBT601SMPTE  Primaries = 3
	PrimariesBT2020      Primaries = 4
	PrimariesCIEXYZ      Primaries = 5
	PrimariesACES        Primaries = 6
	PrimariesACESCC      Primaries = 7
	PrimariesNTSC1953    Primaries = 8
	PrimariesPAL525      Primaries = 9
	PrimariesDisplayP3   Primaries = 10
	PrimariesAdobeRGB    Primaries = 11
)

var primariesNames = map[Primaries]string{
	PrimariesUnspecified: "unspecified",
	PrimariesBT709:       "bt709",
	PrimariesBT601EBU:    "bt601-ebu",
	PrimariesBT601SMPTE:  "bt601-smpte",
	PrimariesBT2020:      "bt2020",
	PrimariesCIEXYZ:      "ciexyz",
	PrimariesACES:        "aces",
	PrimariesACESCC:      "acescc",
	PrimariesNTSC1953:    "ntsc1953",
	PrimariesPAL525:      "pal525",
	PrimariesDisplayP3:   "displayp3",
	PrimariesAdobeRGB:    "adobergb",
}

// String returns the primaries name used on the command line.
func (p Primaries) String() string {
	if name, ok := primariesNames[p]; ok {
		return name
	}

	return fmt.Sprintf("primaries(%d)", uint8(p))
}

// ParsePrimaries resolves a primaries name. "srgb" is accepted for bt709.
func ParsePrimaries(name string) (Primaries, error) {
	if name == "srgb" {
		return PrimariesBT709, nil
	}
	for p, n := range primariesNames {
		if n == name {
			return p, nil
		}
	}

	return PrimariesUnspecified, fmt.Errorf("%w: unknown primaries %q", ErrInvalidParameter, name)
}

// TransferFunction is the transfer function of a descriptor.
type TransferFunction uint8

// Transfer functions.
const (
	TransferUnspecified TransferFunction = 0
	TransferLinear      TransferFunction = 1
	TransferSRGB        TransferFunction = 2
	TransferITU         TransferFunction = 3
	TransferNTSC        TransferFunction = 4
	TransferSLog        TransferFunction = 5
	TransferSLog2       TransferFunction = 6
	TransferBT1886      TransferFunction = 7
	TransferHLGOETF     TransferFunction = 8
	TransferHLGEOTF     TransferFunction = 9
	TransferPQEOTF      TransferFunction = 10
	TransferPQOETF      TransferFunction = 11
	TransferDCIP3       TransferFunction = 12
	TransferPALOETF     TransferFunction = 13
	TransferPAL625EOTF  TransferFunction = 14
	TransferST240       TransferFunction = 15
	TransferACESCC      TransferFunction = 16
	TransferACESCCT     TransferFunction = 17
	TransferAdobeRGB    TransferFunction = 18
)

var transferNames = map[TransferFunction]string{
	TransferUnspecified: "unspecified",
	TransferLinear:      "linear",
	TransferSRGB:        "srgb",
	TransferITU:         "itu",
	TransferNTSC:        "ntsc",
	TransferSLog:        "slog",
	TransferSLog2:       "slog2",
	TransferBT1886:      "bt1886",
	TransferHLGOETF:     "hlg_oetf",
	TransferHLGEOTF:     "hlg_eotf",
	TransferPQEOTF:      "pq_eotf",
	TransferPQOETF:      "pq_oetf",
	TransferDCIP3:       "dcip3",
	TransferPALOETF:     "pal_oetf",
	TransferPAL625EOTF:  "pal625_eotf",
	TransferST240:       "st240",
	TransferACESCC:      "acescc",
	TransferACESCCT:     "acescct",
	TransferAdobeRGB:    "adobergb",
}

// String returns the transfer function name used on the command line.
func (t TransferFunction) String() string {
	if name, ok := transferNames[t]; ok {
		return name
	}

	return fmt.Sprintf("transfer(%d)", uint8(t))
}

// ParseTransfer resolves a transfer function name.
func ParseTransfer(name string) (TransferFunction, error) {
	for t, n := range transferNames {
		if n == name {
			return t, nil
		}
	}

	return TransferUnspecified, fmt.Errorf("%w: unknown transfer function %q", ErrInvalidParameter, name)
}

// Sample qualifier bits stored in the top of the channel type byte.
const (
	QualifierLinear   uint8 = 0x10
	QualifierExponent uint8 = 0x20
	QualifierSigned   uint8 = 0x40
	QualifierFloat    uint8 = 0x80
)

// Universal codec channel ids.
const (
	etc1sChannelRGB  uint8 = 0
	etc1sChannelRRR  uint8 = 3
	etc1sChannelGGG  uint8 = 4
	etc1sChannelAAA  uint8 = 15
	uastcChannelRGB  uint8 = 0
	uastcChannelRGBA uint8 = 3
	uastcChannelRRR  uint8 = 4
	uastcChannelRRRG uint8 = 5
	uastcChannelRG   uint8 = 6
)

const (
	dfdVendorKhronos     = 0
	dfdDescriptorBasic   = 0
	dfdVersion           = 2
	dfdBasicHeaderBytes  = 24
	dfdSampleBytes       = 16
	dfdFlagPremultiplied = 1
)

// Sample is one sample of a KDF basic descriptor block.
type Sample struct {
	BitOffset  uint16
	BitLength  uint8 // actual length, stored minus one
	Channel    uint8 // channel id in the low nibble
	Qualifiers uint8 // QualifierLinear, QualifierExponent, QualifierSigned, QualifierFloat
	Position   [4]uint8
	Lower      uint32
	Upper      uint32
}

// FormatDescriptor is the data format descriptor embedded in a texture.
type FormatDescriptor struct {
	Model         ColorModel
	Primaries     Primaries
	Transfer      TransferFunction
	Flags         uint8
	TexelBlockDim [4]uint8 // block dimensions, stored minus one
	BytesPlane    [8]uint8
	Samples       []Sample
}

// NewFormatDescriptor builds the descriptor for an uncompressed or block format.
func NewFormatDescriptor(f VkFormat) (FormatDescriptor, error) {
	info, ok := lookupFormat(f)
	if !ok {
		return FormatDescriptor{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	d := FormatDescriptor{
		Model:     info.model,
		Primaries: PrimariesBT709,
		Transfer:  TransferLinear,
	}
	if info.srgb {
		d.Transfer = TransferSRGB
	}
	d.TexelBlockDim = [4]uint8{uint8(info.geom.W - 1), uint8(info.geom.H - 1), uint8(info.geom.D - 1), 0}
	// #nosec G115 -- block bytes are at most 16.
	d.BytesPlane[0] = uint8(info.geom.Bytes)

	if info.family != FamilyUncompressed {
		for _, bs := range info.blocks {
			d.Samples = append(d.Samples, Sample{
				BitOffset:  uint16(bs.offset),
				BitLength:  uint8(bs.bits),
				Channel:    bs.ch,
				Qualifiers: qualifiersFor(info.class),
				Lower:      lowerBound(info.class, bs.bits),
				Upper:      upperBound(info.class, bs.bits),
			})
		}
		return d, nil
	}

	offset := 0
	for _, c := range info.comps {
		q := qualifiersFor(info.class)
		if info.srgb && c.ch == chAlpha {
			q |= QualifierLinear
		}
		d.Samples = append(d.Samples, Sample{
			BitOffset:  uint16(offset),
			BitLength:  uint8(c.bits),
			Channel:    c.ch,
			Qualifiers: q,
			Lower:      lowerBound(info.class, c.bits),
			Upper:      upperBound(info.class, c.bits),
		})
		offset += c.bits
	}

	if info.shared {
		// Shared exponent: each mantissa is paired with the 5-bit exponent.
		mantissas := d.Samples
		d.Samples = nil
		for _, m := range mantissas {
			m.Upper = 8448
			d.Samples = append(d.Samples, m, Sample{
				BitOffset:  27,
				BitLength:  5,
				Channel:    m.Channel,
				Qualifiers: QualifierExponent,
				Upper:      15,
			})
		}
	}

	return d, nil
}

// universalDescriptor builds the descriptor for a universal payload.
func universalDescriptor(codec UniversalCodec, channels int, primaries Primaries, transfer TransferFunction) FormatDescriptor {
	d := FormatDescriptor{
		Primaries:     primaries,
		Transfer:      transfer,
		TexelBlockDim: [4]uint8{3, 3, 0, 0},
	}
	sample := func(ch uint8, offset, bits int) Sample {
		return Sample{
			BitOffset: uint16(offset),
			BitLength: uint8(bits),
			Channel:   ch,
			Upper:     math.MaxUint32,
		}
	}

	if codec == CodecETC1S {
		d.Model = ModelETC1S
		switch channels {
		case 1:
			d.Samples = []Sample{sample(etc1sChannelRRR, 0, 64)}
		case 2:
			d.Samples = []Sample{sample(etc1sChannelRRR, 0, 64), sample(etc1sChannelGGG, 64, 64)}
		case 3:
			d.Samples = []Sample{sample(etc1sChannelRGB, 0, 64)}
		default:
			d.Samples = []Sample{sample(etc1sChannelRGB, 0, 64), sample(etc1sChannelAAA, 64, 64)}
		}
		return d
	}

	d.Model = ModelUASTC
	d.BytesPlane[0] = 16
	ch := uastcChannelRGBA
	switch channels {
	case 1:
		ch = uastcChannelRRR
	case 2:
		ch = uastcChannelRRRG
	case 3:
		ch = uastcChannelRGB
	}
	d.Samples = []Sample{sample(ch, 0, 128)}

	return d
}

func qualifiersFor(class NumericClass) uint8 {
	switch class {
	case ClassSnorm, ClassSint:
		return QualifierSigned
	case ClassSfloat:
		return QualifierSigned | QualifierFloat
	case ClassUfloat:
		return QualifierFloat
	default:
		return 0
	}
}

func upperBound(class NumericClass, bits int) uint32 {
	switch class {
	case ClassSnorm:
		if bits >= 32 {
			return 0x7FFFFFFF
		}
		return uint32(1)<<(bits-1) - 1
	case ClassUint, ClassSint:
		return 1
	case ClassSfloat, ClassUfloat:
		return math.Float32bits(1)
	default:
		if bits >= 32 {
			return math.MaxUint32
		}
		return uint32(1)<<bits - 1
	}
}

func lowerBound(class NumericClass, bits int) uint32 {
	switch class {
	case ClassSnorm:
		return ^upperBound(class, bits) + 1
	case ClassSint:
		return math.MaxUint32
	case ClassSfloat:
		return math.Float32bits(-1)
	default:
		return 0
	}
}

// ChannelCount returns the number of distinct channels described.
func (d FormatDescriptor) ChannelCount() int {
	switch d.Model {
	case ModelETC1S:
		if len(d.Samples) == 2 {
			if d.Samples[0].Channel == etc1sChannelRRR {
				return 2
			}
			return 4
		}
		if len(d.Samples) == 1 && d.Samples[0].Channel == etc1sChannelRRR {
			return 1
		}
		return 3
	case ModelUASTC:
		if len(d.Samples) == 0 {
			return 0
		}
		switch d.Samples[0].Channel {
		case uastcChannelRRR:
			return 1
		case uastcChannelRRRG, uastcChannelRG:
			return 2
		case uastcChannelRGB:
			return 3
		default:
			return 4
		}
	}

	seen := map[uint8]bool{}
	for _, s := range d.Samples {
		if s.Qualifiers&QualifierExponent != 0 {
			continue
		}
		seen[s.Channel] = true
	}

	return len(seen)
}

// BitLength returns the bit length of the first sample of channel ch, or 0.
func (d FormatDescriptor) BitLength(ch uint8) int {
	for _, s := range d.Samples {
		if s.Channel == ch && s.Qualifiers&QualifierExponent == 0 {
			return int(s.BitLength)
		}
	}

	return 0
}

// Class derives the numeric class from the first sample.
func (d FormatDescriptor) Class() NumericClass {
	if len(d.Samples) == 0 {
		return ClassUnorm
	}
	s := d.Samples[0]
	switch {
	case s.Qualifiers&QualifierFloat != 0 && s.Qualifiers&QualifierSigned != 0:
		return ClassSfloat
	case s.Qualifiers&QualifierFloat != 0:
		return ClassUfloat
	case s.Upper == 1 && s.Qualifiers&QualifierSigned != 0:
		return ClassSint
	case s.Upper == 1:
		return ClassUint
	case s.Qualifiers&QualifierSigned != 0:
		return ClassSnorm
	default:
		return ClassUnorm
	}
}

// IsUniversal reports whether the descriptor describes a universal payload.
func (d FormatDescriptor) IsUniversal() bool {
	return d.Model == ModelETC1S || d.Model == ModelUASTC
}

// Premultiplied reports whether alpha is premultiplied.
func (d FormatDescriptor) Premultiplied() bool {
	return d.Flags&dfdFlagPremultiplied != 0
}

// blockSize returns the byte size of the basic block, excluding totalSize.
func (d FormatDescriptor) blockSize() int {
	return dfdBasicHeaderBytes + dfdSampleBytes*len(d.Samples)
}

// MarshalBinary encodes the descriptor including the leading totalSize word.
func (d FormatDescriptor) MarshalBinary() ([]byte, error) {
	if len(d.Samples) == 0 || len(d.Samples) > 255 {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalidDescriptor, len(d.Samples))
	}
	size := d.blockSize()
	buf := make([]byte, 4+size)
	le := binary.LittleEndian

	le.PutUint32(buf[0:4], uint32(4+size))
	b := buf[4:]
	le.PutUint32(b[0:4], dfdVendorKhronos|dfdDescriptorBasic<<17)
	le.PutUint16(b[4:6], dfdVersion)
	le.PutUint16(b[6:8], uint16(size))
	b[8] = byte(d.Model)
	b[9] = byte(d.Primaries)
	b[10] = byte(d.Transfer)
	b[11] = d.Flags
	copy(b[12:16], d.TexelBlockDim[:])
	copy(b[16:24], d.BytesPlane[:])

	for i, s := range d.Samples {
		if s.BitLength == 0 {
			return nil, fmt.Errorf("%w: sample %d has zero length", ErrInvalidDescriptor, i)
		}
		o := b[dfdBasicHeaderBytes+i*dfdSampleBytes:]
		le.PutUint16(o[0:2], s.BitOffset)
		o[2] = s.BitLength - 1
		o[3] = s.Channel&0x0F | s.Qualifiers&0xF0
		copy(o[4:8], s.Position[:])
		le.PutUint32(o[8:12], s.Lower)
		le.PutUint32(o[12:16], s.Upper)
	}

	return buf, nil
}

// parseFormatDescriptor decodes a descriptor including its totalSize word.
func parseFormatDescriptor(data []byte) (FormatDescriptor, error) {
	le := binary.LittleEndian
	if len(data) < 4+dfdBasicHeaderBytes {
		return FormatDescriptor{}, fmt.Errorf("%w: %d bytes", ErrInvalidDescriptor, len(data))
	}
	total := int(le.Uint32(data[0:4]))
	if total != len(data) {
		return FormatDescriptor{}, fmt.Errorf("%w: totalSize %d, section %d", ErrInvalidDescriptor, total, len(data))
	}

	b := data[4:]
	vendorType := le.Uint32(b[0:4])
	if vendorType&0x1FFFF != dfdVendorKhronos || vendorType>>17 != dfdDescriptorBasic {
		return FormatDescriptor{}, fmt.Errorf("%w: first block is not a Khronos basic block", ErrInvalidDescriptor)
	}
	blockSize := int(le.Uint16(b[6:8]))
	if blockSize < dfdBasicHeaderBytes || blockSize > len(b) || (blockSize-dfdBasicHeaderBytes)%dfdSampleBytes != 0 {
		return FormatDescriptor{}, fmt.Errorf("%w: block size %d", ErrInvalidDescriptor, blockSize)
	}

	d := FormatDescriptor{
		Model:     ColorModel(b[8]),
		Primaries: Primaries(b[9]),
		Transfer:  TransferFunction(b[10]),
		Flags:     b[11],
	}
	copy(d.TexelBlockDim[:], b[12:16])
	copy(d.BytesPlane[:], b[16:24])

	n := (blockSize - dfdBasicHeaderBytes) / dfdSampleBytes
	for i := 0; i < n; i++ {
		o := b[dfdBasicHeaderBytes+i*dfdSampleBytes:]
		d.Samples = append(d.Samples, Sample{
			BitOffset:  le.Uint16(o[0:2]),
			BitLength:  o[2] + 1,
			Channel:    o[3] & 0x0F,
			Qualifiers: o[3] & 0xF0,
			Position:   [4]uint8{o[4], o[5], o[6], o[7]},
			Lower:      le.Uint32(o[8:12]),
			Upper:      le.Uint32(o[12:16]),
		})
	}
	if len(d.Samples) == 0 {
		return FormatDescriptor{}, fmt.Errorf("%w: no samples", ErrInvalidDescriptor)
	}

	return d, nil
}

// checkFormat verifies the descriptor agrees with the header format.
func (d FormatDescriptor) checkFormat(f VkFormat) error {
	if f == FormatUndefined {
		if !d.IsUniversal() {
			return fmt.Errorf("%w: undefined format with colour model %d", ErrInvalidDescriptor, d.Model)
		}
		return nil
	}

	want, err := NewFormatDescriptor(f)
	if err != nil {
		return err
	}
	if d.Model != want.Model || d.TexelBlockDim != want.TexelBlockDim || d.BytesPlane[0] != want.BytesPlane[0] {
		return fmt.Errorf("%w: descriptor does not describe %s", ErrInvalidDescriptor, f)
	}
	srgb := d.Transfer == TransferSRGB
	if f.IsSRGB() && !srgb {
		return fmt.Errorf("%w: %s with transfer %s", ErrIncompatibleTransfer, f, d.Transfer)
	}
	if _, ok := f.SRGBVariant(); ok && srgb {
		return fmt.Errorf("%w: %s with transfer %s", ErrIncompatibleTransfer, f, d.Transfer)
	}

	return nil
}
