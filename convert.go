// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/x448/float16"
)

// pixelConverter moves texels between decoded images and the packed layout
// of one format.
type pixelConverter interface {
	// RequiredBitDepth is the channel precision the format keeps.
	RequiredBitDepth() int
	// Convert packs img into tightly packed texels.
	Convert(img image.Image) ([]byte, error)
	// ToImage unpacks the texels of a width x height image.
	ToImage(data []byte, width, height int) (image.Image, error)
}

// converterFor returns the conversion strategy of f.
func converterFor(f VkFormat) (pixelConverter, error) {
	info, ok := lookupFormat(f)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no pixel conversion", ErrUnsupportedFormat, f)
	}

	switch {
	case info.family != FamilyUncompressed:
		return blockConverter{format: f}, nil
	case f == FormatB10G11R11UfloatPack32:
		return b10g11r11Converter{}, nil
	case f == FormatE5B9G9R9UfloatPack32:
		return e5b9g9r9Converter{}, nil
	case info.packed:
		return packedConverter{info: info}, nil
	default:
		return channelConverter{info: info}, nil
	}
}

// sourceBitDepth reports the channel precision of a decoded image.
func sourceBitDepth(img image.Image) int {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return 16
	default:
		return 8
	}
}

// slot maps a channel id to its NRGBA position.
func slot(ch uint8) int {
	switch ch {
	case chRed:
		return 0
	case chGreen:
		return 1
	case chBlue:
		return 2
	default:
		return 3
	}
}

// toNRGBA64 returns img as non-premultiplied 16-bit RGBA at the origin.
func toNRGBA64(img image.Image) *image.NRGBA64 {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA64); ok && b.Min == (image.Point{}) {
		return n
	}
	out := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	return out
}

// nrgba64At returns the four 16-bit channels of the pixel at offset i.
func nrgba64At(pix []uint8, i int) [4]uint16 {
	return [4]uint16{
		uint16(pix[i])<<8 | uint16(pix[i+1]),
		uint16(pix[i+2])<<8 | uint16(pix[i+3]),
		uint16(pix[i+4])<<8 | uint16(pix[i+5]),
		uint16(pix[i+6])<<8 | uint16(pix[i+7]),
	}
}

func setNRGBA64(pix []uint8, i int, v [4]uint16) {
	for ch := 0; ch < 4; ch++ {
		pix[i+2*ch] = uint8(v[ch] >> 8)
		pix[i+2*ch+1] = uint8(v[ch])
	}
}

// channelConverter handles formats with one equal-width field per channel.
type channelConverter struct {
	info formatInfo
}

func (c channelConverter) bits() int { return c.info.comps[0].bits }

func (c channelConverter) RequiredBitDepth() int { return c.bits() }

// encode maps a 16-bit unorm value to one stored field.
func (c channelConverter) encode(v uint16) uint32 {
	f := float64(v) / 65535
	bits := c.bits()

	switch c.info.class {
	case ClassSnorm:
		maxPos := float64(int64(1)<<(bits-1) - 1)
		s := int32(math.Round((f*2 - 1) * maxPos))
		return uint32(s)
	case ClassSfloat, ClassUfloat:
		if bits == 16 {
			return uint32(float16.Fromfloat32(float32(f)).Bits())
		}
		return math.Float32bits(float32(f))
	case ClassUint, ClassSint:
		if bits == 8 {
			return uint32(v >> 8)
		}
		return uint32(v)
	default:
		if bits == 8 {
			return uint32((uint32(v)*255 + 32767) / 65535)
		}
		return uint32(v)
	}
}

// decode maps one stored field back to a 16-bit unorm value.
func (c channelConverter) decode(raw uint32) uint16 {
	bits := c.bits()
	clamp := func(f float64) uint16 { return uint16(math.Round(min(1, max(0, f)) * 65535)) }

	switch c.info.class {
	case ClassSnorm:
		var s int64
		switch bits {
		case 8:
			s = int64(int8(raw))
		case 16:
			s = int64(int16(raw))
		default:
			s = int64(int32(raw))
		}
		maxPos := float64(int64(1)<<(bits-1) - 1)
		return clamp((float64(s)/maxPos + 1) / 2)
	case ClassSfloat, ClassUfloat:
		if bits == 16 {
			return clamp(float64(float16.Frombits(uint16(raw)).Float32()))
		}
		return clamp(float64(math.Float32frombits(raw)))
	case ClassUint, ClassSint:
		if bits == 8 {
			return uint16(raw) << 8
		}
		return uint16(min(raw, 0xFFFF))
	default:
		if bits == 8 {
			return uint16(raw) * 257
		}
		return uint16(raw)
	}
}

func (c channelConverter) Convert(img image.Image) ([]byte, error) {
	src := toNRGBA64(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	comps := c.info.comps
	bytesPer := c.bits() / 8
	out := make([]byte, w*h*len(comps)*bytesPer)

	o := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := nrgba64At(src.Pix, src.PixOffset(x, y))
			for _, comp := range comps {
				v := c.encode(px[slot(comp.ch)])
				switch bytesPer {
				case 1:
					out[o] = uint8(v)
				case 2:
					binary.LittleEndian.PutUint16(out[o:], uint16(v))
				default:
					binary.LittleEndian.PutUint32(out[o:], v)
				}
				o += bytesPer
			}
		}
	}

	return out, nil
}

func (c channelConverter) ToImage(data []byte, width, height int) (image.Image, error) {
	comps := c.info.comps
	bytesPer := c.bits() / 8
	if len(data) != width*height*len(comps)*bytesPer {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %s", ErrSizeMismatch, len(data), width, height, c.info.name)
	}

	if len(comps) == 1 {
		img := image.NewGray16(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			v := c.decode(readField(data[i*bytesPer:], bytesPer))
			img.Pix[2*i], img.Pix[2*i+1] = uint8(v>>8), uint8(v)
		}
		return img, nil
	}

	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	o := 0
	for i := 0; i < width*height; i++ {
		px := [4]uint16{0, 0, 0, 0xFFFF}
		for _, comp := range comps {
			px[slot(comp.ch)] = c.decode(readField(data[o:], bytesPer))
			o += bytesPer
		}
		setNRGBA64(img.Pix, i*8, px)
	}

	return img, nil
}

func readField(b []byte, n int) uint32 {
	switch n {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	default:
		return binary.LittleEndian.Uint32(b)
	}
}

func readWord(b []byte, typeSize int) uint32 {
	if typeSize == 2 {
		return uint32(binary.LittleEndian.Uint16(b))
	}

	return binary.LittleEndian.Uint32(b)
}

func writeWord(b []byte, typeSize int, v uint32) {
	if typeSize == 2 {
		binary.LittleEndian.PutUint16(b, uint16(v))
		return
	}
	binary.LittleEndian.PutUint32(b, v)
}

// packedConverter handles unorm fields packed into one 16 or 32 bit word.
type packedConverter struct {
	info formatInfo
}

func (c packedConverter) RequiredBitDepth() int {
	depth := 0
	for _, comp := range c.info.comps {
		depth = max(depth, comp.bits)
	}

	return depth
}

func (c packedConverter) Convert(img image.Image) ([]byte, error) {
	src := toNRGBA64(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	ts := c.info.typeSize
	out := make([]byte, w*h*ts)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := nrgba64At(src.Pix, src.PixOffset(x, y))
			var word uint32
			shift := 0
			for _, comp := range c.info.comps {
				maxv := uint32(1)<<comp.bits - 1
				v := (uint32(px[slot(comp.ch)])*maxv + 32767) / 65535
				word |= v << shift
				shift += comp.bits
			}
			writeWord(out[(y*w+x)*ts:], ts, word)
		}
	}

	return out, nil
}

func (c packedConverter) ToImage(data []byte, width, height int) (image.Image, error) {
	ts := c.info.typeSize
	if len(data) != width*height*ts {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %s", ErrSizeMismatch, len(data), width, height, c.info.name)
	}

	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		word := readWord(data[i*ts:], ts)
		px := [4]uint16{0, 0, 0, 0xFFFF}
		shift := 0
		for _, comp := range c.info.comps {
			maxv := uint32(1)<<comp.bits - 1
			v := (word >> shift) & maxv
			px[slot(comp.ch)] = uint16((v*65535 + maxv/2) / maxv)
			shift += comp.bits
		}
		setNRGBA64(img.Pix, i*8, px)
	}

	return img, nil
}

// b10g11r11Converter packs unsigned 11/11/10-bit floats. Each field is a
// half float with the sign and low mantissa bits dropped.
type b10g11r11Converter struct{}

func (b10g11r11Converter) RequiredBitDepth() int { return 11 }

func (b10g11r11Converter) Convert(img image.Image) ([]byte, error) {
	src := toNRGBA64(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := make([]byte, w*h*4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := nrgba64At(src.Pix, src.PixOffset(x, y))
			half := func(v uint16) uint32 {
				return uint32(float16.Fromfloat32(float32(v) / 65535).Bits())
			}
			word := half(px[0])>>4&0x7FF | (half(px[1])>>4&0x7FF)<<11 | (half(px[2])>>5&0x3FF)<<22
			binary.LittleEndian.PutUint32(out[(y*w+x)*4:], word)
		}
	}

	return out, nil
}

func (b10g11r11Converter) ToImage(data []byte, width, height int) (image.Image, error) {
	if len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d B10G11R11", ErrSizeMismatch, len(data), width, height)
	}

	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	unorm := func(halfBits uint32) uint16 {
		f := float16.Frombits(uint16(halfBits)).Float32()
		return uint16(math.Round(float64(min(1, max(0, f))) * 65535))
	}
	for i := 0; i < width*height; i++ {
		word := binary.LittleEndian.Uint32(data[i*4:])
		px := [4]uint16{
			unorm((word & 0x7FF) << 4),
			unorm((word >> 11 & 0x7FF) << 4),
			unorm((word >> 22 & 0x3FF) << 5),
			0xFFFF,
		}
		setNRGBA64(img.Pix, i*8, px)
	}

	return img, nil
}

// e5b9g9r9Converter packs three 9-bit mantissas with a shared exponent.
type e5b9g9r9Converter struct{}

const (
	sharedExpBias     = 15
	sharedMantissa    = 9
	sharedMaxExponent = 31
)

func (e5b9g9r9Converter) RequiredBitDepth() int { return 9 }

// packShared encodes non-negative values with a shared exponent.
func packShared(r, g, b float64) uint32 {
	maxv := max(r, g, b)
	if maxv <= 0 {
		return 0
	}
	exp := max(-sharedExpBias-1, int(math.Floor(math.Log2(maxv)))) + 1 + sharedExpBias
	exp = min(exp, sharedMaxExponent)
	denom := math.Pow(2, float64(exp-sharedExpBias-sharedMantissa))
	if math.Floor(maxv/denom+0.5) >= 1<<sharedMantissa && exp < sharedMaxExponent {
		exp++
		denom *= 2
	}

	q := func(v float64) uint32 {
		return uint32(min(float64(1<<sharedMantissa-1), math.Floor(v/denom+0.5)))
	}

	return q(r) | q(g)<<9 | q(b)<<18 | uint32(exp)<<27
}

func unpackShared(word uint32) (r, g, b float64) {
	exp := int(word >> 27)
	scale := math.Pow(2, float64(exp-sharedExpBias-sharedMantissa))

	return float64(word&0x1FF) * scale, float64(word>>9&0x1FF) * scale, float64(word>>18&0x1FF) * scale
}

func (e5b9g9r9Converter) Convert(img image.Image) ([]byte, error) {
	src := toNRGBA64(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := make([]byte, w*h*4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := nrgba64At(src.Pix, src.PixOffset(x, y))
			word := packShared(float64(px[0])/65535, float64(px[1])/65535, float64(px[2])/65535)
			binary.LittleEndian.PutUint32(out[(y*w+x)*4:], word)
		}
	}

	return out, nil
}

func (e5b9g9r9Converter) ToImage(data []byte, width, height int) (image.Image, error) {
	if len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d E5B9G9R9", ErrSizeMismatch, len(data), width, height)
	}

	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	unorm := func(f float64) uint16 { return uint16(math.Round(min(1, max(0, f)) * 65535)) }
	for i := 0; i < width*height; i++ {
		r, g, b := unpackShared(binary.LittleEndian.Uint32(data[i*4:]))
		setNRGBA64(img.Pix, i*8, [4]uint16{unorm(r), unorm(g), unorm(b), 0xFFFF})
	}

	return img, nil
}

// blockConverter encodes images straight to a block format with default
// block parameters.
type blockConverter struct {
	format VkFormat
}

func (blockConverter) RequiredBitDepth() int { return 8 }

func (c blockConverter) Convert(img image.Image) ([]byte, error) {
	return encodeBlockImage(imaging.Clone(img), c.format, DefaultBlockParams())
}

func (c blockConverter) ToImage(data []byte, width, height int) (image.Image, error) {
	return decodeBlockImage(data, width, height, c.format)
}

// toNRGBA returns img as 8-bit non-premultiplied RGBA at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}

	return imaging.Clone(img)
}

// rawImage decodes one stored image of an uncompressed texture.
func rawImage(f VkFormat, data []byte, width, height int) (*image.NRGBA, error) {
	conv, err := converterFor(f)
	if err != nil {
		return nil, err
	}
	img, err := conv.ToImage(data, width, height)
	if err != nil {
		return nil, err
	}

	return toNRGBA(img), nil
}

// isOpaque reports whether every alpha value of img is 255.
func isOpaque(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xFF {
			return false
		}
	}

	return true
}
