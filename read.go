// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"sort"

	"github.com/woozymasta/ktx2/internal/basis"
)

// ReadConfig reads the header of a KTX2 file without decoding level data.
func ReadConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	h, err := ReadHeader(f)
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		Width:      intFromU32(h.Width),
		Height:     max(intFromU32(h.Height), 1),
		ColorModel: color.NRGBAModel,
	}, nil
}

// ReadFile reads and decodes a KTX2 file.
func ReadFile(path string, opts ...ReadOption) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, opts...)
}

// Decode reads a complete KTX2 stream. Supercompressed levels are inflated
// eagerly; the texture keeps its scheme so it can be written back unchanged.
func Decode(r io.Reader, opts ...ReadOption) (*Texture, error) {
	cfg := newReadConfig(opts)

	limit := cfg.limits.maxFileBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %w: stream exceeds %d bytes", ErrInvalidFile, ErrLimitExceeded, limit)
	}

	return decodeBytes(data, cfg)
}

// Unmarshal decodes a KTX2 file held in memory.
func Unmarshal(data []byte, opts ...ReadOption) (*Texture, error) {
	return decodeBytes(data, newReadConfig(opts))
}

func decodeBytes(data []byte, cfg readConfig) (*Texture, error) {
	t, err := parseTexture(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	t.logger.Debug("texture read", "format", t.format.Name(), "codec", t.codec,
		"scheme", t.super.Scheme, "levels", t.levels, "bytes", len(data))

	return t, nil
}

// span is a byte range of the file used for overlap checks.
type span struct {
	start, end uint64
	level      int // -1 for metadata sections
}

// section returns data[off:off+length] after range checks.
func section(data []byte, off, length uint64, name string) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	end := off + length
	if end < off || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %s [%d,+%d) outside %d byte file", ErrInvalidIndex, name, off, length, len(data))
	}

	return data[off:end], nil
}

// checkHeader applies the structural rules of the header fields.
func checkHeader(h Header, limits Limits) error {
	switch {
	case h.Width == 0:
		return fmt.Errorf("%w: width 0", ErrInvalidHeader)
	case h.Height == 0 && h.Depth != 0:
		return fmt.Errorf("%w: depth %d without height", ErrInvalidHeader, h.Depth)
	case h.Faces != 1 && h.Faces != 6:
		return fmt.Errorf("%w: %d faces", ErrInvalidHeader, h.Faces)
	case h.Faces == 6 && h.Width != h.Height:
		return fmt.Errorf("%w: %dx%d", ErrCubemapNotSquare, h.Width, h.Height)
	case h.Faces == 6 && h.Depth != 0:
		return fmt.Errorf("%w: cubemap with depth %d", ErrInvalidHeader, h.Depth)
	case h.Layers != 0 && h.Depth != 0:
		return fmt.Errorf("%w: %d layers with depth %d", ErrInvalidHeader, h.Layers, h.Depth)
	}

	maxDim := uint64(limits.MaxDimension)
	if uint64(h.Width) > maxDim || uint64(h.Height) > maxDim || uint64(h.Depth) > maxDim {
		return fmt.Errorf("%w: %dx%dx%d above %d", ErrLimitExceeded, h.Width, h.Height, h.Depth, limits.MaxDimension)
	}
	if uint64(h.Layers) > uint64(limits.MaxLayers) {
		return fmt.Errorf("%w: %d layers above %d", ErrLimitExceeded, h.Layers, limits.MaxLayers)
	}
	if maxLevels := MaxLevels(intFromU32(h.Width), intFromU32(h.Height), intFromU32(h.Depth)); intFromU32(h.Levels) > maxLevels {
		return fmt.Errorf("%w: %d levels, %dx%dx%d allows %d", ErrInvalidHeader, h.Levels, h.Width, h.Height, h.Depth, maxLevels)
	}
	if h.Scheme > SchemeZlib {
		return fmt.Errorf("%w: %s", ErrUnsupportedSupercompression, h.Scheme)
	}

	switch {
	case h.Format == FormatUndefined || h.Format.IsCompressed():
		if h.TypeSize != 1 {
			return fmt.Errorf("%w: typeSize %d for %s", ErrInvalidHeader, h.TypeSize, h.Format)
		}
	case !h.Format.Known():
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, h.Format)
	case intFromU32(h.TypeSize) != h.Format.TypeSize():
		return fmt.Errorf("%w: typeSize %d for %s, want %d", ErrInvalidHeader, h.TypeSize, h.Format, h.Format.TypeSize())
	}

	if h.DFDLength == 0 {
		return fmt.Errorf("%w: empty descriptor", ErrInvalidDescriptor)
	}
	if h.DFDLength > limits.MaxDescriptorBytes {
		return fmt.Errorf("%w: descriptor of %d bytes", ErrLimitExceeded, h.DFDLength)
	}
	if h.KVDLength > limits.MaxKeyValueBytes {
		return fmt.Errorf("%w: key/value data of %d bytes", ErrLimitExceeded, h.KVDLength)
	}
	if h.SGDLength > limits.MaxGlobalDataBytes {
		return fmt.Errorf("%w: global data of %d bytes", ErrLimitExceeded, h.SGDLength)
	}

	return nil
}

// parseTexture decodes every section of a file.
func parseTexture(data []byte, cfg readConfig) (*Texture, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if err := checkHeader(h, cfg.limits); err != nil {
		return nil, err
	}

	levels := max(intFromU32(h.Levels), 1)
	indexEnd := uint64(headerSize + levels*levelEntrySize)
	if indexEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: level index needs %d bytes, have %d", ErrTruncated, indexEnd, len(data))
	}
	entries, err := parseLevelIndex(data[headerSize:], levels)
	if err != nil {
		return nil, err
	}

	dfdBytes, err := section(data, uint64(h.DFDOffset), uint64(h.DFDLength), "descriptor")
	if err != nil {
		return nil, err
	}
	kvdBytes, err := section(data, uint64(h.KVDOffset), uint64(h.KVDLength), "key/value data")
	if err != nil {
		return nil, err
	}
	sgdBytes, err := section(data, h.SGDOffset, h.SGDLength, "global data")
	if err != nil {
		return nil, err
	}
	if h.SGDLength > 0 && h.SGDOffset%sgdAlignment != 0 {
		return nil, fmt.Errorf("%w: global data at %d is not %d-byte aligned", ErrInvalidIndex, h.SGDOffset, sgdAlignment)
	}

	dfd, err := parseFormatDescriptor(dfdBytes)
	if err != nil {
		return nil, err
	}
	if err := dfd.checkFormat(h.Format); err != nil {
		return nil, err
	}

	codec := CodecNone
	switch dfd.Model {
	case ModelETC1S:
		codec = CodecETC1S
	case ModelUASTC:
		codec = CodecUASTC
	}
	if (h.Scheme == SchemeBasisLZ) != (codec == CodecETC1S) {
		return nil, fmt.Errorf("%w: %s with colour model %d", ErrIncompatibleSupercompression, h.Scheme, dfd.Model)
	}
	if (h.Scheme == SchemeBasisLZ) != (h.SGDLength > 0) {
		return nil, fmt.Errorf("%w: %d bytes for scheme %s", ErrInvalidGlobalData, h.SGDLength, h.Scheme)
	}

	meta, err := parseKeyValues(kvdBytes)
	if err != nil {
		return nil, err
	}

	channels := dfd.ChannelCount()
	typeSize := intFromU32(h.TypeSize)
	var geom blockGeometry
	if codec != CodecNone {
		geom = universalGeometry(codec, channels)
	} else {
		fi, _ := lookupFormat(h.Format)
		geom = fi.geom
	}

	dims := 2
	switch {
	case h.Height == 0:
		dims = 1
	case h.Depth != 0:
		dims = 3
	}

	t := &Texture{
		format:         h.Format,
		typeSize:       typeSize,
		dimensions:     dims,
		width:          intFromU32(h.Width),
		height:         max(intFromU32(h.Height), 1),
		depth:          max(intFromU32(h.Depth), 1),
		layers:         max(intFromU32(h.Layers), 1),
		isArray:        h.Layers > 0,
		cubemap:        h.Faces == 6,
		faces:          intFromU32(h.Faces),
		levels:         levels,
		runtimeMipmaps: h.Levels == 0,
		geom:           geom,
		dfd:            dfd,
		codec:          codec,
		channels:       channels,
		super:          Supercompression{Scheme: h.Scheme},
		meta:           meta,
		logger:         cfg.logger,
	}

	l, err := t.layoutChecked()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	size, err := u64FromInt(l.DataSize())
	if err != nil || size > cfg.limits.MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes of pixel data", ErrLimitExceeded, l.DataSize())
	}

	if err := checkLevels(t, entries, uint64(len(data)), indexEnd, h); err != nil {
		return nil, err
	}

	t.data = make([]byte, l.DataSize())
	if t.super.Generic() {
		t.packed = make([][]byte, levels)
	}
	for i, e := range entries {
		blob := data[e.ByteOffset : e.ByteOffset+e.ByteLength]
		raw, err := t.expandLevel(i, blob, cfg.limits)
		if err != nil {
			return nil, err
		}
		copy(t.data[l.LevelOffset(i):], raw)
	}

	if codec == CodecETC1S {
		if err := checkGlobalData(sgdBytes, l, channels); err != nil {
			return nil, err
		}
		t.super.GlobalData = append([]byte(nil), sgdBytes...)
	}

	t.present = make([]bool, l.ExpectedImageCount(false))
	for i := range t.present {
		t.present[i] = true
	}
	t.levelIndex = entries
	t.stage = deriveStage(t)

	return t, nil
}

// checkLevels validates level ranges against the file, the alignment rule,
// the expected sizes and each other.
func checkLevels(t *Texture, entries []LevelEntry, fileSize, indexEnd uint64, h Header) error {
	l := t.Layout()
	align := uint64(t.fileLayout().LevelAlignment())

	spans := []span{
		{start: uint64(h.DFDOffset), end: uint64(h.DFDOffset) + uint64(h.DFDLength), level: -1},
		{start: uint64(h.KVDOffset), end: uint64(h.KVDOffset) + uint64(h.KVDLength), level: -1},
		{start: h.SGDOffset, end: h.SGDOffset + h.SGDLength, level: -1},
	}
	for _, s := range spans {
		if s.end > s.start && s.start < indexEnd {
			return fmt.Errorf("%w: section at %d overlaps the header", ErrInvalidIndex, s.start)
		}
	}

	for i, e := range entries {
		end := e.ByteOffset + e.ByteLength
		if e.ByteLength == 0 || end < e.ByteOffset || end > fileSize {
			return fmt.Errorf("%w: level %d [%d,+%d) outside %d byte file", ErrInvalidIndex, i, e.ByteOffset, e.ByteLength, fileSize)
		}
		if e.ByteOffset < indexEnd {
			return fmt.Errorf("%w: level %d at %d overlaps the header", ErrInvalidIndex, i, e.ByteOffset)
		}
		if e.ByteOffset%align != 0 {
			return fmt.Errorf("%w: level %d at %d is not %d-byte aligned", ErrInvalidIndex, i, e.ByteOffset, align)
		}

		want := uint64(l.LevelSize(i))
		switch t.super.Scheme {
		case SchemeNone:
			if e.ByteLength != want || e.UncompressedByteLength != want {
				return fmt.Errorf("%w: level %d holds %d/%d bytes, expected %d",
					ErrSizeMismatch, i, e.ByteLength, e.UncompressedByteLength, want)
			}
		case SchemeBasisLZ:
			// Other writers leave the raw length as 0.
			if e.UncompressedByteLength != want && e.UncompressedByteLength != 0 {
				return fmt.Errorf("%w: level %d expands to %d bytes, expected %d",
					ErrSizeMismatch, i, e.UncompressedByteLength, want)
			}
		default:
			if e.UncompressedByteLength != want {
				return fmt.Errorf("%w: level %d expands to %d bytes, expected %d",
					ErrSizeMismatch, i, e.UncompressedByteLength, want)
			}
		}
		spans = append(spans, span{start: e.ByteOffset, end: end, level: i})
	}

	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	var prev *span
	for i := range spans {
		s := &spans[i]
		if s.end == s.start {
			continue
		}
		if prev != nil && s.start < prev.end {
			if s.level >= 0 || prev.level >= 0 {
				return fmt.Errorf("%w: ranges at %d and %d", ErrOverlappingLevels, prev.start, s.start)
			}
			return fmt.Errorf("%w: sections at %d and %d overlap", ErrInvalidIndex, prev.start, s.start)
		}
		prev = s
	}

	return nil
}

// expandLevel returns the uncompressed bytes of one level.
func (t *Texture) expandLevel(level int, blob []byte, limits Limits) ([]byte, error) {
	want := t.Layout().LevelSize(level)

	switch t.super.Scheme {
	case SchemeNone:
		return blob, nil

	case SchemeZstd, SchemeZlib:
		raw, err := inflateLevel(t.super.Scheme, blob, want)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}
		t.packed[level] = append([]byte(nil), blob...)
		return raw, nil

	case SchemeBasisLZ:
		raw, err := basis.Unpack(blob, min(uint64(want), limits.MaxImageBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: level %d: %w", ErrInflate, level, err)
		}
		if len(raw) != want {
			return nil, fmt.Errorf("%w: level %d expands to %d bytes, expected %d", ErrSizeMismatch, level, len(raw), want)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSupercompression, t.super.Scheme)
	}
}

// deriveStage maps a decoded texture to the pipeline stage it resumes from.
func deriveStage(t *Texture) Stage {
	switch {
	case t.super.Generic():
		return StageSupercompressed
	case t.codec != CodecNone:
		return StageUniversalEncoded
	case t.format.IsCompressed():
		return StageBlockEncoded
	default:
		return StageRaw
	}
}
