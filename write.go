// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/ktx2/internal/basis"
)

// WriteFile writes the texture to path.
func (t *Texture) WriteFile(path string, opts ...WriteOption) error {
	data, err := t.marshal(newWriteConfig(opts))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %q: %v", ErrWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWrite, path, err)
	}

	return nil
}

// Encode writes the texture as a KTX2 stream.
func (t *Texture) Encode(w io.Writer, opts ...WriteOption) error {
	data, err := t.marshal(newWriteConfig(opts))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return nil
}

// MarshalBinary serializes the texture with default write options.
func (t *Texture) MarshalBinary() ([]byte, error) {
	return t.marshal(newWriteConfig(nil))
}

// marshal lays the file out as header, level index, descriptor, key/value
// data, global data and level data. Levels are stored smallest first, each
// aligned to the level alignment, with explicit offsets in the index.
func (t *Texture) marshal(cfg writeConfig) ([]byte, error) {
	if missing := t.missingImages(false); len(missing) > 0 {
		m := missing[0]
		return nil, fmt.Errorf("%w: %d images absent, first at level %d layer %d face/slice %d",
			ErrMissingImage, len(missing), m.level, m.layer, m.faceSlice)
	}
	if size, err := u64FromInt(len(t.data)); err != nil || size > cfg.limits.MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes of pixel data", ErrLimitExceeded, len(t.data))
	}

	meta := t.meta.clone()
	meta.set(KeyWriter, nulTerminated(cfg.writer))

	dfd, err := t.dfd.MarshalBinary()
	if err != nil {
		return nil, err
	}
	kvd := marshalKeyValues(meta)
	if n, _ := u64FromInt(len(kvd)); n > uint64(cfg.limits.MaxKeyValueBytes) {
		return nil, fmt.Errorf("%w: key/value data of %d bytes", ErrLimitExceeded, len(kvd))
	}
	var sgd []byte
	if t.super.Scheme == SchemeBasisLZ {
		sgd = t.super.GlobalData
	}

	payloads, err := t.levelPayloads()
	if err != nil {
		return nil, err
	}

	l := t.Layout()
	off := headerSize + t.levels*levelEntrySize
	dfdOffset := off
	off += len(dfd)
	kvdOffset := off
	off += len(kvd)
	sgdOffset := 0
	if len(sgd) > 0 {
		off = alignUp(off, sgdAlignment)
		sgdOffset = off
		off += len(sgd)
	}

	align := t.fileLayout().LevelAlignment()
	entries := make([]LevelEntry, t.levels)
	offsets := make([]int, t.levels)
	for level := t.levels - 1; level >= 0; level-- {
		off = alignUp(off, align)
		offsets[level] = off
		entries[level] = LevelEntry{
			ByteOffset:             uint64(off),
			ByteLength:             uint64(len(payloads[level])),
			UncompressedByteLength: uint64(l.LevelSize(level)),
		}
		off += len(payloads[level])
	}

	h, err := t.header(dfdOffset, len(dfd), kvdOffset, len(kvd), sgdOffset, len(sgd))
	if err != nil {
		return nil, err
	}
	head, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, off)
	copy(buf, head)
	copy(buf[headerSize:], marshalLevelIndex(entries))
	copy(buf[dfdOffset:], dfd)
	copy(buf[kvdOffset:], kvd)
	copy(buf[sgdOffset:], sgd)
	for level, p := range payloads {
		copy(buf[offsets[level]:], p)
	}

	t.meta.set(KeyWriter, nulTerminated(cfg.writer))
	t.levelIndex = entries

	return buf, nil
}

// header fills the header fields from the texture and section positions.
func (t *Texture) header(dfdOffset, dfdLength, kvdOffset, kvdLength, sgdOffset, sgdLength int) (Header, error) {
	var h Header
	var err error
	u32 := func(n int) uint32 {
		v, e := u32FromInt(n)
		if e != nil && err == nil {
			err = e
		}
		return v
	}

	h.Format = t.format
	h.TypeSize = u32(t.typeSize)
	h.Width = u32(t.width)
	if t.dimensions > 1 {
		h.Height = u32(t.height)
	}
	if t.dimensions > 2 {
		h.Depth = u32(t.depth)
	}
	if t.isArray {
		h.Layers = u32(t.layers)
	}
	h.Faces = u32(t.faces)
	if !t.runtimeMipmaps {
		h.Levels = u32(t.levels)
	}
	h.Scheme = t.super.Scheme
	h.DFDOffset = u32(dfdOffset)
	h.DFDLength = u32(dfdLength)
	h.KVDOffset = u32(kvdOffset)
	h.KVDLength = u32(kvdLength)
	h.SGDOffset = uint64(sgdOffset)
	h.SGDLength = uint64(sgdLength)

	return h, err
}

// levelPayloads returns the stored bytes of every level.
func (t *Texture) levelPayloads() ([][]byte, error) {
	l := t.Layout()
	out := make([][]byte, t.levels)

	for level := range out {
		offset := l.LevelOffset(level)
		raw := t.data[offset : offset+l.LevelSize(level)]

		switch t.super.Scheme {
		case SchemeNone:
			out[level] = raw

		case SchemeZstd, SchemeZlib:
			if len(t.packed) == t.levels && t.packed[level] != nil {
				out[level] = t.packed[level]
				continue
			}
			blob, err := deflateLevel(t.super.Scheme, max(t.super.Level, 1), raw)
			if err != nil {
				return nil, fmt.Errorf("%w: level %d", err, level)
			}
			out[level] = blob

		case SchemeBasisLZ:
			blob, err := basis.Pack(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: level %d: %w", ErrSupercompress, level, err)
			}
			out[level] = blob

		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSupercompression, t.super.Scheme)
		}
	}

	return out, nil
}
