// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Identifier is the 12-byte KTX2 file identifier.
var Identifier = [12]byte{0xAB, 'K', 'T', 'X', ' ', '2', '0', 0xBB, '\r', '\n', 0x1A, '\n'}

const (
	identifierSize = 12
	// headerSize covers the identifier, the header and the section index.
	headerSize     = 80
	levelEntrySize = 24
	sgdAlignment   = 8
	kvdAlignment   = 4
)

// Header is the fixed part of a KTX2 file: header fields and section index.
type Header struct {
	Format    VkFormat
	TypeSize  uint32
	Width     uint32
	Height    uint32 // 0 for 1D textures
	Depth     uint32 // 0 for non-3D textures
	Layers    uint32 // 0 for non-array textures
	Faces     uint32
	Levels    uint32 // 0 requests runtime mip generation
	Scheme    Scheme
	DFDOffset uint32
	DFDLength uint32
	KVDOffset uint32
	KVDLength uint32
	SGDOffset uint64
	SGDLength uint64
}

// MarshalBinary encodes the identifier, header and section index.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize)
	le := binary.LittleEndian

	copy(buf[0:identifierSize], Identifier[:])
	le.PutUint32(buf[12:16], uint32(h.Format))
	le.PutUint32(buf[16:20], h.TypeSize)
	le.PutUint32(buf[20:24], h.Width)
	le.PutUint32(buf[24:28], h.Height)
	le.PutUint32(buf[28:32], h.Depth)
	le.PutUint32(buf[32:36], h.Layers)
	le.PutUint32(buf[36:40], h.Faces)
	le.PutUint32(buf[40:44], h.Levels)
	le.PutUint32(buf[44:48], uint32(h.Scheme))
	le.PutUint32(buf[48:52], h.DFDOffset)
	le.PutUint32(buf[52:56], h.DFDLength)
	le.PutUint32(buf[56:60], h.KVDOffset)
	le.PutUint32(buf[60:64], h.KVDLength)
	le.PutUint64(buf[64:72], h.SGDOffset)
	le.PutUint64(buf[72:80], h.SGDLength)

	return buf, nil
}

// parseHeader decodes the first headerSize bytes of a file.
func parseHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, headerSize, len(buf))
	}
	if !bytes.Equal(buf[:identifierSize], Identifier[:]) {
		return Header{}, ErrBadIdentifier
	}

	le := binary.LittleEndian
	return Header{
		Format:    VkFormat(le.Uint32(buf[12:16])),
		TypeSize:  le.Uint32(buf[16:20]),
		Width:     le.Uint32(buf[20:24]),
		Height:    le.Uint32(buf[24:28]),
		Depth:     le.Uint32(buf[28:32]),
		Layers:    le.Uint32(buf[32:36]),
		Faces:     le.Uint32(buf[36:40]),
		Levels:    le.Uint32(buf[40:44]),
		Scheme:    Scheme(le.Uint32(buf[44:48])),
		DFDOffset: le.Uint32(buf[48:52]),
		DFDLength: le.Uint32(buf[52:56]),
		KVDOffset: le.Uint32(buf[56:60]),
		KVDLength: le.Uint32(buf[60:64]),
		SGDOffset: le.Uint64(buf[64:72]),
		SGDLength: le.Uint64(buf[72:80]),
	}, nil
}

// ReadHeader reads and decodes the identifier, header and section index.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %w: %v", ErrInvalidFile, ErrTruncated, err)
	}

	h, err := parseHeader(buf[:])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	return h, nil
}

// marshalLevelIndex encodes the level index.
func marshalLevelIndex(entries []LevelEntry) []byte {
	buf := make([]byte, len(entries)*levelEntrySize)
	for i, e := range entries {
		o := buf[i*levelEntrySize:]
		binary.LittleEndian.PutUint64(o[0:8], e.ByteOffset)
		binary.LittleEndian.PutUint64(o[8:16], e.ByteLength)
		binary.LittleEndian.PutUint64(o[16:24], e.UncompressedByteLength)
	}

	return buf
}

// parseLevelIndex decodes count level entries.
func parseLevelIndex(buf []byte, count int) ([]LevelEntry, error) {
	if len(buf) < count*levelEntrySize {
		return nil, fmt.Errorf("%w: level index needs %d bytes, have %d", ErrTruncated, count*levelEntrySize, len(buf))
	}

	entries := make([]LevelEntry, count)
	for i := range entries {
		o := buf[i*levelEntrySize:]
		entries[i] = LevelEntry{
			ByteOffset:             binary.LittleEndian.Uint64(o[0:8]),
			ByteLength:             binary.LittleEndian.Uint64(o[8:16]),
			UncompressedByteLength: binary.LittleEndian.Uint64(o[16:24]),
		}
	}

	return entries, nil
}

// marshalKeyValues encodes metadata in key order, each entry padded to 4.
func marshalKeyValues(m *Metadata) []byte {
	var buf bytes.Buffer
	for _, key := range m.Keys() {
		value := m.entries[key]
		n := len(key) + 1 + len(value)

		var size [4]byte
		// #nosec G115 -- limited by MaxKeyValueBytes on write.
		binary.LittleEndian.PutUint32(size[:], uint32(n))
		buf.Write(size[:])
		buf.WriteString(key)
		buf.WriteByte(0)
		buf.Write(value)
		buf.Write(make([]byte, alignUp(n, kvdAlignment)-n))
	}

	return buf.Bytes()
}

// parseKeyValues decodes the key/value section. Entries may appear in any
// order; duplicate keys are rejected. Value rules are not applied here.
func parseKeyValues(data []byte) (*Metadata, error) {
	m := NewMetadata()
	for off := 0; off < len(data); {
		if len(data)-off < 4 {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidKeyValue, len(data)-off)
		}
		n := intFromU32(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n > len(data)-off {
			return nil, fmt.Errorf("%w: entry of %d bytes at offset %d overruns section", ErrInvalidKeyValue, n, off-4)
		}

		entry := data[off : off+n]
		nul := bytes.IndexByte(entry, 0)
		if nul <= 0 {
			return nil, fmt.Errorf("%w: entry at offset %d has no key terminator", ErrInvalidKeyValue, off-4)
		}
		key := string(entry[:nul])
		if _, dup := m.entries[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidKeyValue, key)
		}
		m.set(key, entry[nul+1:])

		off += alignUp(n, kvdAlignment)
		if off > len(data) {
			// The final entry may omit its padding.
			break
		}
	}

	return m, nil
}
