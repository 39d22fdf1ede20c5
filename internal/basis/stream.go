// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package basis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	// StreamModeCopy marks a stored payload.
	StreamModeCopy = "COPY"
	// StreamModeLZ4 marks an LZ4 chunk stream payload.
	StreamModeLZ4 = "LZ4 "

	// ChunkSize is the uncompressed size of one LZ4 chunk.
	ChunkSize = 64 * 1024

	streamHeaderSize = 8
	maxChunkBytes    = 0x7FFFFF
	lastChunkFlag    = 0x80
	minPackBytes     = 256
)

// Pack stores data as a mode tag, the u32 raw length and either the raw bytes
// or a sequence of LZ4 chunks. Data that does not shrink is stored.
func Pack(data []byte) ([]byte, error) {
	if uint64(len(data)) > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: %d bytes", ErrStreamTooLarge, len(data))
	}

	stored := func() []byte {
		out := make([]byte, streamHeaderSize+len(data))
		copy(out, StreamModeCopy)
		binary.LittleEndian.PutUint32(out[4:], uint32(len(data)))
		copy(out[streamHeaderSize:], data)
		return out
	}
	if len(data) < minPackBytes {
		return stored(), nil
	}

	var chunks bytes.Buffer
	chunks.WriteString(StreamModeLZ4)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
	chunks.Write(size[:])

	compressBuf := make([]byte, lz4.CompressBlockBound(ChunkSize))
	for i := 0; i < len(data); i += ChunkSize {
		end := min(i+ChunkSize, len(data))
		src := data[i:end]

		cn, err := lz4.CompressBlockHC(src, compressBuf, 0, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
		}
		if cn == 0 || cn >= len(src) {
			return stored(), nil
		}
		if cn > maxChunkBytes {
			return nil, fmt.Errorf("%w: %d", ErrChunkTooLarge, cn)
		}

		flags := byte(0)
		if end == len(data) {
			flags = lastChunkFlag
		}
		chunks.Write([]byte{byte(cn), byte(cn >> 8), byte(cn >> 16), flags})
		chunks.Write(compressBuf[:cn])
	}

	if chunks.Len() >= streamHeaderSize+len(data) {
		return stored(), nil
	}

	return chunks.Bytes(), nil
}

// Unpack expands a Pack stream whose raw length may not exceed limit.
func Unpack(data []byte, limit uint64) ([]byte, error) {
	if len(data) < streamHeaderSize {
		return nil, fmt.Errorf("%w: need %d header bytes, have %d", ErrStreamTruncated, streamHeaderSize, len(data))
	}

	mode := string(data[:4])
	rawSize := uint64(binary.LittleEndian.Uint32(data[4:8]))
	if rawSize > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrStreamTooLarge, rawSize, limit)
	}
	body := data[streamHeaderSize:]

	switch mode {
	case StreamModeCopy:
		if uint64(len(body)) != rawSize {
			return nil, fmt.Errorf("%w: stored %d bytes, header says %d", ErrStreamSizeMismatch, len(body), rawSize)
		}
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil

	case StreamModeLZ4:
		return unpackChunks(body, int(rawSize))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStreamMode, mode)
	}
}

// unpackChunks decodes LZ4 chunks with a rolling 64 KiB dictionary.
func unpackChunks(data []byte, targetSize int) ([]byte, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: empty lz4 stream", ErrStreamSizeMismatch)
	}

	const dictCap = 64 * 1024
	dict := make([]byte, dictCap)
	dictSize := 0

	target := make([]byte, targetSize)
	outIdx := 0
	r := bytes.NewReader(data)

	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: chunk header: %v", ErrStreamTruncated, err)
		}

		cSize := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		flags := hdr[3]
		if flags&^lastChunkFlag != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownChunkFlags, flags)
		}
		if cSize <= 0 || cSize > r.Len() {
			return nil, fmt.Errorf("%w: chunk of %d bytes, %d remaining", ErrStreamTruncated, cSize, r.Len())
		}

		compressed := make([]byte, cSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("%w: chunk data: %v", ErrStreamTruncated, err)
		}

		remaining := targetSize - outIdx
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: data past declared size", ErrStreamSizeMismatch)
		}
		dst := target[outIdx : outIdx+min(ChunkSize, remaining)]

		n, err := lz4.UncompressBlockWithDict(compressed, dst, dict[:dictSize])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		outIdx += n

		decoded := target[outIdx-n : outIdx]
		switch avail := dictCap - dictSize; {
		case len(decoded) >= dictCap:
			copy(dict, decoded[len(decoded)-dictCap:])
			dictSize = dictCap
		case len(decoded) <= avail:
			copy(dict[dictSize:], decoded)
			dictSize += len(decoded)
		default:
			shift := len(decoded) - avail
			copy(dict, dict[shift:dictSize])
			copy(dict[dictCap-len(decoded):], decoded)
			dictSize = dictCap
		}

		if flags&lastChunkFlag != 0 {
			break
		}
	}

	if outIdx != targetSize {
		return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrStreamSizeMismatch, outIdx, targetSize)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrStreamSizeMismatch, r.Len())
	}

	return target, nil
}
