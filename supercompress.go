// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Deflate level ranges.
const (
	MinZstdLevel = 1
	MaxZstdLevel = 22
	MinZlibLevel = 1
	MaxZlibLevel = 9
)

// Function variables for testing injection.
var (
	newZstdWriter = func(level int) (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1))
	}
	newZstdReader = func(maxSize uint64) (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxSize))
	}
)

// DeflateParams selects a generic supercompression scheme.
type DeflateParams struct {
	Scheme Scheme // SchemeZstd or SchemeZlib
	Level  int
}

// Validate checks the scheme and its level range.
func (p DeflateParams) Validate() error {
	switch p.Scheme {
	case SchemeZstd:
		if p.Level < MinZstdLevel || p.Level > MaxZstdLevel {
			return fmt.Errorf("%w: zstd level %d not in [%d,%d]", ErrInvalidParameter, p.Level, MinZstdLevel, MaxZstdLevel)
		}
	case SchemeZlib:
		if p.Level < MinZlibLevel || p.Level > MaxZlibLevel {
			return fmt.Errorf("%w: zlib level %d not in [%d,%d]", ErrInvalidParameter, p.Level, MinZlibLevel, MaxZlibLevel)
		}
	default:
		return fmt.Errorf("%w: %s is not a generic supercompression scheme", ErrInvalidParameter, p.Scheme)
	}

	return nil
}

// record returns the writer parameter record of the deflate stage.
func (p DeflateParams) record() string {
	return fmt.Sprintf("--%s %d", p.Scheme, p.Level)
}

// deflateLevel compresses one level with a generic scheme.
func deflateLevel(scheme Scheme, level int, in []byte) ([]byte, error) {
	switch scheme {
	case SchemeZstd:
		enc, err := newZstdWriter(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSupercompress, err)
		}
		defer func() { _ = enc.Close() }()
		return enc.EncodeAll(in, nil), nil

	case SchemeZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSupercompress, err)
		}
		if _, err := zw.Write(in); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("%w: %v", ErrSupercompress, err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSupercompress, err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSupercompression, scheme)
	}
}

// inflateLevel decompresses one level and rejects output of any size other
// than expected.
func inflateLevel(scheme Scheme, in []byte, expected int) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch scheme {
	case SchemeZstd:
		var dec *zstd.Decoder
		dec, err = newZstdReader(uint64(expected) + 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInflate, err)
		}
		defer dec.Close()
		out, err = dec.DecodeAll(in, make([]byte, 0, expected))

	case SchemeZlib:
		var zr io.ReadCloser
		zr, err = zlib.NewReader(bytes.NewReader(in))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInflate, err)
		}
		defer func() { _ = zr.Close() }()
		out, err = io.ReadAll(io.LimitReader(zr, int64(expected)+1))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSupercompression, scheme)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInflate, scheme, err)
	}
	if len(out) != expected {
		return nil, fmt.Errorf("%w: %s expanded to %d bytes, expected %d", ErrInflate, scheme, len(out), expected)
	}

	return out, nil
}

// deflateTexture compresses every level with p and caches the blobs for the
// writer. The in-memory texels stay uncompressed.
func deflateTexture(t *Texture, p DeflateParams, cfg pipelineConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if t.super.Scheme == SchemeBasisLZ {
		return fmt.Errorf("%w: %s payload cannot take %s", ErrIncompatibleSupercompression, t.super.Scheme, p.Scheme)
	}

	l := t.Layout()
	packed := make([][]byte, t.levels)
	err := forEach(t.levels, cfg.workers, func(level int) error {
		offset := l.LevelOffset(level)
		blob, err := deflateLevel(p.Scheme, p.Level, t.data[offset:offset+l.LevelSize(level)])
		if err != nil {
			return fmt.Errorf("%w: level %d", err, level)
		}
		packed[level] = blob
		return nil
	})
	if err != nil {
		return err
	}

	if t.stage == StageSupercompressed && t.super.Generic() {
		cfg.logger.Warn("replacing supercompression", "from", t.super.Scheme, "to", p.Scheme, "level", p.Level)
		t.meta.replaceDeflateRecord(p.record())
	} else {
		t.meta.appendScParams(p.record())
	}
	t.super = Supercompression{Scheme: p.Scheme, Level: p.Level}
	t.packed = packed

	total := 0
	for _, b := range packed {
		total += len(b)
	}
	cfg.logger.Debug("deflated", "scheme", p.Scheme, "level", p.Level, "bytes", len(t.data), "packed", total)

	return nil
}
