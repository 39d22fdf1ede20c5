// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package basis

import "errors"

var (
	// ErrStreamTooLarge is returned when a packed stream exceeds its size limit.
	ErrStreamTooLarge = errors.New("stream too large")
	// ErrStreamTruncated is returned when a packed stream ends early.
	ErrStreamTruncated = errors.New("stream truncated")
	// ErrStreamSizeMismatch is returned when a stream expands to the wrong size.
	ErrStreamSizeMismatch = errors.New("stream size mismatch")
	// ErrUnknownStreamMode is returned for an unknown stream mode tag.
	ErrUnknownStreamMode = errors.New("unknown stream mode")
	// ErrUnknownChunkFlags is returned for reserved chunk flag bits.
	ErrUnknownChunkFlags = errors.New("unknown chunk flags")
	// ErrChunkTooLarge is returned when a compressed chunk overflows 23 bits.
	ErrChunkTooLarge = errors.New("compressed chunk too large")
	// ErrLZ4Compress wraps LZ4 compression failures.
	ErrLZ4Compress = errors.New("lz4 compress failed")
	// ErrLZ4Decode wraps LZ4 decode failures.
	ErrLZ4Decode = errors.New("lz4 decode failed")

	// ErrInvalidGlobalData is returned for malformed ETC1S global data.
	ErrInvalidGlobalData = errors.New("invalid etc1s global data")
	// ErrInvalidImageData is returned for malformed universal image data.
	ErrInvalidImageData = errors.New("invalid universal image data")
	// ErrChannelCount is returned for channel counts outside 1..4.
	ErrChannelCount = errors.New("unsupported channel count")
	// ErrEmptyImage is returned for images without pixels.
	ErrEmptyImage = errors.New("empty image")
)
