// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package blockenc

import "errors"

var (
	// ErrUnknownFormat indicates a block format this package does not handle.
	ErrUnknownFormat = errors.New("blockenc: unknown format")
	// ErrShortData indicates block data shorter than the image requires.
	ErrShortData = errors.New("blockenc: short block data")
	// ErrUnsupportedMode indicates a block mode the decoder does not handle.
	ErrUnsupportedMode = errors.New("blockenc: unsupported block mode")
)
