// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Command ktx creates, encodes, transcodes and inspects KTX2 textures.
package main

import (
	"os"

	"github.com/woozymasta/ktx2/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
