// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package imageio loads source pictures and saves extracted images.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	// ErrOpen indicates the input file could not be opened.
	ErrOpen = errors.New("open image failed")
	// ErrDecode indicates the input is not a decodable picture.
	ErrDecode = errors.New("decode image failed")
	// ErrSave indicates the output picture could not be written.
	ErrSave = errors.New("save image failed")
)

// Load decodes the picture at path and reports its format name.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q: %v", ErrOpen, path, err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q: %v", ErrDecode, path, err)
	}

	return img, format, nil
}

// Config reads only the dimensions and colour model of the picture at path.
func Config(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %q: %v", ErrOpen, path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %q: %v", ErrDecode, path, err)
	}

	return cfg, format, nil
}

// Save writes img to path in the format named by its extension. Paths
// without an extension get ".png".
func Save(path string, img image.Image) (string, error) {
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrSave, path, err)
	}

	return path, nil
}

// IndexedName inserts a level/layer/face suffix before the extension of
// path, e.g. "out.png" becomes "out_level1_layer0_face2.png".
func IndexedName(path string, level, layer, face int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".png"
	}

	return fmt.Sprintf("%s_level%d_layer%d_face%d%s", base, level, layer, face, ext)
}
