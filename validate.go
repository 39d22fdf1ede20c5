// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
)

// CreateInfo describes a texture to create.
type CreateInfo struct {
	Format VkFormat
	// Dimensions is 1, 2 or 3. Zero infers 3 when Depth > 1, else 2.
	Dimensions int
	Width      int
	Height     int
	Depth      int // zero means 1
	Layers     int // zero means 1; above 1 implies an array texture
	IsArray    bool
	Cubemap    bool
	// Levels is the number of mip levels. Zero means 1, or the full chain
	// when GenerateMipmaps is set.
	Levels          int
	GenerateMipmaps bool
	RuntimeMipmaps  bool
}

func (c CreateInfo) dimensions() int {
	switch {
	case c.Dimensions != 0:
		return c.Dimensions
	case c.Depth > 1:
		return 3
	default:
		return 2
	}
}

func (c CreateInfo) levelCount() int {
	switch {
	case c.Levels > 0:
		return c.Levels
	case c.GenerateMipmaps:
		return MaxLevels(c.Width, c.Height, max(c.Depth, 1))
	default:
		return 1
	}
}

func (c CreateInfo) isArray() bool {
	return c.IsArray || c.Layers > 1
}

// Validate checks the structural rules of a texture. It does not allocate.
func (c CreateInfo) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("%w: width %d, height %d", ErrInvalidDimensions, c.Width, c.Height)
	}
	if c.Depth < 0 || c.Layers < 0 || c.Levels < 0 {
		return fmt.Errorf("%w: depth %d, layers %d, levels %d", ErrInvalidDimensions, c.Depth, c.Layers, c.Levels)
	}
	depth := max(c.Depth, 1)

	if c.isArray() && depth > 1 {
		return fmt.Errorf("%w: %d layers with depth %d", ErrArrayAnd3D, max(c.Layers, 1), depth)
	}
	if c.Cubemap && depth > 1 {
		return fmt.Errorf("%w: depth %d", ErrCubemap3D, depth)
	}
	if c.Cubemap && c.Width != c.Height {
		return fmt.Errorf("%w: %dx%d", ErrCubemapNotSquare, c.Width, c.Height)
	}

	switch dims := c.dimensions(); dims {
	case 1:
		if c.Height != 1 || depth != 1 {
			return fmt.Errorf("%w: 1D texture with height %d, depth %d", ErrInvalidDimensions, c.Height, depth)
		}
		if c.Cubemap {
			return fmt.Errorf("%w: 1D cubemap", ErrInvalidDimensions)
		}
	case 2:
		if depth != 1 {
			return fmt.Errorf("%w: 2D texture with depth %d", ErrInvalidDimensions, depth)
		}
	case 3:
	default:
		return fmt.Errorf("%w: %d dimensions", ErrInvalidDimensions, dims)
	}

	if c.Format == FormatUndefined || !c.Format.Known() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.Format)
	}

	if maxLevels := MaxLevels(c.Width, c.Height, depth); c.Levels > maxLevels {
		return fmt.Errorf("%w: %d requested, %dx%dx%d allows %d",
			ErrTooManyLevels, c.Levels, c.Width, c.Height, depth, maxLevels)
	}

	if c.RuntimeMipmaps {
		if c.GenerateMipmaps {
			return fmt.Errorf("%w: runtime mipmaps with mipmap generation", ErrConflictingOptions)
		}
		if c.Levels > 1 {
			return fmt.Errorf("%w: runtime mipmaps with %d levels", ErrConflictingOptions, c.Levels)
		}
	}

	if c.GenerateMipmaps {
		if err := mipmapSupport(c.Format, depth); err != nil {
			return err
		}
	}

	return nil
}

// mipmapSupport reports whether mip levels can be generated for a format.
func mipmapSupport(f VkFormat, depth int) error {
	switch {
	case f.IsInteger():
		return fmt.Errorf("%w: mipmap generation for integer format %s", ErrUnsupportedForFormat, f)
	case f.IsCompressed():
		return fmt.Errorf("%w: mipmap generation for block format %s", ErrUnsupportedForFormat, f)
	case f == FormatUndefined:
		return fmt.Errorf("%w: mipmap generation for a universal payload", ErrUnsupportedForFormat)
	case depth > 1:
		return fmt.Errorf("%w: mipmap generation for 3D textures", ErrUnsupportedForFormat)
	}

	return nil
}

// Request is a complete create-and-encode request, validated before any
// image is read.
type Request struct {
	Create CreateInfo
	// Mipmap enables mip generation.
	Mipmap *MipmapOptions
	// Universal selects a universal codec.
	Universal *UniversalParams
	// BlockTarget and Block select direct block encoding.
	BlockTarget VkFormat
	Block       *BlockParams
	// Deflate selects generic supercompression.
	Deflate *DeflateParams
	// InputImages is the number of images the caller will supply.
	InputImages int
	// Raw means the input is raw texel data rather than decoded images.
	Raw bool
}

// Validate checks every rule of the request.
func (r Request) Validate() error {
	create := r.Create
	create.GenerateMipmaps = r.Mipmap != nil
	if err := create.Validate(); err != nil {
		return err
	}

	if r.Mipmap != nil {
		if r.Raw {
			return fmt.Errorf("%w: mipmap generation with raw input", ErrConflictingOptions)
		}
		if err := r.Mipmap.Validate(); err != nil {
			return err
		}
	}

	if r.Universal != nil && r.Block != nil {
		return fmt.Errorf("%w: universal and block encoding", ErrConflictingOptions)
	}
	if r.Universal != nil {
		if err := checkUniversalSource(create.Format); err != nil {
			return err
		}
		if err := r.Universal.Validate(); err != nil {
			return err
		}
		if r.Universal.Codec == CodecETC1S && r.Deflate != nil {
			return fmt.Errorf("%w: basis-lz with %s", ErrConflictingOptions, r.Deflate.Scheme)
		}
	}
	if r.Block != nil {
		if err := checkBlockTarget(create.Format, r.BlockTarget); err != nil {
			return err
		}
		if err := r.Block.Validate(); err != nil {
			return err
		}
	}
	if r.Deflate != nil {
		if err := r.Deflate.Validate(); err != nil {
			return err
		}
	}

	fi, _ := lookupFormat(create.Format)
	l, err := newLayout(fi.geom, create.Width, create.Height, max(create.Depth, 1),
		create.levelCount(), max(create.Layers, 1), faceCount(create.Cubemap), false)
	if err != nil {
		return err
	}

	return ValidateImageCount(l, r.Mipmap != nil, r.InputImages)
}

// ValidateImageCount checks provided against the number of images the
// layout expects, for the base level only when baseOnly is set.
func ValidateImageCount(l Layout, baseOnly bool, provided int) error {
	levels := l.Levels()
	if baseOnly {
		levels = 1
	}
	expected := l.ExpectedImageCount(baseOnly)
	if provided == expected {
		return nil
	}

	direction := "few"
	if provided > expected {
		direction = "many"
	}

	return fmt.Errorf("%w: too %s input images for %d levels, %d layers, %d faces, %d depth: provided %d but expected %d",
		ErrImageCountMismatch, direction, levels, l.Layers(), l.Faces(), l.DepthSlices(0), provided, expected)
}

func faceCount(cubemap bool) int {
	if cubemap {
		return 6
	}

	return 1
}

// Check reports rule violations the reader tolerates, such as bad metadata
// keys or an orientation longer than the dimension count. An empty result
// means the texture is valid.
func (t *Texture) Check() []error {
	var issues []error

	for _, key := range t.meta.Keys() {
		value, _ := t.meta.Get(key)
		if err := checkMetadata(key, value); err != nil {
			issues = append(issues, err)
		}
	}
	if o, ok := t.meta.GetString(KeyOrientation); ok && len(o) > t.dimensions {
		issues = append(issues, fmt.Errorf("%w: orientation %q for %d dimensions", ErrInvalidMetadataValue, o, t.dimensions))
	}

	return issues
}
