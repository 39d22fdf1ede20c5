// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"math/bits"
)

// blockGeometry is the texel block shape and byte size of a format.
type blockGeometry struct {
	W, H, D int
	Bytes   int
}

// Layout maps level, layer, face and slice indices to byte ranges of the
// uncompressed pixel-data buffer. It is a pure value.
type Layout struct {
	geometry        blockGeometry
	width           int
	height          int
	depth           int
	levels          int
	layers          int
	faces           int
	supercompressed bool
}

// MaxLevels returns floor(log2(max(w, h, d))) + 1.
func MaxLevels(width, height, depth int) int {
	m := max(width, height, depth, 1)

	return bits.Len(uint(m))
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

// Levels returns the number of stored levels.
func (l Layout) Levels() int { return l.levels }

// Layers returns the number of array layers, at least 1.
func (l Layout) Layers() int { return l.layers }

// Faces returns 1 or 6.
func (l Layout) Faces() int { return l.faces }

// LevelDimensions returns the pixel dimensions of level.
func (l Layout) LevelDimensions(level int) (w, h, d int) {
	return mipDimension(l.width, level), mipDimension(l.height, level), mipDimension(l.depth, level)
}

// DepthSlices returns the number of depth images stored for level.
func (l Layout) DepthSlices(level int) int {
	return ceilDiv(mipDimension(l.depth, level), l.geometry.D)
}

// FaceSlices returns the bound of the faceSlice index for level.
func (l Layout) FaceSlices(level int) int {
	return l.faces * l.DepthSlices(level)
}

// ImageSize returns the byte size of one image of level.
func (l Layout) ImageSize(level int) int {
	w, h, _ := l.LevelDimensions(level)

	return ceilDiv(w, l.geometry.W) * ceilDiv(h, l.geometry.H) * l.geometry.Bytes
}

// LayerSize returns the byte size of one layer of level: every face and slice.
func (l Layout) LayerSize(level int) int {
	return l.ImageSize(level) * l.FaceSlices(level)
}

// LevelSize returns the byte size of level.
func (l Layout) LevelSize(level int) int {
	return l.LayerSize(level) * l.layers
}

// LevelAlignment returns the alignment of level data in the file.
func (l Layout) LevelAlignment() int {
	if l.supercompressed {
		return 1
	}

	return lcm4(l.geometry.Bytes)
}

// LevelOffset returns the offset of level in the logical buffer. Levels are
// stored base first, each padded to LevelAlignment.
func (l Layout) LevelOffset(level int) int {
	align := l.LevelAlignment()
	offset := 0
	for i := 0; i < level; i++ {
		offset = alignUp(offset+l.LevelSize(i), align)
	}

	return offset
}

// DataSize returns the size of the logical buffer.
func (l Layout) DataSize() int {
	if l.levels == 0 {
		return 0
	}

	return l.LevelOffset(l.levels-1) + l.LevelSize(l.levels-1)
}

// ImageCount returns the number of images stored for level.
func (l Layout) ImageCount(level int) int {
	return l.layers * l.FaceSlices(level)
}

// ExpectedImageCount returns the number of images a caller supplies, for
// all levels or for the base level only.
func (l Layout) ExpectedImageCount(baseOnly bool) int {
	if baseOnly {
		return l.ImageCount(0)
	}

	total := 0
	for level := 0; level < l.levels; level++ {
		total += l.ImageCount(level)
	}

	return total
}

// checkIndex validates image coordinates.
func (l Layout) checkIndex(level, layer, faceSlice int) error {
	if level < 0 || level >= l.levels {
		return fmt.Errorf("%w: level %d of %d", ErrOutOfRange, level, l.levels)
	}
	if layer < 0 || layer >= l.layers {
		return fmt.Errorf("%w: layer %d of %d", ErrOutOfRange, layer, l.layers)
	}
	if n := l.FaceSlices(level); faceSlice < 0 || faceSlice >= n {
		return fmt.Errorf("%w: face/slice %d of %d at level %d", ErrOutOfRange, faceSlice, n, level)
	}

	return nil
}

// ImageOffset returns the byte offset of one image in the logical buffer.
func (l Layout) ImageOffset(level, layer, faceSlice int) (int, error) {
	if err := l.checkIndex(level, layer, faceSlice); err != nil {
		return 0, err
	}

	return l.LevelOffset(level) + layer*l.LayerSize(level) + faceSlice*l.ImageSize(level), nil
}

// ImageIndex returns the position of an image in population order:
// level, then layer, then face, then slice.
func (l Layout) ImageIndex(level, layer, faceSlice int) (int, error) {
	if err := l.checkIndex(level, layer, faceSlice); err != nil {
		return 0, err
	}

	index := 0
	for i := 0; i < level; i++ {
		index += l.ImageCount(i)
	}

	return index + layer*l.FaceSlices(level) + faceSlice, nil
}

// imageRef addresses one image.
type imageRef struct {
	level, layer, faceSlice int
}

// images lists every image of the given levels in population order.
func (l Layout) images(fromLevel, toLevel int) []imageRef {
	var refs []imageRef
	for level := fromLevel; level < toLevel; level++ {
		for layer := 0; layer < l.layers; layer++ {
			for fs := 0; fs < l.FaceSlices(level); fs++ {
				refs = append(refs, imageRef{level: level, layer: layer, faceSlice: fs})
			}
		}
	}

	return refs
}

// newLayout builds a layout and checks the total size against overflow.
func newLayout(geom blockGeometry, width, height, depth, levels, layers, faces int, supercompressed bool) (Layout, error) {
	l := Layout{
		geometry:        geom,
		width:           width,
		height:          height,
		depth:           depth,
		levels:          levels,
		layers:          max(layers, 1),
		faces:           faces,
		supercompressed: supercompressed,
	}
	if geom.Bytes <= 0 || geom.W <= 0 || geom.H <= 0 || geom.D <= 0 {
		return Layout{}, fmt.Errorf("%w: block geometry %+v", ErrUnsupportedFormat, geom)
	}

	w, h, d := ceilDiv(width, geom.W), ceilDiv(height, geom.H), ceilDiv(depth, geom.D)
	if _, err := mulChecked(w, h, d, geom.Bytes, l.layers, faces, 2); err != nil {
		return Layout{}, fmt.Errorf("%w: %dx%dx%d, %d layers", err, width, height, depth, layers)
	}

	return l, nil
}
