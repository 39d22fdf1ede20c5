// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"
)

// UniversalCodec identifies the universal payload of a texture.
type UniversalCodec uint8

const (
	// CodecNone means the texture carries no universal payload.
	CodecNone UniversalCodec = iota
	// CodecETC1S is the BasisLZ/ETC1S codec.
	CodecETC1S
	// CodecUASTC is the UASTC codec.
	CodecUASTC
)

// String returns the codec name used on the command line.
func (c UniversalCodec) String() string {
	switch c {
	case CodecETC1S:
		return "basis-lz"
	case CodecUASTC:
		return "uastc"
	default:
		return "none"
	}
}

// ParseUniversalCodec resolves "basis-lz" (or "etc1s") and "uastc".
func ParseUniversalCodec(name string) (UniversalCodec, error) {
	switch name {
	case "basis-lz", "etc1s":
		return CodecETC1S, nil
	case "uastc":
		return CodecUASTC, nil
	default:
		return CodecNone, fmt.Errorf("%w: unknown codec %q", ErrInvalidParameter, name)
	}
}

// Scheme is a KTX2 supercompression scheme.
type Scheme uint32

// Supercompression schemes registered by KTX2.
const (
	SchemeNone    Scheme = 0
	SchemeBasisLZ Scheme = 1
	SchemeZstd    Scheme = 2
	SchemeZlib    Scheme = 3
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeNone:
		return "none"
	case SchemeBasisLZ:
		return "basis-lz"
	case SchemeZstd:
		return "zstd"
	case SchemeZlib:
		return "zlib"
	default:
		return fmt.Sprintf("scheme(%d)", uint32(s))
	}
}

// Supercompression is the supercompression state of a texture.
type Supercompression struct {
	Scheme Scheme
	// Level is the deflate level for Zstd and Zlib. It is not stored in
	// the file; deserialized textures report 0.
	Level int
	// GlobalData is the BasisLZ global data.
	GlobalData []byte
}

// Generic reports whether the state is a generic deflate scheme.
func (s Supercompression) Generic() bool {
	return s.Scheme == SchemeZstd || s.Scheme == SchemeZlib
}

// LevelEntry is one record of the level index.
type LevelEntry struct {
	ByteOffset             uint64
	ByteLength             uint64
	UncompressedByteLength uint64
}

// Texture is an in-memory KTX2 texture. Pixel data is kept uncompressed in
// logical order: level 0 first, then layer, face and slice.
type Texture struct {
	format         VkFormat
	typeSize       int
	dimensions     int
	width          int
	height         int
	depth          int
	layers         int
	isArray        bool
	cubemap        bool
	faces          int
	levels         int
	runtimeMipmaps bool

	geom     blockGeometry
	dfd      FormatDescriptor
	codec    UniversalCodec
	channels int
	super    Supercompression
	meta     *Metadata

	data    []byte
	present []bool
	// packed holds deflated level blobs from the last deflate stage.
	packed     [][]byte
	levelIndex []LevelEntry

	stage  Stage
	seq    uint64
	logger hclog.Logger
}

// Create allocates an empty texture after validating info.
func Create(info CreateInfo, opts ...CreateOption) (*Texture, error) {
	cfg := createConfig{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	fi, _ := lookupFormat(info.Format)
	dfd, err := NewFormatDescriptor(info.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	t := &Texture{
		format:         info.Format,
		typeSize:       fi.typeSize,
		dimensions:     info.dimensions(),
		width:          info.Width,
		height:         max(info.Height, 1),
		depth:          max(info.Depth, 1),
		layers:         max(info.Layers, 1),
		isArray:        info.isArray(),
		cubemap:        info.Cubemap,
		faces:          1,
		levels:         info.levelCount(),
		runtimeMipmaps: info.RuntimeMipmaps,
		geom:           fi.geom,
		dfd:            dfd,
		meta:           NewMetadata(),
		stage:          StageRaw,
		logger:         cfg.logger,
	}
	if info.Cubemap {
		t.faces = 6
	}
	if err := t.allocate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	t.logger.Debug("texture created", "format", t.format.Name(), "width", t.width, "height", t.height,
		"depth", t.depth, "layers", t.layers, "faces", t.faces, "levels", t.levels)

	return t, nil
}

// allocate sizes the data buffer for the current layout.
func (t *Texture) allocate() error {
	l, err := t.layoutChecked()
	if err != nil {
		return err
	}

	t.data = make([]byte, l.DataSize())
	t.present = make([]bool, l.ExpectedImageCount(false))

	return nil
}

func (t *Texture) layoutChecked() (Layout, error) {
	return newLayout(t.geom, t.width, t.height, t.depth, t.levels, t.layers, t.faces, false)
}

// Layout returns the addressing of the in-memory pixel data.
func (t *Texture) Layout() Layout {
	l, _ := t.layoutChecked()
	return l
}

// fileLayout returns the addressing used for level alignment on disk.
func (t *Texture) fileLayout() Layout {
	l := t.Layout()
	l.supercompressed = t.super.Scheme != SchemeNone

	return l
}

// Format returns the VkFormat, FormatUndefined for universal payloads.
func (t *Texture) Format() VkFormat { return t.format }

// TypeSize returns the KTX2 typeSize.
func (t *Texture) TypeSize() int { return t.typeSize }

// Width returns the base width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the base height in pixels, 1 for 1D textures.
func (t *Texture) Height() int { return t.height }

// Depth returns the base depth in pixels, 1 for non-3D textures.
func (t *Texture) Depth() int { return t.depth }

// Dimensions returns 1, 2 or 3.
func (t *Texture) Dimensions() int { return t.dimensions }

// Levels returns the number of stored mip levels.
func (t *Texture) Levels() int { return t.levels }

// Layers returns the number of array layers, 1 for non-array textures.
func (t *Texture) Layers() int { return t.layers }

// Faces returns 6 for cubemaps and 1 otherwise.
func (t *Texture) Faces() int { return t.faces }

// IsArray reports whether the texture is an array texture.
func (t *Texture) IsArray() bool { return t.isArray }

// IsCubemap reports whether the texture is a cubemap.
func (t *Texture) IsCubemap() bool { return t.cubemap }

// RuntimeMipmaps reports whether the consumer should generate mip levels.
func (t *Texture) RuntimeMipmaps() bool { return t.runtimeMipmaps }

// Descriptor returns a copy of the data format descriptor.
func (t *Texture) Descriptor() FormatDescriptor {
	d := t.dfd
	d.Samples = append([]Sample(nil), t.dfd.Samples...)

	return d
}

// Codec returns the universal codec, CodecNone for other payloads.
func (t *Texture) Codec() UniversalCodec { return t.codec }

// IsUniversal reports whether the texture carries a universal payload.
func (t *Texture) IsUniversal() bool { return t.codec != CodecNone }

// Supercompression returns the supercompression state.
func (t *Texture) Supercompression() Supercompression {
	s := t.super
	s.GlobalData = append([]byte(nil), t.super.GlobalData...)

	return s
}

// Stage returns the pipeline stage the texture is in.
func (t *Texture) Stage() Stage { return t.stage }

// Metadata returns the key/value store.
func (t *Texture) Metadata() *Metadata { return t.meta }

// LevelIndex returns the level index recorded by the last read or write.
func (t *Texture) LevelIndex() []LevelEntry {
	return append([]LevelEntry(nil), t.levelIndex...)
}

// ImageSize returns the byte size of one image of level.
func (t *Texture) ImageSize(level int) (int, error) {
	if level < 0 || level >= t.levels {
		return 0, fmt.Errorf("%w: level %d of %d", ErrOutOfRange, level, t.levels)
	}

	return t.Layout().ImageSize(level), nil
}

// ImageOffset returns the offset of one image in the pixel data.
func (t *Texture) ImageOffset(level, layer, faceSlice int) (int, error) {
	return t.Layout().ImageOffset(level, layer, faceSlice)
}

// SetImage copies raw texels of one image into the texture.
func (t *Texture) SetImage(level, layer, faceSlice int, src []byte) error {
	if err := t.checkSettable(); err != nil {
		return err
	}

	l := t.Layout()
	offset, err := l.ImageOffset(level, layer, faceSlice)
	if err != nil {
		return err
	}
	size := l.ImageSize(level)
	if len(src) != size {
		return fmt.Errorf("%w: level %d layer %d face/slice %d: expected %d bytes, got %d",
			ErrSizeMismatch, level, layer, faceSlice, size, len(src))
	}

	copy(t.data[offset:offset+size], src)
	index, _ := l.ImageIndex(level, layer, faceSlice)
	t.present[index] = true
	t.packed = nil

	return nil
}

// SetImageFromImage converts img to the texture format and stores it.
func (t *Texture) SetImageFromImage(level, layer, faceSlice int, img image.Image) error {
	if err := t.checkSettable(); err != nil {
		return err
	}
	if err := t.Layout().checkIndex(level, layer, faceSlice); err != nil {
		return err
	}

	w, h, _ := t.Layout().LevelDimensions(level)
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: level %d: expected %dx%d, got %dx%d",
			ErrDimensionMismatch, level, w, h, b.Dx(), b.Dy())
	}

	conv, err := converterFor(t.format)
	if err != nil {
		return err
	}
	if depth := sourceBitDepth(img); depth > conv.RequiredBitDepth() {
		t.logger.Warn("narrowing input precision", "format", t.format.Name(),
			"source_bits", depth, "target_bits", conv.RequiredBitDepth())
	}

	raw, err := conv.Convert(img)
	if err != nil {
		return fmt.Errorf("%w: level %d layer %d face/slice %d: %w", ErrEncode, level, layer, faceSlice, err)
	}

	return t.SetImage(level, layer, faceSlice, raw)
}

// HasImage reports whether an image was supplied.
func (t *Texture) HasImage(level, layer, faceSlice int) bool {
	index, err := t.Layout().ImageIndex(level, layer, faceSlice)
	if err != nil {
		return false
	}

	return t.present[index]
}

// Image returns a copy of one image's bytes.
func (t *Texture) Image(level, layer, faceSlice int) ([]byte, error) {
	l := t.Layout()
	offset, err := l.ImageOffset(level, layer, faceSlice)
	if err != nil {
		return nil, err
	}
	size := l.ImageSize(level)

	return append([]byte(nil), t.data[offset:offset+size]...), nil
}

// LevelData returns a copy of one level's uncompressed bytes.
func (t *Texture) LevelData(level int) ([]byte, error) {
	if level < 0 || level >= t.levels {
		return nil, fmt.Errorf("%w: level %d of %d", ErrOutOfRange, level, t.levels)
	}
	l := t.Layout()
	offset := l.LevelOffset(level)

	return append([]byte(nil), t.data[offset:offset+l.LevelSize(level)]...), nil
}

// Data returns the uncompressed pixel data. The slice aliases the texture.
func (t *Texture) Data() []byte { return t.data }

// missingImages lists absent images among the first count in population order.
func (t *Texture) missingImages(baseOnly bool) []imageRef {
	l := t.Layout()
	to := t.levels
	if baseOnly {
		to = 1
	}

	var missing []imageRef
	for _, ref := range l.images(0, to) {
		index, _ := l.ImageIndex(ref.level, ref.layer, ref.faceSlice)
		if !t.present[index] {
			missing = append(missing, ref)
		}
	}

	return missing
}

// AddMetadata stores a key/value pair, replacing any existing value.
func (t *Texture) AddMetadata(key string, value []byte) error {
	if err := t.checkMutable(); err != nil {
		return err
	}

	return t.meta.Set(key, value)
}

// AddMetadataString stores a NUL-terminated textual value.
func (t *Texture) AddMetadataString(key, value string) error {
	return t.AddMetadata(key, nulTerminated(value))
}

// SetOrientation writes KTXorientation, truncated to the dimension count.
func (t *Texture) SetOrientation(orientation string) error {
	if len(orientation) > t.dimensions {
		orientation = orientation[:t.dimensions]
	}

	return t.AddMetadataString(KeyOrientation, orientation)
}

// AssignColorSpace replaces the primaries and transfer function of the
// descriptor. Only raw textures accept it.
func (t *Texture) AssignColorSpace(primaries Primaries, transfer TransferFunction) error {
	if t.stage != StageRaw {
		return fmt.Errorf("%w: %s", ErrStageLocked, t.stage)
	}
	if t.format.IsSRGB() && transfer != TransferSRGB {
		return fmt.Errorf("%w: %s requires srgb, got %s", ErrIncompatibleTransfer, t.format, transfer)
	}
	if !t.format.IsSRGB() && transfer == TransferSRGB {
		if _, ok := t.format.SRGBVariant(); ok {
			return fmt.Errorf("%w: use the _SRGB variant of %s", ErrIncompatibleTransfer, t.format)
		}
	}

	t.dfd.Primaries = primaries
	t.dfd.Transfer = transfer
	t.logger.Debug("colour space assigned", "primaries", primaries, "transfer", transfer)

	return nil
}

// checkSettable rejects image writes outside the raw stages.
func (t *Texture) checkSettable() error {
	if t.stage != StageRaw && t.stage != StageMipGenerated {
		return fmt.Errorf("%w: %s", ErrStageLocked, t.stage)
	}
	if t.IsUniversal() {
		return fmt.Errorf("%w: universal payload", ErrStageLocked)
	}

	return nil
}

// checkMutable rejects changes once the texture is supercompressed.
func (t *Texture) checkMutable() error {
	if t.stage == StageSupercompressed {
		return fmt.Errorf("%w: %s", ErrStageLocked, t.stage)
	}

	return nil
}

// advance moves the texture to stage and invalidates older handles.
func (t *Texture) advance(stage Stage) uint64 {
	t.stage = stage
	t.seq++

	return t.seq
}

// SetLogger replaces the logger used by texture operations.
func (t *Texture) SetLogger(logger hclog.Logger) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	t.logger = logger
}

// String summarizes the texture.
func (t *Texture) String() string {
	return fmt.Sprintf("%s %dx%dx%d levels=%d layers=%d faces=%d codec=%s scheme=%s",
		t.format.Name(), t.width, t.height, t.depth, t.levels, t.layers, t.faces, t.codec, t.super.Scheme)
}
