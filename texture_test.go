package ktx2

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
)

// fillPattern supplies every image of tex with deterministic bytes.
func fillPattern(t *testing.T, tex *Texture) {
	t.Helper()

	l := tex.Layout()
	for _, ref := range l.images(0, tex.Levels()) {
		buf := make([]byte, l.ImageSize(ref.level))
		for i := range buf {
			buf[i] = byte(i*7 + ref.level*31 + ref.layer*13 + ref.faceSlice*3)
		}
		if err := tex.SetImage(ref.level, ref.layer, ref.faceSlice, buf); err != nil {
			t.Fatalf("SetImage(%d,%d,%d): %v", ref.level, ref.layer, ref.faceSlice, err)
		}
	}
}

// gradient returns an opaque image with smooth colour ramps.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 127 / max(w+h-2, 1)),
				A: 255,
			})
		}
	}

	return img
}

// newGradientTexture creates a texture with a gradient in every base image
// and, when all is set, in every level.
func newGradientTexture(t *testing.T, info CreateInfo, all bool) *Texture {
	t.Helper()

	tex, err := Create(info)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	to := 1
	if all {
		to = tex.Levels()
	}
	l := tex.Layout()
	for _, ref := range l.images(0, to) {
		w, h, _ := l.LevelDimensions(ref.level)
		if err := tex.SetImageFromImage(ref.level, ref.layer, ref.faceSlice, gradient(w, h)); err != nil {
			t.Fatalf("SetImageFromImage(%d,%d,%d): %v", ref.level, ref.layer, ref.faceSlice, err)
		}
	}

	return tex
}

func TestRawRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info CreateInfo
	}{
		{"rgba8 mips", CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 4, Levels: 3}},
		{"bgra8 srgb", CreateInfo{Format: FormatB8G8R8A8SRGB, Width: 5, Height: 3}},
		{"rgb8 odd", CreateInfo{Format: FormatR8G8B8Unorm, Width: 3, Height: 3, Levels: 2}},
		{"r8 cubemap array", CreateInfo{Format: FormatR8Unorm, Width: 4, Height: 4, Layers: 2, Cubemap: true, Levels: 3}},
		{"rgba16 volume", CreateInfo{Format: FormatR16G16B16A16Unorm, Dimensions: 3, Width: 4, Height: 4, Depth: 4, Levels: 2}},
		{"rg8 1d", CreateInfo{Format: FormatR8G8Unorm, Dimensions: 1, Width: 8, Levels: 4}},
		{"rgba32f array", CreateInfo{Format: FormatR32G32B32A32Sfloat, Width: 2, Height: 2, Layers: 3}},
		{"runtime mips", CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 16, Height: 16, RuntimeMipmaps: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex, err := Create(tt.info)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			fillPattern(t, tex)

			data, err := tex.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			if got.Format() != tex.Format() {
				t.Errorf("format %s, want %s", got.Format(), tex.Format())
			}
			if got.Width() != tex.Width() || got.Height() != tex.Height() || got.Depth() != tex.Depth() {
				t.Errorf("size %dx%dx%d, want %dx%dx%d", got.Width(), got.Height(), got.Depth(),
					tex.Width(), tex.Height(), tex.Depth())
			}
			if got.Dimensions() != tex.Dimensions() {
				t.Errorf("dimensions %d, want %d", got.Dimensions(), tex.Dimensions())
			}
			if got.Levels() != tex.Levels() || got.Layers() != tex.Layers() || got.Faces() != tex.Faces() {
				t.Errorf("levels/layers/faces %d/%d/%d, want %d/%d/%d", got.Levels(), got.Layers(), got.Faces(),
					tex.Levels(), tex.Layers(), tex.Faces())
			}
			if got.IsArray() != tex.IsArray() || got.IsCubemap() != tex.IsCubemap() {
				t.Errorf("array/cubemap %v/%v, want %v/%v", got.IsArray(), got.IsCubemap(), tex.IsArray(), tex.IsCubemap())
			}
			if got.RuntimeMipmaps() != tex.RuntimeMipmaps() {
				t.Errorf("runtime mipmaps %v, want %v", got.RuntimeMipmaps(), tex.RuntimeMipmaps())
			}
			if got.Stage() != StageRaw {
				t.Errorf("stage %s, want %s", got.Stage(), StageRaw)
			}
			if !bytes.Equal(got.Data(), tex.Data()) {
				t.Error("pixel data differs after round trip")
			}
			for _, ref := range tex.Layout().images(0, tex.Levels()) {
				wantOff, _ := tex.ImageOffset(ref.level, ref.layer, ref.faceSlice)
				gotOff, err := got.ImageOffset(ref.level, ref.layer, ref.faceSlice)
				if err != nil || gotOff != wantOff {
					t.Errorf("ImageOffset%v = %d, %v; want %d", ref, gotOff, err, wantOff)
				}
				wantSize, _ := tex.ImageSize(ref.level)
				if gotSize, _ := got.ImageSize(ref.level); gotSize != wantSize {
					t.Errorf("ImageSize(%d) = %d, want %d", ref.level, gotSize, wantSize)
				}
			}
			if w, ok := got.Metadata().GetString(KeyWriter); !ok || w != defaultWriter() {
				t.Errorf("KTXwriter %q, want %q", w, defaultWriter())
			}

			again, err := got.MarshalBinary()
			if err != nil {
				t.Fatalf("second MarshalBinary: %v", err)
			}
			if !bytes.Equal(again, data) {
				t.Error("re-encoding a decoded file changed its bytes")
			}
		})
	}
}

func TestWriteStoresSmallestLevelFirst(t *testing.T) {
	t.Parallel()

	tex, err := Create(CreateInfo{Format: FormatR8G8B8Unorm, Width: 8, Height: 8, Levels: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fillPattern(t, tex)
	if _, err := tex.MarshalBinary(); err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	index := tex.LevelIndex()
	if len(index) != 4 {
		t.Fatalf("level index has %d entries, want 4", len(index))
	}
	for level, e := range index {
		if e.ByteOffset%12 != 0 {
			t.Errorf("level %d offset %d not aligned to 12", level, e.ByteOffset)
		}
		if level > 0 && e.ByteOffset >= index[level-1].ByteOffset {
			t.Errorf("level %d at %d is not stored before level %d at %d",
				level, e.ByteOffset, level-1, index[level-1].ByteOffset)
		}
		if e.ByteLength != e.UncompressedByteLength {
			t.Errorf("level %d length %d, uncompressed %d", level, e.ByteLength, e.UncompressedByteLength)
		}
	}
}

func TestWriterIdentity(t *testing.T) {
	t.Parallel()

	tex, err := Create(CreateInfo{Format: FormatR8Unorm, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fillPattern(t, tex)

	var buf bytes.Buffer
	if err := tex.Encode(&buf, WithWriterIdentity("tool 1.0")); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w, _ := got.Metadata().GetString(KeyWriter); w != "tool 1.0" {
		t.Errorf("KTXwriter %q, want %q", w, "tool 1.0")
	}
}

func TestDeflateRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params DeflateParams
		record string
	}{
		{"zstd", DeflateParams{Scheme: SchemeZstd, Level: 5}, "--zstd 5"},
		{"zstd max", DeflateParams{Scheme: SchemeZstd, Level: 22}, "--zstd 22"},
		{"zlib", DeflateParams{Scheme: SchemeZlib, Level: 9}, "--zlib 9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 16, Height: 16, Layers: 2, Levels: 5}, true)
			raw, err := Start(tex)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if _, err := raw.Deflate(tt.params); err != nil {
				t.Fatalf("Deflate: %v", err)
			}

			data, err := tex.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			for level, e := range tex.LevelIndex() {
				if e.ByteLength == 0 || e.UncompressedByteLength == 0 {
					t.Errorf("level %d has empty lengths %+v", level, e)
				}
			}

			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if s := got.Supercompression(); s.Scheme != tt.params.Scheme {
				t.Errorf("scheme %s, want %s", s.Scheme, tt.params.Scheme)
			}
			if got.Stage() != StageSupercompressed {
				t.Errorf("stage %s, want %s", got.Stage(), StageSupercompressed)
			}
			if !bytes.Equal(got.Data(), tex.Data()) {
				t.Error("inflated data differs")
			}
			sc, _ := got.Metadata().GetString(KeyWriterScParams)
			if !strings.Contains(sc, tt.record) {
				t.Errorf("KTXwriterScParams %q lacks %q", sc, tt.record)
			}
		})
	}
}

func TestDeflateReplacesPrevious(t *testing.T) {
	t.Parallel()

	tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8}, true)
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s, err := raw.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 3})
	if err != nil {
		t.Fatalf("Deflate zstd: %v", err)
	}
	if _, err := s.Deflate(DeflateParams{Scheme: SchemeZlib, Level: 6}); err != nil {
		t.Fatalf("Deflate zlib: %v", err)
	}

	if got := tex.Supercompression().Scheme; got != SchemeZlib {
		t.Errorf("scheme %s, want %s", got, SchemeZlib)
	}
	sc, _ := tex.Metadata().GetString(KeyWriterScParams)
	if strings.Contains(sc, "--zstd") || !strings.Contains(sc, "--zlib 6") {
		t.Errorf("KTXwriterScParams %q", sc)
	}
}

func TestPipelineMissingImages(t *testing.T) {
	t.Parallel()

	tex, err := Create(CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 4, Height: 4, Layers: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tex.SetImageFromImage(0, 0, 0, gradient(4, 4)); err != nil {
		t.Fatalf("SetImageFromImage: %v", err)
	}
	if _, err := Start(tex); !errors.Is(err, ErrMissingImage) {
		t.Fatalf("Start with an absent base image: got %v, want %v", err, ErrMissingImage)
	}

	mips := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8, Levels: 4}, false)
	raw, err := Start(mips)
	if err != nil {
		t.Fatalf("Start with base images only: %v", err)
	}
	if _, err := raw.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 3}); !errors.Is(err, ErrMissingImage) {
		t.Errorf("Deflate with absent levels: got %v, want %v", err, ErrMissingImage)
	}
	if _, err := mips.MarshalBinary(); !errors.Is(err, ErrMissingImage) {
		t.Errorf("MarshalBinary with absent levels: got %v, want %v", err, ErrMissingImage)
	}
}

func TestPipelineStaleHandle(t *testing.T) {
	t.Parallel()

	tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8, Levels: 4}, false)
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	mip, err := raw.GenerateMipmaps(DefaultMipmapOptions())
	if err != nil {
		t.Fatalf("GenerateMipmaps: %v", err)
	}
	if mip.Stage() != StageMipGenerated {
		t.Errorf("stage %s, want %s", mip.Stage(), StageMipGenerated)
	}

	if _, err := raw.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 3}); !errors.Is(err, ErrStaleStage) {
		t.Errorf("Deflate on a stale handle: got %v, want %v", err, ErrStaleStage)
	}
	if _, err := raw.GenerateMipmaps(DefaultMipmapOptions()); !errors.Is(err, ErrStaleStage) {
		t.Errorf("GenerateMipmaps on a stale handle: got %v, want %v", err, ErrStaleStage)
	}

	if _, err := mip.EncodeUniversal(DefaultUniversalParams(CodecUASTC)); err != nil {
		t.Fatalf("EncodeUniversal: %v", err)
	}
	if _, err := mip.EncodeBlock(FormatBC1RGBUnorm, DefaultBlockParams()); !errors.Is(err, ErrStaleStage) {
		t.Errorf("EncodeBlock on a stale handle: got %v, want %v", err, ErrStaleStage)
	}
}

func TestStageLocked(t *testing.T) {
	t.Parallel()

	tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8}, true)
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	enc, err := raw.EncodeUniversal(DefaultUniversalParams(CodecUASTC))
	if err != nil {
		t.Fatalf("EncodeUniversal: %v", err)
	}

	if err := tex.SetImageFromImage(0, 0, 0, gradient(8, 8)); !errors.Is(err, ErrStageLocked) {
		t.Errorf("SetImageFromImage after encoding: got %v, want %v", err, ErrStageLocked)
	}
	if err := tex.AssignColorSpace(PrimariesBT709, TransferLinear); !errors.Is(err, ErrStageLocked) {
		t.Errorf("AssignColorSpace after encoding: got %v, want %v", err, ErrStageLocked)
	}
	if _, err := Start(tex); !errors.Is(err, ErrStageLocked) {
		t.Errorf("Start after encoding: got %v, want %v", err, ErrStageLocked)
	}

	if _, err := enc.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 9}); err != nil {
		t.Fatalf("Deflate: %v", err)
	}
	if err := tex.AddMetadataString("app", "x"); !errors.Is(err, ErrStageLocked) {
		t.Errorf("AddMetadata after deflate: got %v, want %v", err, ErrStageLocked)
	}
}

func TestSetImageErrors(t *testing.T) {
	t.Parallel()

	tex, err := Create(CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8, Levels: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := tex.SetImage(0, 0, 0, make([]byte, 10)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("short buffer: got %v, want %v", err, ErrSizeMismatch)
	}
	if err := tex.SetImage(2, 0, 0, make([]byte, 4)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("level out of range: got %v, want %v", err, ErrOutOfRange)
	}
	if err := tex.SetImage(0, 1, 0, make([]byte, 256)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("layer out of range: got %v, want %v", err, ErrOutOfRange)
	}
	if err := tex.SetImageFromImage(1, 0, 0, gradient(8, 8)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("wrong image size: got %v, want %v", err, ErrDimensionMismatch)
	}
	if tex.HasImage(0, 0, 0) {
		t.Error("failed writes marked the image present")
	}

	if err := tex.SetImageFromImage(1, 0, 0, gradient(4, 4)); err != nil {
		t.Fatalf("SetImageFromImage: %v", err)
	}
	if !tex.HasImage(1, 0, 0) {
		t.Error("image not marked present")
	}
	got, err := tex.Image(1, 0, 0)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if want := gradient(4, 4).Pix; !bytes.Equal(got, want) {
		t.Error("stored texels differ from the source image")
	}
}

func TestAssignColorSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   VkFormat
		transfer TransferFunction
		want     error
	}{
		{"unorm with srgb", FormatR8G8B8A8Unorm, TransferSRGB, ErrIncompatibleTransfer},
		{"srgb with linear", FormatR8G8B8A8SRGB, TransferLinear, ErrIncompatibleTransfer},
		{"unorm linear", FormatR8G8B8A8Unorm, TransferLinear, nil},
		{"r16 srgb", FormatR16Unorm, TransferSRGB, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex, err := Create(CreateInfo{Format: tt.format, Width: 4, Height: 4})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			err = tex.AssignColorSpace(PrimariesBT2020, tt.transfer)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AssignColorSpace: got %v, want %v", err, tt.want)
			}
			if tt.want != nil {
				return
			}

			fillPattern(t, tex)
			data, err := tex.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			d := got.Descriptor()
			if d.Primaries != PrimariesBT2020 || d.Transfer != tt.transfer {
				t.Errorf("descriptor %s/%s, want %s/%s", d.Primaries, d.Transfer, PrimariesBT2020, tt.transfer)
			}
		})
	}
}

func TestUniversalRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		codec  UniversalCodec
		format VkFormat
		scheme Scheme
	}{
		{"etc1s r8", CodecETC1S, FormatR8Unorm, SchemeBasisLZ},
		{"etc1s rg8", CodecETC1S, FormatR8G8Unorm, SchemeBasisLZ},
		{"etc1s rgb8 srgb", CodecETC1S, FormatR8G8B8SRGB, SchemeBasisLZ},
		{"etc1s rgba8", CodecETC1S, FormatR8G8B8A8Unorm, SchemeBasisLZ},
		{"uastc rgb8", CodecUASTC, FormatR8G8B8Unorm, SchemeNone},
		{"uastc rgba8 srgb", CodecUASTC, FormatR8G8B8A8SRGB, SchemeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex := newGradientTexture(t, CreateInfo{Format: tt.format, Width: 12, Height: 8, Levels: 3}, false)
			raw, err := Start(tex)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			mip, err := raw.GenerateMipmaps(DefaultMipmapOptions())
			if err != nil {
				t.Fatalf("GenerateMipmaps: %v", err)
			}
			if _, err := mip.EncodeUniversal(DefaultUniversalParams(tt.codec)); err != nil {
				t.Fatalf("EncodeUniversal: %v", err)
			}

			data, err := tex.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			if got.Codec() != tt.codec {
				t.Errorf("codec %s, want %s", got.Codec(), tt.codec)
			}
			if got.Format() != FormatUndefined {
				t.Errorf("format %s, want undefined", got.Format())
			}
			if s := got.Supercompression(); s.Scheme != tt.scheme {
				t.Errorf("scheme %s, want %s", s.Scheme, tt.scheme)
			}
			if got.Stage() != StageUniversalEncoded {
				t.Errorf("stage %s, want %s", got.Stage(), StageUniversalEncoded)
			}
			if want := tt.format.ChannelCount(); got.Descriptor().ChannelCount() != want {
				t.Errorf("descriptor has %d channels, want %d", got.Descriptor().ChannelCount(), want)
			}
			if tt.format.IsSRGB() != (got.Descriptor().Transfer == TransferSRGB) {
				t.Errorf("transfer %s for %s", got.Descriptor().Transfer, tt.format)
			}
			if !bytes.Equal(got.Data(), tex.Data()) {
				t.Error("universal payload differs after round trip")
			}

			for level := range got.Levels() {
				img, err := got.DecodeImage(level, 0, 0)
				if err != nil {
					t.Fatalf("DecodeImage(%d): %v", level, err)
				}
				w, h, _ := got.Layout().LevelDimensions(level)
				if img.Rect.Dx() != w || img.Rect.Dy() != h {
					t.Errorf("level %d decoded %v, want %dx%d", level, img.Rect, w, h)
				}
			}
		})
	}
}

func TestETC1SRejectsDeflate(t *testing.T) {
	t.Parallel()

	tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8}, true)
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	enc, err := raw.EncodeUniversal(DefaultUniversalParams(CodecETC1S))
	if err != nil {
		t.Fatalf("EncodeUniversal: %v", err)
	}
	if _, err := enc.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 3}); !errors.Is(err, ErrIncompatibleSupercompression) {
		t.Fatalf("Deflate: got %v, want %v", err, ErrIncompatibleSupercompression)
	}
	if tex.Stage() != StageUniversalEncoded {
		t.Errorf("failed deflate moved the texture to %s", tex.Stage())
	}
}

func TestUASTCDeflate(t *testing.T) {
	t.Parallel()

	tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8}, true)
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	enc, err := raw.EncodeUniversal(DefaultUniversalParams(CodecUASTC))
	if err != nil {
		t.Fatalf("EncodeUniversal: %v", err)
	}
	if _, err := enc.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 3}); err != nil {
		t.Fatalf("Deflate: %v", err)
	}

	data, err := tex.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Codec() != CodecUASTC || got.Supercompression().Scheme != SchemeZstd {
		t.Errorf("codec %s scheme %s", got.Codec(), got.Supercompression().Scheme)
	}
	if got.Stage() != StageSupercompressed {
		t.Errorf("stage %s, want %s", got.Stage(), StageSupercompressed)
	}
}

func TestWorkerCountDoesNotChangeOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func(*Raw) error
	}{
		{"uastc", func(r *Raw) error {
			m, err := r.GenerateMipmaps(DefaultMipmapOptions())
			if err != nil {
				return err
			}
			_, err = m.EncodeUniversal(DefaultUniversalParams(CodecUASTC))
			return err
		}},
		{"etc1s", func(r *Raw) error {
			m, err := r.GenerateMipmaps(DefaultMipmapOptions())
			if err != nil {
				return err
			}
			_, err = m.EncodeUniversal(DefaultUniversalParams(CodecETC1S))
			return err
		}},
		{"bc1", func(r *Raw) error {
			m, err := r.GenerateMipmaps(DefaultMipmapOptions())
			if err != nil {
				return err
			}
			_, err = m.EncodeBlock(FormatBC1RGBUnorm, DefaultBlockParams())
			return err
		}},
		{"bc7 zstd", func(r *Raw) error {
			m, err := r.GenerateMipmaps(MipmapOptions{Filter: FilterBox})
			if err != nil {
				return err
			}
			b, err := m.EncodeBlock(FormatBC7Unorm, BlockParams{Quality: 1})
			if err != nil {
				return err
			}
			_, err = b.Deflate(DeflateParams{Scheme: SchemeZstd, Level: 10})
			return err
		}},
		{"mipmap zlib", func(r *Raw) error {
			m, err := r.GenerateMipmaps(MipmapOptions{Filter: FilterMitchell, Wrap: WrapMirror})
			if err != nil {
				return err
			}
			_, err = m.Deflate(DeflateParams{Scheme: SchemeZlib, Level: 6})
			return err
		}},
	}

	digest := func(t *testing.T, workers int, run func(*Raw) error) uint64 {
		t.Helper()

		tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 16, Height: 16, Layers: 2, Levels: 5}, false)
		raw, err := Start(tex, WithWorkers(workers))
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := run(raw); err != nil {
			t.Fatalf("pipeline: %v", err)
		}
		data, err := tex.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}

		return xxhash.Sum64(data)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if a, b := digest(t, 1, tt.run), digest(t, 8, tt.run); a != b {
				t.Errorf("output with 1 worker %016x, with 8 workers %016x", a, b)
			}
		})
	}
}

func TestCubemapArrayDecodeImage(t *testing.T) {
	t.Parallel()

	tex := newGradientTexture(t, CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 4, Height: 4, Layers: 2, Cubemap: true}, true)
	src := gradient(4, 4)
	for layer := range 2 {
		for face := range 6 {
			img, err := tex.DecodeImage(0, layer, face)
			if err != nil {
				t.Fatalf("DecodeImage(%d,%d): %v", layer, face, err)
			}
			if !bytes.Equal(img.Pix, src.Pix) {
				t.Errorf("layer %d face %d differs from source", layer, face)
			}
		}
	}
	if _, err := tex.DecodeImage(0, 0, 6); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("face 6: got %v, want %v", err, ErrOutOfRange)
	}
}
