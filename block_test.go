package ktx2

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"
)

func TestCheckBlockTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    VkFormat
		target VkFormat
		want   error
	}{
		{"rgba8 to bc7", FormatR8G8B8A8Unorm, FormatBC7Unorm, nil},
		{"srgb to bc1 srgb", FormatR8G8B8A8SRGB, FormatBC1RGBSRGB, nil},
		{"r8 to bc4", FormatR8Unorm, FormatBC4Unorm, nil},
		{"rg8 to eac rg11", FormatR8G8Unorm, FormatEACR11G11Unorm, nil},
		{"srgb to unorm", FormatR8G8B8A8SRGB, FormatBC7Unorm, ErrIncompatibleTransfer},
		{"raw target", FormatR8G8B8A8Unorm, FormatR8G8B8A8Unorm, ErrUnsupportedFormat},
		{"16-bit source", FormatR16G16B16A16Unorm, FormatBC7Unorm, ErrUnsupportedFormat},
		{"astc target", FormatR8G8B8A8Unorm, FormatASTC4x4Unorm, nil},
		{"srgb to astc 8x8 srgb", FormatR8G8B8A8SRGB, FormatASTC8x8SRGB, nil},
		{"rgba8 to etc2 punch-through", FormatR8G8B8A8Unorm, FormatETC2R8G8B8A1Unorm, nil},
		{"r8 to signed eac", FormatR8Unorm, FormatEACR11Snorm, nil},
		{"bc6h target", FormatR8G8B8A8Unorm, FormatBC6HUfloat, ErrNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := checkBlockTarget(tt.src, tt.target); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source VkFormat
		target VkFormat
	}{
		{"bc1", FormatR8G8B8A8Unorm, FormatBC1RGBUnorm},
		{"bc3 srgb", FormatR8G8B8A8SRGB, FormatBC3SRGB},
		{"bc4", FormatR8Unorm, FormatBC4Unorm},
		{"bc7", FormatR8G8B8A8Unorm, FormatBC7Unorm},
		{"etc2 rgba", FormatR8G8B8A8Unorm, FormatETC2R8G8B8A8Unorm},
		{"eac r11", FormatR8Unorm, FormatEACR11Unorm},
		{"etc2 rgb a1 srgb", FormatR8G8B8A8SRGB, FormatETC2R8G8B8A1SRGB},
		{"eac rg11 snorm", FormatR8G8Unorm, FormatEACR11G11Snorm},
		{"astc 4x4", FormatR8G8B8A8Unorm, FormatASTC4x4Unorm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex := newGradientTexture(t, CreateInfo{Format: tt.source, Width: 10, Height: 6, Levels: 3, Layers: 2}, true)
			raw, err := Start(tex, WithWorkers(2))
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if _, err := raw.EncodeBlock(tt.target, BlockParams{Quality: 0}); err != nil {
				t.Fatalf("EncodeBlock: %v", err)
			}
			if tex.Format() != tt.target || tex.Stage() != StageBlockEncoded {
				t.Fatalf("format %s stage %s", tex.Format(), tex.Stage())
			}

			// 10x6 is 3x2 blocks, 5x3 is 2x1 and 2x1 is 1x1.
			blocks := []int{6, 2, 1}
			for level, n := range blocks {
				size, err := tex.ImageSize(level)
				if err != nil {
					t.Fatalf("ImageSize(%d): %v", level, err)
				}
				if want := n * tt.target.BytesPerBlock(); size != want {
					t.Errorf("level %d image is %d bytes, want %d", level, size, want)
				}
			}

			data, err := tex.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Stage() != StageBlockEncoded || got.Format() != tt.target {
				t.Errorf("decoded format %s stage %s", got.Format(), got.Stage())
			}
			img, err := got.DecodeImage(0, 1, 0)
			if err != nil {
				t.Fatalf("DecodeImage: %v", err)
			}
			if img.Rect.Dx() != 10 || img.Rect.Dy() != 6 {
				t.Errorf("decoded %v, want 10x6", img.Rect)
			}
		})
	}
}

func TestEncodeBlockASTCFootprints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source VkFormat
		target VkFormat
		blocks int
	}{
		// 10x6 is 2x1 blocks of 6x6 and 2x1 of 8x8.
		{"6x6", FormatR8G8B8A8Unorm, FormatASTC6x6Unorm, 2},
		{"8x8 srgb", FormatR8G8B8A8SRGB, FormatASTC8x8SRGB, 2},
		{"12x10", FormatR8G8B8A8Unorm, FormatASTC12x10Unorm, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex := newGradientTexture(t, CreateInfo{Format: tt.source, Width: 10, Height: 6}, true)
			raw, err := Start(tex)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if _, err := raw.EncodeBlock(tt.target, BlockParams{Quality: 1, Perceptual: true}); err != nil {
				t.Fatalf("EncodeBlock: %v", err)
			}
			if want := tt.blocks * 16; len(tex.Data()) != want {
				t.Fatalf("%d bytes of block data, want %d", len(tex.Data()), want)
			}
			sc, _ := tex.Metadata().GetString(KeyWriterScParams)
			if !strings.Contains(sc, "--block-perceptual") {
				t.Errorf("KTXwriterScParams %q", sc)
			}

			img, err := tex.DecodeImage(0, 0, 0)
			if err != nil {
				t.Fatalf("DecodeImage: %v", err)
			}
			if img.Rect.Dx() != 10 || img.Rect.Dy() != 6 {
				t.Errorf("decoded %v, want 10x6", img.Rect)
			}
		})
	}
}

func TestEncodeBlockASTCSolidColour(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []byte{200, 100, 50, 255})
	}
	data, err := encodeBlockImage(img, FormatASTC4x4Unorm, DefaultBlockParams())
	if err != nil {
		t.Fatalf("encodeBlockImage: %v", err)
	}
	if len(data) != 4*16 {
		t.Fatalf("encoded %d bytes, want 64", len(data))
	}
	got, err := decodeBlockImage(data, 8, 8, FormatASTC4x4Unorm)
	if err != nil {
		t.Fatalf("decodeBlockImage: %v", err)
	}
	for i := 0; i < len(got.Pix); i++ {
		d := int(got.Pix[i]) - int(img.Pix[i])
		if d < -2 || d > 2 {
			t.Fatalf("byte %d: got %d, want %d", i, got.Pix[i], img.Pix[i])
		}
	}

	if _, err := decodeBlockImage(data[:16], 8, 8, FormatASTC4x4Unorm); !errors.Is(err, ErrDecode) {
		t.Errorf("short data: got %v, want %v", err, ErrDecode)
	}
}

func TestEncodeBlockVolume(t *testing.T) {
	t.Parallel()

	tex, err := Create(CreateInfo{Format: FormatR8G8B8A8Unorm, Dimensions: 3, Width: 4, Height: 4, Depth: 4, Levels: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fillPattern(t, tex)
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := raw.EncodeBlock(FormatBC1RGBUnorm, DefaultBlockParams()); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}

	data, err := tex.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Format() != FormatBC1RGBUnorm || got.Depth() != 4 || got.Levels() != 3 {
		t.Fatalf("decoded %s depth %d levels %d", got.Format(), got.Depth(), got.Levels())
	}

	l := got.Layout()
	for level, slices := range []int{4, 2, 1} {
		if n := l.DepthSlices(level); n != slices {
			t.Errorf("level %d has %d slices, want %d", level, n, slices)
		}
		if size := l.LevelSize(level); size != slices*8 {
			t.Errorf("level %d is %d bytes, want %d", level, size, slices*8)
		}
	}
	if !bytes.Equal(got.Data(), tex.Data()) {
		t.Error("block data changed through the file")
	}
	img, err := got.DecodeImage(1, 0, 1)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if img.Rect.Dx() != 2 || img.Rect.Dy() != 2 {
		t.Errorf("level 1 slice decoded as %v", img.Rect)
	}
}

func TestParseBlockFormatNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want VkFormat
	}{
		{"ASTC_6x6_SRGB_BLOCK", FormatASTC6x6SRGB},
		{"vk_format_astc_12x10_unorm_block", FormatASTC12x10Unorm},
		{"ETC2_R8G8B8A1_UNORM_BLOCK", FormatETC2R8G8B8A1Unorm},
		{"EAC_R11G11_SNORM_BLOCK", FormatEACR11G11Snorm},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}

	if srgb, ok := FormatASTC8x8Unorm.SRGBVariant(); !ok || srgb != FormatASTC8x8SRGB {
		t.Errorf("ASTC 8x8 sRGB sibling = %s, %t", srgb, ok)
	}
}
