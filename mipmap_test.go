package ktx2

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestEdgeIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		i, n int
		wrap string
		want int
	}{
		{-1, 4, WrapClamp, 0},
		{5, 4, WrapClamp, 3},
		{2, 4, WrapClamp, 2},
		{-1, 4, WrapRepeat, 3},
		{4, 4, WrapRepeat, 0},
		{9, 4, WrapRepeat, 1},
		{-1, 4, WrapMirror, 0},
		{-2, 4, WrapMirror, 1},
		{4, 4, WrapMirror, 3},
		{5, 4, WrapMirror, 2},
		{8, 4, WrapMirror, 0},
	}

	for _, tt := range tests {
		if got := edgeIndex(tt.i, tt.n, tt.wrap); got != tt.want {
			t.Errorf("edgeIndex(%d, %d, %s) = %d, want %d", tt.i, tt.n, tt.wrap, got, tt.want)
		}
	}
}

func TestMipmapOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts MipmapOptions
		want error
	}{
		{"zero value", MipmapOptions{}, nil},
		{"defaults", DefaultMipmapOptions(), nil},
		{"mitchell mirror", MipmapOptions{Filter: FilterMitchell, Wrap: WrapMirror, Scale: 1.5}, nil},
		{"unknown filter", MipmapOptions{Filter: "nearest"}, ErrInvalidParameter},
		{"negative scale", MipmapOptions{Scale: -1}, ErrInvalidParameter},
		{"unknown wrap", MipmapOptions{Wrap: "border"}, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.opts.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}

	return img
}

func near(a, b uint8, delta int) bool {
	d := int(a) - int(b)
	return d >= -delta && d <= delta
}

func TestGenerateMipmapsKeepsSolidColour(t *testing.T) {
	t.Parallel()

	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	tests := []struct {
		name   string
		format VkFormat
		opts   MipmapOptions
	}{
		{"fast path", FormatR8G8B8A8Unorm, DefaultMipmapOptions()},
		{"repeat", FormatR8G8B8A8Unorm, MipmapOptions{Filter: FilterCatmullRom, Wrap: WrapRepeat}},
		{"srgb", FormatR8G8B8A8SRGB, MipmapOptions{Filter: FilterBox}},
		{"srgb lanczos scaled", FormatR8G8B8A8SRGB, MipmapOptions{Filter: FilterLanczos3, Scale: 2}},
		{"16-bit", FormatR16G16B16A16Unorm, MipmapOptions{Filter: FilterGaussian, Wrap: WrapMirror}},
		{"non-square", FormatR8G8B8Unorm, MipmapOptions{Filter: FilterTent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex, err := Create(CreateInfo{Format: tt.format, Width: 16, Height: 8, GenerateMipmaps: true})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if tex.Levels() != 5 {
				t.Fatalf("levels %d, want 5", tex.Levels())
			}
			if err := tex.SetImageFromImage(0, 0, 0, solid(16, 8, c)); err != nil {
				t.Fatalf("SetImageFromImage: %v", err)
			}
			raw, err := Start(tex, WithWorkers(3))
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if _, err := raw.GenerateMipmaps(tt.opts); err != nil {
				t.Fatalf("GenerateMipmaps: %v", err)
			}

			for level := 1; level < tex.Levels(); level++ {
				if !tex.HasImage(level, 0, 0) {
					t.Fatalf("level %d not generated", level)
				}
				img, err := tex.DecodeImage(level, 0, 0)
				if err != nil {
					t.Fatalf("DecodeImage(%d): %v", level, err)
				}
				for i := 0; i < len(img.Pix); i += 4 {
					if !near(img.Pix[i], c.R, 1) || !near(img.Pix[i+1], c.G, 1) ||
						!near(img.Pix[i+2], c.B, 1) || img.Pix[i+3] != c.A {
						t.Fatalf("level %d texel %d is %v", level, i/4, img.Pix[i:i+4])
					}
				}
			}

			sc, _ := tex.Metadata().GetString(KeyWriterScParams)
			if !strings.Contains(sc, "--generate-mipmap") {
				t.Errorf("KTXwriterScParams %q", sc)
			}
		})
	}
}

func TestGenerateMipmapsAveragesChecker(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 254
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	tex, err := Create(CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 2, Height: 2, GenerateMipmaps: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tex.SetImageFromImage(0, 0, 0, img); err != nil {
		t.Fatalf("SetImageFromImage: %v", err)
	}
	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := raw.GenerateMipmaps(MipmapOptions{Filter: FilterBox}); err != nil {
		t.Fatalf("GenerateMipmaps: %v", err)
	}

	got, err := tex.Image(1, 0, 0)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	for ch := range 3 {
		if !near(got[ch], 127, 1) {
			t.Errorf("channel %d is %d, want about 127", ch, got[ch])
		}
	}
}

func TestGenerateMipmapsKeepsSuppliedLevels(t *testing.T) {
	t.Parallel()

	tex, err := Create(CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 8, Levels: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}
	if err := tex.SetImageFromImage(0, 0, 0, solid(8, 8, white)); err != nil {
		t.Fatalf("SetImageFromImage(0): %v", err)
	}
	if err := tex.SetImageFromImage(1, 0, 0, solid(4, 4, black)); err != nil {
		t.Fatalf("SetImageFromImage(1): %v", err)
	}

	raw, err := Start(tex)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := raw.GenerateMipmaps(DefaultMipmapOptions()); err != nil {
		t.Fatalf("GenerateMipmaps: %v", err)
	}

	level1, _ := tex.Image(1, 0, 0)
	if level1[0] != 0 {
		t.Errorf("supplied level 1 was overwritten: %v", level1[:4])
	}
	level2, _ := tex.Image(2, 0, 0)
	if level2[0] != 255 {
		t.Errorf("level 2 not generated from level 0: %v", level2[:4])
	}
}

func TestGenerateMipmapsRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info CreateInfo
		opts MipmapOptions
		want error
	}{
		{"integer format", CreateInfo{Format: FormatR8Uint, Width: 4, Height: 4, Levels: 3}, DefaultMipmapOptions(), ErrUnsupportedForFormat},
		{"runtime mipmaps", CreateInfo{Format: FormatR8Unorm, Width: 4, Height: 4, RuntimeMipmaps: true}, DefaultMipmapOptions(), ErrUnsupportedForFormat},
		{"bad filter", CreateInfo{Format: FormatR8Unorm, Width: 4, Height: 4, Levels: 3}, MipmapOptions{Filter: "sharp"}, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tex, err := Create(tt.info)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			l := tex.Layout()
			if err := tex.SetImage(0, 0, 0, make([]byte, l.ImageSize(0))); err != nil {
				t.Fatalf("SetImage: %v", err)
			}
			raw, err := Start(tex)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if _, err := raw.GenerateMipmaps(tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if tex.Stage() != StageRaw {
				t.Errorf("failed generation moved the texture to %s", tex.Stage())
			}
		})
	}
}
