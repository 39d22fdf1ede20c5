package ktx2

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// benchImage builds a deterministic image used by I/O benchmarks.
func benchImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Deterministic pattern with mixed low/high frequencies.
			img.Set(x, y, color.NRGBA{
				R: uint8((x*7 + y*3) & 0xff),        //nolint:gosec // bounded by mask
				G: uint8((x*13 + y*5) & 0xff),       //nolint:gosec // bounded by mask
				B: uint8((x ^ y ^ (x >> 2)) & 0xff), //nolint:gosec // bounded by mask
				A: 255,
			})
		}
	}
	return img
}

// benchTexture creates a full mip chain RGBA8 texture from img.
func benchTexture(b *testing.B, img *image.NRGBA) *Texture {
	b.Helper()

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tex, err := Create(CreateInfo{Format: FormatR8G8B8A8Unorm, Width: w, Height: h, GenerateMipmaps: true})
	if err != nil {
		b.Fatalf("Create: %v", err)
	}
	if err := tex.SetImageFromImage(0, 0, 0, img); err != nil {
		b.Fatalf("SetImageFromImage: %v", err)
	}
	raw, err := Start(tex)
	if err != nil {
		b.Fatalf("Start: %v", err)
	}
	if _, err := raw.GenerateMipmaps(DefaultMipmapOptions()); err != nil {
		b.Fatalf("GenerateMipmaps: %v", err)
	}

	return tex
}

// benchInputPath prepares a file for read benchmarks.
func benchInputPath(b *testing.B, tex *Texture) string {
	b.Helper()

	path := filepath.Join(b.TempDir(), "input.ktx2")
	if err := tex.WriteFile(path); err != nil {
		b.Fatalf("prepare input file: %v", err)
	}

	return path
}

func BenchmarkCreateWriteRGBA8(b *testing.B) {
	img := benchImage(1024, 1024)
	path := filepath.Join(b.TempDir(), "create_rgba8.ktx2")

	b.ReportAllocs()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for b.Loop() {
		tex := benchTexture(b, img)
		if err := tex.WriteFile(path); err != nil {
			b.Fatalf("write: %v", err)
		}
	}
}

func BenchmarkEncodeBC1(b *testing.B) {
	img := benchImage(512, 512)

	b.ReportAllocs()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for b.Loop() {
		tex := benchTexture(b, img)
		state, err := Resume(tex)
		if err != nil {
			b.Fatalf("Resume: %v", err)
		}
		if _, err := state.(*MipGenerated).EncodeBlock(FormatBC1RGBUnorm, BlockParams{Quality: 0}); err != nil {
			b.Fatalf("EncodeBlock: %v", err)
		}
	}
}

func BenchmarkContainerWrite(b *testing.B) {
	img := benchImage(1024, 1024)

	for _, tc := range []struct {
		name   string
		params *DeflateParams
	}{
		{"NONE", nil},
		{"ZSTD", &DeflateParams{Scheme: SchemeZstd, Level: 3}},
		{"ZLIB", &DeflateParams{Scheme: SchemeZlib, Level: 6}},
	} {
		b.Run(tc.name, func(b *testing.B) {
			tex := benchTexture(b, img)
			payload := int64(len(tex.Data()))

			b.ReportAllocs()
			b.SetBytes(payload)
			b.ResetTimer()

			for b.Loop() {
				if tc.params != nil {
					state, err := Resume(tex)
					if err != nil {
						b.Fatalf("Resume: %v", err)
					}
					if _, err := state.(interface {
						Deflate(DeflateParams) (*Supercompressed, error)
					}).Deflate(*tc.params); err != nil {
						b.Fatalf("Deflate: %v", err)
					}
				}
				if _, err := tex.MarshalBinary(); err != nil {
					b.Fatalf("MarshalBinary: %v", err)
				}
			}
		})
	}
}

func BenchmarkReadRGBA8(b *testing.B) {
	img := benchImage(1024, 1024)
	path := benchInputPath(b, benchTexture(b, img))

	b.ReportAllocs()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := ReadFile(path); err != nil {
			b.Fatalf("read: %v", err)
		}
	}
}

func BenchmarkReadZstd(b *testing.B) {
	img := benchImage(1024, 1024)
	tex := benchTexture(b, img)
	state, err := Resume(tex)
	if err != nil {
		b.Fatalf("Resume: %v", err)
	}
	if _, err := state.(*MipGenerated).Deflate(DeflateParams{Scheme: SchemeZstd, Level: 3}); err != nil {
		b.Fatalf("Deflate: %v", err)
	}
	path := benchInputPath(b, tex)

	b.ReportAllocs()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := ReadFile(path); err != nil {
			b.Fatalf("read: %v", err)
		}
	}
}
