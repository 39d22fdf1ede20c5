package imageio

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 50), G: uint8(y * 80), B: 7, A: 255})
		}
	}

	path, err := Save(filepath.Join(t.TempDir(), "out"), img)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("Save returned %q, want .png extension", path)
	}

	got, format, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if format != "png" {
		t.Fatalf("format = %q, want png", format)
	}
	if got.Bounds().Dx() != 5 || got.Bounds().Dy() != 3 {
		t.Fatalf("unexpected size %v", got.Bounds())
	}
	r, g, b, _ := got.At(4, 2).RGBA()
	if r>>8 != 200 || g>>8 != 160 || b>>8 != 7 {
		t.Fatalf("pixel (4,2) = %d,%d,%d", r>>8, g>>8, b>>8)
	}

	cfg, _, err := Config(path)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Width != 5 || cfg.Height != 3 {
		t.Fatalf("Config = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}

	junk := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(junk, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(junk); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestIndexedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"out.png", "out_level1_layer2_face3.png"},
		{"dir/out", "dir/out_level1_layer2_face3.png"},
	}
	for _, tt := range tests {
		if got := IndexedName(tt.path, 1, 2, 3); got != tt.want {
			t.Errorf("IndexedName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
