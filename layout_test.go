package ktx2

import (
	"errors"
	"testing"
)

func testLayout(t *testing.T, f VkFormat, w, h, d, levels, layers, faces int) Layout {
	t.Helper()

	info, ok := lookupFormat(f)
	if !ok {
		t.Fatalf("unknown format %s", f)
	}
	l, err := newLayout(info.geom, w, h, d, levels, layers, faces, false)
	if err != nil {
		t.Fatalf("newLayout: %v", err)
	}

	return l
}

func TestMaxLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h, d int
		want    int
	}{
		{1, 1, 1, 1},
		{8, 4, 1, 4},
		{5, 5, 1, 3},
		{1024, 1, 1, 11},
		{3, 7, 9, 4},
	}

	for _, tt := range tests {
		if got := MaxLevels(tt.w, tt.h, tt.d); got != tt.want {
			t.Fatalf("MaxLevels(%d,%d,%d) = %d, want %d", tt.w, tt.h, tt.d, got, tt.want)
		}
	}
}

func TestLayoutLevelSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   VkFormat
		w, h     int
		levels   int
		sizes    []int
		offsets  []int
		total    int
		alignment int
	}{
		{"rgba8", FormatR8G8B8A8Unorm, 8, 4, 4, []int{128, 32, 8, 4}, []int{0, 128, 160, 168}, 172, 4},
		{"rgb8 padded", FormatR8G8B8Unorm, 3, 3, 2, []int{27, 3}, []int{0, 36}, 39, 12},
		{"bc7 partial blocks", FormatBC7Unorm, 5, 5, 3, []int{64, 16, 16}, []int{0, 64, 80}, 96, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := testLayout(t, tt.format, tt.w, tt.h, 1, tt.levels, 1, 1)
			if got := l.LevelAlignment(); got != tt.alignment {
				t.Fatalf("LevelAlignment = %d, want %d", got, tt.alignment)
			}
			for level := range tt.sizes {
				if got := l.ImageSize(level); got != tt.sizes[level] {
					t.Fatalf("ImageSize(%d) = %d, want %d", level, got, tt.sizes[level])
				}
				if got := l.LevelOffset(level); got != tt.offsets[level] {
					t.Fatalf("LevelOffset(%d) = %d, want %d", level, got, tt.offsets[level])
				}
			}
			if got := l.DataSize(); got != tt.total {
				t.Fatalf("DataSize = %d, want %d", got, tt.total)
			}
		})
	}
}

func TestLayoutCubemapArray(t *testing.T) {
	t.Parallel()

	l := testLayout(t, FormatR8G8B8A8Unorm, 4, 4, 1, 1, 2, 6)

	if got := l.FaceSlices(0); got != 6 {
		t.Fatalf("FaceSlices = %d, want 6", got)
	}
	off, err := l.ImageOffset(0, 1, 2)
	if err != nil {
		t.Fatalf("ImageOffset: %v", err)
	}
	if off != 6*64+2*64 {
		t.Fatalf("ImageOffset = %d, want %d", off, 6*64+2*64)
	}
	index, err := l.ImageIndex(0, 1, 2)
	if err != nil {
		t.Fatalf("ImageIndex: %v", err)
	}
	if index != 8 {
		t.Fatalf("ImageIndex = %d, want 8", index)
	}
	if got := l.ExpectedImageCount(false); got != 12 {
		t.Fatalf("ExpectedImageCount = %d, want 12", got)
	}
}

func TestLayoutVolumeSlices(t *testing.T) {
	t.Parallel()

	l := testLayout(t, FormatR8Unorm, 8, 8, 4, 3, 1, 1)

	for level, want := range []int{4, 2, 1} {
		if got := l.DepthSlices(level); got != want {
			t.Fatalf("DepthSlices(%d) = %d, want %d", level, got, want)
		}
	}
	if got := l.ExpectedImageCount(false); got != 7 {
		t.Fatalf("ExpectedImageCount(false) = %d, want 7", got)
	}
	if got := l.ExpectedImageCount(true); got != 4 {
		t.Fatalf("ExpectedImageCount(true) = %d, want 4", got)
	}
	index, err := l.ImageIndex(1, 0, 1)
	if err != nil {
		t.Fatalf("ImageIndex: %v", err)
	}
	if index != 5 {
		t.Fatalf("ImageIndex(1,0,1) = %d, want 5", index)
	}

	refs := l.images(0, l.Levels())
	if len(refs) != 7 {
		t.Fatalf("images = %d, want 7", len(refs))
	}
	for i, ref := range refs {
		got, _ := l.ImageIndex(ref.level, ref.layer, ref.faceSlice)
		if got != i {
			t.Fatalf("population order: ref %+v has index %d, want %d", ref, got, i)
		}
	}
}

func TestLayoutOutOfRange(t *testing.T) {
	t.Parallel()

	l := testLayout(t, FormatR8G8B8A8Unorm, 8, 4, 1, 4, 1, 1)

	for _, idx := range [][3]int{{4, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		if _, err := l.ImageOffset(idx[0], idx[1], idx[2]); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("ImageOffset%v: expected ErrOutOfRange, got %v", idx, err)
		}
	}
}

func TestLayoutOverflow(t *testing.T) {
	t.Parallel()

	info, _ := lookupFormat(FormatR32G32B32A32Sfloat)
	huge := maxInt / 4
	if _, err := newLayout(info.geom, huge, huge, 1, 1, 1, 6, false); !errors.Is(err, ErrSizeOverflow) {
		t.Fatalf("expected ErrSizeOverflow, got %v", err)
	}
}
