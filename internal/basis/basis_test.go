package basis

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/nigeltao/etc2/lib/etc2"
	"github.com/woozymasta/ktx2/internal/blockenc"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, w-1)),
				G: uint8(y * 255 / max(1, h-1)),
				B: 64,
				A: uint8(255 - x*8),
			})
		}
	}
	return img
}

func meanAbs(a, b *image.NRGBA, channels int) float64 {
	total, n := 0, 0
	for i := 0; i < len(a.Pix); i += 4 {
		for ch := 0; ch < channels; ch++ {
			d := int(a.Pix[i+ch]) - int(b.Pix[i+ch])
			if d < 0 {
				d = -d
			}
			total += d
			n++
		}
	}
	return float64(total) / float64(n)
}

func TestPackRoundTrip(t *testing.T) {
	t.Parallel()

	compressible := bytes.Repeat([]byte("texture-block-"), 20000)
	noisy := make([]byte, 3000)
	seed := uint32(7)
	for i := range noisy {
		seed = seed*1664525 + 1013904223
		noisy[i] = byte(seed >> 24)
	}

	tests := []struct {
		name string
		data []byte
		mode string
	}{
		{"empty", nil, StreamModeCopy},
		{"small", []byte{1, 2, 3}, StreamModeCopy},
		{"compressible", compressible, StreamModeLZ4},
		{"noisy", noisy, StreamModeCopy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			packed, err := Pack(tt.data)
			if err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if got := string(packed[:4]); got != tt.mode {
				t.Fatalf("mode = %q, want %q", got, tt.mode)
			}
			out, err := Unpack(packed, uint64(len(tt.data)))
			if err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			if !bytes.Equal(out, tt.data) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func TestUnpackErrors(t *testing.T) {
	t.Parallel()

	packed, err := Pack(bytes.Repeat([]byte{9}, 4096))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if _, err := Unpack(packed, 100); !errors.Is(err, ErrStreamTooLarge) {
		t.Fatalf("limit error = %v", err)
	}
	if _, err := Unpack(packed[:10], 4096); err == nil {
		t.Fatal("truncated stream accepted")
	}

	bad := append([]byte("ZZZZ"), 0, 0, 0, 0)
	if _, err := Unpack(bad, 0); !errors.Is(err, ErrUnknownStreamMode) {
		t.Fatalf("mode error = %v", err)
	}
	if _, err := Unpack([]byte("CO"), 0); !errors.Is(err, ErrStreamTruncated) {
		t.Fatalf("short header error = %v", err)
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	e := ETC1SParams{CompressionLevel: 9, QualityLevel: 0, MaxEndpoints: 99999, MaxSelectors: -3}.Clamp()
	if e.CompressionLevel != 6 || e.QualityLevel != 1 || e.MaxEndpoints != MaxCodebookEntries || e.MaxSelectors != 1 {
		t.Fatalf("etc1s clamp = %+v", e)
	}

	u := UASTCParams{Quality: 7, RDOLambda: 50, RDODictSize: 1}.Clamp()
	if u.Quality != 4 || u.RDOLambda != MaxRDOLambda || u.RDODictSize != MinRDODictSize {
		t.Fatalf("uastc clamp = %+v", u)
	}
	if u.RDOMaxSmoothBlockErrorScale != DefaultRDOSmoothBlockErrorScale || u.RDOMaxSmoothBlockStdDev != DefaultRDOSmoothBlockStdDev {
		t.Fatalf("uastc defaults = %+v", u)
	}
}

func encodeETC1S(t *testing.T, imgs []*image.NRGBA, channels int, p ETC1SParams) (*ETC1SResult, []*ETC1SImage) {
	t.Helper()
	prepared := make([]*ETC1SImage, len(imgs))
	for i, img := range imgs {
		m, err := PrepareETC1S(img, channels, p)
		if err != nil {
			t.Fatalf("PrepareETC1S: %v", err)
		}
		prepared[i] = m
	}
	res, err := BuildETC1S(prepared, p)
	if err != nil {
		t.Fatalf("BuildETC1S: %v", err)
	}
	return res, prepared
}

func TestETC1SRoundTrip(t *testing.T) {
	t.Parallel()

	src := gradient(16, 12)
	res, prepared := encodeETC1S(t, []*image.NRGBA{src}, 4, DefaultETC1SParams())
	if !prepared[0].HasAlpha() {
		t.Fatal("rgba image has no alpha slice")
	}

	slice := SliceBytes(16, 12)
	stream := res.Streams[0]
	if len(stream) != 2*slice {
		t.Fatalf("stream is %d bytes, want %d", len(stream), 2*slice)
	}

	got, err := DecodeETC1S(&res.Codebook, stream[:slice], stream[slice:], 16, 12)
	if err != nil {
		t.Fatalf("DecodeETC1S: %v", err)
	}
	if e := meanAbs(src, got, 4); e > 24 {
		t.Fatalf("mean error %.2f too high", e)
	}
}

func TestETC1SCodebookLimits(t *testing.T) {
	t.Parallel()

	p := DefaultETC1SParams()
	p.MaxEndpoints = 2
	p.MaxSelectors = 3
	res, _ := encodeETC1S(t, []*image.NRGBA{gradient(16, 16)}, 3, p)
	if n := len(res.Codebook.Endpoints); n > 2 {
		t.Fatalf("%d endpoints, limit 2", n)
	}
	if n := len(res.Codebook.Selectors); n > 3 {
		t.Fatalf("%d selectors, limit 3", n)
	}
	if _, err := DecodeETC1S(&res.Codebook, res.Streams[0], nil, 16, 16); err != nil {
		t.Fatalf("DecodeETC1S: %v", err)
	}
}

func TestETC1SDeterministic(t *testing.T) {
	t.Parallel()

	imgs := []*image.NRGBA{gradient(8, 8), gradient(4, 4)}
	a, _ := encodeETC1S(t, imgs, 4, DefaultETC1SParams())
	b, _ := encodeETC1S(t, imgs, 4, DefaultETC1SParams())
	for i := range a.Streams {
		if !bytes.Equal(a.Streams[i], b.Streams[i]) {
			t.Fatalf("stream %d differs between runs", i)
		}
	}
}

func TestGlobalDataRoundTrip(t *testing.T) {
	t.Parallel()

	res, _ := encodeETC1S(t, []*image.NRGBA{gradient(8, 8)}, 3, DefaultETC1SParams())
	g := &GlobalData{
		Codebook: res.Codebook,
		Images:   []ImageDesc{{RGBOffset: 0, RGBLength: uint32(SliceBytes(8, 8))}},
	}
	data, err := g.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	parsed, err := ParseGlobalData(data, 1)
	if err != nil {
		t.Fatalf("ParseGlobalData: %v", err)
	}
	if len(parsed.Endpoints) != len(g.Endpoints) || len(parsed.Selectors) != len(g.Selectors) {
		t.Fatalf("codebook sizes %d/%d, want %d/%d", len(parsed.Endpoints), len(parsed.Selectors), len(g.Endpoints), len(g.Selectors))
	}
	for i := range g.Endpoints {
		if parsed.Endpoints[i] != g.Endpoints[i] {
			t.Fatalf("endpoint %d = %+v, want %+v", i, parsed.Endpoints[i], g.Endpoints[i])
		}
	}
	if parsed.Images[0] != g.Images[0] {
		t.Fatalf("image desc = %+v", parsed.Images[0])
	}

	if _, err := ParseGlobalData(data, 2); !errors.Is(err, ErrInvalidGlobalData) {
		t.Fatalf("wrong image count error = %v", err)
	}
}

func TestETC1SToETC1MatchesDecode(t *testing.T) {
	t.Parallel()

	res, _ := encodeETC1S(t, []*image.NRGBA{gradient(8, 8)}, 3, DefaultETC1SParams())
	etc1, err := ETC1SToETC1(&res.Codebook, res.Streams[0], 8, 8)
	if err != nil {
		t.Fatalf("ETC1SToETC1: %v", err)
	}
	if len(etc1) != 4*8 {
		t.Fatalf("etc1 data is %d bytes", len(etc1))
	}
	direct, err := DecodeETC1S(&res.Codebook, res.Streams[0], nil, 8, 8)
	if err != nil {
		t.Fatalf("DecodeETC1S: %v", err)
	}
	viaETC1, err := blockenc.DecodeETC(etc1, 8, 8, etc2.FormatETC2RGB)
	if err != nil {
		t.Fatalf("blockenc.DecodeETC: %v", err)
	}
	if !bytes.Equal(direct.Pix, viaETC1.Pix) {
		t.Fatal("etc1 rewrite differs from direct decode")
	}
}

func TestUASTCRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    UASTCParams
	}{
		{"default", DefaultUASTCParams()},
		{"rdo", func() UASTCParams {
			p := DefaultUASTCParams()
			p.RDO = true
			return p
		}()},
	}

	src := gradient(16, 16)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := EncodeUASTC(src, tt.p)
			if err != nil {
				t.Fatalf("EncodeUASTC: %v", err)
			}
			if len(data) != 16*UASTCBlockSize {
				t.Fatalf("encoded %d bytes", len(data))
			}
			got, err := DecodeUASTC(data, 16, 16)
			if err != nil {
				t.Fatalf("DecodeUASTC: %v", err)
			}
			if e := meanAbs(src, got, 4); e > 12 {
				t.Fatalf("mean error %.2f too high", e)
			}
		})
	}
}

func TestUASTCSolidExact(t *testing.T) {
	t.Parallel()

	c := color.NRGBA{R: 12, G: 200, B: 77, A: 130}
	src := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			src.SetNRGBA(x, y, c)
		}
	}
	data, err := EncodeUASTC(src, DefaultUASTCParams())
	if err != nil {
		t.Fatalf("EncodeUASTC: %v", err)
	}
	got, err := DecodeUASTC(data, 5, 5)
	if err != nil {
		t.Fatalf("DecodeUASTC: %v", err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Fatal("solid image not reproduced exactly")
	}
}

func TestDecodeUASTCRejectsBadMode(t *testing.T) {
	t.Parallel()

	data := make([]byte, UASTCBlockSize)
	data[0] = 9
	if _, err := DecodeUASTC(data, 4, 4); !errors.Is(err, ErrInvalidImageData) {
		t.Fatalf("bad mode error = %v", err)
	}
	if _, err := DecodeUASTC(data[:8], 4, 4); !errors.Is(err, ErrInvalidImageData) {
		t.Fatalf("short data error = %v", err)
	}
}

func TestChannelMapping(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Pix = []uint8{10, 20, 30, 40}

	two, err := ToUniversal(src, 2)
	if err != nil {
		t.Fatalf("ToUniversal: %v", err)
	}
	if want := []uint8{10, 10, 10, 20}; !bytes.Equal(two.Pix, want) {
		t.Fatalf("two channels = %v, want %v", two.Pix, want)
	}
	back := FromUniversal(two, 2)
	if want := []uint8{10, 20, 0, 255}; !bytes.Equal(back.Pix, want) {
		t.Fatalf("back = %v, want %v", back.Pix, want)
	}
	if _, err := ToUniversal(src, 5); !errors.Is(err, ErrChannelCount) {
		t.Fatalf("channel count error = %v", err)
	}
}
