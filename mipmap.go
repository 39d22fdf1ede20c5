// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Mipmap filter names.
const (
	FilterBox        = "box"
	FilterTent       = "tent"
	FilterBSpline    = "bspline"
	FilterMitchell   = "mitchell"
	FilterCatmullRom = "catmull-rom"
	FilterGaussian   = "gaussian"
	FilterHermite    = "hermite"
	FilterLanczos3   = "lanczos3"
	FilterLanczos4   = "lanczos4"
)

// Mipmap edge modes.
const (
	WrapClamp  = "clamp"
	WrapRepeat = "wrap"
	WrapMirror = "mirror"
)

// lanczos4 is a Lanczos kernel with a four pixel support.
var lanczos4 = imaging.ResampleFilter{
	Support: 4,
	Kernel: func(x float64) float64 {
		x = math.Abs(x)
		if x >= 4 {
			return 0
		}
		return sinc(x) * sinc(x/4)
	},
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

var mipmapFilters = map[string]imaging.ResampleFilter{
	FilterBox:        imaging.Box,
	FilterTent:       imaging.Linear,
	FilterBSpline:    imaging.BSpline,
	FilterMitchell:   imaging.MitchellNetravali,
	FilterCatmullRom: imaging.CatmullRom,
	FilterGaussian:   imaging.Gaussian,
	FilterHermite:    imaging.Hermite,
	FilterLanczos3:   imaging.Lanczos,
	FilterLanczos4:   lanczos4,
}

// MipmapOptions controls mip level generation.
type MipmapOptions struct {
	// Filter is one of the Filter* names. Empty selects lanczos4.
	Filter string
	// Scale widens (above 1) or narrows the filter support. Zero means 1.
	Scale float64
	// Wrap is one of the Wrap* modes. Empty selects clamp.
	Wrap string
}

// DefaultMipmapOptions returns lanczos4 with clamped edges.
func DefaultMipmapOptions() MipmapOptions {
	return MipmapOptions{Filter: FilterLanczos4, Scale: 1, Wrap: WrapClamp}
}

func (o MipmapOptions) withDefaults() MipmapOptions {
	if o.Filter == "" {
		o.Filter = FilterLanczos4
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Wrap == "" {
		o.Wrap = WrapClamp
	}

	return o
}

// Validate checks the filter, scale and wrap mode.
func (o MipmapOptions) Validate() error {
	o = o.withDefaults()
	if _, ok := mipmapFilters[o.Filter]; !ok {
		return fmt.Errorf("%w: unknown mipmap filter %q", ErrInvalidParameter, o.Filter)
	}
	if o.Scale <= 0 || math.IsInf(o.Scale, 0) || math.IsNaN(o.Scale) {
		return fmt.Errorf("%w: mipmap filter scale %g", ErrInvalidParameter, o.Scale)
	}
	switch o.Wrap {
	case WrapClamp, WrapRepeat, WrapMirror:
	default:
		return fmt.Errorf("%w: unknown mipmap wrap %q", ErrInvalidParameter, o.Wrap)
	}

	return nil
}

// filter returns the resampling kernel with the scale applied.
func (o MipmapOptions) filter() imaging.ResampleFilter {
	f := mipmapFilters[o.Filter]
	if o.Scale == 1 {
		return f
	}
	scale, kernel := o.Scale, f.Kernel

	return imaging.ResampleFilter{
		Support: f.Support * scale,
		Kernel:  func(x float64) float64 { return kernel(x / scale) },
	}
}

func (o MipmapOptions) record() string {
	return fmt.Sprintf("--generate-mipmap --mipmap-filter %s --mipmap-wrap %s", o.Filter, o.Wrap)
}

// planes is a premultiplied RGBA float image.
type planes struct {
	w, h int
	pix  []float32
}

func newPlanes(w, h int) *planes {
	return &planes{w: w, h: h, pix: make([]float32, w*h*4)}
}

// srgbToLinear decodes the sRGB transfer function.
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// linearToSRGB encodes the sRGB transfer function.
func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// planesFrom converts img to premultiplied floats, linearizing colour when
// srgb is set.
func planesFrom(img image.Image, srgb bool) *planes {
	src := toNRGBA64(img)
	p := newPlanes(src.Rect.Dx(), src.Rect.Dy())

	for i := 0; i < p.w*p.h; i++ {
		px := nrgba64At(src.Pix, i*8)
		a := float64(px[3]) / 65535
		for ch := 0; ch < 3; ch++ {
			v := float64(px[ch]) / 65535
			if srgb {
				v = srgbToLinear(v)
			}
			p.pix[i*4+ch] = float32(v * a)
		}
		p.pix[i*4+3] = float32(a)
	}

	return p
}

// image converts the planes back to a 16-bit image.
func (p *planes) image(srgb bool) *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, p.w, p.h))
	unorm := func(v float64) uint16 { return uint16(math.Round(min(1, max(0, v)) * 65535)) }

	for i := 0; i < p.w*p.h; i++ {
		a := min(1, max(0, float64(p.pix[i*4+3])))
		var px [4]uint16
		for ch := 0; ch < 3; ch++ {
			v := 0.0
			if a > 0 {
				v = float64(p.pix[i*4+ch]) / a
			}
			if srgb {
				v = linearToSRGB(min(1, max(0, v)))
			}
			px[ch] = unorm(v)
		}
		px[3] = unorm(a)
		setNRGBA64(out.Pix, i*8, px)
	}

	return out
}

// edgeIndex maps a sample position outside [0, n) according to wrap.
func edgeIndex(i, n int, wrap string) int {
	switch wrap {
	case WrapRepeat:
		i %= n
		if i < 0 {
			i += n
		}
	case WrapMirror:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
	default:
		i = min(n-1, max(0, i))
	}

	return i
}

type tap struct {
	index  int
	weight float32
}

// taps computes the normalized filter taps of every output position.
func taps(src, dst int, f imaging.ResampleFilter, wrap string) [][]tap {
	scale := float64(src) / float64(dst)
	width := max(scale, 1)
	support := f.Support * width
	out := make([][]tap, dst)

	for x := range out {
		center := (float64(x)+0.5)*scale - 0.5
		lo := int(math.Ceil(center - support))
		hi := int(math.Floor(center + support))
		var sum float64
		var row []tap
		for i := lo; i <= hi; i++ {
			w := f.Kernel((float64(i) - center) / width)
			if w == 0 {
				continue
			}
			row = append(row, tap{index: edgeIndex(i, src, wrap), weight: float32(w)})
			sum += w
		}
		if len(row) == 0 || sum == 0 {
			row = []tap{{index: edgeIndex(int(math.Round(center)), src, wrap), weight: 1}}
			sum = 1
		}
		for i := range row {
			row[i].weight /= float32(sum)
		}
		out[x] = row
	}

	return out
}

// resample scales p to w x h with a separable filter.
func (p *planes) resample(w, h int, f imaging.ResampleFilter, wrap string) *planes {
	horizontal := newPlanes(w, p.h)
	tx := taps(p.w, w, f, wrap)
	for y := 0; y < p.h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float32
			for _, t := range tx[x] {
				s := (y*p.w + t.index) * 4
				for ch := 0; ch < 4; ch++ {
					acc[ch] += p.pix[s+ch] * t.weight
				}
			}
			copy(horizontal.pix[(y*w+x)*4:], acc[:])
		}
	}

	out := newPlanes(w, h)
	ty := taps(p.h, h, f, wrap)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float32
			for _, t := range ty[y] {
				s := (t.index*w + x) * 4
				for ch := 0; ch < 4; ch++ {
					acc[ch] += horizontal.pix[s+ch] * t.weight
				}
			}
			copy(out.pix[(y*w+x)*4:], acc[:])
		}
	}

	return out
}

// generateMipmaps fills every level the caller did not supply by resampling
// level 0. Results are staged and copied into the texture only after every
// image succeeded.
func generateMipmaps(t *Texture, opts MipmapOptions, cfg pipelineConfig) error {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	if t.runtimeMipmaps {
		return fmt.Errorf("%w: mipmap generation with runtime mipmaps", ErrUnsupportedForFormat)
	}
	if err := mipmapSupport(t.format, t.depth); err != nil {
		return err
	}

	conv, err := converterFor(t.format)
	if err != nil {
		return err
	}

	l := t.Layout()
	var jobs []imageRef
	for _, ref := range l.images(1, t.levels) {
		if !t.HasImage(ref.level, ref.layer, ref.faceSlice) {
			jobs = append(jobs, ref)
		}
	}

	srgb := t.dfd.Transfer == TransferSRGB
	filter := opts.filter()
	fast := opts.Wrap == WrapClamp && !srgb && conv.RequiredBitDepth() <= 8

	// Decode each base image once.
	bases := l.images(0, 1)
	sources := make([]image.Image, len(bases))
	linear := make([]*planes, len(bases))
	err = forEach(len(bases), cfg.workers, func(i int) error {
		ref := bases[i]
		off, _ := l.ImageOffset(0, ref.layer, ref.faceSlice)
		img, err := conv.ToImage(t.data[off:off+l.ImageSize(0)], t.width, t.height)
		if err != nil {
			return fmt.Errorf("%w: layer %d face %d: %w", ErrMipmapGeneration, ref.layer, ref.faceSlice, err)
		}
		if fast {
			sources[i] = toNRGBA(img)
		} else {
			linear[i] = planesFrom(img, srgb)
		}
		return nil
	})
	if err != nil {
		return err
	}

	faces := l.FaceSlices(0)
	results := make([][]byte, len(jobs))
	err = forEach(len(jobs), cfg.workers, func(i int) error {
		ref := jobs[i]
		base := ref.layer*faces + ref.faceSlice
		w, h, _ := l.LevelDimensions(ref.level)

		var img image.Image
		if fast {
			img = imaging.Resize(sources[base], w, h, filter)
		} else {
			img = linear[base].resample(w, h, filter, opts.Wrap).image(srgb)
		}

		raw, err := conv.Convert(img)
		if err != nil {
			return fmt.Errorf("%w: level %d layer %d face %d: %w", ErrMipmapGeneration, ref.level, ref.layer, ref.faceSlice, err)
		}
		if len(raw) != l.ImageSize(ref.level) {
			return fmt.Errorf("%w: level %d: %d bytes, expected %d", ErrMipmapGeneration, ref.level, len(raw), l.ImageSize(ref.level))
		}
		results[i] = raw
		return nil
	})
	if err != nil {
		return err
	}

	for i, ref := range jobs {
		off, _ := l.ImageOffset(ref.level, ref.layer, ref.faceSlice)
		copy(t.data[off:], results[i])
		index, _ := l.ImageIndex(ref.level, ref.layer, ref.faceSlice)
		t.present[index] = true
	}
	t.packed = nil
	t.meta.appendScParams(opts.record())

	cfg.logger.Debug("mipmaps generated", "filter", opts.Filter, "wrap", opts.Wrap,
		"levels", t.levels, "images", len(jobs), "srgb", srgb)

	return nil
}
