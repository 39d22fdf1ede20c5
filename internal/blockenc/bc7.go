// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package blockenc

import (
	"fmt"
	"math"
)

// bc7Weights4 are the 4-bit BC7 interpolation weights.
var bc7Weights4 = [16]int{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}

type bitWriter struct {
	buf [16]byte
	pos uint
}

func (w *bitWriter) write(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if v>>i&1 != 0 {
			w.buf[w.pos>>3] |= 1 << (w.pos & 7)
		}
		w.pos++
	}
}

type bitReader struct {
	buf []byte
	pos uint
}

func (r *bitReader) read(n uint) uint32 {
	var v uint32
	for i := uint(0); i < n; i++ {
		if r.buf[r.pos>>3]>>(r.pos&7)&1 != 0 {
			v |= 1 << i
		}
		r.pos++
	}

	return v
}

func bc7Interpolate(e0, e1, w int) int {
	return ((64-w)*e0 + w*e1 + 32) >> 6
}

// bc7Endpoints holds mode 6 endpoints as 7-bit colours and p-bits.
type bc7Endpoints struct {
	c [2][4]int // 7-bit
	p [2]int
}

func (e bc7Endpoints) expanded(i int) [4]int {
	var out [4]int
	for ch := range out {
		out[ch] = e.c[i][ch]<<1 | e.p[i]
	}

	return out
}

// palette returns the 16 interpolated colours.
func (e bc7Endpoints) palette() [16][4]int {
	e0, e1 := e.expanded(0), e.expanded(1)
	var pal [16][4]int
	for i, w := range bc7Weights4 {
		for ch := 0; ch < 4; ch++ {
			pal[i][ch] = bc7Interpolate(e0[ch], e1[ch], w)
		}
	}

	return pal
}

func rgbaDistance(a [4]uint8, b [4]int, w Weights) int {
	dr, dg, db, da := int(a[0])-b[0], int(a[1])-b[1], int(a[2])-b[2], int(a[3])-b[3]
	return w[0]*dr*dr + w[1]*dg*dg + w[2]*db*db + (w[0]+w[1]+w[2])/3*da*da
}

// assign picks the best palette index per pixel.
func (e bc7Endpoints) assign(b *Block, w Weights) (idx [16]int, loss int) {
	pal := e.palette()
	for i := range b {
		best := -1
		for j := range pal {
			d := rgbaDistance(b[i], pal[j], w)
			if best < 0 || d < best {
				best, idx[i] = d, j
			}
		}
		loss += best
	}

	return idx, loss
}

// quantizeEndpoints rounds 8-bit endpoints to 7 bits with the best p-bits.
func quantizeEndpoints(lo, hi [4]float64, b *Block, w Weights) (bc7Endpoints, [16]int, int) {
	var (
		best     bc7Endpoints
		bestIdx  [16]int
		bestLoss = -1
	)
	for p0 := 0; p0 < 2; p0++ {
		for p1 := 0; p1 < 2; p1++ {
			var e bc7Endpoints
			e.p = [2]int{p0, p1}
			for ch := 0; ch < 4; ch++ {
				e.c[0][ch] = min(127, max(0, int(math.Round((lo[ch]-float64(p0))/2))))
				e.c[1][ch] = min(127, max(0, int(math.Round((hi[ch]-float64(p1))/2))))
			}
			idx, loss := e.assign(b, w)
			if bestLoss < 0 || loss < bestLoss {
				best, bestIdx, bestLoss = e, idx, loss
			}
		}
	}

	return best, bestIdx, bestLoss
}

// PrincipalEndpoints projects the block onto its principal RGBA axis and
// returns the extreme points.
func PrincipalEndpoints(b *Block) (lo, hi [4]float64) {
	var mean [4]float64
	for i := range b {
		for ch := 0; ch < 4; ch++ {
			mean[ch] += float64(b[i][ch])
		}
	}
	for ch := range mean {
		mean[ch] /= 16
	}

	var cov [4][4]float64
	for i := range b {
		var d [4]float64
		for ch := 0; ch < 4; ch++ {
			d[ch] = float64(b[i][ch]) - mean[ch]
		}
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				cov[r][c] += d[r] * d[c]
			}
		}
	}

	axis := [4]float64{1, 1, 1, 1}
	for iter := 0; iter < 8; iter++ {
		var next [4]float64
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				next[r] += cov[r][c] * axis[c]
			}
		}
		norm := math.Sqrt(next[0]*next[0] + next[1]*next[1] + next[2]*next[2] + next[3]*next[3])
		if norm < 1e-9 {
			break
		}
		for ch := range next {
			next[ch] /= norm
		}
		axis = next
	}

	tMin, tMax := math.Inf(1), math.Inf(-1)
	for i := range b {
		t := 0.0
		for ch := 0; ch < 4; ch++ {
			t += (float64(b[i][ch]) - mean[ch]) * axis[ch]
		}
		tMin, tMax = math.Min(tMin, t), math.Max(tMax, t)
	}
	for ch := 0; ch < 4; ch++ {
		lo[ch] = math.Min(255, math.Max(0, mean[ch]+axis[ch]*tMin))
		hi[ch] = math.Min(255, math.Max(0, mean[ch]+axis[ch]*tMax))
	}

	return lo, hi
}

// RefitEndpoints solves least squares endpoints for fixed per-pixel
// interpolation factors in [0,1].
func RefitEndpoints(b *Block, t *[16]float64) (lo, hi [4]float64, ok bool) {
	var aa, ab, bb float64
	var ax, bx [4]float64
	for i := range b {
		a, c := 1-t[i], t[i]
		aa += a * a
		ab += a * c
		bb += c * c
		for ch := 0; ch < 4; ch++ {
			ax[ch] += a * float64(b[i][ch])
			bx[ch] += c * float64(b[i][ch])
		}
	}
	det := aa*bb - ab*ab
	if math.Abs(det) < 1e-9 {
		return lo, hi, false
	}
	for ch := 0; ch < 4; ch++ {
		lo[ch] = math.Min(255, math.Max(0, (ax[ch]*bb-bx[ch]*ab)/det))
		hi[ch] = math.Min(255, math.Max(0, (bx[ch]*aa-ax[ch]*ab)/det))
	}

	return lo, hi, true
}

// EncodeBC7 encodes a block in BC7 mode 6. effort sets the number of
// least squares refinement passes.
func EncodeBC7(b *Block, effort int, w Weights) [16]byte {
	lo, hi := PrincipalEndpoints(b)
	e, idx, loss := quantizeEndpoints(lo, hi, b, w)
	for pass := 0; pass < effort; pass++ {
		var t [16]float64
		for i, v := range idx {
			t[i] = float64(bc7Weights4[v]) / 64
		}
		rlo, rhi, ok := RefitEndpoints(b, &t)
		if !ok {
			break
		}
		ne, nidx, nloss := quantizeEndpoints(rlo, rhi, b, w)
		if nloss >= loss {
			break
		}
		e, idx, loss = ne, nidx, nloss
	}

	// The anchor index of pixel 0 has an implicit zero MSB.
	if idx[0] >= 8 {
		e.c[0], e.c[1] = e.c[1], e.c[0]
		e.p[0], e.p[1] = e.p[1], e.p[0]
		for i := range idx {
			idx[i] = 15 - idx[i]
		}
	}

	var bw bitWriter
	bw.write(1<<6, 7)
	for ch := 0; ch < 4; ch++ {
		bw.write(uint32(e.c[0][ch]), 7)
		bw.write(uint32(e.c[1][ch]), 7)
	}
	bw.write(uint32(e.p[0]), 1)
	bw.write(uint32(e.p[1]), 1)
	bw.write(uint32(idx[0]), 3)
	for i := 1; i < 16; i++ {
		bw.write(uint32(idx[i]), 4)
	}

	return bw.buf
}

// DecodeBC7 decodes a BC7 block. Only mode 6 is supported.
func DecodeBC7(data []byte) (Block, error) {
	var out Block
	if len(data) < 16 {
		return out, ErrShortData
	}
	if data[0]&0x7F != 0x40 {
		return out, fmt.Errorf("%w: bc7 mode byte 0x%02x", ErrUnsupportedMode, data[0])
	}

	r := bitReader{buf: data[:16], pos: 7}
	var e bc7Endpoints
	for ch := 0; ch < 4; ch++ {
		e.c[0][ch] = int(r.read(7))
		e.c[1][ch] = int(r.read(7))
	}
	e.p[0] = int(r.read(1))
	e.p[1] = int(r.read(1))

	pal := e.palette()
	for i := 0; i < 16; i++ {
		n := uint(4)
		if i == 0 {
			n = 3
		}
		c := pal[r.read(n)]
		out[i] = [4]uint8{uint8(c[0]), uint8(c[1]), uint8(c[2]), uint8(c[3])}
	}

	return out, nil
}
