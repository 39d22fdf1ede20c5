// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package basis

import (
	"fmt"
	"image"
	"math"

	"github.com/woozymasta/ktx2/internal/blockenc"
)

// UASTCBlockSize is the size of one encoded 4x4 block.
const UASTCBlockSize = 16

// UASTC block modes.
const (
	uastcModeSolid = 0
	uastcModeLine  = 1
)

const (
	selectorOffset = 9
	selectorBytes  = 6
)

// uastcWeights are the 3-bit selector interpolation weights.
var uastcWeights = [8]int{0, 9, 18, 27, 36, 45, 54, 64}

type uastcBlock struct {
	e0, e1 [4]uint8
	sel    [16]int
}

func (u *uastcBlock) texel(i int) [4]uint8 {
	w := uastcWeights[u.sel[i]]
	var out [4]uint8
	for ch := range out {
		out[ch] = uint8(((64-w)*int(u.e0[ch]) + w*int(u.e1[ch]) + 32) >> 6)
	}
	return out
}

func blockError(b *blockenc.Block, u *uastcBlock) int {
	e := 0
	for i := range b {
		t := u.texel(i)
		for ch := 0; ch < 4; ch++ {
			d := int(b[i][ch]) - int(t[ch])
			e += d * d
		}
	}
	return e
}

// assignSelectors picks the nearest palette entry per texel.
func (u *uastcBlock) assignSelectors(b *blockenc.Block) {
	var pal [8][4]int
	for s, w := range uastcWeights {
		for ch := 0; ch < 4; ch++ {
			pal[s][ch] = ((64-w)*int(u.e0[ch]) + w*int(u.e1[ch]) + 32) >> 6
		}
	}
	for i := range b {
		best := -1
		for s := range pal {
			d := 0
			for ch := 0; ch < 4; ch++ {
				x := int(b[i][ch]) - pal[s][ch]
				d += x * x
			}
			if best < 0 || d < best {
				best, u.sel[i] = d, s
			}
		}
	}
}

func roundEndpoint(v [4]float64) [4]uint8 {
	var out [4]uint8
	for ch := range v {
		out[ch] = uint8(min(255, max(0, math.Round(v[ch]))))
	}
	return out
}

// refitFixed solves endpoints for the selectors currently held by u.
func (u *uastcBlock) refitFixed(b *blockenc.Block) bool {
	var t [16]float64
	for i, s := range u.sel {
		t[i] = float64(uastcWeights[s]) / 64
	}
	lo, hi, ok := blockenc.RefitEndpoints(b, &t)
	if !ok {
		return false
	}
	u.e0, u.e1 = roundEndpoint(lo), roundEndpoint(hi)
	return true
}

func isSolid(b *blockenc.Block) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}

// encodeUASTCBlock fits a two-endpoint block with quality refinement passes.
func encodeUASTCBlock(b *blockenc.Block, quality int) (uastcBlock, int) {
	lo, hi := blockenc.PrincipalEndpoints(b)
	u := uastcBlock{e0: roundEndpoint(lo), e1: roundEndpoint(hi)}
	u.assignSelectors(b)
	loss := blockError(b, &u)

	for pass := 0; pass < quality; pass++ {
		next := u
		if !next.refitFixed(b) {
			break
		}
		next.assignSelectors(b)
		nl := blockError(b, &next)
		if nl >= loss {
			break
		}
		u, loss = next, nl
	}

	return u, loss
}

func (u *uastcBlock) marshal(dst []byte) {
	dst[0] = uastcModeLine
	copy(dst[1:5], u.e0[:])
	copy(dst[5:9], u.e1[:])
	var bits uint64
	for i, s := range u.sel {
		bits |= uint64(s) << (3 * i)
	}
	for i := 0; i < selectorBytes; i++ {
		dst[selectorOffset+i] = byte(bits >> (8 * i))
	}
	dst[15] = 0
}

func selectorsOf(src []byte) [16]int {
	var bits uint64
	for i := 0; i < selectorBytes; i++ {
		bits |= uint64(src[selectorOffset+i]) << (8 * i)
	}
	var sel [16]int
	for i := range sel {
		sel[i] = int(bits>>(3*i)) & 7
	}
	return sel
}

// smoothScale raises the error weight of low-variance blocks.
func smoothScale(b *blockenc.Block, p UASTCParams) float64 {
	maxStd := 0.0
	for ch := 0; ch < 4; ch++ {
		var sum, sq float64
		for i := range b {
			v := float64(b[i][ch])
			sum += v
			sq += v * v
		}
		mean := sum / 16
		maxStd = math.Max(maxStd, math.Sqrt(math.Max(0, sq/16-mean*mean)))
	}
	if maxStd >= p.RDOMaxSmoothBlockStdDev {
		return 1
	}
	f := 1 - maxStd/p.RDOMaxSmoothBlockStdDev
	return 1 + (p.RDOMaxSmoothBlockErrorScale-1)*f
}

// EncodeUASTC encodes one image. The image must use the universal channel
// layout (see ToUniversal).
func EncodeUASTC(img *image.NRGBA, p UASTCParams) ([]byte, error) {
	p = p.Clamp()
	if img.Rect.Empty() {
		return nil, ErrEmptyImage
	}

	blocks := blockenc.Blocks(img)
	out := make([]byte, len(blocks)*UASTCBlockSize)
	window := p.RDODictSize / UASTCBlockSize

	// Selector patterns of earlier line blocks, most recent last.
	var history [][16]int
	for i := range blocks {
		b := &blocks[i]
		dst := out[i*UASTCBlockSize : (i+1)*UASTCBlockSize]
		if isSolid(b) {
			dst[0] = uastcModeSolid
			copy(dst[1:5], b[0][:])
			continue
		}

		u, loss := encodeUASTCBlock(b, p.Quality)
		if p.RDO {
			budget := p.RDOLambda * 1024 / smoothScale(b, p)
			for h := len(history) - 1; h >= 0 && h >= len(history)-window; h-- {
				if history[h] == u.sel {
					break
				}
				cand := uastcBlock{sel: history[h]}
				if !cand.refitFixed(b) {
					continue
				}
				if cl := blockError(b, &cand); float64(cl-loss) <= budget {
					u, loss = cand, cl
					break
				}
			}
		}
		u.marshal(dst)
		history = append(history, u.sel)
	}

	return out, nil
}

// DecodeUASTC decodes one image of width x height texels.
func DecodeUASTC(data []byte, width, height int) (*image.NRGBA, error) {
	bw, bh := blockenc.BlockCount(width, height)
	if len(data) != bw*bh*UASTCBlockSize {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidImageData, len(data), width, height)
	}

	blocks := make([]blockenc.Block, bw*bh)
	for i := range blocks {
		src := data[i*UASTCBlockSize : (i+1)*UASTCBlockSize]
		switch src[0] {
		case uastcModeSolid:
			var c [4]uint8
			copy(c[:], src[1:5])
			for px := range blocks[i] {
				blocks[i][px] = c
			}
		case uastcModeLine:
			u := uastcBlock{sel: selectorsOf(src)}
			copy(u.e0[:], src[1:5])
			copy(u.e1[:], src[5:9])
			for px := range blocks[i] {
				blocks[i][px] = u.texel(px)
			}
		default:
			return nil, fmt.Errorf("%w: block %d has mode %d", ErrInvalidImageData, i, src[0])
		}
	}

	return blockenc.Assemble(blocks, width, height)
}
