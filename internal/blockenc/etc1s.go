// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package blockenc

// etcModifiers are the ETC1 intensity tables as {small, large} magnitudes.
var etcModifiers = [8][2]int{
	{2, 8}, {5, 17}, {9, 29}, {13, 42},
	{18, 60}, {24, 80}, {33, 106}, {47, 183},
}

// ETCModifier returns the signed modifier for a 2-bit pixel index:
// 0 small positive, 1 large positive, 2 small negative, 3 large negative.
func ETCModifier(table, index int) int {
	m := etcModifiers[table&7]
	switch index & 3 {
	case 0:
		return m[0]
	case 1:
		return m[1]
	case 2:
		return -m[0]
	default:
		return -m[1]
	}
}

func expand5(v uint64) int { v &= 31; return int(v<<3 | v>>2) }

func clampByte(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// Weights scales the squared error of each colour channel.
type Weights [3]int

var (
	// Uniform weighs channels equally.
	Uniform = Weights{1, 1, 1}
	// Perceptual weighs channels by their contribution to luma.
	Perceptual = Weights{299, 587, 114}
)

func (w Weights) distance(a [4]uint8, r, g, b int) int {
	dr, dg, db := int(a[0])-r, int(a[1])-g, int(a[2])-b
	return w[0]*dr*dr + w[1]*dg*dg + w[2]*db*db
}

// pixelBits returns the selector bit position of a row-major pixel.
func pixelBits(i int) uint {
	x, y := i&3, i>>2
	return uint(x*4 + y)
}

// fitHalf picks the intensity table and indices for pixels around base.
func fitHalf(b *Block, pixels []int, base [3]int, w Weights) (table int, bits uint32, loss int) {
	loss = -1
	for t := 0; t < 8; t++ {
		var tb uint32
		tl := 0
		for _, i := range pixels {
			bestIdx, best := 0, -1
			for idx := 0; idx < 4; idx++ {
				m := ETCModifier(t, idx)
				d := w.distance(b[i], int(clampByte(base[0]+m)), int(clampByte(base[1]+m)), int(clampByte(base[2]+m)))
				if best < 0 || d < best {
					bestIdx, best = idx, d
				}
			}
			p := pixelBits(i)
			tb |= uint32(bestIdx&1)<<p | uint32(bestIdx>>1)<<(16+p)
			tl += best
		}
		if loss < 0 || tl < loss {
			table, bits, loss = t, tb, tl
		}
	}

	return table, bits, loss
}

func average(b *Block, pixels []int) [3]float64 {
	var sum [3]int
	for _, i := range pixels {
		sum[0] += int(b[i][0])
		sum[1] += int(b[i][1])
		sum[2] += int(b[i][2])
	}
	n := float64(len(pixels))

	return [3]float64{float64(sum[0]) / n, float64(sum[1]) / n, float64(sum[2]) / n}
}

func quantize(avg [3]float64, levels int) [3]int {
	var q [3]int
	for i, v := range avg {
		q[i] = min(levels, max(0, int(v*float64(levels)/255+0.5)))
	}

	return q
}

func shiftColor(c [3]int, s, limit int) [3]int {
	for i := range c {
		c[i] = min(limit, max(0, c[i]+s))
	}

	return c
}

// PackETC1S builds the ETC1 differential block of an ETC1S endpoint: a
// 5:5:5 colour, one intensity table for both halves and a selector word
// holding index LSBs in bits 0-15 and MSBs in bits 16-31.
func PackETC1S(color [3]uint8, table int, selectors uint32) uint64 {
	return uint64(color[0]&31)<<59 | uint64(color[1]&31)<<51 | uint64(color[2]&31)<<43 |
		uint64(table&7)<<37 | uint64(table&7)<<34 | 1<<33 | uint64(selectors)
}

// ETC1SSelectors picks the best selector per pixel for a fixed endpoint.
func ETC1SSelectors(b *Block, color [3]uint8, table int, w Weights) (uint32, int) {
	base := [3]int{expand5(uint64(color[0])), expand5(uint64(color[1])), expand5(uint64(color[2]))}
	all := make([]int, 16)
	for i := range all {
		all[i] = i
	}
	var bits uint32
	loss := 0
	for _, i := range all {
		bestIdx, best := 0, -1
		for idx := 0; idx < 4; idx++ {
			m := ETCModifier(table, idx)
			d := w.distance(b[i], int(clampByte(base[0]+m)), int(clampByte(base[1]+m)), int(clampByte(base[2]+m)))
			if best < 0 || d < best {
				bestIdx, best = idx, d
			}
		}
		p := pixelBits(i)
		bits |= uint32(bestIdx&1)<<p | uint32(bestIdx>>1)<<(16+p)
		loss += best
	}

	return bits, loss
}

// ETC1SError returns the weighted error of an endpoint and selector word.
func ETC1SError(b *Block, color [3]uint8, table int, selectors uint32, w Weights) int {
	base := [3]int{expand5(uint64(color[0])), expand5(uint64(color[1])), expand5(uint64(color[2]))}
	loss := 0
	for i := 0; i < 16; i++ {
		p := pixelBits(i)
		idx := int((selectors>>p)&1 | ((selectors>>(16+p))&1)<<1)
		m := ETCModifier(table, idx)
		loss += w.distance(b[i], int(clampByte(base[0]+m)), int(clampByte(base[1]+m)), int(clampByte(base[2]+m)))
	}

	return loss
}

// FitETC1S fits a single 5:5:5 colour and intensity table to the block.
func FitETC1S(b *Block, effort int, w Weights) (color [3]uint8, table int, selectors uint32) {
	all := make([]int, 16)
	for i := range all {
		all[i] = i
	}
	q := quantize(average(b, all), 31)

	shifts := []int{0}
	switch {
	case effort >= 3:
		shifts = []int{0, -2, -1, 1, 2}
	case effort >= 1:
		shifts = []int{0, -1, 1}
	}

	bestLoss := -1
	for _, s := range shifts {
		c := shiftColor(q, s, 31)
		base := [3]int{expand5(uint64(c[0])), expand5(uint64(c[1])), expand5(uint64(c[2]))}
		t, bits, loss := fitHalf(b, all, base, w)
		if bestLoss < 0 || loss < bestLoss {
			bestLoss = loss
			color = [3]uint8{uint8(c[0]), uint8(c[1]), uint8(c[2])}
			table, selectors = t, bits
		}
	}

	return color, table, selectors
}
