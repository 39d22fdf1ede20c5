// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

const (
	maxUint32 = uint64(^uint32(0))
	maxInt    = int(^uint(0) >> 1)
)

// u32FromInt converts an int to a uint32.
func u32FromInt(n int) (uint32, error) {
	if n < 0 || uint64(n) > maxUint32 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint32(n), nil
}

// u64FromInt converts a non-negative int to a uint64.
func u64FromInt(n int) (uint64, error) {
	if n < 0 {
		return 0, ErrSizeOverflow
	}

	return uint64(n), nil
}

// intFromU64 converts a uint64 read from a file to an int.
func intFromU64(n uint64) (int, error) {
	if n > uint64(maxInt) {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return int(n), nil
}

// intFromU32 converts a uint32 read from a file to an int.
func intFromU32(n uint32) int {
	return int(n)
}

// ceilDiv divides rounding up. b must be positive.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// alignUp rounds n up to a multiple of a. a must be positive.
func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}

	return ceilDiv(n, a) * a
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// lcm4 returns the least common multiple of 4 and n.
func lcm4(n int) int {
	if n <= 0 {
		return 4
	}

	return n / gcd(n, 4) * 4
}

// mulChecked multiplies non-negative sizes and reports overflow.
func mulChecked(vals ...int) (int, error) {
	out := 1
	for _, v := range vals {
		if v < 0 {
			return 0, ErrSizeOverflow
		}
		if v != 0 && out > maxInt/v {
			return 0, ErrSizeOverflow
		}
		out *= v
	}

	return out, nil
}
