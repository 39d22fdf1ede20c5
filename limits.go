// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

// Limits bounds the resources a reader may allocate. Zero fields take
// the defaults.
type Limits struct {
	MaxDimension       int    // per axis, pixels
	MaxLayers          int    // array layers
	MaxImageBytes      uint64 // uncompressed pixel data
	MaxKeyValueBytes   uint32 // key/value section
	MaxGlobalDataBytes uint64 // supercompression global data
	MaxDescriptorBytes uint32 // data format descriptor
}

func defaultLimits() Limits {
	return Limits{
		MaxDimension:       1 << 16,
		MaxLayers:          1 << 12,
		MaxImageBytes:      4 << 30, // 4 GiB
		MaxKeyValueBytes:   1 << 20, // 1 MiB
		MaxGlobalDataBytes: 256 << 20,
		MaxDescriptorBytes: 64 << 10,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxDimension == 0 {
		l.MaxDimension = d.MaxDimension
	}
	if l.MaxLayers == 0 {
		l.MaxLayers = d.MaxLayers
	}
	if l.MaxImageBytes == 0 {
		l.MaxImageBytes = d.MaxImageBytes
	}
	if l.MaxKeyValueBytes == 0 {
		l.MaxKeyValueBytes = d.MaxKeyValueBytes
	}
	if l.MaxGlobalDataBytes == 0 {
		l.MaxGlobalDataBytes = d.MaxGlobalDataBytes
	}
	if l.MaxDescriptorBytes == 0 {
		l.MaxDescriptorBytes = d.MaxDescriptorBytes
	}
	return l
}

// maxFileBytes bounds the size of a stream the reader buffers.
func (l Limits) maxFileBytes() int64 {
	const overhead = 1 << 20
	total := l.MaxImageBytes + l.MaxImageBytes/64 + uint64(l.MaxKeyValueBytes) +
		l.MaxGlobalDataBytes + uint64(l.MaxDescriptorBytes) + overhead
	if total < l.MaxImageBytes || total > 1<<62 {
		return 1 << 62
	}

	return int64(total)
}
