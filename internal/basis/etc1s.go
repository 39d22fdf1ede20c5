// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package basis

import (
	"encoding/binary"
	"fmt"
	"image"
	"sort"

	"github.com/nigeltao/etc2/lib/etc2"
	"github.com/woozymasta/ktx2/internal/blockenc"
)

const (
	globalHeaderSize = 20
	imageDescSize    = 20
	endpointSize     = 4
	selectorSize     = 4
	blockIndexSize   = 4
)

// Endpoint is one ETC1S codebook colour: a 5:5:5 base and an intensity table.
type Endpoint struct {
	Color [3]uint8
	Table uint8
}

// Codebook holds the endpoints and selectors shared by every image.
type Codebook struct {
	Endpoints []Endpoint
	Selectors []uint32
}

// ImageDesc locates the slices of one image inside its level's index stream.
type ImageDesc struct {
	Flags       uint32
	RGBOffset   uint32
	RGBLength   uint32
	AlphaOffset uint32
	AlphaLength uint32
}

// GlobalData is the ETC1S supercompression global data.
type GlobalData struct {
	Codebook
	Images []ImageDesc
}

// ETC1SImage is one image fitted to independent per-block endpoints.
type ETC1SImage struct {
	Width    int
	Height   int
	Channels int
	slices   [][]fitted
}

type fitted struct {
	block     blockenc.Block
	endpoint  Endpoint
	selectors uint32
}

// HasAlpha reports whether the image carries an alpha slice.
func (m *ETC1SImage) HasAlpha() bool { return len(m.slices) > 1 }

// SliceBytes returns the index stream size of one slice.
func SliceBytes(width, height int) int {
	bw, bh := blockenc.BlockCount(width, height)
	return bw * bh * blockIndexSize
}

func weightsFor(perceptual bool) blockenc.Weights {
	if perceptual {
		return blockenc.Perceptual
	}
	return blockenc.Uniform
}

// PrepareETC1S fits every block of img on its own. It has no shared state,
// so images may be prepared concurrently.
func PrepareETC1S(img *image.NRGBA, channels int, p ETC1SParams) (*ETC1SImage, error) {
	p = p.Clamp()
	src, err := ToUniversal(img, channels)
	if err != nil {
		return nil, err
	}

	rgb := blockenc.Blocks(src)
	out := &ETC1SImage{
		Width:    src.Rect.Dx(),
		Height:   src.Rect.Dy(),
		Channels: channels,
	}
	out.slices = append(out.slices, fitBlocks(rgb, p.CompressionLevel, weightsFor(p.Perceptual)))

	if hasAlpha(channels) {
		alpha := make([]blockenc.Block, len(rgb))
		for i := range rgb {
			for px := range rgb[i] {
				a := rgb[i][px][3]
				alpha[i][px] = [4]uint8{a, a, a, 255}
			}
		}
		out.slices = append(out.slices, fitBlocks(alpha, p.CompressionLevel, blockenc.Uniform))
	}

	return out, nil
}

func fitBlocks(blocks []blockenc.Block, effort int, w blockenc.Weights) []fitted {
	out := make([]fitted, len(blocks))
	for i := range blocks {
		c, t, s := blockenc.FitETC1S(&blocks[i], effort, w)
		out[i] = fitted{
			block:     blocks[i],
			endpoint:  Endpoint{Color: c, Table: uint8(t)},
			selectors: s,
		}
	}
	return out
}

// ETC1SResult is the output of BuildETC1S.
type ETC1SResult struct {
	Codebook Codebook
	// Streams holds one index stream per image: the rgb slice followed by
	// the alpha slice.
	Streams [][]byte
}

// BuildETC1S builds the shared codebooks over images in order and emits the
// index streams. The result depends only on the inputs and their order.
func BuildETC1S(images []*ETC1SImage, p ETC1SParams) (*ETC1SResult, error) {
	p = p.Clamp()
	if len(images) == 0 {
		return nil, ErrEmptyImage
	}
	w := weightsFor(p.Perceptual)

	// Walk every block once in a fixed order.
	type ref struct{ img, slice, block int }
	var refs []ref
	for i, m := range images {
		for s := range m.slices {
			for b := range m.slices[s] {
				refs = append(refs, ref{i, s, b})
			}
		}
	}
	at := func(r ref) *fitted { return &images[r.img].slices[r.slice][r.block] }
	weightOf := func(r ref) blockenc.Weights {
		if r.slice > 0 {
			return blockenc.Uniform
		}
		return w
	}

	// Endpoint codebook.
	step := endpointStep(p)
	endpointIdx := make([]int, len(refs))
	var endpoints []Endpoint
	var endpointUse []int
	seen := make(map[Endpoint]int)
	for n, r := range refs {
		e := quantizeEndpoint(at(r).endpoint, step)
		idx, ok := seen[e]
		if !ok {
			idx = len(endpoints)
			seen[e] = idx
			endpoints = append(endpoints, e)
			endpointUse = append(endpointUse, 0)
		}
		endpointUse[idx]++
		endpointIdx[n] = idx
	}
	endpoints, remap := mergeCodebook(endpoints, endpointUse, codebookCap(p.MaxEndpoints), endpointDistance)
	for n := range endpointIdx {
		endpointIdx[n] = remap[endpointIdx[n]]
	}

	// Selector codebook.
	rdo := !p.NoSelectorRDO && p.QualityLevel < MaxQualityLevel
	window := 16 << p.CompressionLevel
	selectorIdx := make([]int, len(refs))
	var selectors []uint32
	var selectorUse []int
	selSeen := make(map[uint32]int)
	for n, r := range refs {
		f := at(r)
		e := endpoints[endpointIdx[n]]
		bw := weightOf(r)
		sel, loss := blockenc.ETC1SSelectors(&f.block, e.Color, int(e.Table), bw)

		idx, ok := selSeen[sel]
		if !ok && rdo {
			tol := selectorTolerance(p.QualityLevel, bw)
			best, bestErr := -1, 0
			for c := len(selectors) - 1; c >= 0 && c >= len(selectors)-window; c-- {
				ce := blockenc.ETC1SError(&f.block, e.Color, int(e.Table), selectors[c], bw)
				if best < 0 || ce < bestErr {
					best, bestErr = c, ce
				}
			}
			if best >= 0 && bestErr <= loss+tol {
				idx, ok = best, true
			}
		}
		if !ok {
			idx = len(selectors)
			selSeen[sel] = idx
			selectors = append(selectors, sel)
			selectorUse = append(selectorUse, 0)
		}
		selectorUse[idx]++
		selectorIdx[n] = idx
	}
	selectors, selRemap := mergeCodebook(selectors, selectorUse, codebookCap(p.MaxSelectors), selectorDistance)
	for n := range selectorIdx {
		selectorIdx[n] = selRemap[selectorIdx[n]]
	}

	// Index streams.
	res := &ETC1SResult{
		Codebook: Codebook{Endpoints: endpoints, Selectors: selectors},
		Streams:  make([][]byte, len(images)),
	}
	n := 0
	for i, m := range images {
		blocks := 0
		for _, s := range m.slices {
			blocks += len(s)
		}
		stream := make([]byte, blocks*blockIndexSize)
		for b := 0; b < blocks; b++ {
			binary.LittleEndian.PutUint16(stream[b*4:], uint16(endpointIdx[n]))
			binary.LittleEndian.PutUint16(stream[b*4+2:], uint16(selectorIdx[n]))
			n++
		}
		res.Streams[i] = stream
	}

	return res, nil
}

// endpointStep returns the 5-bit colour quantization step for a quality level.
func endpointStep(p ETC1SParams) int {
	if p.NoEndpointRDO {
		return 1
	}
	return 1 + (MaxQualityLevel-p.QualityLevel)/64
}

func quantizeEndpoint(e Endpoint, step int) Endpoint {
	if step <= 1 {
		return e
	}
	for i, c := range e.Color {
		e.Color[i] = uint8(min(31, int(c)/step*step+step/2))
	}
	return e
}

// selectorTolerance is the extra block error allowed when reusing a selector.
func selectorTolerance(quality int, w blockenc.Weights) int {
	d := MaxQualityLevel - quality
	return d * d / 1024 * (w[0] + w[1] + w[2])
}

func codebookCap(limit int) int {
	if limit <= 0 {
		return codebookLimit
	}
	return min(limit, codebookLimit)
}

// mergeCodebook keeps the limit most used entries and folds every other one
// into its nearest kept neighbour. Kept entries stay in first-use order.
func mergeCodebook[T any](entries []T, use []int, limit int, dist func(a, b T) int) ([]T, []int) {
	remap := make([]int, len(entries))
	if len(entries) <= limit {
		for i := range remap {
			remap[i] = i
		}
		return entries, remap
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return use[order[a]] > use[order[b]]
	})

	keep := append([]int(nil), order[:limit]...)
	sort.Ints(keep)

	kept := make([]T, len(keep))
	newIndex := make(map[int]int, len(keep))
	for n, i := range keep {
		kept[n] = entries[i]
		newIndex[i] = n
	}

	for i := range entries {
		if n, ok := newIndex[i]; ok {
			remap[i] = n
			continue
		}
		best, bestD := 0, -1
		for n := range kept {
			if d := dist(entries[i], kept[n]); bestD < 0 || d < bestD {
				best, bestD = n, d
			}
		}
		remap[i] = best
	}

	return kept, remap
}

func endpointDistance(a, b Endpoint) int {
	d := 0
	for i := range a.Color {
		x := int(a.Color[i]) - int(b.Color[i])
		d += x * x * 64
	}
	t := int(a.Table) - int(b.Table)
	return d + t*t*256
}

// selectorRank orders the 2-bit ETC selector indices by modifier value.
var selectorRank = [4]int{2, 3, 1, 0}

func selectorDistance(a, b uint32) int {
	d := 0
	for p := 0; p < 16; p++ {
		ia := (a>>p)&1 | ((a>>(16+p))&1)<<1
		ib := (b>>p)&1 | ((b>>(16+p))&1)<<1
		x := selectorRank[ia] - selectorRank[ib]
		if x < 0 {
			x = -x
		}
		d += x
	}
	return d
}

// MarshalBinary encodes the global data with LZ4-packed codebooks.
func (g *GlobalData) MarshalBinary() ([]byte, error) {
	if len(g.Endpoints) > codebookLimit || len(g.Selectors) > codebookLimit {
		return nil, fmt.Errorf("%w: %d endpoints, %d selectors", ErrInvalidGlobalData, len(g.Endpoints), len(g.Selectors))
	}

	rawEndpoints := make([]byte, len(g.Endpoints)*endpointSize)
	for i, e := range g.Endpoints {
		packed := uint16(e.Color[0]&31)<<10 | uint16(e.Color[1]&31)<<5 | uint16(e.Color[2]&31)
		binary.LittleEndian.PutUint16(rawEndpoints[i*endpointSize:], packed)
		rawEndpoints[i*endpointSize+2] = e.Table & 7
	}
	rawSelectors := make([]byte, len(g.Selectors)*selectorSize)
	for i, s := range g.Selectors {
		binary.LittleEndian.PutUint32(rawSelectors[i*selectorSize:], s)
	}

	endpoints, err := Pack(rawEndpoints)
	if err != nil {
		return nil, err
	}
	selectors, err := Pack(rawSelectors)
	if err != nil {
		return nil, err
	}

	out := make([]byte, globalHeaderSize+len(g.Images)*imageDescSize, globalHeaderSize+len(g.Images)*imageDescSize+len(endpoints)+len(selectors))
	binary.LittleEndian.PutUint16(out[0:], uint16(len(g.Endpoints)))
	binary.LittleEndian.PutUint16(out[2:], uint16(len(g.Selectors)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(endpoints)))
	binary.LittleEndian.PutUint32(out[8:], uint32(len(selectors)))
	for i, d := range g.Images {
		o := globalHeaderSize + i*imageDescSize
		binary.LittleEndian.PutUint32(out[o:], d.Flags)
		binary.LittleEndian.PutUint32(out[o+4:], d.RGBOffset)
		binary.LittleEndian.PutUint32(out[o+8:], d.RGBLength)
		binary.LittleEndian.PutUint32(out[o+12:], d.AlphaOffset)
		binary.LittleEndian.PutUint32(out[o+16:], d.AlphaLength)
	}
	out = append(out, endpoints...)
	out = append(out, selectors...)

	return out, nil
}

// ParseGlobalData decodes global data for imageCount images.
func ParseGlobalData(data []byte, imageCount int) (*GlobalData, error) {
	if imageCount < 0 || len(data) < globalHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes for %d images", ErrInvalidGlobalData, len(data), imageCount)
	}
	endpointCount := int(binary.LittleEndian.Uint16(data[0:]))
	selectorCount := int(binary.LittleEndian.Uint16(data[2:]))
	endpointsLen := uint64(binary.LittleEndian.Uint32(data[4:]))
	selectorsLen := uint64(binary.LittleEndian.Uint32(data[8:]))
	tablesLen := uint64(binary.LittleEndian.Uint32(data[12:]))
	extendedLen := uint64(binary.LittleEndian.Uint32(data[16:]))

	descEnd := uint64(globalHeaderSize) + uint64(imageCount)*imageDescSize
	total := descEnd + endpointsLen + selectorsLen + tablesLen + extendedLen
	if total != uint64(len(data)) {
		return nil, fmt.Errorf("%w: sections need %d bytes, have %d", ErrInvalidGlobalData, total, len(data))
	}

	g := &GlobalData{Images: make([]ImageDesc, imageCount)}
	for i := range g.Images {
		o := globalHeaderSize + i*imageDescSize
		g.Images[i] = ImageDesc{
			Flags:       binary.LittleEndian.Uint32(data[o:]),
			RGBOffset:   binary.LittleEndian.Uint32(data[o+4:]),
			RGBLength:   binary.LittleEndian.Uint32(data[o+8:]),
			AlphaOffset: binary.LittleEndian.Uint32(data[o+12:]),
			AlphaLength: binary.LittleEndian.Uint32(data[o+16:]),
		}
	}

	off := descEnd
	rawEndpoints, err := Unpack(data[off:off+endpointsLen], uint64(endpointCount)*endpointSize)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoints: %w", ErrInvalidGlobalData, err)
	}
	if len(rawEndpoints) != endpointCount*endpointSize {
		return nil, fmt.Errorf("%w: endpoint section holds %d bytes, expected %d", ErrInvalidGlobalData, len(rawEndpoints), endpointCount*endpointSize)
	}
	off += endpointsLen
	rawSelectors, err := Unpack(data[off:off+selectorsLen], uint64(selectorCount)*selectorSize)
	if err != nil {
		return nil, fmt.Errorf("%w: selectors: %w", ErrInvalidGlobalData, err)
	}
	if len(rawSelectors) != selectorCount*selectorSize {
		return nil, fmt.Errorf("%w: selector section holds %d bytes, expected %d", ErrInvalidGlobalData, len(rawSelectors), selectorCount*selectorSize)
	}

	g.Endpoints = make([]Endpoint, endpointCount)
	for i := range g.Endpoints {
		v := binary.LittleEndian.Uint16(rawEndpoints[i*endpointSize:])
		g.Endpoints[i] = Endpoint{
			Color: [3]uint8{uint8(v >> 10 & 31), uint8(v >> 5 & 31), uint8(v & 31)},
			Table: rawEndpoints[i*endpointSize+2] & 7,
		}
	}
	g.Selectors = make([]uint32, selectorCount)
	for i := range g.Selectors {
		g.Selectors[i] = binary.LittleEndian.Uint32(rawSelectors[i*selectorSize:])
	}

	return g, nil
}

// etc1Codes resolves a slice of block indices to ETC1 differential blocks.
func (cb *Codebook) etc1Codes(slice []byte, width, height int) ([]uint64, error) {
	if len(slice) != SliceBytes(width, height) {
		return nil, fmt.Errorf("%w: slice of %d bytes for %dx%d", ErrInvalidImageData, len(slice), width, height)
	}
	codes := make([]uint64, len(slice)/blockIndexSize)
	for i := range codes {
		e := int(binary.LittleEndian.Uint16(slice[i*4:]))
		s := int(binary.LittleEndian.Uint16(slice[i*4+2:]))
		if e >= len(cb.Endpoints) || s >= len(cb.Selectors) {
			return nil, fmt.Errorf("%w: block %d references endpoint %d, selector %d", ErrInvalidImageData, i, e, s)
		}
		ep := cb.Endpoints[e]
		codes[i] = blockenc.PackETC1S(ep.Color, int(ep.Table), cb.Selectors[s])
	}
	return codes, nil
}

// ETC1SToETC1 rewrites an rgb slice as big-endian ETC1 blocks without loss.
func ETC1SToETC1(cb *Codebook, rgb []byte, width, height int) ([]byte, error) {
	codes, err := cb.etc1Codes(rgb, width, height)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(codes)*8)
	for i, c := range codes {
		binary.BigEndian.PutUint64(out[i*8:], c)
	}
	return out, nil
}

// DecodeETC1S decodes one image from its slices. alpha is nil for images
// without an alpha slice. The result uses the universal channel layout.
func DecodeETC1S(cb *Codebook, rgb, alpha []byte, width, height int) (*image.NRGBA, error) {
	etc1, err := ETC1SToETC1(cb, rgb, width, height)
	if err != nil {
		return nil, err
	}
	img, err := blockenc.DecodeETC(etc1, width, height, etc2.FormatETC1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImageData, err)
	}
	if alpha == nil {
		return img, nil
	}

	aetc1, err := ETC1SToETC1(cb, alpha, width, height)
	if err != nil {
		return nil, err
	}
	a, err := blockenc.DecodeETC(aetc1, width, height, etc2.FormatETC1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImageData, err)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = a.Pix[i-3]
	}

	return img, nil
}
