// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"fmt"
)

// Stage is the position of a texture in the encode pipeline.
type Stage uint8

// Pipeline stages.
const (
	StageRaw Stage = iota
	StageMipGenerated
	StageUniversalEncoded
	StageBlockEncoded
	StageSupercompressed
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageMipGenerated:
		return "mip-generated"
	case StageUniversalEncoded:
		return "universal-encoded"
	case StageBlockEncoded:
		return "block-encoded"
	case StageSupercompressed:
		return "supercompressed"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// State is implemented by every pipeline handle.
type State interface {
	// Texture returns the texture the handle drives.
	Texture() *Texture
	// Stage returns the stage the handle was issued for.
	Stage() Stage
}

// handle binds a texture to the stage sequence it was issued at. Once the
// texture advances, every older handle is stale.
type handle struct {
	tex   *Texture
	seq   uint64
	stage Stage
	cfg   pipelineConfig
}

func newHandle(tex *Texture, cfg pipelineConfig) handle {
	return handle{tex: tex, seq: tex.seq, stage: tex.stage, cfg: cfg}
}

// Texture returns the texture the handle drives.
func (h *handle) Texture() *Texture { return h.tex }

// Stage returns the stage the handle was issued for.
func (h *handle) Stage() Stage { return h.stage }

func (h *handle) check() error {
	if h.tex.seq != h.seq || h.tex.stage != h.stage {
		return fmt.Errorf("%w: handle for %s, texture is %s", ErrStaleStage, h.stage, h.tex.stage)
	}

	return nil
}

// requireAll rejects transitions out of the raw stages while images are missing.
func (h *handle) requireAll() error {
	if missing := h.tex.missingImages(false); len(missing) > 0 {
		m := missing[0]
		return fmt.Errorf("%w: %d images absent, first at level %d layer %d face/slice %d",
			ErrMissingImage, len(missing), m.level, m.layer, m.faceSlice)
	}

	return nil
}

// commit advances the texture and issues the next handle.
func (h *handle) commit(stage Stage) handle {
	h.tex.advance(stage)

	return newHandle(h.tex, h.cfg)
}

// Raw is the handle of a texture holding raw texels.
type Raw struct{ handle }

// MipGenerated is the handle of a raw texture whose mip chain is complete.
type MipGenerated struct{ handle }

// UniversalEncoded is the handle of a texture holding an ETC1S or UASTC payload.
type UniversalEncoded struct{ handle }

// BlockEncoded is the handle of a texture holding GPU block data.
type BlockEncoded struct{ handle }

// Supercompressed is the handle of a texture deflated with Zstd or Zlib.
type Supercompressed struct{ handle }

// Start begins the pipeline for a created texture. Every base level image
// must be present.
func Start(tex *Texture, opts ...PipelineOption) (*Raw, error) {
	if tex == nil {
		return nil, fmt.Errorf("%w: nil texture", ErrInvalidParameter)
	}
	if tex.stage != StageRaw {
		return nil, fmt.Errorf("%w: start from %s", ErrStageLocked, tex.stage)
	}
	if missing := tex.missingImages(true); len(missing) > 0 {
		m := missing[0]
		return nil, fmt.Errorf("%w: %d base images absent, first at layer %d face/slice %d",
			ErrMissingImage, len(missing), m.layer, m.faceSlice)
	}

	cfg := newPipelineConfig(opts)
	tex.SetLogger(cfg.logger)
	tex.advance(StageRaw)

	return &Raw{newHandle(tex, cfg)}, nil
}

// Resume issues a handle for the current stage of tex, typically a texture
// returned by Decode.
func Resume(tex *Texture, opts ...PipelineOption) (State, error) {
	if tex == nil {
		return nil, fmt.Errorf("%w: nil texture", ErrInvalidParameter)
	}

	cfg := newPipelineConfig(opts)
	tex.SetLogger(cfg.logger)
	h := newHandle(tex, cfg)

	switch tex.stage {
	case StageRaw:
		return &Raw{h}, nil
	case StageMipGenerated:
		return &MipGenerated{h}, nil
	case StageUniversalEncoded:
		return &UniversalEncoded{h}, nil
	case StageBlockEncoded:
		return &BlockEncoded{h}, nil
	case StageSupercompressed:
		return &Supercompressed{h}, nil
	default:
		return nil, fmt.Errorf("%w: unknown %s", ErrInvalidParameter, tex.stage)
	}
}

// GenerateMipmaps fills every level the caller did not supply from level 0.
func (r *Raw) GenerateMipmaps(opts MipmapOptions) (*MipGenerated, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	if err := generateMipmaps(r.tex, opts, r.cfg); err != nil {
		return nil, err
	}

	return &MipGenerated{r.commit(StageMipGenerated)}, nil
}

// EncodeUniversal encodes the texture to ETC1S or UASTC.
func (r *Raw) EncodeUniversal(p UniversalParams) (*UniversalEncoded, error) {
	return r.encodeUniversal(p)
}

// EncodeBlock encodes the texture to the GPU block format target.
func (r *Raw) EncodeBlock(target VkFormat, p BlockParams) (*BlockEncoded, error) {
	return r.encodeBlock(target, p)
}

// Deflate applies Zstd or Zlib supercompression to the raw texels.
func (r *Raw) Deflate(p DeflateParams) (*Supercompressed, error) {
	return r.deflate(p)
}

// EncodeUniversal encodes the texture to ETC1S or UASTC.
func (m *MipGenerated) EncodeUniversal(p UniversalParams) (*UniversalEncoded, error) {
	return m.encodeUniversal(p)
}

// EncodeBlock encodes the texture to the GPU block format target.
func (m *MipGenerated) EncodeBlock(target VkFormat, p BlockParams) (*BlockEncoded, error) {
	return m.encodeBlock(target, p)
}

// Deflate applies Zstd or Zlib supercompression to the raw texels.
func (m *MipGenerated) Deflate(p DeflateParams) (*Supercompressed, error) {
	return m.deflate(p)
}

// Deflate applies Zstd or Zlib supercompression to a UASTC payload. ETC1S
// payloads already carry BasisLZ and are rejected.
func (u *UniversalEncoded) Deflate(p DeflateParams) (*Supercompressed, error) {
	return u.deflate(p)
}

// Deflate applies Zstd or Zlib supercompression to the block data.
func (b *BlockEncoded) Deflate(p DeflateParams) (*Supercompressed, error) {
	return b.deflate(p)
}

// Deflate replaces the current generic scheme.
func (s *Supercompressed) Deflate(p DeflateParams) (*Supercompressed, error) {
	return s.deflate(p)
}

func (h *handle) encodeUniversal(p UniversalParams) (*UniversalEncoded, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if err := h.requireAll(); err != nil {
		return nil, err
	}
	if err := encodeUniversal(h.tex, p, h.cfg); err != nil {
		return nil, err
	}

	return &UniversalEncoded{h.commit(StageUniversalEncoded)}, nil
}

func (h *handle) encodeBlock(target VkFormat, p BlockParams) (*BlockEncoded, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if err := h.requireAll(); err != nil {
		return nil, err
	}
	if err := encodeBlock(h.tex, target, p, h.cfg); err != nil {
		return nil, err
	}

	return &BlockEncoded{h.commit(StageBlockEncoded)}, nil
}

func (h *handle) deflate(p DeflateParams) (*Supercompressed, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if err := h.requireAll(); err != nil {
		return nil, err
	}
	if err := deflateTexture(h.tex, p, h.cfg); err != nil {
		return nil, err
	}

	return &Supercompressed{h.commit(StageSupercompressed)}, nil
}
