/*
Package ktx2 reads, builds and writes KTX2 texture containers.

A Texture holds every mip level, array layer, cubemap face and depth slice
of one texture in a single uncompressed buffer addressed by Layout. Levels
are stored on disk smallest first, each at an explicit offset in the level
index, optionally supercompressed with Zstd, Zlib or BasisLZ.

Textures move through an encode pipeline of typed stage handles:

	tex, _ := ktx2.Create(ktx2.CreateInfo{Format: ktx2.FormatR8G8B8A8SRGB, Width: 256, Height: 256, GenerateMipmaps: true})
	_ = tex.SetImageFromImage(0, 0, 0, img)
	raw, _ := ktx2.Start(tex)
	mips, _ := raw.GenerateMipmaps(ktx2.DefaultMipmapOptions())
	enc, _ := mips.EncodeUniversal(ktx2.DefaultUniversalParams(ktx2.CodecUASTC))
	_, _ = enc.Deflate(ktx2.DeflateParams{Scheme: ktx2.SchemeZstd, Level: 18})
	_ = tex.WriteFile("out.ktx2")

Each transition is applied to copies and committed only on success, and
handles issued before a transition fail with ErrStaleStage.

Universal payloads (ETC1S with BasisLZ, or UASTC) can be transcoded to GPU
block formats and plain RGBA with Texture.Transcode. Every error wraps one
of the package sentinels; Code maps them to process exit codes.
*/
package ktx2
