// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/imageio"
)

type createOptions struct {
	format  string
	oneD    bool
	cubemap bool
	raw     bool

	width  int
	height int
	depth  int
	layers int
	levels int

	runtimeMipmap  bool
	generateMipmap bool
	mipmapFilter   string
	mipmapScale    float64
	mipmapWrap     string

	encode    string
	universal universalFlags
	block     blockFlags
	deflate   deflateFlags

	transfer  string
	primaries string
}

func (a *app) newCreateCommand() *cobra.Command {
	o := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create [flags] <input...> <output>",
		Short: "Create a KTX2 file from images or raw texel data",
		Long: `Create a KTX2 file. Inputs fill the texture in order level, layer,
then face or depth slice. With --generate-mipmap only the base level is
read and the remaining levels are resampled from it.`,
		Args: usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runCreate(o, args[:len(args)-1], args[len(args)-1])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.format, "format", "", "texture format, e.g. R8G8B8A8_SRGB or BC7_UNORM_BLOCK")
	fs.BoolVar(&o.oneD, "1d", false, "create a 1D texture")
	fs.BoolVar(&o.cubemap, "cubemap", false, "create a cubemap; inputs are +X -X +Y -Y +Z -Z")
	fs.BoolVar(&o.raw, "raw", false, "inputs hold raw texel data in the target format")
	fs.IntVar(&o.width, "width", 0, "base width, default from the first input image")
	fs.IntVar(&o.height, "height", 0, "base height, default from the first input image")
	fs.IntVar(&o.depth, "depth", 0, "base depth of a 3D texture")
	fs.IntVar(&o.layers, "layers", 0, "array layer count")
	fs.IntVar(&o.levels, "levels", 0, "mip level count")
	fs.BoolVar(&o.runtimeMipmap, "runtime-mipmap", false, "request mip generation by the loader")
	fs.BoolVar(&o.generateMipmap, "generate-mipmap", false, "generate every mip level from the base level")
	fs.StringVar(&o.mipmapFilter, "mipmap-filter", ktx2.FilterLanczos4, "mip filter: box, tent, bspline, mitchell, catmull-rom, gaussian, hermite, lanczos3, lanczos4")
	fs.Float64Var(&o.mipmapScale, "mipmap-filter-scale", 1, "mip filter support scale")
	fs.StringVar(&o.mipmapWrap, "mipmap-wrap", ktx2.WrapClamp, "mip edge mode: clamp, wrap, mirror")
	fs.StringVar(&o.encode, "encode", "", "universal codec: basis-lz or uastc")
	fs.StringVar(&o.transfer, "assign-tf", "", "transfer function to record, e.g. srgb or linear")
	fs.StringVar(&o.transfer, "assign-oetf", "", "alias of --assign-tf")
	fs.StringVar(&o.primaries, "assign-primaries", "", "colour primaries to record, e.g. bt709")
	o.universal.register(fs)
	o.block.register(fs)
	o.deflate.register(fs)

	return cmd
}

// createRequest assembles and validates the request. No input is opened
// apart from reading the header of the first image for its size.
func (a *app) createRequest(o *createOptions, inputs []string) (ktx2.Request, ktx2.VkFormat, error) {
	if o.format == "" {
		return ktx2.Request{}, 0, fmt.Errorf("%w: --format is required", ktx2.ErrInvalidParameter)
	}
	format, err := ktx2.ParseFormat(o.format)
	if err != nil {
		return ktx2.Request{}, 0, err
	}
	if format, err = o.applyTransfer(format); err != nil {
		return ktx2.Request{}, 0, err
	}

	source := format
	if format.IsCompressed() && !o.raw {
		source = blockSource(format)
	}

	width, height := o.width, o.height
	if !o.raw && (width == 0 || height == 0) {
		cfg, _, err := imageio.Config(inputs[0])
		if err != nil {
			return ktx2.Request{}, 0, inputError(err)
		}
		if width == 0 {
			width = cfg.Width
		}
		if height == 0 {
			height = cfg.Height
		}
	}

	dims := 0
	if o.oneD {
		dims = 1
	}

	req := ktx2.Request{
		Create: ktx2.CreateInfo{
			Format:          source,
			Dimensions:      dims,
			Width:           width,
			Height:          height,
			Depth:           o.depth,
			Layers:          o.layers,
			Cubemap:         o.cubemap,
			Levels:          o.levels,
			GenerateMipmaps: o.generateMipmap,
			RuntimeMipmaps:  o.runtimeMipmap,
		},
		InputImages: len(inputs),
		Raw:         o.raw,
	}

	if o.generateMipmap {
		req.Mipmap = &ktx2.MipmapOptions{Filter: o.mipmapFilter, Scale: o.mipmapScale, Wrap: o.mipmapWrap}
	}
	if o.encode != "" {
		p, err := o.universal.params(o.encode)
		if err != nil {
			return ktx2.Request{}, 0, err
		}
		req.Universal = &p
	}
	if source != format {
		p, err := o.block.params()
		if err != nil {
			return ktx2.Request{}, 0, err
		}
		req.Block = &p
		req.BlockTarget = format
	}
	if req.Deflate, err = o.deflate.params(); err != nil {
		return ktx2.Request{}, 0, err
	}

	return req, format, req.Validate()
}

// applyTransfer switches format to its sRGB or linear sibling when
// --assign-tf asks for the other transfer function.
func (o *createOptions) applyTransfer(format ktx2.VkFormat) (ktx2.VkFormat, error) {
	if o.transfer == "" {
		return format, nil
	}
	tf, err := ktx2.ParseTransfer(o.transfer)
	if err != nil {
		return format, err
	}

	switch {
	case tf == ktx2.TransferSRGB && !format.IsSRGB():
		if srgb, ok := format.SRGBVariant(); ok {
			return srgb, nil
		}
	case tf != ktx2.TransferSRGB && format.IsSRGB():
		if linear, ok := format.LinearVariant(); ok {
			return linear, nil
		}
	}

	return format, nil
}

// blockSource picks the 8-bit format images are stored in before block
// encoding to target.
func blockSource(target ktx2.VkFormat) ktx2.VkFormat {
	source := ktx2.FormatR8G8B8A8Unorm
	switch target.ChannelCount() {
	case 1:
		source = ktx2.FormatR8Unorm
	case 2:
		source = ktx2.FormatR8G8Unorm
	}
	if target.IsSRGB() {
		if srgb, ok := source.SRGBVariant(); ok {
			source = srgb
		}
	}

	return source
}

func (a *app) runCreate(o *createOptions, inputs []string, output string) error {
	req, format, err := a.createRequest(o, inputs)
	if err != nil {
		return err
	}

	tex, err := ktx2.Create(req.Create, ktx2.WithCreateLogger(a.logger))
	if err != nil {
		return err
	}
	if err := a.assignColorSpace(tex, o); err != nil {
		return err
	}
	if err := tex.SetOrientation("rdi"); err != nil {
		return err
	}
	if err := populate(tex, inputs, o.raw, req.Mipmap != nil); err != nil {
		return err
	}

	var state ktx2.State
	if state, err = ktx2.Start(tex, a.pipelineOptions()...); err != nil {
		return err
	}
	if req.Mipmap != nil {
		if state, err = generateMipmaps(state, *req.Mipmap); err != nil {
			return err
		}
	}
	switch {
	case req.Universal != nil:
		state, err = encodeUniversal(state, *req.Universal)
	case req.Block != nil:
		state, err = encodeBlock(state, req.BlockTarget, *req.Block)
	}
	if err != nil {
		return err
	}
	if req.Deflate != nil {
		if _, err = deflate(state, *req.Deflate); err != nil {
			return err
		}
	}

	a.logger.Info("created", "output", output, "format", format.Name(), "texture", tex.String())

	return tex.WriteFile(output)
}

func (a *app) assignColorSpace(tex *ktx2.Texture, o *createOptions) error {
	if o.transfer == "" && o.primaries == "" {
		return nil
	}

	d := tex.Descriptor()
	primaries, transfer := d.Primaries, d.Transfer
	var err error
	if o.primaries != "" {
		if primaries, err = ktx2.ParsePrimaries(o.primaries); err != nil {
			return err
		}
	}
	if o.transfer != "" {
		if transfer, err = ktx2.ParseTransfer(o.transfer); err != nil {
			return err
		}
	}

	return tex.AssignColorSpace(primaries, transfer)
}

// populate fills tex from inputs in level, layer, face/slice order.
func populate(tex *ktx2.Texture, inputs []string, raw, baseOnly bool) error {
	l := tex.Layout()
	levels := l.Levels()
	if baseOnly {
		levels = 1
	}

	next := 0
	for level := 0; level < levels; level++ {
		for layer := 0; layer < l.Layers(); layer++ {
			for fs := 0; fs < l.FaceSlices(level); fs++ {
				if next >= len(inputs) {
					return fmt.Errorf("%w: ran out of inputs at level %d layer %d face/slice %d",
						ktx2.ErrImageCountMismatch, level, layer, fs)
				}
				path := inputs[next]
				next++

				if raw {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("%w: %q: %v", ktx2.ErrOpenFile, path, err)
					}
					if err := tex.SetImage(level, layer, fs, data); err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					continue
				}

				img, err := loadImage(path)
				if err != nil {
					return err
				}
				if err := tex.SetImageFromImage(level, layer, fs, img); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
		}
	}

	return nil
}

func loadImage(path string) (image.Image, error) {
	img, _, err := imageio.Load(path)
	if err != nil {
		return nil, inputError(err)
	}

	return img, nil
}

// inputError classifies an imageio failure.
func inputError(err error) error {
	if errors.Is(err, imageio.ErrOpen) {
		return fmt.Errorf("%w: %w", ktx2.ErrOpenFile, err)
	}

	return fmt.Errorf("%w: %w", ktx2.ErrInvalidFile, err)
}
