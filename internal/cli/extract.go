// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/imageio"
)

type extractOptions struct {
	level int
	layer int
	face  int
	all   bool
	raw   bool
}

func (a *app) newExtractCommand() *cobra.Command {
	o := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [flags] <input> <output>",
		Short: "Write images of a KTX2 file as PNG or raw texel data",
		Long: `Extract one image, or every image with --all. With --all the output
name gets a _levelN_layerN_faceN suffix before its extension.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runExtract(o, args[0], args[1])
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&o.level, "level", 0, "mip level")
	fs.IntVar(&o.layer, "layer", 0, "array layer")
	fs.IntVar(&o.face, "face", 0, "cubemap face or depth slice")
	fs.BoolVar(&o.all, "all", false, "extract every image")
	fs.BoolVar(&o.raw, "raw", false, "write raw texel bytes instead of PNG")

	return cmd
}

func (a *app) runExtract(o *extractOptions, input, output string) error {
	tex, err := a.readTexture(input)
	if err != nil {
		return err
	}

	if !o.all {
		return a.extractImage(tex, o.level, o.layer, o.face, output, o.raw)
	}

	if o.raw && filepath.Ext(output) == "" {
		output += ".raw"
	}
	l := tex.Layout()
	for level := 0; level < l.Levels(); level++ {
		for layer := 0; layer < l.Layers(); layer++ {
			for fs := 0; fs < l.FaceSlices(level); fs++ {
				path := imageio.IndexedName(output, level, layer, fs)
				if err := a.extractImage(tex, level, layer, fs, path, o.raw); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (a *app) extractImage(tex *ktx2.Texture, level, layer, faceSlice int, path string, raw bool) error {
	if raw {
		data, err := tex.Image(level, layer, faceSlice)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("%w: %q: %v", ktx2.ErrWrite, path, err)
		}
		a.logger.Debug("extracted", "path", path, "bytes", len(data))
		return nil
	}

	img, err := tex.DecodeImage(level, layer, faceSlice)
	if err != nil {
		return err
	}
	saved, err := imageio.Save(path, img)
	if err != nil {
		return fmt.Errorf("%w: %w", ktx2.ErrWrite, err)
	}
	a.logger.Debug("extracted", "path", saved, "level", level, "layer", layer, "face", faceSlice)

	return nil
}
