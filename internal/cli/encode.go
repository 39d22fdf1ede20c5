// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
)

type encodeOptions struct {
	codec     string
	universal universalFlags
	deflate   deflateFlags
}

func (a *app) newEncodeCommand() *cobra.Command {
	o := &encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode [flags] <input> <output>",
		Short: "Encode an uncompressed KTX2 file to BasisLZ/ETC1S or UASTC",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runEncode(o, args[0], args[1])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.codec, "codec", "", "universal codec: basis-lz or uastc")
	o.universal.register(fs)
	o.deflate.register(fs)

	return cmd
}

func (a *app) runEncode(o *encodeOptions, input, output string) error {
	if o.codec == "" {
		return fmt.Errorf("%w: --codec is required", ktx2.ErrInvalidParameter)
	}
	p, err := o.universal.params(o.codec)
	if err != nil {
		return err
	}
	d, err := o.deflate.params()
	if err != nil {
		return err
	}
	if d != nil && p.Codec == ktx2.CodecETC1S {
		return fmt.Errorf("%w: %s with %s", ktx2.ErrConflictingOptions, p.Codec, d.Scheme)
	}

	tex, err := a.readTexture(input)
	if err != nil {
		return err
	}
	state, err := ktx2.Resume(tex, a.pipelineOptions()...)
	if err != nil {
		return err
	}
	if state, err = encodeUniversal(state, p); err != nil {
		return err
	}
	if d != nil {
		if _, err = deflate(state, *d); err != nil {
			return err
		}
	}

	a.logger.Info("encoded", "input", input, "output", output, "codec", p.Codec)

	return tex.WriteFile(output)
}
