// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
)

type transcodeOptions struct {
	target  string
	block   blockFlags
	deflate deflateFlags
}

func (a *app) newTranscodeCommand() *cobra.Command {
	o := &transcodeOptions{}
	cmd := &cobra.Command{
		Use:   "transcode [flags] <input> <output>",
		Short: "Transcode a BasisLZ/ETC1S or UASTC file to a GPU or plain format",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runTranscode(o, args[0], args[1])
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.target, "target", "", "target: "+strings.Join(ktx2.TranscodeTargetNames(), ", "))
	o.block.register(fs)
	o.deflate.register(fs)

	return cmd
}

func (a *app) runTranscode(o *transcodeOptions, input, output string) error {
	if o.target == "" {
		return fmt.Errorf("%w: --target is required", ktx2.ErrInvalidParameter)
	}
	target, err := ktx2.ParseTranscodeTarget(o.target)
	if err != nil {
		return err
	}
	bp, err := o.block.params()
	if err != nil {
		return err
	}
	d, err := o.deflate.params()
	if err != nil {
		return err
	}

	tex, err := a.readTexture(input)
	if err != nil {
		return err
	}
	err = tex.Transcode(target,
		ktx2.WithTranscodeLogger(a.logger),
		ktx2.WithTranscodeWorkers(a.threads),
		ktx2.WithTranscodeBlockParams(bp))
	if err != nil {
		return err
	}

	if d != nil {
		state, err := ktx2.Resume(tex, a.pipelineOptions()...)
		if err != nil {
			return err
		}
		if _, err := deflate(state, *d); err != nil {
			return err
		}
	}

	a.logger.Info("transcoded", "input", input, "output", output, "target", target)

	return tex.WriteFile(output)
}
