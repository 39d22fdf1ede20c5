// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
)

func (a *app) newDeflateCommand() *cobra.Command {
	var flags deflateFlags
	cmd := &cobra.Command{
		Use:   "deflate [flags] <input> <output>",
		Short: "Supercompress a KTX2 file with Zstandard or Zlib",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runDeflate(&flags, args[0], args[1])
		},
	}
	flags.register(cmd.Flags())

	return cmd
}

func (a *app) runDeflate(flags *deflateFlags, input, output string) error {
	p, err := flags.params()
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: one of --zstd or --zlib is required", ktx2.ErrInvalidParameter)
	}

	tex, err := a.readTexture(input)
	if err != nil {
		return err
	}
	if tex.Supercompression().Scheme == ktx2.SchemeBasisLZ {
		return fmt.Errorf("%w: cannot deflate a KTX2 file supercompressed with BasisLZ",
			ktx2.ErrIncompatibleSupercompression)
	}

	state, err := ktx2.Resume(tex, a.pipelineOptions()...)
	if err != nil {
		return err
	}
	if _, err := deflate(state, *p); err != nil {
		return err
	}

	a.logger.Info("deflated", "input", input, "output", output, "scheme", p.Scheme, "level", p.Level)

	return tex.WriteFile(output)
}
