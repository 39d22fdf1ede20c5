// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
)

func (a *app) newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Check a KTX2 file against the container rules",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runValidate(args[0])
		},
	}
}

func (a *app) runValidate(input string) error {
	tex, err := a.readTexture(input)
	if err != nil {
		return err
	}

	if _, ok := tex.Metadata().Get(ktx2.KeyWriter); !ok {
		_, _ = fmt.Fprintf(a.stdout, "warning: %s is missing\n", ktx2.KeyWriter)
	}

	issues := tex.Check()
	if len(issues) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "%s: valid\n", input)
		return nil
	}

	for _, issue := range issues {
		_, _ = fmt.Fprintf(a.stdout, "error: %v\n", issue)
	}

	return fmt.Errorf("%w: %s has %d error(s)", ktx2.ErrInvalidFile, input, len(issues))
}
