// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package cli implements the ktx command.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
	"github.com/woozymasta/ktx2/internal/logging"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	threads  int
	verbose  bool
	logLevel string
	logger   hclog.Logger
}

// Execute runs ktx with the process arguments and returns the exit status.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run runs ktx with args and returns the exit status derived from
// ktx2.Code.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: hclog.NewNullLogger()}

	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(stderr, "ktx: %v\n", err)
		return int(ktx2.Code(err))
	}

	return int(ktx2.Success)
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ktx",
		Short: "Create, encode, transcode and inspect KTX2 textures",
		Long: `ktx builds KTX2 texture containers from images or raw texel data,
encodes them to BasisLZ/ETC1S, UASTC or GPU block formats, applies
Zstandard or Zlib supercompression and inspects existing files.

Exit status: 0 success, 1 invalid arguments, 2 I/O failure, 3 invalid
file, 4 runtime error, 5 not supported, 6 not implemented.`,
		Version:       ktx2.Version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			a.logger = logging.NewLogger("ktx", a.level(), a.stderr)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().IntVarP(&a.threads, "threads", "j", 0, "worker count, 0 uses every CPU")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error); default from "+logging.EnvLogLevel)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ktx2.ErrInvalidParameter, err)
	})
	root.SetVersionTemplate(fmt.Sprintf(
		"ktx %s (%s/%s, %s)\n",
		ktx2.Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))

	root.AddCommand(
		a.newCreateCommand(),
		a.newEncodeCommand(),
		a.newDeflateCommand(),
		a.newTranscodeCommand(),
		a.newInfoCommand(),
		a.newValidateCommand(),
		a.newExtractCommand(),
	)

	return root
}

// level resolves the log level: --verbose, then --log-level, then the
// environment.
func (a *app) level() string {
	switch {
	case a.verbose:
		return "debug"
	case a.logLevel != "":
		return a.logLevel
	default:
		return logging.LogLevel()
	}
}

// usageArgs classifies positional argument errors as invalid arguments.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ktx2.ErrInvalidParameter, err)
		}
		return nil
	}
}

func (a *app) pipelineOptions() []ktx2.PipelineOption {
	return []ktx2.PipelineOption{ktx2.WithLogger(a.logger), ktx2.WithWorkers(a.threads)}
}

func (a *app) readTexture(path string) (*ktx2.Texture, error) {
	return ktx2.ReadFile(path, ktx2.WithReadLogger(a.logger))
}
