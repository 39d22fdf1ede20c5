// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import "github.com/hashicorp/go-hclog"

// Version is reported in the default KTXwriter value.
var Version = "0.1.0"

// defaultWriter returns the KTXwriter value used when none is configured.
func defaultWriter() string {
	return "ktx2-go " + Version
}

type readConfig struct {
	limits Limits
	logger hclog.Logger
}

// ReadOption configures Decode and ReadFile.
type ReadOption func(*readConfig)

// WithReadLimits bounds allocations while reading.
func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithReadLogger sets the logger of the decoded texture.
func WithReadLogger(logger hclog.Logger) ReadOption {
	return func(c *readConfig) { c.logger = logger }
}

func newReadConfig(opts []ReadOption) readConfig {
	c := readConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	c.limits = c.limits.withDefaults()
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}

	return c
}

type writeConfig struct {
	limits Limits
	writer string
}

// WriteOption configures Encode and WriteFile.
type WriteOption func(*writeConfig)

// WithWriteLimits bounds the sizes the writer accepts.
func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithWriterIdentity overrides the KTXwriter value.
func WithWriterIdentity(writer string) WriteOption {
	return func(c *writeConfig) { c.writer = writer }
}

func newWriteConfig(opts []WriteOption) writeConfig {
	c := writeConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	c.limits = c.limits.withDefaults()
	if c.writer == "" {
		c.writer = defaultWriter()
	}

	return c
}

type createConfig struct {
	logger hclog.Logger
}

// CreateOption configures Create.
type CreateOption func(*createConfig)

// WithCreateLogger sets the logger of the created texture.
func WithCreateLogger(logger hclog.Logger) CreateOption {
	return func(c *createConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type pipelineConfig struct {
	logger  hclog.Logger
	workers int
}

// PipelineOption configures Start and Resume.
type PipelineOption func(*pipelineConfig)

// WithLogger sets the logger used by pipeline stages.
func WithLogger(logger hclog.Logger) PipelineOption {
	return func(c *pipelineConfig) { c.logger = logger }
}

// WithWorkers sets the number of concurrent image workers. Values below 1
// mean one worker per CPU.
func WithWorkers(n int) PipelineOption {
	return func(c *pipelineConfig) { c.workers = n }
}

func newPipelineConfig(opts []PipelineOption) pipelineConfig {
	c := pipelineConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	c.workers = normalizeWorkers(c.workers)

	return c
}

type transcodeConfig struct {
	logger  hclog.Logger
	workers int
	block   BlockParams
}

// TranscodeOption configures Transcode.
type TranscodeOption func(*transcodeConfig)

// WithTranscodeLogger sets the logger used while transcoding.
func WithTranscodeLogger(logger hclog.Logger) TranscodeOption {
	return func(c *transcodeConfig) { c.logger = logger }
}

// WithTranscodeWorkers sets the number of concurrent image workers.
func WithTranscodeWorkers(n int) TranscodeOption {
	return func(c *transcodeConfig) { c.workers = n }
}

// WithTranscodeBlockParams tunes the block encoders used for block targets.
func WithTranscodeBlockParams(p BlockParams) TranscodeOption {
	return func(c *transcodeConfig) { c.block = p }
}

func newTranscodeConfig(opts []TranscodeOption) transcodeConfig {
	c := transcodeConfig{block: DefaultBlockParams()}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	c.workers = normalizeWorkers(c.workers)

	return c
}
