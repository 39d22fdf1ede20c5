// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package logging

import (
	"bytes"
	"io"
)

// PrefixWriter prepends a prefix to every complete line written to it.
type PrefixWriter struct {
	prefix []byte
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter wraps w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), writer: w}
}

// Write buffers p and emits each finished line with the prefix. A trailing
// partial line waits for the next call.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.buffer.Write(p)

	for {
		data := pw.buffer.Bytes()
		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			break
		}

		line := make([]byte, 0, len(pw.prefix)+nl+1)
		line = append(line, pw.prefix...)
		line = append(line, data[:nl+1]...)
		pw.buffer.Next(nl + 1)

		if _, err := pw.writer.Write(line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}
