// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Known metadata keys.
const (
	KeyOrientation      = "KTXorientation"
	KeyGLFormat         = "KTXglFormat"
	KeyDXGIFormat       = "KTXdxgiFormat__"
	KeyMetalPixelFormat = "KTXmetalPixelFormat"
	KeySwizzle          = "KTXswizzle"
	KeyASTCDecodeMode   = "KTXastcDecodeMode"
	KeyAnimData         = "KTXanimData"

	// KeyWriter identifies the writing program. Set by the writer.
	KeyWriter = "KTXwriter"
	// KeyWriterScParams records how the texture was encoded. Set by the pipeline.
	KeyWriterScParams = "KTXwriterScParams"
)

var knownKeys = map[string]bool{
	KeyOrientation:      true,
	KeyGLFormat:         true,
	KeyDXGIFormat:       true,
	KeyMetalPixelFormat: true,
	KeySwizzle:          true,
	KeyASTCDecodeMode:   true,
	KeyAnimData:         true,
	KeyWriter:           true,
	KeyWriterScParams:   true,
}

var (
	orientationPattern = regexp.MustCompile(`^[rl]([du]([oi])?)?$`)
	swizzlePattern     = regexp.MustCompile(`^[rgba01]{4}$`)
	deflateRecord      = regexp.MustCompile(`(?:^| )--(?:zlib|zstd) [1-9][0-9]?$`)
)

// Metadata is the key/value store of a texture. Keys are unique and are
// serialized in byte-wise order.
type Metadata struct {
	entries map[string][]byte
}

// NewMetadata returns an empty store.
func NewMetadata() *Metadata {
	return &Metadata{entries: map[string][]byte{}}
}

// Get returns a copy of the value stored under key.
func (m *Metadata) Get(key string) ([]byte, bool) {
	v, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	return append([]byte(nil), v...), true
}

// GetString returns a textual value without its NUL terminator.
func (m *Metadata) GetString(key string) (string, bool) {
	v, ok := m.entries[key]
	if !ok {
		return "", false
	}

	return string(bytes.TrimRight(v, "\x00")), true
}

// Keys returns the keys in serialization order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Len returns the number of entries.
func (m *Metadata) Len() int { return len(m.entries) }

// Set validates key and value and stores a copy of value.
func (m *Metadata) Set(key string, value []byte) error {
	if key == KeyWriter || key == KeyWriterScParams {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	if err := checkMetadata(key, value); err != nil {
		return err
	}

	m.entries[key] = append([]byte(nil), value...)

	return nil
}

// Delete removes key. Reserved keys cannot be removed.
func (m *Metadata) Delete(key string) error {
	if key == KeyWriter || key == KeyWriterScParams {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	delete(m.entries, key)

	return nil
}

// set stores a value without the reserved-key check.
func (m *Metadata) set(key string, value []byte) {
	m.entries[key] = append([]byte(nil), value...)
}

// clone returns a deep copy.
func (m *Metadata) clone() *Metadata {
	c := NewMetadata()
	for k, v := range m.entries {
		c.entries[k] = append([]byte(nil), v...)
	}

	return c
}

// checkMetadata applies the key and value rules shared by Set and the reader.
func checkMetadata(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidKey, key)
	}
	if strings.HasPrefix(key, "ktx") {
		return fmt.Errorf("%w: %q uses the reserved ktx prefix", ErrInvalidKey, key)
	}
	if strings.HasPrefix(key, "KTX") && !knownKeys[key] {
		return fmt.Errorf("%w: unknown KTX key %q", ErrInvalidKey, key)
	}

	text := string(bytes.TrimRight(value, "\x00"))
	switch key {
	case KeyOrientation:
		if !orientationPattern.MatchString(text) {
			return fmt.Errorf("%w: orientation %q", ErrInvalidMetadataValue, text)
		}
	case KeySwizzle:
		if !swizzlePattern.MatchString(text) {
			return fmt.Errorf("%w: swizzle %q", ErrInvalidMetadataValue, text)
		}
	case KeyWriter, KeyWriterScParams:
		if len(value) == 0 || value[len(value)-1] != 0 {
			return fmt.Errorf("%w: %s must be NUL-terminated", ErrInvalidMetadataValue, key)
		}
	}

	return nil
}

// nulTerminated returns s as bytes with a trailing NUL.
func nulTerminated(s string) []byte {
	return append([]byte(s), 0)
}

// scParams returns the writer parameter record without its terminator.
func (m *Metadata) scParams() string {
	s, _ := m.GetString(KeyWriterScParams)
	return s
}

// appendScParams appends one stage record.
func (m *Metadata) appendScParams(record string) {
	current := m.scParams()
	record = strings.TrimSpace(record)
	if current != "" {
		record = current + " " + record
	}
	m.set(KeyWriterScParams, nulTerminated(record))
}

// dropDeflateRecord removes a trailing deflate record and reports whether
// one was present.
func (m *Metadata) dropDeflateRecord() bool {
	current := m.scParams()
	loc := deflateRecord.FindStringIndex(current)
	if loc == nil {
		return false
	}

	rest := strings.TrimSpace(current[:loc[0]])
	if rest == "" {
		delete(m.entries, KeyWriterScParams)
		return true
	}
	m.set(KeyWriterScParams, nulTerminated(rest))

	return true
}

// replaceDeflateRecord swaps the trailing deflate record for record, or
// appends it when the last record is not a deflate one.
func (m *Metadata) replaceDeflateRecord(record string) {
	m.dropDeflateRecord()
	m.appendScParams(record)
}
