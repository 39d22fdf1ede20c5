// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"
	"github.com/woozymasta/ktx2"
)

type infoReport struct {
	Header   infoHeader     `json:"header"`
	Index    []infoLevel    `json:"index"`
	DFD      infoDescriptor `json:"dataFormatDescriptor"`
	KeyValue []infoKeyValue `json:"keyValueData"`
}

type infoHeader struct {
	VkFormat               string `json:"vkFormat"`
	TypeSize               uint32 `json:"typeSize"`
	PixelWidth             uint32 `json:"pixelWidth"`
	PixelHeight            uint32 `json:"pixelHeight"`
	PixelDepth             uint32 `json:"pixelDepth"`
	LayerCount             uint32 `json:"layerCount"`
	FaceCount              uint32 `json:"faceCount"`
	LevelCount             uint32 `json:"levelCount"`
	SupercompressionScheme string `json:"supercompressionScheme"`
	DFDByteOffset          uint32 `json:"dfdByteOffset"`
	DFDByteLength          uint32 `json:"dfdByteLength"`
	KVDByteOffset          uint32 `json:"kvdByteOffset"`
	KVDByteLength          uint32 `json:"kvdByteLength"`
	SGDByteOffset          uint64 `json:"sgdByteOffset"`
	SGDByteLength          uint64 `json:"sgdByteLength"`
}

type infoLevel struct {
	Level                  int    `json:"level"`
	ByteOffset             uint64 `json:"byteOffset"`
	ByteLength             uint64 `json:"byteLength"`
	UncompressedByteLength uint64 `json:"uncompressedByteLength"`
	XXHash64               string `json:"xxhash64"`
}

type infoDescriptor struct {
	ColorModel    string       `json:"colorModel"`
	Primaries     string       `json:"colorPrimaries"`
	Transfer      string       `json:"transferFunction"`
	Premultiplied bool         `json:"premultiplied"`
	TexelBlock    [4]int       `json:"texelBlockDimension"`
	BytesPlane    [8]uint8     `json:"bytesPlane"`
	Samples       []infoSample `json:"samples"`
}

type infoSample struct {
	BitOffset  uint16 `json:"bitOffset"`
	BitLength  int    `json:"bitLength"`
	Channel    uint8  `json:"channelType"`
	Qualifiers uint8  `json:"qualifiers"`
	Lower      uint32 `json:"sampleLower"`
	Upper      uint32 `json:"sampleUpper"`
}

type infoKeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (a *app) newInfoCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info [flags] <input>",
		Short: "Print the header, index, descriptor and metadata of a KTX2 file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runInfo(format, args[0])
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")

	return cmd
}

func (a *app) runInfo(format, input string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("%w: unknown output format %q", ktx2.ErrInvalidParameter, format)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ktx2.ErrOpenFile, input, err)
	}
	header, err := ktx2.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ktx2.ErrInvalidFile, err)
	}
	tex, err := ktx2.Unmarshal(data, ktx2.WithReadLogger(a.logger))
	if err != nil {
		return err
	}

	report, err := buildReport(header, tex)
	if err != nil {
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(a.stdout, report)
	return nil
}

func buildReport(h ktx2.Header, tex *ktx2.Texture) (infoReport, error) {
	r := infoReport{
		Header: infoHeader{
			VkFormat:               h.Format.String(),
			TypeSize:               h.TypeSize,
			PixelWidth:             h.Width,
			PixelHeight:            h.Height,
			PixelDepth:             h.Depth,
			LayerCount:             h.Layers,
			FaceCount:              h.Faces,
			LevelCount:             h.Levels,
			SupercompressionScheme: h.Scheme.String(),
			DFDByteOffset:          h.DFDOffset,
			DFDByteLength:          h.DFDLength,
			KVDByteOffset:          h.KVDOffset,
			KVDByteLength:          h.KVDLength,
			SGDByteOffset:          h.SGDOffset,
			SGDByteLength:          h.SGDLength,
		},
	}

	for i, e := range tex.LevelIndex() {
		level, err := tex.LevelData(i)
		if err != nil {
			return infoReport{}, err
		}
		r.Index = append(r.Index, infoLevel{
			Level:                  i,
			ByteOffset:             e.ByteOffset,
			ByteLength:             e.ByteLength,
			UncompressedByteLength: e.UncompressedByteLength,
			XXHash64:               fmt.Sprintf("%016x", xxhash.Sum64(level)),
		})
	}

	d := tex.Descriptor()
	r.DFD = infoDescriptor{
		ColorModel:    d.Model.String(),
		Primaries:     d.Primaries.String(),
		Transfer:      d.Transfer.String(),
		Premultiplied: d.Premultiplied(),
		BytesPlane:    d.BytesPlane,
	}
	for i, dim := range d.TexelBlockDim {
		r.DFD.TexelBlock[i] = int(dim) + 1
	}
	for _, s := range d.Samples {
		r.DFD.Samples = append(r.DFD.Samples, infoSample{
			BitOffset:  s.BitOffset,
			BitLength:  int(s.BitLength),
			Channel:    s.Channel,
			Qualifiers: s.Qualifiers,
			Lower:      s.Lower,
			Upper:      s.Upper,
		})
	}

	meta := tex.Metadata()
	for _, key := range meta.Keys() {
		value, _ := meta.Get(key)
		r.KeyValue = append(r.KeyValue, infoKeyValue{Key: key, Value: formatValue(value)})
	}

	return r, nil
}

// formatValue renders printable NUL-terminated text as is and anything
// else as hex.
func formatValue(v []byte) string {
	text := bytes.TrimRight(v, "\x00")
	for _, r := range string(text) {
		if r == unicode.ReplacementChar || !unicode.IsPrint(r) {
			return "0x" + hex.EncodeToString(v)
		}
	}

	return string(text)
}

func printReport(w io.Writer, r infoReport) {
	h := r.Header
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("Header\n\n")
	p("vkFormat: %s\n", h.VkFormat)
	p("typeSize: %d\n", h.TypeSize)
	p("pixelWidth: %d\n", h.PixelWidth)
	p("pixelHeight: %d\n", h.PixelHeight)
	p("pixelDepth: %d\n", h.PixelDepth)
	p("layerCount: %d\n", h.LayerCount)
	p("faceCount: %d\n", h.FaceCount)
	p("levelCount: %d\n", h.LevelCount)
	p("supercompressionScheme: %s\n", h.SupercompressionScheme)
	p("dataFormatDescriptor.byteOffset: %#x\n", h.DFDByteOffset)
	p("dataFormatDescriptor.byteLength: %d\n", h.DFDByteLength)
	p("keyValueData.byteOffset: %#x\n", h.KVDByteOffset)
	p("keyValueData.byteLength: %d\n", h.KVDByteLength)
	p("supercompressionGlobalData.byteOffset: %#x\n", h.SGDByteOffset)
	p("supercompressionGlobalData.byteLength: %d\n", h.SGDByteLength)

	p("\nLevel Index\n\n")
	for _, l := range r.Index {
		p("Level%d.byteOffset: %#x\n", l.Level, l.ByteOffset)
		p("Level%d.byteLength: %d\n", l.Level, l.ByteLength)
		p("Level%d.uncompressedByteLength: %d\n", l.Level, l.UncompressedByteLength)
		p("Level%d.xxhash64: %s\n", l.Level, l.XXHash64)
	}

	d := r.DFD
	p("\nData Format Descriptor\n\n")
	p("colorModel: %s\n", d.ColorModel)
	p("colorPrimaries: %s\n", d.Primaries)
	p("transferFunction: %s\n", d.Transfer)
	p("premultiplied: %t\n", d.Premultiplied)
	p("texelBlockDimension: %d %d %d %d\n", d.TexelBlock[0], d.TexelBlock[1], d.TexelBlock[2], d.TexelBlock[3])
	p("bytesPlane: %v\n", d.BytesPlane)
	for i, s := range d.Samples {
		p("Sample %d: bitOffset %d, bitLength %d, channelType %#x, qualifiers %#x, lower %d, upper %d\n",
			i, s.BitOffset, s.BitLength, s.Channel, s.Qualifiers, s.Lower, s.Upper)
	}

	p("\nKey/Value Data\n\n")
	for _, kv := range r.KeyValue {
		p("%s: %s\n", kv.Key, strconv.Quote(kv.Value))
	}
}
