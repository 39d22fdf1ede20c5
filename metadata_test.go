package ktx2

import (
	"errors"
	"reflect"
	"testing"
)

func TestMetadataSetRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"custom key", "myapp.tag", "x", nil},
		{"orientation 2d", KeyOrientation, "rd\x00", nil},
		{"orientation 3d", KeyOrientation, "ruo\x00", nil},
		{"swizzle", KeySwizzle, "rgb1\x00", nil},
		{"empty key", "", "x", ErrInvalidKey},
		{"ktx prefix", "ktxcustom", "x", ErrInvalidKey},
		{"unknown KTX key", "KTXcustom", "x", ErrInvalidKey},
		{"reserved writer", KeyWriter, "tool\x00", ErrReservedKey},
		{"reserved params", KeyWriterScParams, "--zstd 3\x00", ErrReservedKey},
		{"bad orientation", KeyOrientation, "xd\x00", ErrInvalidMetadataValue},
		{"long orientation", KeyOrientation, "rdio\x00", ErrInvalidMetadataValue},
		{"bad swizzle", KeySwizzle, "rgbx\x00", ErrInvalidMetadataValue},
		{"short swizzle", KeySwizzle, "rg\x00", ErrInvalidMetadataValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewMetadata().Set(tt.key, []byte(tt.value))
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Set: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMetadataKeysSorted(t *testing.T) {
	t.Parallel()

	m := NewMetadata()
	for _, k := range []string{"zeta", KeySwizzle, "Alpha", KeyOrientation} {
		value := "v"
		switch k {
		case KeySwizzle:
			value = "rgba"
		case KeyOrientation:
			value = "rd"
		}
		if err := m.Set(k, nulTerminated(value)); err != nil {
			t.Fatalf("Set %q: %v", k, err)
		}
	}

	want := []string{"Alpha", KeyOrientation, KeySwizzle, "zeta"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys = %v, want %v", got, want)
	}
	if s, ok := m.GetString(KeyOrientation); !ok || s != "rd" {
		t.Fatalf("GetString = %q, %t", s, ok)
	}
	if err := m.Delete(KeyWriter); !errors.Is(err, ErrReservedKey) {
		t.Fatalf("Delete writer: expected ErrReservedKey, got %v", err)
	}
}

func TestMetadataKeyValueRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMetadata()
	_ = m.Set("b", []byte{1, 2, 3})
	_ = m.Set("a", nulTerminated("text"))
	m.appendScParams("--encode uastc")

	got, err := parseKeyValues(marshalKeyValues(m))
	if err != nil {
		t.Fatalf("parseKeyValues: %v", err)
	}
	if !reflect.DeepEqual(got.entries, m.entries) {
		t.Fatalf("round trip mismatch: %v vs %v", got.entries, m.entries)
	}
}

func TestScParamsRecords(t *testing.T) {
	t.Parallel()

	m := NewMetadata()
	m.appendScParams("--generate-mipmap")
	m.appendScParams("--encode uastc")
	m.replaceDeflateRecord("--zstd 3")
	if got := m.scParams(); got != "--generate-mipmap --encode uastc --zstd 3" {
		t.Fatalf("after first deflate: %q", got)
	}

	m.replaceDeflateRecord("--zlib 9")
	if got := m.scParams(); got != "--generate-mipmap --encode uastc --zlib 9" {
		t.Fatalf("after replacement: %q", got)
	}

	raw, _ := m.Get(KeyWriterScParams)
	if raw[len(raw)-1] != 0 {
		t.Fatalf("KTXwriterScParams is not NUL-terminated")
	}

	if !m.dropDeflateRecord() {
		t.Fatal("dropDeflateRecord found no trailing record")
	}
	m.appendScParams("--transcode bc7")
	m.replaceDeflateRecord("--zstd 12")
	if got := m.scParams(); got != "--generate-mipmap --encode uastc --transcode bc7 --zstd 12" {
		t.Fatalf("after transcode: %q", got)
	}
}

func TestDeflateRecordOnlyMatchesLastRecord(t *testing.T) {
	t.Parallel()

	m := NewMetadata()
	m.appendScParams("--zstd 5")
	m.appendScParams("--transcode bc1")
	if m.dropDeflateRecord() {
		t.Fatalf("dropped a record that is not last: %q", m.scParams())
	}
	m.replaceDeflateRecord("--zlib 7")
	if got := m.scParams(); got != "--zstd 5 --transcode bc1 --zlib 7" {
		t.Fatalf("got %q", got)
	}

	only := NewMetadata()
	only.appendScParams("--zlib 3")
	if !only.dropDeflateRecord() {
		t.Fatal("sole deflate record not dropped")
	}
	if _, ok := only.Get(KeyWriterScParams); ok {
		t.Errorf("empty KTXwriterScParams left behind")
	}
}
