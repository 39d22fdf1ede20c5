package ktx2

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want ResultCode
	}{
		{nil, Success},
		{ErrInvalidDimensions, InvalidArguments},
		{fmt.Errorf("%w: %w", ErrInvalidSpec, ErrTooManyLevels), InvalidArguments},
		{ErrStaleStage, InvalidArguments},
		{fmt.Errorf("%w: %q", ErrOpenFile, "x"), IOFailure},
		{ErrWrite, IOFailure},
		{fmt.Errorf("%w: %w", ErrInvalidFile, ErrOverlappingLevels), InvalidFile},
		{ErrIncompatibleSupercompression, InvalidFile},
		{ErrEncode, RuntimeError},
		{errors.New("something else"), RuntimeError},
		{ErrUnsupportedTranscodeTarget, NotSupported},
		{fmt.Errorf("%w: %w", ErrInvalidFile, ErrUnsupportedSupercompression), NotSupported},
		{ErrNotImplemented, NotImplemented},
		{ErrCubemapNotSquare, InvalidArguments},
		{fmt.Errorf("%w: %w", ErrInvalidFile, ErrCubemapNotSquare), InvalidFile},
		{ErrIncompatibleTransfer, InvalidArguments},
		{fmt.Errorf("%w: %w", ErrInvalidFile, ErrIncompatibleTransfer), InvalidFile},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Fatalf("Code(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestResultCodeValues(t *testing.T) {
	t.Parallel()

	want := map[ResultCode]int{
		Success:          0,
		InvalidArguments: 1,
		IOFailure:        2,
		InvalidFile:      3,
		RuntimeError:     4,
		NotSupported:     5,
		NotImplemented:   6,
	}
	for code, n := range want {
		if int(code) != n {
			t.Fatalf("%s = %d, want %d", code, int(code), n)
		}
		if code.String() == "UNKNOWN" {
			t.Fatalf("code %d has no name", n)
		}
	}
}

func TestCubemapNotSquareCode(t *testing.T) {
	t.Parallel()

	info := CreateInfo{Format: FormatR8G8B8A8Unorm, Width: 8, Height: 4, Cubemap: true}

	_, createErr := Create(info)
	reqErr := Request{Create: info, InputImages: 6}.Validate()
	for name, err := range map[string]error{"Create": createErr, "Request.Validate": reqErr} {
		if !errors.Is(err, ErrCubemapNotSquare) {
			t.Fatalf("%s: got %v, want %v", name, err, ErrCubemapNotSquare)
		}
		if Code(err) != InvalidArguments {
			t.Errorf("%s: Code = %s, want %s", name, Code(err), InvalidArguments)
		}
	}
}
