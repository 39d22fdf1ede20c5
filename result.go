// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import "errors"

// ResultCode is a stable numeric outcome used as a process exit status.
type ResultCode int

const (
	// Success means the operation completed.
	Success ResultCode = 0
	// InvalidArguments means the request was malformed or inconsistent.
	InvalidArguments ResultCode = 1
	// IOFailure means reading or writing a file failed.
	IOFailure ResultCode = 2
	// InvalidFile means input data was malformed.
	InvalidFile ResultCode = 3
	// RuntimeError means a codec failed.
	RuntimeError ResultCode = 4
	// NotSupported means the operation does not apply to this input.
	NotSupported ResultCode = 5
	// NotImplemented means the feature is recognized but not available.
	NotImplemented ResultCode = 6
)

var resultClasses = []struct {
	code ResultCode
	errs []error
}{
	{NotImplemented, []error{ErrNotImplemented}},
	{NotSupported, []error{
		ErrUnsupportedFormat, ErrUnsupportedForFormat,
		ErrUnsupportedTranscodeTarget, ErrUnsupportedSupercompression,
	}},
	{InvalidFile, []error{
		ErrInvalidFile, ErrBadIdentifier, ErrTruncated,
		ErrInvalidHeader, ErrInvalidIndex, ErrOverlappingLevels,
		ErrInvalidDescriptor, ErrInvalidKeyValue, ErrInvalidGlobalData,
		ErrDimensionMismatch, ErrSizeMismatch, ErrLimitExceeded,
		ErrIncompatibleSupercompression,
	}},
	{InvalidArguments, []error{
		ErrInvalidSpec, ErrInvalidDimensions, ErrCubemapNotSquare, ErrTooManyLevels,
		ErrArrayAnd3D, ErrCubemap3D, ErrImageCountMismatch, ErrConflictingOptions,
		ErrInvalidParameter, ErrOutOfRange, ErrInvalidKey, ErrReservedKey,
		ErrInvalidMetadataValue, ErrIncompatibleTransfer, ErrMissingImage,
		ErrStaleStage, ErrStageLocked,
	}},
	{IOFailure, []error{ErrOpenFile, ErrCreateFile, ErrRead, ErrWrite}},
	{RuntimeError, []error{
		ErrSizeOverflow, ErrEncode, ErrDecode, ErrSupercompress,
		ErrInflate, ErrMipmapGeneration,
	}},
}

// Code classifies err into a ResultCode. Errors wrapped in ErrInvalidFile
// classify as InvalidFile whatever rule they name. Unknown errors are
// runtime errors.
func Code(err error) ResultCode {
	if err == nil {
		return Success
	}

	for _, class := range resultClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}

	return RuntimeError
}

// String returns the symbolic name of the code.
func (c ResultCode) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case InvalidArguments:
		return "INVALID_ARGUMENTS"
	case IOFailure:
		return "IO_FAILURE"
	case InvalidFile:
		return "INVALID_FILE"
	case RuntimeError:
		return "RUNTIME_ERROR"
	case NotSupported:
		return "NOT_SUPPORTED"
	case NotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}
