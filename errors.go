// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

import "errors"

// Usage errors. Raised by validation before any mutation.
var (
	// ErrInvalidSpec indicates a texture creation request failed validation.
	ErrInvalidSpec = errors.New("invalid texture spec")
	// ErrInvalidDimensions indicates a zero or inconsistent dimension.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrTooManyLevels indicates more levels than the base size allows.
	ErrTooManyLevels = errors.New("too many mip levels")
	// ErrCubemapNotSquare indicates cubemap faces are not square.
	ErrCubemapNotSquare = errors.New("cubemap faces must be square")
	// ErrArrayAnd3D indicates an array texture with depth above one.
	ErrArrayAnd3D = errors.New("array and 3D textures are mutually exclusive")
	// ErrCubemap3D indicates a cubemap with depth above one.
	ErrCubemap3D = errors.New("cubemap cannot be 3D")
	// ErrImageCountMismatch indicates the number of input images is wrong.
	ErrImageCountMismatch = errors.New("input image count mismatch")
	// ErrConflictingOptions indicates mutually exclusive options were combined.
	ErrConflictingOptions = errors.New("conflicting options")
	// ErrInvalidParameter indicates a parameter outside its valid range or set.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrOutOfRange indicates a level, layer, face or slice index out of range.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidKey indicates a metadata key that may not be used.
	ErrInvalidKey = errors.New("invalid metadata key")
	// ErrReservedKey indicates a metadata key maintained by the writer.
	ErrReservedKey = errors.New("reserved metadata key")
	// ErrInvalidMetadataValue indicates a malformed value for a known key.
	ErrInvalidMetadataValue = errors.New("invalid metadata value")
	// ErrMissingImage indicates an image required by the layout was never set.
	ErrMissingImage = errors.New("missing image")
	// ErrStaleStage indicates a pipeline handle whose texture has moved on.
	ErrStaleStage = errors.New("stale pipeline stage")
	// ErrStageLocked indicates a mutation not allowed in the current stage.
	ErrStageLocked = errors.New("texture is locked by pipeline stage")
)

// Input data errors. Raised while parsing files or populating images.
var (
	// ErrInvalidFile indicates a malformed KTX2 byte stream.
	ErrInvalidFile = errors.New("invalid KTX2 file")
	// ErrBadIdentifier indicates the file does not start with the KTX2 identifier.
	ErrBadIdentifier = errors.New("not a KTX2 file")
	// ErrTruncated indicates the stream ended before a section was complete.
	ErrTruncated = errors.New("unexpected end of data")
	// ErrInvalidHeader indicates inconsistent header fields.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidIndex indicates a section or level range outside the file.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrOverlappingLevels indicates two level ranges share bytes.
	ErrOverlappingLevels = errors.New("overlapping levels")
	// ErrInvalidDescriptor indicates a malformed data format descriptor.
	ErrInvalidDescriptor = errors.New("invalid data format descriptor")
	// ErrInvalidKeyValue indicates malformed key/value data.
	ErrInvalidKeyValue = errors.New("invalid key/value data")
	// ErrInvalidGlobalData indicates malformed supercompression global data.
	ErrInvalidGlobalData = errors.New("invalid supercompression global data")
	// ErrDimensionMismatch indicates an image with the wrong pixel dimensions.
	ErrDimensionMismatch = errors.New("image dimension mismatch")
	// ErrSizeMismatch indicates image or level data of the wrong byte length.
	ErrSizeMismatch = errors.New("image size mismatch")
	// ErrLimitExceeded indicates data above the configured read limits.
	ErrLimitExceeded = errors.New("limit exceeded")
	// ErrIncompatibleSupercompression indicates supercompression that cannot be stacked.
	ErrIncompatibleSupercompression = errors.New("incompatible supercompression")
	// ErrIncompatibleTransfer indicates a transfer function the format cannot carry.
	ErrIncompatibleTransfer = errors.New("incompatible transfer function")
)

// I/O errors.
var (
	// ErrOpenFile indicates a file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrRead indicates reading the byte stream failed.
	ErrRead = errors.New("read failed")
	// ErrWrite indicates writing the byte stream failed.
	ErrWrite = errors.New("write failed")
)

// Codec errors. Fatal to the current operation.
var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrEncode indicates a codec failed while encoding.
	ErrEncode = errors.New("encode failed")
	// ErrDecode indicates a codec failed while decoding.
	ErrDecode = errors.New("decode failed")
	// ErrSupercompress indicates generic supercompression failed.
	ErrSupercompress = errors.New("supercompression failed")
	// ErrInflate indicates inflating supercompressed data failed.
	ErrInflate = errors.New("inflate failed")
	// ErrMipmapGeneration indicates resampling a mip level failed.
	ErrMipmapGeneration = errors.New("mipmap generation failed")
)

// Capability errors. The operation is valid in general but not here.
var (
	// ErrUnsupportedFormat indicates a format the operation cannot take.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedForFormat indicates mip generation is not possible for the texture.
	ErrUnsupportedForFormat = errors.New("operation unsupported for format")
	// ErrUnsupportedTranscodeTarget indicates the texture cannot be transcoded to the target.
	ErrUnsupportedTranscodeTarget = errors.New("unsupported transcode target")
	// ErrUnsupportedSupercompression indicates an unknown supercompression scheme.
	ErrUnsupportedSupercompression = errors.New("unsupported supercompression scheme")
)

// ErrNotImplemented indicates a recognized feature without an implementation.
var ErrNotImplemented = errors.New("not implemented")
