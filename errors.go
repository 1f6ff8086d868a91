package ntfs

import (
	"errors"
)

// Sentinel errors. ErrMftAttributesEnd is returned bare (never passed
// through log.Wrap) because callers branch on identity to end an iteration
// loop rather than treat the condition as a failure.
var (
	// ErrMftAttributesEnd marks the 0xFFFFFFFF type-id sentinel that ends an
	// MFT entry's attribute list.
	ErrMftAttributesEnd = errors.New("end of mft attributes")

	// ErrAttributeListEnd names the corresponding sentinel within an
	// AttributeList attribute's own item list. parseAttributeListItems stops
	// at that sentinel without returning an error, so nothing in this
	// package returns ErrAttributeListEnd.
	ErrAttributeListEnd = errors.New("end of attribute list")

	ErrBootSectorInvalid          = errors.New("boot sector is invalid")
	ErrMftRecordSizeInvalid       = errors.New("mft record size is invalid")
	ErrNonResidentWithoutVolume   = errors.New("non-resident attribute has no volume to read from")
	ErrMftUnusedEntry             = errors.New("mft entry is marked unused")
	ErrMftInvalidSignature        = errors.New("mft entry has an invalid signature")
	ErrMftAttributeNotFound       = errors.New("mft attribute not found")
	ErrMftAttributeUnknownType    = errors.New("mft attribute has an unknown type")
	ErrMftAttributeDataType       = errors.New("mft attribute has an unrecognized resident/non-resident flag")
	ErrMftAttributeUnknownNameSpace = errors.New("filename attribute has an unknown namespace")
	ErrMftAttributeNameSpaceInvalidSize = errors.New("filename attribute content is too small for its declared name length")
	ErrMftAttributeStandardInvalidSize  = errors.New("standard-information attribute has an invalid size")
	ErrResidentAttributeOffsetTooLarge    = errors.New("resident attribute content offset exceeds the mft entry")
	ErrResidentAttributeContentTooLarge   = errors.New("resident attribute content extends past the mft entry")
	ErrNonResidentAttributeOffsetTooLarge = errors.New("non-resident attribute run references a cluster past the end of the volume")
	ErrInvalidSeekWhence = errors.New("invalid seek whence")
	ErrInvalidSeekOffset = errors.New("invalid seek offset")
)
