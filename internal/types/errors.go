package types

import (
	"fmt"
)

// ErrRecordNotExists is an error when a video record does not exist in storage
type ErrRecordNotExists struct {
	ID ID
}

func (e ErrRecordNotExists) Error() string {
	return fmt.Sprintf("No video record found ID %v", e.ID)
}

// ErrInvalidMetadata is an error when a metadata field is missing, empty,
// or otherwise unacceptable
type ErrInvalidMetadata struct {
	Field  string
	Reason string
}

func (e ErrInvalidMetadata) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Invalid metadata field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("Required metadata field is missing or empty: %s", e.Field)
}

// ErrPayloadMissing is an error when no payload was supplied for a first insertion
type ErrPayloadMissing struct {
	ID ID
}

func (e ErrPayloadMissing) Error() string {
	return fmt.Sprintf("No payload supplied for video %v", e.ID)
}

// ErrPayloadInvalid is an error when a payload is unreadable, empty, or has no content type
type ErrPayloadInvalid struct {
	Ref    PayloadRef
	Reason string
}

func (e ErrPayloadInvalid) Error() string {
	return fmt.Sprintf("Invalid payload %v: %s", e.Ref, e.Reason)
}

// ErrStorageOpen is a fatal error opening or upgrading the underlying storage engine
type ErrStorageOpen struct {
	Err error
}

func (e ErrStorageOpen) Error() string {
	return fmt.Sprintf("failed to open storage: %v", e.Err)
}

func (e ErrStorageOpen) Unwrap() error {
	return e.Err
}

// ErrStorageOp is an error from a single storage operation (quota, engine failure)
type ErrStorageOp struct {
	Op  string
	Err error
}

func (e ErrStorageOp) Error() string {
	return fmt.Sprintf("storage operation %s failed: %v", e.Op, e.Err)
}

func (e ErrStorageOp) Unwrap() error {
	return e.Err
}
