package storage

import "errors"

var (
	// ErrPostNotFound is returned when no post exists for the given id.
	ErrPostNotFound = errors.New("post not found")
	// ErrStoreUnavailable wraps underlying database failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrImageNotFound is returned when an identifier resolves to no stored file.
	ErrImageNotFound = errors.New("image not found")
	// ErrEmptyFilename is returned when an upload carries no filename.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrInvalidExtension is returned when the filename extension is missing
	// or outside the allow-list.
	ErrInvalidExtension = errors.New("invalid file extension")
	// ErrImageTooLarge is returned when an upload exceeds the configured size cap.
	ErrImageTooLarge = errors.New("image exceeds size limit")
)
