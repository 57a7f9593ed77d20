package services

import "errors"

// Error kinds the HTTP layer maps to status codes.
var (
	// ErrPayloadTooLarge rejects an upload above the configured size cap.
	ErrPayloadTooLarge = errors.New("file size exceeds the upload limit")

	// ErrPostNotFound means no post row exists for the requested id.
	ErrPostNotFound = errors.New("post not found")

	// ErrBlobMissing means a post row existed but its blob was already gone
	// from the file store. The row has been deleted by the time this is
	// returned; the drift is surfaced so operators can reconcile.
	ErrBlobMissing = errors.New("stored file for post is missing")

	// ErrEmailTaken rejects a signup for an already registered email.
	ErrEmailTaken = errors.New("email already registered")
)
