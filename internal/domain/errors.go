package domain

import "errors"

var (
	// ErrQueryTooShort signals a query below the minimum length.
	ErrQueryTooShort = errors.New("query too short")
	// ErrQueryTooLong signals a query above the maximum length.
	ErrQueryTooLong = errors.New("query too long")
	// ErrSerialization signals a failure loading or projecting domain records.
	ErrSerialization = errors.New("entity serialization failed")
	// ErrModelConfig signals an invalid completion provider configuration.
	ErrModelConfig = errors.New("model configuration error")
	// ErrModelProvider signals a completion provider failure.
	ErrModelProvider = errors.New("model provider error")
	// ErrParseFailure signals an unrecoverable model response parse failure.
	ErrParseFailure = errors.New("failed to parse model response")
	// ErrRecordNotFound signals a missing domain record.
	ErrRecordNotFound = errors.New("record not found")
)
