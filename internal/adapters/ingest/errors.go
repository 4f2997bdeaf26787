package ingest

import "errors"

// Sentinel errors returned by the ingest adapters.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownType   = errors.New("unknown record type")
	ErrDecode        = errors.New("decode failed")
)
