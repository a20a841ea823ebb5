package core

import "errors"

// Ingestion conditions. All but ErrAllStrategiesFailed are recovered by the
// reader and only logged; callers match them with errors.Is.
var (
	ErrEmptyFile           = errors.New("empty file")
	ErrDelimiterDetection  = errors.New("delimiter detection failed")
	ErrDecode              = errors.New("decode failed")
	ErrHeaderOutOfRange    = errors.New("header row out of range")
	ErrAllStrategiesFailed = errors.New("all read strategies failed")
	ErrFileTooLarge        = errors.New("file too large")

	ErrUnsupportedCompression = errors.New("unsupported compression")
)

// Query and model errors.
var (
	ErrUnknownColumn       = errors.New("unknown column")
	ErrUnknownFilterColumn = errors.New("unknown filter column")
	ErrInvalidPredicate    = errors.New("invalid predicate")
	ErrRaggedColumns       = errors.New("columns have different lengths")
	ErrDuplicateColumn     = errors.New("duplicate column name")
)

// Batch errors.
var (
	ErrBatchCancelled  = errors.New("load cancelled")
	ErrTooManyLoads    = errors.New("too many concurrent loads, please try again later")
	ErrCoordinatorDone = errors.New("coordinator closed")
)
