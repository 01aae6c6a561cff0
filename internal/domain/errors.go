package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrBenefitNotFound         = errors.New("benefit not found")
	ErrInvalidStatusTransition = errors.New("invalid processing status transition")
	ErrExtractionInProgress    = errors.New("extraction already in progress for document")
	ErrExtractionQueueFull     = errors.New("extraction queue is full")
	ErrPoolStopped             = errors.New("extraction pool is not accepting jobs")
	ErrInvalidPayload          = errors.New("extracted data must be a JSON object")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrInvalidExportFormat     = errors.New("unsupported export format")
)
